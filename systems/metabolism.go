package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// MetabolismParams tunes compound flow through a cell.
type MetabolismParams struct {
	GrazeRate      float32 // glucose pulled from the field per second
	ConversionRate float32 // glucose converted to ATP per second
	ATPPerGlucose  float32 // ATP yielded per unit glucose
	BaseATPDrain   float32 // ATP burned per second just by existing
	StarveDamage   float32 // health lost per second at zero ATP
	HealRate       float32 // health regained per second when fed
}

// MetabolismSystem moves glucose from the nutrient field into cells,
// converts it to ATP, and applies starvation damage.
type MetabolismSystem struct {
	reg    *Registry
	field  *NutrientField
	params MetabolismParams
}

// NewMetabolismSystem creates the system over a shared nutrient field.
func NewMetabolismSystem(reg *Registry, field *NutrientField, params MetabolismParams) *MetabolismSystem {
	return &MetabolismSystem{reg: reg, field: field, params: params}
}

// Update runs one metabolic step for every living cell.
func (m *MetabolismSystem) Update(delta float32) {
	filter := ecs.NewFilter3[components.Position, components.CompoundStorage, components.Health](m.reg.World)
	query := filter.Query()
	for query.Next() {
		pos, storage, health := query.Get()
		if !health.Alive {
			continue
		}

		// Graze glucose from the local patch, capacity permitting.
		want := m.params.GrazeRate * delta
		if free := storage.Capacity - storage.Amount(components.CompoundGlucose); free < want {
			want = free
		}
		if want > 0 {
			got := m.field.Graze(pos.X, pos.Y, want)
			storage.Add(components.CompoundGlucose, got)
		}

		// Convert glucose to ATP.
		glucose := storage.Take(components.CompoundGlucose, m.params.ConversionRate*delta)
		if glucose > 0 {
			storage.Add(components.CompoundATP, glucose*m.params.ATPPerGlucose)
		}

		// Baseline ATP burn; starvation hurts, a full reservoir heals.
		burn := m.params.BaseATPDrain * delta
		taken := storage.Take(components.CompoundATP, burn)
		switch {
		case taken < burn:
			health.Current -= m.params.StarveDamage * delta
			if health.Current <= 0 {
				health.Current = 0
				health.Alive = false
			}
		case health.Current < health.Max && storage.Fraction(components.CompoundATP) > 0.5:
			health.Current += m.params.HealRate * delta
			if health.Current > health.Max {
				health.Current = health.Max
			}
		}
	}
}
