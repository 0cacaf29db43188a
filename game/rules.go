package game

import "github.com/microvita/microcosm/config"

// speciesRules answers binding compatibility from the species table.
type speciesRules struct {
	canBind   []bool
	bindsWith [][]bool
}

func newSpeciesRules(cfg *config.Config) *speciesRules {
	n := len(cfg.Species)
	r := &speciesRules{
		canBind:   make([]bool, n),
		bindsWith: make([][]bool, n),
	}
	for i, sp := range cfg.Species {
		r.canBind[i] = sp.CanBind
		r.bindsWith[i] = make([]bool, n)
		if !sp.CanBind {
			continue
		}
		// Every binder fuses with its own kind; binds_with opens
		// specific cross-species pairs.
		r.bindsWith[i][i] = true
		for _, name := range sp.BindsWith {
			if j, ok := cfg.Derived.SpeciesIndex[name]; ok {
				r.bindsWith[i][j] = true
			}
		}
	}
	return r
}

// CanBind reports whether the species can enter binding mode.
func (r *speciesRules) CanBind(species uint8) bool {
	return int(species) < len(r.canBind) && r.canBind[species]
}

// CanBindWith reports whether species may fuse with other. Both sides
// of a cross-species pair must list each other.
func (r *speciesRules) CanBindWith(species, other uint8) bool {
	if int(species) >= len(r.bindsWith) || int(other) >= len(r.bindsWith) {
		return false
	}
	return r.bindsWith[species][other] && (species == other || r.bindsWith[other][species])
}
