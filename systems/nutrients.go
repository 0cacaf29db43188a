package systems

import "math"

// NutrientField is a grid of glucose patches laid out by coherent
// noise. Cells graze it down locally and it regenerates toward each
// patch's capacity.
type NutrientField struct {
	cols, rows int
	cellSize   float32
	width      float32
	height     float32
	capacity   []float32
	amount     []float32
	regenRate  float32 // fraction of capacity restored per second
}

// NutrientFieldParams configures field generation.
type NutrientFieldParams struct {
	Width, Height float32
	CellSize      float32
	NoiseScale    float64 // world units per noise unit
	Octaves       int
	MaxCapacity   float32 // glucose capacity of the richest patch
	RegenRate     float32
	Seed          int64
}

// NewNutrientField generates a field from fractal noise. Patches where
// the noise is negative stay barren.
func NewNutrientField(p NutrientFieldParams) *NutrientField {
	cols := int(p.Width/p.CellSize) + 1
	rows := int(p.Height/p.CellSize) + 1
	f := &NutrientField{
		cols:      cols,
		rows:      rows,
		cellSize:  p.CellSize,
		width:     p.Width,
		height:    p.Height,
		capacity:  make([]float32, cols*rows),
		amount:    make([]float32, cols*rows),
		regenRate: p.RegenRate,
	}

	noise := NewGradientNoise(p.Seed)
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			x := float64(col) * float64(p.CellSize) / p.NoiseScale
			y := float64(row) * float64(p.CellSize) / p.NoiseScale
			v := noise.Fractal2D(x, y, p.Octaves)
			if v <= 0 {
				continue
			}
			cap32 := float32(v) * p.MaxCapacity
			f.capacity[row*cols+col] = cap32
			f.amount[row*cols+col] = cap32
		}
	}
	return f
}

// Sample returns the glucose available at a world position.
func (f *NutrientField) Sample(x, y float32) float32 {
	return f.amount[f.index(x, y)]
}

// Graze removes up to want glucose from the patch at (x, y) and
// returns the amount actually taken.
func (f *NutrientField) Graze(x, y, want float32) float32 {
	idx := f.index(x, y)
	got := want
	if got > f.amount[idx] {
		got = f.amount[idx]
	}
	f.amount[idx] -= got
	return got
}

// Regenerate grows every patch toward its capacity.
func (f *NutrientField) Regenerate(delta float32) {
	for i := range f.amount {
		if f.capacity[i] == 0 {
			continue
		}
		f.amount[i] += f.capacity[i] * f.regenRate * delta
		if f.amount[i] > f.capacity[i] {
			f.amount[i] = f.capacity[i]
		}
	}
}

// Total returns the glucose currently in the field, for telemetry.
func (f *NutrientField) Total() float32 {
	var sum float32
	for _, a := range f.amount {
		sum += a
	}
	return sum
}

// CellSize returns the patch edge length, for rendering.
func (f *NutrientField) CellSize() float32 { return f.cellSize }

// Dimensions returns the grid size, for rendering.
func (f *NutrientField) Dimensions() (cols, rows int) { return f.cols, f.rows }

// PatchAt returns the amount and capacity of the patch at grid
// coordinates, for rendering.
func (f *NutrientField) PatchAt(col, row int) (amount, capacity float32) {
	idx := row*f.cols + col
	return f.amount[idx], f.capacity[idx]
}

func (f *NutrientField) index(x, y float32) int {
	x, y = WrapPosition(x, y, f.width, f.height)
	col := int(x / f.cellSize)
	row := int(y / f.cellSize)
	col = int(math.Min(float64(col), float64(f.cols-1)))
	row = int(math.Min(float64(row), float64(f.rows-1)))
	return row*f.cols + col
}
