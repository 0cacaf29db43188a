package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/microvita/microcosm/components"
)

// Neighbor is a nearby entity with its toroidal delta and squared
// distance precomputed, so contact generation never repeats the wrap
// math.
type Neighbor struct {
	E      ecs.Entity
	DX, DY float32
	DistSq float32
}

// MaxNeighbors caps spatial query results so a density spike cannot
// cause unbounded work in a single tick.
const MaxNeighbors = 64

// SpatialGrid is a uniform cell grid over the toroidal world, rebuilt
// every tick before contact generation.
type SpatialGrid struct {
	cellSize float32
	cols     int
	rows     int
	width    float32
	height   float32
	cells    [][]ecs.Entity
}

// NewSpatialGrid creates a grid covering the world. cellSize should be
// at least twice the largest cell radius so contacts only need the
// 3x3 cell neighborhood.
func NewSpatialGrid(width, height, cellSize float32) *SpatialGrid {
	cols := int(width/cellSize) + 1
	rows := int(height/cellSize) + 1
	cells := make([][]ecs.Entity, cols*rows)
	for i := range cells {
		cells[i] = make([]ecs.Entity, 0, 4)
	}
	return &SpatialGrid{
		cellSize: cellSize,
		cols:     cols,
		rows:     rows,
		width:    width,
		height:   height,
		cells:    cells,
	}
}

// Clear empties the grid, keeping cell capacity for the next rebuild.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert places an entity into the cell containing (x, y).
func (g *SpatialGrid) Insert(e ecs.Entity, x, y float32) {
	g.cells[g.cellIndex(x, y)] = append(g.cells[g.cellIndex(x, y)], e)
}

// QueryRadiusInto appends entities within radius of (x, y) to dst,
// excluding the querying entity, up to MaxNeighbors. dst is reused
// across calls to avoid allocations.
func (g *SpatialGrid) QueryRadiusInto(dst []Neighbor, x, y, radius float32, exclude ecs.Entity, pos *ecs.Map1[components.Position]) []Neighbor {
	reach := int(radius/g.cellSize) + 1
	centerCol := int(x / g.cellSize)
	centerRow := int(y / g.cellSize)
	radiusSq := radius * radius

	for dc := -reach; dc <= reach; dc++ {
		for dr := -reach; dr <= reach; dr++ {
			col := (centerCol + dc + g.cols) % g.cols
			row := (centerRow + dr + g.rows) % g.rows
			for _, e := range g.cells[row*g.cols+col] {
				if e == exclude {
					continue
				}
				p := pos.Get(e)
				if p == nil {
					continue
				}
				dx, dy := ToroidalDelta(x, y, p.X, p.Y, g.width, g.height)
				distSq := dx*dx + dy*dy
				if distSq > radiusSq {
					continue
				}
				dst = append(dst, Neighbor{E: e, DX: dx, DY: dy, DistSq: distSq})
				if len(dst) >= MaxNeighbors {
					return dst
				}
			}
		}
	}
	return dst
}

func (g *SpatialGrid) cellIndex(x, y float32) int {
	col := int(x / g.cellSize)
	row := int(y / g.cellSize)
	if col < 0 {
		col = 0
	} else if col >= g.cols {
		col = g.cols - 1
	}
	if row < 0 {
		row = 0
	} else if row >= g.rows {
		row = g.rows - 1
	}
	return row*g.cols + col
}

// ToroidalDelta returns the shortest wrapped delta from (x1,y1) to
// (x2,y2) on a torus of size w x h.
func ToroidalDelta(x1, y1, x2, y2, w, h float32) (dx, dy float32) {
	dx = x2 - x1
	dy = y2 - y1
	if dx > w/2 {
		dx -= w
	} else if dx < -w/2 {
		dx += w
	}
	if dy > h/2 {
		dy -= h
	} else if dy < -h/2 {
		dy += h
	}
	return dx, dy
}

// WrapPosition folds a coordinate pair back into the world bounds.
func WrapPosition(x, y, w, h float32) (float32, float32) {
	for x < 0 {
		x += w
	}
	for x >= w {
		x -= w
	}
	for y < 0 {
		y += h
	}
	for y >= h {
		y -= h
	}
	return x, y
}
