// Package systems provides the per-tick simulation systems.
package systems

import (
	"math"

	"github.com/pthm-cable/murmur/components"
	"github.com/pthm-cable/murmur/world"
)

// SpatialGrid is a uniform grid over the fixed world cuboid, used as the
// broad-phase for social interactions. It is rebuilt from scratch every
// tick; callers must still apply exact distance checks to candidates.
type SpatialGrid struct {
	minX, minY, minZ float32
	cellSize         float32
	nx, ny, nz       int
	cells            [][]uint32
}

// NewSpatialGrid creates a grid covering [-half, half] on each axis. The
// cell edge must be at least the largest interaction radius queried through
// it so a one-cell ring is always sufficient.
func NewSpatialGrid(halfX, halfY, halfZ, cellSize float32) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = 1
	}
	nx := int(2*halfX/cellSize) + 1
	ny := int(2*halfY/cellSize) + 1
	nz := int(2*halfZ/cellSize) + 1

	cells := make([][]uint32, nx*ny*nz)
	for i := range cells {
		cells[i] = make([]uint32, 0, 8) // pre-allocate small capacity
	}

	return &SpatialGrid{
		minX: -halfX, minY: -halfY, minZ: -halfZ,
		cellSize: cellSize,
		nx:       nx, ny: ny, nz: nz,
		cells: cells,
	}
}

// Clear removes all entities from the grid.
func (g *SpatialGrid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

// Insert adds an entity at the given position.
func (g *SpatialGrid) Insert(id uint32, p components.Position) {
	cx, cy, cz := g.CellOf(p)
	idx := (cz*g.ny+cy)*g.nx + cx
	g.cells[idx] = append(g.cells[idx], id)
}

// Rebuild clears the grid and reinserts every entity in ids.
func (g *SpatialGrid) Rebuild(st *world.Store, ids []uint32) {
	g.Clear()
	for _, id := range ids {
		g.Insert(id, *st.Position(id))
	}
}

// CellOf returns the integer cell coordinates for a position, clamped to
// the grid bounds.
func (g *SpatialGrid) CellOf(p components.Position) (int, int, int) {
	cx := int(math.Floor(float64((p.X - g.minX) / g.cellSize)))
	cy := int(math.Floor(float64((p.Y - g.minY) / g.cellSize)))
	cz := int(math.Floor(float64((p.Z - g.minZ) / g.cellSize)))
	return clampInt(cx, 0, g.nx-1), clampInt(cy, 0, g.ny-1), clampInt(cz, 0, g.nz-1)
}

// NeighborsInto appends to dst every entity in cells within
// ceil(radius/cellSize) cells of the position's cell on every axis,
// excluding self. Cells are visited once each, so the result carries no
// duplicates. This is a candidate list only.
func (g *SpatialGrid) NeighborsInto(dst []uint32, self uint32, p components.Position, radius float32) []uint32 {
	cr := int(math.Ceil(float64(radius / g.cellSize)))
	cx, cy, cz := g.CellOf(p)

	x0, x1 := clampInt(cx-cr, 0, g.nx-1), clampInt(cx+cr, 0, g.nx-1)
	y0, y1 := clampInt(cy-cr, 0, g.ny-1), clampInt(cy+cr, 0, g.ny-1)
	z0, z1 := clampInt(cz-cr, 0, g.nz-1), clampInt(cz+cr, 0, g.nz-1)

	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				idx := (z*g.ny+y)*g.nx + x
				for _, id := range g.cells[idx] {
					if id == self {
						continue
					}
					dst = append(dst, id)
				}
			}
		}
	}
	return dst
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
