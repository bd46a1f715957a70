package simulation

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// NeighborIndex selects how the separation rule finds nearby boids.
type NeighborIndex string

const (
	// IndexAllPairs scans the whole flock for every boid.
	IndexAllPairs NeighborIndex = "all-pairs"
	// IndexGrid buckets boids in a uniform grid whose cell size is the separation reach,
	// so only the 3x3x3 block around a boid has to be scanned.
	IndexGrid NeighborIndex = "grid"
)

// minCellSize keeps the grid from degenerating when the reach is zero.
const minCellSize = 1.0

type gridKey struct {
	x, y, z int
}

// spatialGrid maps a cell to the indices of the boids inside it.
type spatialGrid struct {
	cellSize float32
	cells    map[gridKey][]int
}

func newSpatialGrid(cellSize float32) *spatialGrid {
	return &spatialGrid{
		cellSize: float32(math.Max(float64(cellSize), minCellSize)),
		cells:    make(map[gridKey][]int),
	}
}

func (g *spatialGrid) cellOf(p mgl32.Vec3) gridKey {
	cs := float64(g.cellSize)
	return gridKey{
		x: int(math.Floor(float64(p[0]) / cs)),
		y: int(math.Floor(float64(p[1]) / cs)),
		z: int(math.Floor(float64(p[2]) / cs)),
	}
}

func (g *spatialGrid) rebuild(positions []mgl32.Vec3) {
	// Reset slices to length 0 but keep their capacity, so steady state ticks
	// allocate almost nothing.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	for i, p := range positions {
		key := g.cellOf(p)
		g.cells[key] = append(g.cells[key], i)
	}
}

// nearby appends to buf the indices of every boid in the 3x3x3 block of cells
// around p, in ascending order.
func (g *spatialGrid) nearby(p mgl32.Vec3, buf []int) []int {
	c := g.cellOf(p)
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			for k := c.z - 1; k <= c.z+1; k++ {
				if ids, ok := g.cells[gridKey{x: i, y: j, z: k}]; ok {
					buf = append(buf, ids...)
				}
			}
		}
	}
	sort.Ints(buf)
	return buf
}
