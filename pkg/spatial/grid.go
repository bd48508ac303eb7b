// Package spatial provides the uniform grid spatial hash used to bound
// neighbor lookups in the flock.
package spatial

import (
	"math"

	"github.com/lao-tseu-is-alive/go-boids-flock/pkg/geometry"
)

// CellKey packs a signed (x, y) cell coordinate into a single integer:
// x in the high 32 bits, y in the low 32 bits.
type CellKey uint64

// MakeCellKey packs the cell coordinate (cx, cy).
func MakeCellKey(cx, cy int32) CellKey {
	return CellKey(uint64(uint32(cx))<<32 | uint64(uint32(cy)))
}

// Coords unpacks the cell coordinate.
func (k CellKey) Coords() (cx, cy int32) {
	return int32(uint32(k >> 32)), int32(uint32(k))
}

// Grid is a uniform grid hash mapping a cell to the ordered ids of the
// entities inside it. It is scratch space: rebuilt from scratch every tick.
//
// Queries only ever look at a single cell, never the 3x3 neighborhood, so an
// entity just across a cell boundary is not seen. The optional border layer
// (see WithBorderLayer) mitigates this for entities sitting in cell corners.
type Grid struct {
	cellSize geometry.Vector2D
	buckets  map[CellKey][]int

	border      bool
	borderWidth float64
	// entry thresholds: offset from the cell center above which an entity
	// is also copied into the diagonal neighbor cell
	xEntry, yEntry float64
}

// NewGrid creates an empty grid. Both cell dimensions must be positive;
// callers validate this upstream (see simulation.Config.Validate).
func NewGrid(cellSize geometry.Vector2D) *Grid {
	return &Grid{
		cellSize: cellSize,
		buckets:  make(map[CellKey][]int),
	}
}

// WithBorderLayer turns on border-layer augmentation. The border width is
// 2*objectRadius + separation; an entity whose distance from its cell center
// exceeds cellSize/2 - width on both axes is inserted a second time into the
// diagonal neighbor cell it leans towards.
func (g *Grid) WithBorderLayer(objectRadius, separation float64) *Grid {
	g.border = true
	g.borderWidth = 2*objectRadius + separation
	g.xEntry = g.cellSize.X/2 - g.borderWidth
	g.yEntry = g.cellSize.Y/2 - g.borderWidth
	return g
}

// CellSize returns the grid's cell dimensions.
func (g *Grid) CellSize() geometry.Vector2D {
	return g.cellSize
}

// BorderLayer reports whether border augmentation is on, and its width.
func (g *Grid) BorderLayer() (bool, float64) {
	return g.border, g.borderWidth
}

// Clear empties every bucket.
// Slices are truncated rather than dropped so their backing arrays are
// reused on the next rebuild; steady-state ticks allocate almost nothing.
func (g *Grid) Clear() {
	for k := range g.buckets {
		g.buckets[k] = g.buckets[k][:0]
	}
}

// Cell returns the cell coordinate containing pos: floor(pos / cellSize).
func (g *Grid) Cell(pos geometry.Vector2D) (cx, cy int32) {
	return int32(math.Floor(pos.X / g.cellSize.X)), int32(math.Floor(pos.Y / g.cellSize.Y))
}

// KeyOf returns the packed key of the cell containing pos.
func (g *Grid) KeyOf(pos geometry.Vector2D) CellKey {
	return MakeCellKey(g.Cell(pos))
}

// CellCenter returns the world position of the center of cell (cx, cy).
func (g *Grid) CellCenter(cx, cy int32) geometry.Vector2D {
	return geometry.Vector2D{
		X: float64(cx)*g.cellSize.X + g.cellSize.X/2,
		Y: float64(cy)*g.cellSize.Y + g.cellSize.Y/2,
	}
}

// Insert appends id to the bucket of the cell containing pos, and to one
// diagonal neighbor bucket when the border layer applies.
func (g *Grid) Insert(id int, pos geometry.Vector2D) {
	cx, cy := g.Cell(pos)
	key := MakeCellKey(cx, cy)
	// append reuses the capacity left behind by Clear
	g.buckets[key] = append(g.buckets[key], id)

	if !g.border {
		return
	}
	off := pos.Sub(g.CellCenter(cx, cy))
	if math.Abs(off.X) <= g.xEntry || math.Abs(off.Y) <= g.yEntry {
		return
	}
	dx, dy := int32(1), int32(1)
	if off.X < 0 {
		dx = -1
	}
	if off.Y < 0 {
		dy = -1
	}
	diag := MakeCellKey(cx+dx, cy+dy)
	g.buckets[diag] = append(g.buckets[diag], id)
}

// Query returns the ids stored in the cell containing pos, in insertion
// order. The slice belongs to the grid: do not modify it, and do not keep it
// past the next Clear.
func (g *Grid) Query(pos geometry.Vector2D) []int {
	return g.buckets[g.KeyOf(pos)]
}

// Rebuild clears the grid then inserts every position, using its index as id.
func (g *Grid) Rebuild(positions []geometry.Vector2D) {
	g.Clear()
	for i, p := range positions {
		g.Insert(i, p)
	}
}

// Len returns the number of non-empty buckets.
func (g *Grid) Len() int {
	n := 0
	for _, b := range g.buckets {
		if len(b) > 0 {
			n++
		}
	}
	return n
}
