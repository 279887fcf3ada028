package kite

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TileCode is a per-cell collision code. 0 means empty/passable; any
// positive code is collidable by default. Codes above 0 are otherwise
// opaque to the engine and only interpreted by per-body tile filters
// (ladders, one-way platforms and the like).
type TileCode uint8

// TileGrid is a rectangular grid of collision codes with one cell per world
// unit. Cell (cx, cy) covers the square [cx, cx+1) x [cy, cy+1). The size is
// fixed at construction; out-of-bounds reads return 0 and out-of-bounds
// writes are dropped.
type TileGrid struct {
	width  int
	height int
	cells  []TileCode

	// OnChange, when set, fires after every in-bounds Set. The terrain
	// owner uses it to invalidate cached visuals for the cell.
	OnChange func(cx, cy int, code TileCode)
}

func NewTileGrid(width, height int) *TileGrid {
	if width <= 0 || height <= 0 {
		panic("tile grid dimensions must be positive")
	}
	return &TileGrid{
		width:  width,
		height: height,
		cells:  make([]TileCode, width*height),
	}
}

func (g *TileGrid) Width() int  { return g.width }
func (g *TileGrid) Height() int { return g.height }

func (g *TileGrid) InBounds(cx, cy int) bool {
	return cx >= 0 && cy >= 0 && cx < g.width && cy < g.height
}

// Get returns the collision code at a cell, or 0 when the cell is outside
// the grid (the world beyond the grid is passable).
func (g *TileGrid) Get(cx, cy int) TileCode {
	if !g.InBounds(cx, cy) {
		return 0
	}
	return g.cells[cy*g.width+cx]
}

// Set writes the collision code at a cell. Writes outside the grid are
// no-ops.
func (g *TileGrid) Set(cx, cy int, code TileCode) {
	if !g.InBounds(cx, cy) {
		return
	}
	g.cells[cy*g.width+cx] = code
	if g.OnChange != nil {
		g.OnChange(cx, cy, code)
	}
}

// HitTest reports whether an axis-aligned box centered at pos with the
// given full extents overlaps any accepted cell. A nil accept treats every
// positive code as blocking. This is the shape-vs-grid query the tile
// resolver runs and is also usable standalone (spawn validation, ground
// probes).
func (g *TileGrid) HitTest(pos, size mgl32.Vec2, accept func(code TileCode, cx, cy int) bool) bool {
	minX := int(math.Floor(float64(pos.X() - size.X()/2)))
	minY := int(math.Floor(float64(pos.Y() - size.Y()/2)))
	maxX := int(math.Ceil(float64(pos.X() + size.X()/2)))
	maxY := int(math.Ceil(float64(pos.Y() + size.Y()/2)))

	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > g.width {
		maxX = g.width
	}
	if maxY > g.height {
		maxY = g.height
	}

	for cy := minY; cy < maxY; cy++ {
		for cx := minX; cx < maxX; cx++ {
			code := g.cells[cy*g.width+cx]
			if code == 0 {
				continue
			}
			if accept == nil || accept(code, cx, cy) {
				return true
			}
		}
	}
	return false
}

// TileLayerComponent places a TileGrid in the world as an entity, so bodies
// can collide with it and stand on it. Friction feeds the ground-friction
// blend for bodies resting on the layer.
type TileLayerComponent struct {
	Grid     *TileGrid
	Friction float32
}
