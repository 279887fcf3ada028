package kite

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RaycastHit describes the first accepted cell along a grid raycast.
type RaycastHit struct {
	Hit  bool
	Cell [2]int
	// Pos is the center of the hit cell.
	Pos mgl32.Vec2
	// Normal is the outward normal of the face the ray entered through. It
	// is zero when the start point was already inside the hit cell.
	Normal mgl32.Vec2
	// T is the distance from start to where the ray entered the hit cell.
	T float32
}

const raycastMaxSteps = 10000

// Raycast walks the cells crossed by the segment from start to end in order
// of increasing distance, testing each cell's code against accept (nil
// accepts any positive code), and returns the first accepted cell. Every
// crossed cell is visited exactly once. When the segment crosses a cell
// corner exactly, the X step is taken first.
//
// A zero-length segment returns no hit.
func (g *TileGrid) Raycast(start, end mgl32.Vec2, accept func(code TileCode, cx, cy int) bool) RaycastHit {
	delta := end.Sub(start)
	length := delta.Len()
	if length == 0 {
		return RaycastHit{}
	}
	dir := delta.Mul(1 / length)

	cx := int(math.Floor(float64(start.X())))
	cy := int(math.Floor(float64(start.Y())))

	stepX, tDeltaX, tMaxX := raycastAxisSetup(start.X(), dir.X())
	stepY, tDeltaY, tMaxY := raycastAxisSetup(start.Y(), dir.Y())

	t := float32(0)
	var normal mgl32.Vec2

	for i := 0; i < raycastMaxSteps; i++ {
		code := g.Get(cx, cy)
		if code != 0 && (accept == nil || accept(code, cx, cy)) {
			return RaycastHit{
				Hit:    true,
				Cell:   [2]int{cx, cy},
				Pos:    mgl32.Vec2{float32(cx) + 0.5, float32(cy) + 0.5},
				Normal: normal,
				T:      t,
			}
		}

		if tMaxX <= tMaxY {
			if tMaxX > length {
				break
			}
			t = tMaxX
			tMaxX += tDeltaX
			cx += stepX
			normal = mgl32.Vec2{float32(-stepX), 0}
		} else {
			if tMaxY > length {
				break
			}
			t = tMaxY
			tMaxY += tDeltaY
			cy += stepY
			normal = mgl32.Vec2{0, float32(-stepY)}
		}
	}

	return RaycastHit{}
}

// raycastAxisSetup returns the integer step direction, the distance along
// the ray between successive cell boundaries on this axis, and the distance
// to the first boundary crossing.
func raycastAxisSetup(origin, dir float32) (step int, tDelta, tMax float32) {
	if dir > 0 {
		step = 1
		tDelta = 1 / dir
		tMax = (float32(math.Floor(float64(origin))) + 1 - origin) * tDelta
	} else if dir < 0 {
		step = -1
		tDelta = -1 / dir
		tMax = (origin - float32(math.Floor(float64(origin)))) * tDelta
	} else {
		step = 0
		tDelta = float32(math.Inf(1))
		tMax = float32(math.Inf(1))
	}
	return step, tDelta, tMax
}
