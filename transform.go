package kite

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent is an entity's world transform: position, rotation
// angle in radians, and a horizontal mirror flag. Collider sizes stay axis
// aligned regardless of Angle; the angle exists for rendering and for
// angular velocity integration.
type TransformComponent struct {
	Position mgl32.Vec2
	Angle    float32
	Mirror   bool
}

// LocalTransformComponent is a transform relative to a Parent entity. An
// entity carrying Parent + LocalTransformComponent has its world
// TransformComponent derived by TransformHierarchySystem each tick and is
// skipped by the integrator.
type LocalTransformComponent struct {
	Position mgl32.Vec2
	Angle    float32
	Mirror   bool
}

type Parent struct {
	Entity EntityId
}

func (t *TransformComponent) MirrorSign() float32 {
	if t.Mirror {
		return -1
	}
	return 1
}

func rotateVec2(v mgl32.Vec2, angle float32) mgl32.Vec2 {
	return mgl32.Rotate2D(angle).Mul2x1(v)
}
