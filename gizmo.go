package kite

import "github.com/go-gl/mathgl/mgl32"

type GizmoType int

const (
	GizmoLine GizmoType = iota
	GizmoRect   // Wireframe rectangle
	GizmoCircle // Wireframe circle
)

// GizmoComponent allows an entity to be visualized as a wireframe overlay.
type GizmoComponent struct {
	Type  GizmoType
	Color [4]float32

	// For Rect and Circle: Position is center and Size the full extents.
	// For Line: Position is the start point.
	Position mgl32.Vec2
	Angle    float32
	Size     mgl32.Vec2

	// Specifics
	LineEnd mgl32.Vec2 // For GizmoLine, the end point.
	Radius  float32    // For GizmoCircle.
}

func NewGizmoLine(start, end mgl32.Vec2, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoLine,
		Position: start,
		LineEnd:  end,
		Color:    color,
	}
}

func NewGizmoRect(center, size mgl32.Vec2, angle float32, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoRect,
		Position: center,
		Size:     size,
		Angle:    angle,
		Color:    color,
	}
}

func NewGizmoCircle(center mgl32.Vec2, radius float32, color [4]float32) GizmoComponent {
	return GizmoComponent{
		Type:     GizmoCircle,
		Position: center,
		Radius:   radius,
		Color:    color,
	}
}

// DebugRenderer is the drawing surface the debug system paints on. The
// engine ships no renderer; games plug in whatever backend they have, tests
// plug in a recorder.
type DebugRenderer interface {
	DrawLine(start, end mgl32.Vec2, color [4]float32)
	DrawOrientedRect(center, size mgl32.Vec2, angle float32, color [4]float32)
	DrawCircle(center mgl32.Vec2, radius float32, color [4]float32)
}

// DebugDraw queues one-shot primitives (raycast traces, contact markers)
// emitted during the update stages and flushed in Render. Entity gizmos
// don't go through the queue; they persist as components.
type DebugDraw struct {
	Renderer DebugRenderer
	queued   []GizmoComponent
}

func (d *DebugDraw) QueueLine(start, end mgl32.Vec2, color [4]float32) {
	d.queued = append(d.queued, NewGizmoLine(start, end, color))
}

func (d *DebugDraw) QueueRect(center, size mgl32.Vec2, angle float32, color [4]float32) {
	d.queued = append(d.queued, NewGizmoRect(center, size, angle, color))
}

// QueueRaycast draws the segment up to the hit point plus a marker, or the
// whole segment when nothing was hit.
func (d *DebugDraw) QueueRaycast(start, end mgl32.Vec2, hit RaycastHit, color [4]float32) {
	if hit.Hit {
		d.QueueLine(start, hit.Pos, color)
		d.queued = append(d.queued, NewGizmoCircle(hit.Pos, 0.1, color))
	} else {
		d.QueueLine(start, end, color)
	}
}

type DebugDrawModule struct {
	Renderer DebugRenderer
}

func (m DebugDrawModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&DebugDraw{Renderer: m.Renderer})

	app.UseSystem(
		System(debugDrawSystem).
			InStage(Render).
			RunAlways(),
	)
}

// debugDrawSystem paints persistent gizmo components, the physics collider
// boxes when PhysicsWorld.DebugDraw is on, and the one-shot queue. The
// queue is drained every frame regardless of the renderer being present so
// a headless run does not accumulate primitives.
func debugDrawSystem(cmd *Commands, debug *DebugDraw, physics *PhysicsWorld) {
	queued := debug.queued
	debug.queued = debug.queued[:0]

	r := debug.Renderer
	if r == nil {
		return
	}

	MakeQuery1[GizmoComponent](cmd).Map(func(eid EntityId, g *GizmoComponent) bool {
		drawGizmo(r, g)
		return true
	})

	if physics.DebugDraw {
		MakeQuery2[TransformComponent, ColliderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, col *ColliderComponent) bool {
			color := [4]float32{0, 1, 0, 1}
			if !col.IsSolid {
				color = [4]float32{1, 1, 0, 1}
			}
			r.DrawOrientedRect(tr.Position, col.Size, tr.Angle, color)
			return true
		})
	}

	for i := range queued {
		drawGizmo(r, &queued[i])
	}
}

func drawGizmo(r DebugRenderer, g *GizmoComponent) {
	switch g.Type {
	case GizmoLine:
		r.DrawLine(g.Position, g.LineEnd, g.Color)
	case GizmoRect:
		r.DrawOrientedRect(g.Position, g.Size, g.Angle, g.Color)
	case GizmoCircle:
		r.DrawCircle(g.Position, g.Radius, g.Color)
	}
}
