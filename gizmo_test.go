package kite

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

type recordingRenderer struct {
	lines   int
	rects   int
	circles int
}

func (r *recordingRenderer) DrawLine(start, end mgl32.Vec2, color [4]float32) { r.lines++ }
func (r *recordingRenderer) DrawOrientedRect(center, size mgl32.Vec2, angle float32, color [4]float32) {
	r.rects++
}
func (r *recordingRenderer) DrawCircle(center mgl32.Vec2, radius float32, color [4]float32) {
	r.circles++
}

func debugDrawAppForTest(rec *recordingRenderer) (*App, *DebugDraw, *PhysicsWorld) {
	app := NewApp()
	app.UseModules(
		TimeModule{FixedDt: 0.1},
		PhysicsModule{},
		DebugDrawModule{Renderer: rec},
	)
	debug := app.resources[reflect.TypeOf(DebugDraw{})].(*DebugDraw)
	physics := app.resources[reflect.TypeOf(PhysicsWorld{})].(*PhysicsWorld)
	return app, debug, physics
}

func TestDebugDrawGizmoComponents(t *testing.T) {
	rec := &recordingRenderer{}
	app, _, _ := debugDrawAppForTest(rec)
	cmd := app.Commands()

	cmd.AddEntity(NewGizmoLine(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1}, [4]float32{1, 0, 0, 1}))
	cmd.AddEntity(NewGizmoRect(mgl32.Vec2{2, 2}, mgl32.Vec2{1, 1}, 0, [4]float32{0, 1, 0, 1}))
	cmd.AddEntity(NewGizmoCircle(mgl32.Vec2{3, 3}, 0.5, [4]float32{0, 0, 1, 1}))
	app.FlushCommands()

	app.Step()

	assert.Equal(t, 1, rec.lines)
	assert.Equal(t, 1, rec.rects)
	assert.Equal(t, 1, rec.circles)
}

func TestDebugDrawColliderBoxes(t *testing.T) {
	rec := &recordingRenderer{}
	app, _, physics := debugDrawAppForTest(rec)
	physics.Gravity = mgl32.Vec2{0, 0}
	cmd := app.Commands()

	cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec2{0, 0}},
		NewBody(1),
		NewCollider(mgl32.Vec2{1, 1}),
	)
	app.FlushCommands()

	app.Step()
	assert.Equal(t, 0, rec.rects, "Collider boxes are off by default")

	physics.DebugDraw = true
	app.Step()
	assert.Equal(t, 1, rec.rects, "DebugDraw should paint one box per collider")
}

func TestDebugDrawQueueDrainedEachFrame(t *testing.T) {
	rec := &recordingRenderer{}
	app, debug, _ := debugDrawAppForTest(rec)

	debug.QueueLine(mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}, [4]float32{1, 1, 1, 1})
	app.Step()
	assert.Equal(t, 1, rec.lines)

	// Nothing queued this frame: the line must not persist.
	app.Step()
	assert.Equal(t, 1, rec.lines)
}

func TestDebugDrawQueueRaycast(t *testing.T) {
	rec := &recordingRenderer{}
	app, debug, _ := debugDrawAppForTest(rec)

	grid := NewTileGrid(10, 10)
	grid.Set(5, 0, 1)
	hit := grid.Raycast(mgl32.Vec2{0, 0.5}, mgl32.Vec2{9, 0.5}, nil)

	debug.QueueRaycast(mgl32.Vec2{0, 0.5}, mgl32.Vec2{9, 0.5}, hit, [4]float32{1, 0, 0, 1})
	app.Step()

	assert.Equal(t, 1, rec.lines, "Hit ray draws the truncated segment")
	assert.Equal(t, 1, rec.circles, "Hit ray draws a marker at the hit point")
}
