package kite

import (
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSpatialHashGrid_InsertAndQuery(t *testing.T) {
	grid := NewSpatialHashGrid(2.0)

	grid.Insert(1, AABBComponent{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}})
	grid.Insert(2, AABBComponent{Min: mgl32.Vec2{10, 10}, Max: mgl32.Vec2{11, 11}})

	near := grid.QueryAABB(AABBComponent{Min: mgl32.Vec2{0.5, 0.5}, Max: mgl32.Vec2{1.5, 1.5}})
	if len(near) != 1 || near[0] != 1 {
		t.Errorf("Expected only entity 1 near origin, got %v", near)
	}

	far := grid.QueryAABB(AABBComponent{Min: mgl32.Vec2{9, 9}, Max: mgl32.Vec2{12, 12}})
	if len(far) != 1 || far[0] != 2 {
		t.Errorf("Expected only entity 2 far away, got %v", far)
	}

	grid.Clear()
	if res := grid.QueryAABB(AABBComponent{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{20, 20}}); len(res) != 0 {
		t.Errorf("Cleared grid should be empty, got %v", res)
	}
}

func TestSpatialHashGrid_NoDuplicates(t *testing.T) {
	grid := NewSpatialHashGrid(1.0)

	// Spans many cells; must still be reported once.
	grid.Insert(7, AABBComponent{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{5, 5}})

	res := grid.QueryAABB(AABBComponent{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{5, 5}})
	if len(res) != 1 || res[0] != 7 {
		t.Errorf("Entity spanning many cells reported %d times", len(res))
	}
}

func TestSpatialHashGrid_QueryRadius(t *testing.T) {
	grid := NewSpatialHashGrid(2.0)
	grid.Insert(1, AABBComponent{Min: mgl32.Vec2{0, 0}, Max: mgl32.Vec2{1, 1}})

	res := grid.QueryRadius(mgl32.Vec2{0.5, 0.5}, 1)
	if len(res) != 1 || res[0] != 1 {
		t.Errorf("Radius query missed the entity, got %v", res)
	}
}

func TestSpatialGridModuleAndOverlapQuery(t *testing.T) {
	app := NewApp()
	app.UseModules(SpatialGridModule{})
	cmd := app.Commands()

	e1 := cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec2{0, 0}},
		NewCollider(mgl32.Vec2{1, 1}),
		&AABBComponent{},
	)
	e2 := cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec2{0.5, 0}},
		NewCollider(mgl32.Vec2{1, 1}),
		&AABBComponent{},
	)
	cmd.AddEntity(
		&TransformComponent{Position: mgl32.Vec2{50, 50}},
		NewCollider(mgl32.Vec2{1, 1}),
		&AABBComponent{},
	)
	app.FlushCommands()

	grid := app.resources[reflect.TypeOf(SpatialHashGrid{})].(*SpatialHashGrid)

	UpdateAABBsSystem(cmd)
	UpdateSpatialGridSystem(cmd, grid)

	hits := OverlapQuery(cmd, grid, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 1})
	if len(hits) != 2 || hits[0] != e1 || hits[1] != e2 {
		t.Errorf("Expected [%v %v] in id order, got %v", e1, e2, hits)
	}
}
