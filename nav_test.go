package kite

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestFindPathStraightLine(t *testing.T) {
	grid := NewTileGrid(10, 3)

	path := grid.FindPath(mgl32.Vec2{0.5, 1.5}, mgl32.Vec2{4.5, 1.5}, nil)
	if path == nil {
		t.Fatal("expected a path on an empty grid")
	}
	if len(path) != 5 {
		t.Fatalf("expected 5 waypoints, got %d: %v", len(path), path)
	}
	if path[0] != (mgl32.Vec2{0.5, 1.5}) {
		t.Errorf("path must start at the start cell center, got %v", path[0])
	}
	if path[len(path)-1] != (mgl32.Vec2{4.5, 1.5}) {
		t.Errorf("path must end at the end cell center, got %v", path[len(path)-1])
	}
}

func TestFindPathAroundWall(t *testing.T) {
	grid := NewTileGrid(5, 5)
	// Vertical wall at x=2, with a gap at the top row.
	for cy := 0; cy < 4; cy++ {
		grid.Set(2, cy, 1)
	}

	path := grid.FindPath(mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{4.5, 0.5}, nil)
	if path == nil {
		t.Fatal("expected a path through the gap")
	}

	for _, wp := range path {
		cx := int(math.Floor(float64(wp.X())))
		cy := int(math.Floor(float64(wp.Y())))
		if grid.Get(cx, cy) != 0 {
			t.Errorf("waypoint %v passes through a solid cell (%d,%d)", wp, cx, cy)
		}
	}

	// Each step moves at most one cell per axis.
	for i := 1; i < len(path); i++ {
		d := path[i].Sub(path[i-1])
		if absf(d.X()) > 1.01 || absf(d.Y()) > 1.01 {
			t.Errorf("step %d jumps %v", i, d)
		}
	}

	// The detour has to climb to the gap and back: longer than the direct run.
	if len(path) < 9 {
		t.Errorf("detour suspiciously short: %d waypoints", len(path))
	}
}

func TestFindPathNoPath(t *testing.T) {
	grid := NewTileGrid(5, 5)
	for cy := 0; cy < 5; cy++ {
		grid.Set(2, cy, 1)
	}

	if path := grid.FindPath(mgl32.Vec2{0.5, 2.5}, mgl32.Vec2{4.5, 2.5}, nil); path != nil {
		t.Errorf("expected nil for a sealed wall, got %v", path)
	}
}

func TestFindPathBlockedEndpoint(t *testing.T) {
	grid := NewTileGrid(4, 4)
	grid.Set(0, 0, 1)

	if path := grid.FindPath(mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{3.5, 3.5}, nil); path != nil {
		t.Error("start inside a solid cell must yield no path")
	}
	if path := grid.FindPath(mgl32.Vec2{3.5, 3.5}, mgl32.Vec2{0.5, 0.5}, nil); path != nil {
		t.Error("end inside a solid cell must yield no path")
	}
}

func TestFindPathNoCornerCutting(t *testing.T) {
	grid := NewTileGrid(3, 3)
	// Both orthogonal neighbors of the diagonal are solid; squeezing
	// through the corner is not allowed.
	grid.Set(1, 0, 1)
	grid.Set(0, 1, 1)

	if path := grid.FindPath(mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{1.5, 1.5}, nil); path != nil {
		t.Errorf("expected nil, corner cut found: %v", path)
	}
}

func TestFindPathCustomWalkable(t *testing.T) {
	grid := NewTileGrid(4, 1)
	grid.Set(2, 0, 7) // passable door code

	walkable := func(code TileCode, cx, cy int) bool { return code == 0 || code == 7 }
	path := grid.FindPath(mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{3.5, 0.5}, walkable)
	if path == nil {
		t.Fatal("door tile should be walkable for this agent")
	}
	if len(path) != 4 {
		t.Errorf("expected 4 waypoints, got %v", path)
	}
}

func TestSteerSeek(t *testing.T) {
	v := SteerSeek(mgl32.Vec2{0, 0}, mgl32.Vec2{3, 4}, 10)
	if absf(v.X()-6) > 1e-4 || absf(v.Y()-8) > 1e-4 {
		t.Errorf("expected (6,8), got %v", v)
	}
	if l := v.Len(); absf(l-10) > 1e-4 {
		t.Errorf("speed must match maxSpeed, got %v", l)
	}

	if z := SteerSeek(mgl32.Vec2{2, 2}, mgl32.Vec2{2, 2}, 10); z != (mgl32.Vec2{}) {
		t.Errorf("same position must give zero velocity, got %v", z)
	}
}

func TestLOSProbe(t *testing.T) {
	grid := NewTileGrid(6, 3)
	grid.Set(3, 1, 1)

	if grid.LOSProbe(mgl32.Vec2{0.5, 1.5}, mgl32.Vec2{5.5, 1.5}, nil) {
		t.Error("line crosses a solid cell, probe must fail")
	}
	if !grid.LOSProbe(mgl32.Vec2{0.5, 0.5}, mgl32.Vec2{5.5, 0.5}, nil) {
		t.Error("clear row, probe must succeed")
	}
}
