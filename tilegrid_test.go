package kite

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestTileGridBounds(t *testing.T) {
	grid := NewTileGrid(4, 3)

	if grid.Width() != 4 || grid.Height() != 3 {
		t.Errorf("Wrong dimensions: %dx%d", grid.Width(), grid.Height())
	}

	grid.Set(1, 2, 7)
	if grid.Get(1, 2) != 7 {
		t.Errorf("Set/Get roundtrip failed")
	}

	// Out of bounds reads are passable, writes are dropped.
	if grid.Get(-1, 0) != 0 || grid.Get(0, -1) != 0 || grid.Get(4, 0) != 0 || grid.Get(0, 3) != 0 {
		t.Errorf("Out-of-bounds cells should read 0")
	}
	grid.Set(100, 100, 9)
	if grid.Get(100, 100) != 0 {
		t.Errorf("Out-of-bounds write should be a no-op")
	}
}

func TestTileGridPanicsOnBadDimensions(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic on zero width")
		}
	}()
	NewTileGrid(0, 5)
}

func TestTileGridOnChange(t *testing.T) {
	grid := NewTileGrid(4, 4)

	var gotX, gotY int
	var gotCode TileCode
	fired := 0
	grid.OnChange = func(cx, cy int, code TileCode) {
		gotX, gotY, gotCode = cx, cy, code
		fired++
	}

	grid.Set(2, 3, 5)
	if fired != 1 || gotX != 2 || gotY != 3 || gotCode != 5 {
		t.Errorf("OnChange got (%d,%d,%d) fired=%d", gotX, gotY, gotCode, fired)
	}

	// Out-of-bounds writes must not notify.
	grid.Set(-1, 0, 1)
	if fired != 1 {
		t.Errorf("OnChange fired for an out-of-bounds write")
	}
}

func TestTileGridHitTest(t *testing.T) {
	grid := NewTileGrid(10, 10)
	grid.Set(5, 5, 1)

	size := mgl32.Vec2{1, 1}
	if !grid.HitTest(mgl32.Vec2{5.5, 5.5}, size, nil) {
		t.Errorf("Box centered on the block should hit")
	}
	if !grid.HitTest(mgl32.Vec2{5.5, 6.4}, size, nil) {
		t.Errorf("Box dipping into the block from above should hit")
	}
	if grid.HitTest(mgl32.Vec2{5.5, 8}, size, nil) {
		t.Errorf("Box clear of the block should not hit")
	}
	if grid.HitTest(mgl32.Vec2{-5, -5}, size, nil) {
		t.Errorf("Box fully outside the grid should not hit")
	}
}

func TestTileGridHitTestFilter(t *testing.T) {
	grid := NewTileGrid(10, 10)
	grid.Set(5, 5, 2)

	size := mgl32.Vec2{1, 1}
	pos := mgl32.Vec2{5.5, 5.5}

	if !grid.HitTest(pos, size, nil) {
		t.Errorf("Nil filter should treat any positive code as blocking")
	}
	if grid.HitTest(pos, size, func(code TileCode, cx, cy int) bool { return code == 1 }) {
		t.Errorf("Filter rejecting the code should report no hit")
	}
	if !grid.HitTest(pos, size, func(code TileCode, cx, cy int) bool { return code == 2 }) {
		t.Errorf("Filter accepting the code should report a hit")
	}
}
