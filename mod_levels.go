package kite

import (
	"fmt"

	"github.com/google/uuid"
)

type LevelId string

// LevelServer owns the tile grids of loaded levels. Grids are referenced by
// opaque LevelId handles so game code can pass levels around without
// holding grid pointers across a reload.
type LevelServer struct {
	grids map[LevelId]*TileGrid
}

type LevelServerModule struct{}

func (LevelServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&LevelServer{
		grids: make(map[LevelId]*TileGrid),
	})
}

// CreateGrid registers an empty grid of the given cell dimensions.
func (server *LevelServer) CreateGrid(width, height int) LevelId {
	id := makeLevelId()
	server.grids[id] = NewTileGrid(width, height)
	return id
}

// LoadGrid registers a grid from row-major cell data, row 0 at the bottom.
func (server *LevelServer) LoadGrid(width, height int, cells []TileCode) (LevelId, error) {
	if len(cells) != width*height {
		return "", fmt.Errorf("level data is %d cells, want %dx%d=%d", len(cells), width, height, width*height)
	}
	id := makeLevelId()
	grid := NewTileGrid(width, height)
	for cy := 0; cy < height; cy++ {
		for cx := 0; cx < width; cx++ {
			grid.Set(cx, cy, cells[cy*width+cx])
		}
	}
	server.grids[id] = grid
	return id, nil
}

// Grid resolves a handle. Returns nil for unknown or unloaded levels.
func (server *LevelServer) Grid(id LevelId) *TileGrid {
	return server.grids[id]
}

// Unload drops the grid. Layer entities spawned from it must be removed by
// the caller; a dangling layer with a nil grid is skipped by the resolver.
func (server *LevelServer) Unload(id LevelId) {
	delete(server.grids, id)
}

// SpawnLayer creates a tile layer entity over the level's grid, making it
// part of the physics world. The returned entity is what grounded bodies
// will reference. Friction applies to anything standing on this layer.
func (server *LevelServer) SpawnLayer(cmd *Commands, id LevelId, friction float32) (EntityId, error) {
	grid := server.grids[id]
	if grid == nil {
		return NoEntity, fmt.Errorf("unknown level %v", id)
	}
	eid := cmd.AddEntity(
		TileLayerComponent{Grid: grid, Friction: friction},
	)
	return eid, nil
}

func makeLevelId() LevelId {
	return LevelId(uuid.NewString())
}
