package kite

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

type AABBComponent struct {
	Min mgl32.Vec2
	Max mgl32.Vec2
}

// SpatialHashGrid is a broadphase index for gameplay queries (pickups,
// triggers, AI sensing). The collision resolver does not consult it: the
// resolver's all-pairs pass in id order is observable behavior, and a
// broadphase visiting pairs in hash order would change outcomes.
type SpatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]EntityId
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]EntityId),
	}
}

func (grid *SpatialHashGrid) Clear() {
	for k := range grid.cells {
		delete(grid.cells, k)
	}
}

func (grid *SpatialHashGrid) Insert(id EntityId, aabb AABBComponent) {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			key := grid.hashKey(x, y)
			grid.cells[key] = append(grid.cells[key], id)
		}
	}
}

func (grid *SpatialHashGrid) QueryAABB(aabb AABBComponent) []EntityId {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())

	unique := make(map[EntityId]struct{})
	var results []EntityId

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			key := grid.hashKey(x, y)
			for _, id := range grid.cells[key] {
				if _, ok := unique[id]; !ok {
					unique[id] = struct{}{}
					results = append(results, id)
				}
			}
		}
	}
	return results
}

// QueryRadius returns broadphase candidates inside the circle's bounding
// box. The grid stores only ids, so exact distance filtering is left to
// the caller, which has the components.
func (grid *SpatialHashGrid) QueryRadius(center mgl32.Vec2, radius float32) []EntityId {
	return grid.QueryAABB(AABBComponent{
		Min: center.Sub(mgl32.Vec2{radius, radius}),
		Max: center.Add(mgl32.Vec2{radius, radius}),
	})
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}

func (grid *SpatialHashGrid) hashKey(x, y int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	return uint64(x*p1 ^ y*p2)
}

type SpatialGridModule struct{}

func (m SpatialGridModule) Install(app *App, cmd *Commands) {
	// Default cell size 2.0 (reasonable for objects ~1-2 units size)
	cmd.AddResources(NewSpatialHashGrid(2.0))

	app.UseSystem(
		System(UpdateAABBsSystem).InStage(PreUpdate).RunAlways(),
	).UseSystem(
		System(UpdateSpatialGridSystem).InStage(PreUpdate).RunAlways(),
	)
}

// UpdateAABBsSystem refreshes world-space bounds for entities that carry an
// AABBComponent. Entities without one are not indexed.
func UpdateAABBsSystem(cmd *Commands) {
	MakeQuery3[TransformComponent, ColliderComponent, AABBComponent](cmd).Map(func(id EntityId, tr *TransformComponent, col *ColliderComponent, aabb *AABBComponent) bool {
		half := col.Size.Mul(0.5)
		aabb.Min = tr.Position.Sub(half)
		aabb.Max = tr.Position.Add(half)
		return true
	})
}

func UpdateSpatialGridSystem(cmd *Commands, grid *SpatialHashGrid) {
	grid.Clear()

	MakeQuery1[AABBComponent](cmd).Map(func(id EntityId, aabb *AABBComponent) bool {
		grid.Insert(id, *aabb)
		return true
	})
}

// OverlapQuery returns, in id order, every entity whose collider overlaps
// the given box. Uses the spatial grid as broadphase and exact overlap as
// the narrow test.
func OverlapQuery(cmd *Commands, grid *SpatialHashGrid, pos, size mgl32.Vec2) []EntityId {
	half := size.Mul(0.5)
	candidates := grid.QueryAABB(AABBComponent{Min: pos.Sub(half), Max: pos.Add(half)})

	var hits []EntityId
	for _, id := range candidates {
		var tr TransformComponent
		var col ColliderComponent
		var hasTr, hasCol bool
		for _, comp := range cmd.GetAllComponents(id) {
			switch c := comp.(type) {
			case TransformComponent:
				tr, hasTr = c, true
			case ColliderComponent:
				col, hasCol = c, true
			}
		}
		if hasTr && hasCol && IsOverlapping(pos, size, tr.Position, col.Size) {
			hits = append(hits, id)
		}
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })
	return hits
}
