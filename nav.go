package kite

import (
	"container/heap"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Pathfinding over a TileGrid. Cells with code 0 are walkable; a custom
// walkable filter can widen that (e.g. treat ladder codes as walkable).
// Paths connect cell centers with 8-way movement; diagonal steps are only
// allowed when both adjacent cardinal cells are walkable, so a path never
// cuts a corner a body could not slide around.

type PathNode struct {
	X, Y    int
	G, F    float32
	Parent  *PathNode
	heapIdx int
}

type pathQueue []*PathNode

func (pq pathQueue) Len() int           { return len(pq) }
func (pq pathQueue) Less(i, j int) bool { return pq[i].F < pq[j].F }
func (pq pathQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].heapIdx = i
	pq[j].heapIdx = j
}

func (pq *pathQueue) Push(x any) {
	node := x.(*PathNode)
	node.heapIdx = len(*pq)
	*pq = append(*pq, node)
}

func (pq *pathQueue) Pop() any {
	old := *pq
	n := len(old)
	node := old[n-1]
	*pq = old[:n-1]
	return node
}

// FindPath runs A* from start to end (world positions) and returns the path
// as cell-center waypoints including both endpoints' cells, or nil when no
// path exists. A nil walkable treats only code 0 as walkable.
func (g *TileGrid) FindPath(start, end mgl32.Vec2, walkable func(code TileCode, cx, cy int) bool) []mgl32.Vec2 {
	isOpen := func(cx, cy int) bool {
		if !g.InBounds(cx, cy) {
			return false
		}
		code := g.Get(cx, cy)
		if walkable != nil {
			return walkable(code, cx, cy)
		}
		return code == 0
	}

	sx := int(math.Floor(float64(start.X())))
	sy := int(math.Floor(float64(start.Y())))
	ex := int(math.Floor(float64(end.X())))
	ey := int(math.Floor(float64(end.Y())))

	if !isOpen(sx, sy) || !isOpen(ex, ey) {
		return nil
	}

	open := &pathQueue{}
	heap.Init(open)

	startNode := &PathNode{X: sx, Y: sy, G: 0, F: pathHeuristic(sx, sy, ex, ey)}
	heap.Push(open, startNode)

	visited := map[[2]int]*PathNode{{sx, sy}: startNode}
	closed := make(set[[2]int])

	for open.Len() > 0 {
		current := heap.Pop(open).(*PathNode)
		if current.X == ex && current.Y == ey {
			return reconstructPath(current)
		}
		closed[[2]int{current.X, current.Y}] = struct{}{}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := current.X+dx, current.Y+dy
				if !isOpen(nx, ny) {
					continue
				}
				// No corner cutting on diagonals.
				if dx != 0 && dy != 0 {
					if !isOpen(current.X+dx, current.Y) || !isOpen(current.X, current.Y+dy) {
						continue
					}
				}
				if _, done := closed[[2]int{nx, ny}]; done {
					continue
				}

				stepCost := float32(1)
				if dx != 0 && dy != 0 {
					stepCost = float32(math.Sqrt2)
				}
				tentativeG := current.G + stepCost

				neighbor, seen := visited[[2]int{nx, ny}]
				if !seen {
					neighbor = &PathNode{X: nx, Y: ny, G: tentativeG, Parent: current}
					neighbor.F = tentativeG + pathHeuristic(nx, ny, ex, ey)
					visited[[2]int{nx, ny}] = neighbor
					heap.Push(open, neighbor)
				} else if tentativeG < neighbor.G {
					neighbor.G = tentativeG
					neighbor.F = tentativeG + pathHeuristic(nx, ny, ex, ey)
					neighbor.Parent = current
					heap.Fix(open, neighbor.heapIdx)
				}
			}
		}
	}

	return nil
}

func reconstructPath(node *PathNode) []mgl32.Vec2 {
	var rev []mgl32.Vec2
	for n := node; n != nil; n = n.Parent {
		rev = append(rev, mgl32.Vec2{float32(n.X) + 0.5, float32(n.Y) + 0.5})
	}
	path := make([]mgl32.Vec2, len(rev))
	for i := range rev {
		path[i] = rev[len(rev)-1-i]
	}
	return path
}

// Octile distance, admissible for 8-way movement.
func pathHeuristic(x1, y1, x2, y2 int) float32 {
	dx := absf(float32(x2 - x1))
	dy := absf(float32(y2 - y1))
	if dx < dy {
		dx, dy = dy, dx
	}
	return dx + (float32(math.Sqrt2)-1)*dy
}

// SteerSeek returns a velocity of the given speed pointing from currentPos
// toward targetPos, or zero when already there.
func SteerSeek(currentPos, targetPos mgl32.Vec2, maxSpeed float32) mgl32.Vec2 {
	desired := targetPos.Sub(currentPos)
	if l := desired.Len(); l > 1e-6 {
		return desired.Mul(maxSpeed / l)
	}
	return mgl32.Vec2{}
}

// LOSProbe reports whether the straight line between two points is free of
// blocking cells. Agents use it to skip waypoints they can see past.
func (g *TileGrid) LOSProbe(start, end mgl32.Vec2, accept func(code TileCode, cx, cy int) bool) bool {
	return !g.Raycast(start, end, accept).Hit
}
