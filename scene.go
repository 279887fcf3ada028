package kite

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Declarative scene description: levels, bodies and emitters spawned in one
// call. Games keep these in data files or build them in code; tests use
// them to stand up worlds compactly.

type SceneDef struct {
	Levels   []LevelDef
	Bodies   []BodyDef
	Emitters []EmitterDef
}

type LevelDef struct {
	Width    int
	Height   int
	Cells    []TileCode // row-major, row 0 at the bottom; nil for empty
	Friction float32
}

type BodyDef struct {
	Position mgl32.Vec2
	Angle    float32
	Size     mgl32.Vec2
	Mass     float32

	Elasticity float32
	Friction   float32

	Velocity mgl32.Vec2

	// Spawned entity gets a LifetimeComponent when > 0.
	Lifetime float32

	// DebugColor adds a gizmo rect when non-zero alpha.
	DebugColor [4]float32
}

type EmitterDef struct {
	Position mgl32.Vec2
	Emitter  ParticleEmitterComponent
}

// SceneResult maps definition indices to the spawned entities.
type SceneResult struct {
	Levels   []LevelId
	Layers   []EntityId
	Bodies   []EntityId
	Emitters []EntityId
}

// LoadScene spawns everything in the definition. Entities become visible to
// queries after the next command flush.
func LoadScene(cmd *Commands, levels *LevelServer, scene *SceneDef) (SceneResult, error) {
	var res SceneResult

	for _, def := range scene.Levels {
		var id LevelId
		var err error
		if def.Cells != nil {
			id, err = levels.LoadGrid(def.Width, def.Height, def.Cells)
			if err != nil {
				return res, err
			}
		} else {
			id = levels.CreateGrid(def.Width, def.Height)
		}
		layer, err := levels.SpawnLayer(cmd, id, def.Friction)
		if err != nil {
			return res, err
		}
		res.Levels = append(res.Levels, id)
		res.Layers = append(res.Layers, layer)
	}

	for _, def := range scene.Bodies {
		res.Bodies = append(res.Bodies, spawnBody(cmd, def))
	}

	for _, def := range scene.Emitters {
		eid := cmd.AddEntity(
			&TransformComponent{Position: def.Position},
			&def.Emitter,
		)
		res.Emitters = append(res.Emitters, eid)
	}

	return res, nil
}

func spawnBody(cmd *Commands, def BodyDef) EntityId {
	size := def.Size
	if size == (mgl32.Vec2{}) {
		size = mgl32.Vec2{1, 1}
	}

	body := NewBody(def.Mass)
	body.Velocity = def.Velocity

	col := NewCollider(size)
	col.SetElasticity(def.Elasticity)
	if def.Friction > 0 {
		col.SetFriction(def.Friction)
	}

	components := []any{
		&TransformComponent{Position: def.Position, Angle: def.Angle},
		&body,
		&col,
	}
	if def.Lifetime > 0 {
		components = append(components, &LifetimeComponent{TimeLeft: def.Lifetime})
	}
	if def.DebugColor[3] > 0 {
		components = append(components, NewGizmoRect(def.Position, size, def.Angle, def.DebugColor))
	}

	return cmd.AddEntity(components...)
}
