package kite

import (
	"encoding/json"
	"os"

	"github.com/go-gl/mathgl/mgl32"
)

// Presets snapshot the physical entities of a world to JSON and restore
// them later with fresh entity ids. Tile grids are not part of a preset;
// they belong to the LevelServer.

type EntityData struct {
	ID       EntityId   `json:"id"`
	Position mgl32.Vec2 `json:"position"`
	Angle    float32    `json:"angle"`
	Mirror   bool       `json:"mirror,omitempty"`

	HasLocal    bool       `json:"has_local,omitempty"`
	LocalPos    mgl32.Vec2 `json:"local_position,omitempty"`
	LocalAngle  float32    `json:"local_angle,omitempty"`
	LocalMirror bool       `json:"local_mirror,omitempty"`

	HasParent bool     `json:"has_parent,omitempty"`
	ParentID  EntityId `json:"parent_id,omitempty"`

	HasBody       bool       `json:"has_body,omitempty"`
	Velocity      mgl32.Vec2 `json:"velocity,omitempty"`
	AngleVelocity float32    `json:"angle_velocity,omitempty"`
	Mass          float32    `json:"mass,omitempty"`
	Damping       float32    `json:"damping,omitempty"`
	AngleDamping  float32    `json:"angle_damping,omitempty"`
	GravityScale  float32    `json:"gravity_scale,omitempty"`

	HasCollider    bool       `json:"has_collider,omitempty"`
	Size           mgl32.Vec2 `json:"size,omitempty"`
	Elasticity     float32    `json:"elasticity,omitempty"`
	Friction       float32    `json:"friction,omitempty"`
	IsSolid        bool       `json:"is_solid,omitempty"`
	CollideObjects bool       `json:"collide_objects,omitempty"`
	CollideTiles   bool       `json:"collide_tiles,omitempty"`
	CollideRays    bool       `json:"collide_rays,omitempty"`
}

type PresetData struct {
	Entities []EntityData `json:"entities"`
}

func SavePreset(cmd *Commands, filename string) error {
	var entities []EntityData

	MakeQuery1[TransformComponent](cmd).Map(func(eid EntityId, tr *TransformComponent) bool {
		data := EntityData{
			ID:       eid,
			Position: tr.Position,
			Angle:    tr.Angle,
			Mirror:   tr.Mirror,
		}

		for _, c := range cmd.GetAllComponents(eid) {
			switch comp := c.(type) {
			case LocalTransformComponent:
				data.HasLocal = true
				data.LocalPos = comp.Position
				data.LocalAngle = comp.Angle
				data.LocalMirror = comp.Mirror
			case Parent:
				data.HasParent = true
				data.ParentID = comp.Entity
			case BodyComponent:
				data.HasBody = true
				data.Velocity = comp.Velocity
				data.AngleVelocity = comp.AngleVelocity
				data.Mass = comp.Mass
				data.Damping = comp.Damping
				data.AngleDamping = comp.AngleDamping
				data.GravityScale = comp.GravityScale
			case ColliderComponent:
				data.HasCollider = true
				data.Size = comp.Size
				data.Elasticity = comp.Elasticity
				data.Friction = comp.Friction
				data.IsSolid = comp.IsSolid
				data.CollideObjects = comp.CollideObjects
				data.CollideTiles = comp.CollideTiles
				data.CollideRays = comp.CollideRays
			}
		}

		entities = append(entities, data)
		return true
	})

	preset := PresetData{Entities: entities}
	bytes, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(filename, bytes, 0644)
}

func LoadPreset(cmd *Commands, filename string) ([]EntityId, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	var preset PresetData
	if err := json.Unmarshal(bytes, &preset); err != nil {
		return nil, err
	}

	// Saved ids are only used to reconnect the hierarchy; spawned entities
	// get fresh ones.
	idMap := make(map[EntityId]EntityId)
	var newEntities []EntityId

	for _, data := range preset.Entities {
		components := []any{
			&TransformComponent{
				Position: data.Position,
				Angle:    data.Angle,
				Mirror:   data.Mirror,
			},
		}

		if data.HasLocal {
			components = append(components, &LocalTransformComponent{
				Position: data.LocalPos,
				Angle:    data.LocalAngle,
				Mirror:   data.LocalMirror,
			})
		}

		if data.HasBody {
			components = append(components, &BodyComponent{
				Velocity:      data.Velocity,
				AngleVelocity: data.AngleVelocity,
				Mass:          data.Mass,
				Damping:       data.Damping,
				AngleDamping:  data.AngleDamping,
				GravityScale:  data.GravityScale,
			})
		}

		if data.HasCollider {
			components = append(components, &ColliderComponent{
				Size:           data.Size,
				Elasticity:     data.Elasticity,
				Friction:       data.Friction,
				IsSolid:        data.IsSolid,
				CollideObjects: data.CollideObjects,
				CollideTiles:   data.CollideTiles,
				CollideRays:    data.CollideRays,
			})
		}

		newEid := cmd.AddEntity(components...)
		idMap[data.ID] = newEid
		newEntities = append(newEntities, newEid)
	}

	// Second pass: restore hierarchy against the remapped ids.
	for _, data := range preset.Entities {
		if data.HasParent {
			if newChild, okC := idMap[data.ID]; okC {
				if newParent, okP := idMap[data.ParentID]; okP {
					cmd.AddComponents(newChild, &Parent{Entity: newParent})
				}
			}
		}
	}

	return newEntities, nil
}
