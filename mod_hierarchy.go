package kite

import (
	"github.com/go-gl/mathgl/mgl32"
)

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// TransformHierarchySystem derives the world transform of every parented
// entity from its parent's world transform: translation, rotation and
// mirroring composed. Parents resolve before children; deep chains settle
// over multiple passes, stopping as soon as a pass changes nothing.
func TransformHierarchySystem(cmd *Commands) {
PassLoop:
	for pass := 0; pass < 8; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			// Get parent's world transform
			allComps := cmd.GetAllComponents(parent.Entity)
			var parentWorld *TransformComponent
			for _, c := range allComps {
				if pw, ok := c.(TransformComponent); ok {
					parentWorld = &pw
					break
				}
			}

			if parentWorld != nil {
				// WorldPos = ParentPos + ParentRot * (ParentMirror * LocalPos)
				mirrored := mgl32.Vec2{local.Position.X() * parentWorld.MirrorSign(), local.Position.Y()}
				newPos := parentWorld.Position.Add(rotateVec2(mirrored, parentWorld.Angle))

				// WorldAngle = ParentAngle + ParentMirror * LocalAngle
				newAngle := parentWorld.Angle + parentWorld.MirrorSign()*local.Angle

				// Mirroring composes as xor
				newMirror := parentWorld.Mirror != local.Mirror

				if newPos != world.Position || newAngle != world.Angle || newMirror != world.Mirror {
					world.Position = newPos
					world.Angle = newAngle
					world.Mirror = newMirror
					changed = true
				}
			}
			return true
		})
		if !changed {
			break PassLoop
		}
	}
}
