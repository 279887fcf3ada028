package kite

type Commands struct {
	app *App
}

func (cmd *Commands) ChangeState(newState State) *Commands {
	cmd.app.changeState(newState)
	return cmd
}

func (cmd *Commands) AddResources(resources ...any) *Commands {
	cmd.app.addResources(resources...)
	return cmd
}

func (cmd *Commands) AddEntity(components ...any) EntityId {
	eid := cmd.app.ecs.nextEntityId()
	cmd.app.pendingAdditions = append(cmd.app.pendingAdditions, pendingAdd{
		eid:        eid,
		components: components,
	})
	return eid
}

func (cmd *Commands) AddComponents(entityId EntityId, components ...any) {
	cmd.app.pendingCompAdds = append(cmd.app.pendingCompAdds, pendingCompAdd{
		eid:        entityId,
		components: components,
	})
}

func (cmd *Commands) RemoveEntity(entityId EntityId) {
	cmd.app.pendingRemovals = append(cmd.app.pendingRemovals, entityId)
}

// RemoveEntityTree removes an entity plus, recursively, every entity whose
// Parent component points at it. Like RemoveEntity the removals are buffered
// until the stage boundary, so destroying a body mid-resolution never
// mutates the set the resolvers are iterating.
func (cmd *Commands) RemoveEntityTree(entityId EntityId) {
	cmd.RemoveEntity(entityId)

	MakeQuery1[Parent](cmd).Map(func(child EntityId, p *Parent) bool {
		if p.Entity == entityId {
			cmd.RemoveEntityTree(child)
		}
		return true
	})
}

// PendingRemoval reports whether the entity has been scheduled for removal
// this stage. Resolvers use it to skip obstacles destroyed mid-tick.
func (cmd *Commands) PendingRemoval(entityId EntityId) bool {
	for _, eid := range cmd.app.pendingRemovals {
		if eid == entityId {
			return true
		}
	}
	return false
}

// Alive reports whether the entity exists and is not scheduled for removal.
func (cmd *Commands) Alive(entityId EntityId) bool {
	return cmd.app.ecs.hasEntity(entityId) && !cmd.PendingRemoval(entityId)
}

func (cmd *Commands) GetAllComponents(entityId EntityId) []any {
	ecs := cmd.app.ecs
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return nil
	}
	arch := ecs.archetypes[archId]

	row := arch.entities[entityId]

	var res []any
	for _, componentsSlice := range arch.componentData {
		val := reflectSliceGet(componentsSlice, int(row))
		res = append(res, val.Interface())
	}
	return res
}
