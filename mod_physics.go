package kite

// PhysicsModule installs the 2D physics simulation: the PhysicsWorld
// resource and the tick system in the Update stage. Games tune gravity and
// limits through the World field before UseModules, or by mutating the
// resource at runtime.
type PhysicsModule struct {
	World *PhysicsWorld
}

func (m PhysicsModule) Install(app *App, cmd *Commands) {
	world := m.World
	if world == nil {
		world = NewPhysicsWorld()
	}
	cmd.AddResources(world)

	app.UseSystem(
		System(PhysicsSystem).
			InStage(Update).
			RunAlways(),
	)
}
