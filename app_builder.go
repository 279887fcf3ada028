package kite

import (
	"reflect"
)

// NewApp returns a stateless App with the default stage set installed.
// Modules are added with UseModules, systems with UseSystem.
func NewApp() *App {
	ecs := MakeEcs()
	app := &App{
		systems:          make(map[string]map[State]map[statePhase][]systemFn),
		systemsStateless: make(map[string][]systemFn),
		resources:        make(map[reflect.Type]any),
		stateful:         false,
		ecs:              &ecs,
	}

	for _, stage := range []Stage{Prelude, PreUpdate, Update, PostUpdate, PreRender, Render, PostRender, Finale} {
		app.stages = append(app.stages, stage)
		app.initStatefulStage(stage)
	}

	return app
}

// UseStates switches the App to stateful mode. Must be called before any
// stateful system is registered.
func (app *App) UseStates(initialState State, finalState State) *App {
	app.stateful = true
	app.initialState = initialState
	app.finalState = finalState
	app.state = initialState

	for _, stage := range app.stages {
		app.initStatefulStage(stage)
	}

	return app
}

func (app *App) UseModules(modules ...Module) *App {
	cmd := app.Commands()
	for _, module := range modules {
		app.modules = append(app.modules, module)
		module.Install(app, cmd)
	}
	app.FlushCommands()

	return app
}
