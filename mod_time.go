package kite

import (
	"time"
)

// Time is the per-tick clock resource. Dt is in seconds. When FixedDt is
// set the simulation advances by that amount every tick regardless of wall
// clock, which keeps physics deterministic.
type Time struct {
	Time    time.Time
	Dt      float64
	FixedDt float64
}

type TimeModule struct {
	// FixedDt > 0 selects a fixed tick duration (e.g. 1.0/60).
	FixedDt float64
}

func (mod TimeModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(&Time{
		Time:    time.Now(),
		Dt:      0,
		FixedDt: mod.FixedDt,
	})
	app.UseSystem(
		System(timeSystem).
			InStage(Prelude).
			RunAlways(),
	)
}

func timeSystem(timeResource *Time) {
	now := time.Now()

	if timeResource.FixedDt > 0 {
		timeResource.Dt = timeResource.FixedDt
	} else {
		timeResource.Dt = now.Sub(timeResource.Time).Seconds()
	}
	timeResource.Time = now
}
