package kite

import (
	"math"
	"math/rand"
	"reflect"

	"github.com/go-gl/mathgl/mgl32"
)

// ParticleEmitterComponent controls a CPU-simulated particle emitter.
// Particles are simulation-only; the debug renderer draws them when
// present, a game renderer can read the pools through EmitterParticles.
type ParticleEmitterComponent struct {
	Enabled bool

	MaxParticles int

	SpawnRate       float32    // particles per second
	LifetimeRange   [2]float32 // seconds (min,max)
	StartSpeedRange [2]float32 // units/sec (min,max)
	StartSizeRange  [2]float32 // world units (min,max)
	StartColorMin   [4]float32 // RGBA min (0..1)
	StartColorMax   [4]float32 // RGBA max (0..1)
	// GravityScale scales the world gravity applied to particles.
	GravityScale float32
	Drag         float32 // per-second linear drag
	// EmitAngle is the center of the emission cone in radians; EmitSpread
	// the half-angle around it. Spread of Pi emits in all directions.
	EmitAngle  float32
	EmitSpread float32
}

// Internal pool per emitter (SoA, swap-remove on death)
type particlePool struct {
	pos   []mgl32.Vec2
	vel   []mgl32.Vec2
	age   []float32
	life  []float32
	size  []float32
	color [][4]float32

	alive    int
	spawnAcc float32
	capacity int
}

// ParticleState owns the per-emitter pools and the emitter RNG. A resource
// rather than per-component state so pools survive archetype moves.
type ParticleState struct {
	pools map[EntityId]*particlePool
	rng   *rand.Rand
}

func NewParticleState() *ParticleState {
	return &ParticleState{
		pools: make(map[EntityId]*particlePool),
		rng:   rand.New(rand.NewSource(1)),
	}
}

func (state *ParticleState) Seed(seed int64) {
	state.rng = rand.New(rand.NewSource(seed))
}

// EmitterParticles returns the live particle positions of an emitter, for
// renderers. Nil when the emitter has no pool yet.
func (state *ParticleState) EmitterParticles(eid EntityId) []mgl32.Vec2 {
	pl, ok := state.pools[eid]
	if !ok {
		return nil
	}
	return pl.pos[:pl.alive]
}

func (state *ParticleState) ensurePool(eid EntityId, capacity int) *particlePool {
	pl, ok := state.pools[eid]
	if !ok {
		pl = &particlePool{}
		state.pools[eid] = pl
	}
	if capacity <= 0 {
		capacity = 1
	}
	if pl.capacity != capacity || pl.pos == nil {
		pl.capacity = capacity
		pl.pos = make([]mgl32.Vec2, capacity)
		pl.vel = make([]mgl32.Vec2, capacity)
		pl.age = make([]float32, capacity)
		pl.life = make([]float32, capacity)
		pl.size = make([]float32, capacity)
		pl.color = make([][4]float32, capacity)
		pl.alive = 0
		pl.spawnAcc = 0
	}
	return pl
}

// ParticlesModule requires PhysicsModule (gravity) and must be installed
// after DebugDrawModule to get debug rendering of particles; without a
// debug surface the particles are simulated but not drawn.
type ParticlesModule struct{}

func (ParticlesModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewParticleState())

	app.UseSystem(
		System(particleUpdateSystem).
			InStage(PostUpdate).
			RunAlways(),
	)
	if _, ok := app.resources[reflect.TypeOf(DebugDraw{})]; ok {
		app.UseSystem(
			System(particleDrawSystem).
				InStage(Render).
				RunAlways(),
		)
	}
}

func particleUpdateSystem(cmd *Commands, time *Time, physics *PhysicsWorld, state *ParticleState) {
	dt := float32(time.Dt)
	if dt <= 0 {
		return
	}

	seen := make(set[EntityId])
	MakeQuery2[TransformComponent, ParticleEmitterComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, em *ParticleEmitterComponent) bool {
		seen[eid] = struct{}{}
		pl := state.ensurePool(eid, em.MaxParticles)

		// Age, move, retire.
		for i := 0; i < pl.alive; {
			pl.age[i] += dt
			if pl.age[i] >= pl.life[i] {
				last := pl.alive - 1
				pl.pos[i] = pl.pos[last]
				pl.vel[i] = pl.vel[last]
				pl.age[i] = pl.age[last]
				pl.life[i] = pl.life[last]
				pl.size[i] = pl.size[last]
				pl.color[i] = pl.color[last]
				pl.alive = last
				continue
			}
			pl.vel[i] = pl.vel[i].Add(physics.Gravity.Mul(em.GravityScale * dt))
			if em.Drag > 0 {
				damp := 1 - em.Drag*dt
				if damp < 0 {
					damp = 0
				}
				pl.vel[i] = pl.vel[i].Mul(damp)
			}
			pl.pos[i] = pl.pos[i].Add(pl.vel[i].Mul(dt))
			i++
		}

		if !em.Enabled {
			return true
		}

		// Spawn, carrying the fractional remainder across ticks.
		pl.spawnAcc += em.SpawnRate * dt
		for pl.spawnAcc >= 1 && pl.alive < pl.capacity {
			pl.spawnAcc -= 1
			spawnParticle(state, pl, tr, em)
		}
		if pl.spawnAcc >= 1 {
			pl.spawnAcc = 0 // pool full, drop the backlog
		}
		return true
	})

	// Drop pools whose emitter is gone.
	for eid := range state.pools {
		if _, ok := seen[eid]; !ok {
			delete(state.pools, eid)
		}
	}
}

func spawnParticle(state *ParticleState, pl *particlePool, tr *TransformComponent, em *ParticleEmitterComponent) {
	i := pl.alive
	pl.alive++

	angle := tr.Angle + em.EmitAngle + (state.rng.Float32()*2-1)*em.EmitSpread
	speed := randRange(state.rng, em.StartSpeedRange)

	pl.pos[i] = tr.Position
	pl.vel[i] = mgl32.Vec2{
		float32(math.Cos(float64(angle))) * speed,
		float32(math.Sin(float64(angle))) * speed,
	}
	pl.age[i] = 0
	pl.life[i] = randRange(state.rng, em.LifetimeRange)
	if pl.life[i] <= 0 {
		pl.life[i] = 1
	}
	pl.size[i] = randRange(state.rng, em.StartSizeRange)
	for c := 0; c < 4; c++ {
		pl.color[i][c] = em.StartColorMin[c] + state.rng.Float32()*(em.StartColorMax[c]-em.StartColorMin[c])
	}
}

func randRange(rng *rand.Rand, r [2]float32) float32 {
	if r[1] <= r[0] {
		return r[0]
	}
	return r[0] + rng.Float32()*(r[1]-r[0])
}

func particleDrawSystem(cmd *Commands, state *ParticleState, debug *DebugDraw) {
	r := debug.Renderer
	if r == nil {
		return
	}

	MakeQuery1[ParticleEmitterComponent](cmd).Map(func(eid EntityId, em *ParticleEmitterComponent) bool {
		pl, ok := state.pools[eid]
		if !ok {
			return true
		}
		for i := 0; i < pl.alive; i++ {
			r.DrawCircle(pl.pos[i], pl.size[i]/2, pl.color[i])
		}
		return true
	})
}
