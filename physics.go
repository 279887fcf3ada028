package kite

import (
	"math"
	"math/rand"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
)

// BodyComponent is the dynamic state of a physical entity. Mass 0 marks an
// immovable body: never integrated, never pushed, but still an obstacle.
type BodyComponent struct {
	Velocity      mgl32.Vec2
	AngleVelocity float32
	Mass          float32
	Damping       float32
	AngleDamping  float32
	GravityScale  float32

	// LastPos is the position before this tick's integration; the
	// resolvers test it to tell fresh collisions from stuck pairs.
	LastPos mgl32.Vec2
	// Ground is the entity (body or tile layer) currently stood on,
	// NoEntity when airborne. Reset each tick before resolution.
	Ground EntityId
}

// NewBody returns a body with neutral damping and full gravity. Mass below
// zero is treated as zero (immovable).
func NewBody(mass float32) BodyComponent {
	if mass < 0 {
		mass = 0
	}
	return BodyComponent{
		Mass:         mass,
		Damping:      1,
		AngleDamping: 1,
		GravityScale: 1,
	}
}

// SetDamping clamps to [0,1]; values outside the range are misuse, not data.
func (b *BodyComponent) SetDamping(d float32) {
	b.Damping = mgl32.Clamp(d, 0, 1)
}

func (b *BodyComponent) SetAngleDamping(d float32) {
	b.AngleDamping = mgl32.Clamp(d, 0, 1)
}

// ColliderComponent describes a body's collision shape (axis-aligned full
// extents, immune to rotation) and material response.
type ColliderComponent struct {
	Size       mgl32.Vec2
	Elasticity float32
	Friction   float32

	// IsSolid blocks other solid bodies; only meaningful when
	// CollideObjects is set.
	IsSolid        bool
	CollideObjects bool
	CollideTiles   bool
	CollideRays    bool
}

func NewCollider(size mgl32.Vec2) ColliderComponent {
	return ColliderComponent{
		Size:           size,
		Friction:       0.8,
		IsSolid:        true,
		CollideObjects: true,
		CollideTiles:   true,
	}
}

func (c *ColliderComponent) SetElasticity(e float32) {
	c.Elasticity = mgl32.Clamp(e, 0, 1)
}

func (c *ColliderComponent) SetFriction(f float32) {
	c.Friction = mgl32.Clamp(f, 0, 1)
}

// CollisionFilter carries optional per-body acceptance callbacks. A nil
// field keeps the default: every positive tile code blocks, every object
// collision is resolved, every raycast connects.
type CollisionFilter struct {
	// WithObject decides whether a collision between self and other should
	// be physically resolved. Consulted on both bodies of a pair.
	WithObject func(self, other EntityId) bool
	// WithTile decides whether a tile code blocks this body (ladders,
	// one-way platforms).
	WithTile func(code TileCode, cx, cy int) bool
	// WithRay decides whether a tile code stops this body's raycasts.
	WithRay func(code TileCode, cx, cy int) bool
}

// ClampMode selects how the global speed limit is applied.
type ClampMode int

const (
	// ClampPerAxis limits each velocity component independently.
	ClampPerAxis ClampMode = iota
	// ClampLength limits the velocity vector's magnitude.
	ClampLength
)

// PhysicsWorld is the simulation context resource: gravity, the
// anti-tunneling speed limit, and the master enable switch. Passing it
// explicitly (instead of package globals) keeps multiple worlds independent
// and tests hermetic.
type PhysicsWorld struct {
	Gravity  mgl32.Vec2
	MaxSpeed float32
	Clamp    ClampMode
	Enabled  bool
	// DebugDraw makes the render-stage debug system emit collider boxes.
	DebugDraw bool

	rng *rand.Rand
}

func NewPhysicsWorld() *PhysicsWorld {
	return &PhysicsWorld{
		Gravity:  mgl32.Vec2{0, -9.81},
		MaxSpeed: 60,
		Clamp:    ClampPerAxis,
		Enabled:  true,
		rng:      rand.New(rand.NewSource(1)),
	}
}

// Seed reseeds the RNG used for degenerate push-apart directions. The
// default seed makes stuck-pair resolution reproducible.
func (w *PhysicsWorld) Seed(seed int64) {
	w.rng = rand.New(rand.NewSource(seed))
}

func (w *PhysicsWorld) randDirection() mgl32.Vec2 {
	a := w.rng.Float64() * 2 * math.Pi
	return mgl32.Vec2{float32(math.Cos(a)), float32(math.Sin(a))}
}

const (
	// Separation added when pushing a body out of an obstacle, so the pair
	// is not at exactly zero distance next tick.
	collisionEpsilon = 1e-4
	// Gap left between a grounded body's bottom edge and the tile boundary.
	groundEpsilon = 1e-4
	// Acceleration applied per tick to already-overlapping pairs.
	pushApartAccel = 1e-3
)

// IsOverlapping reports whether two axis-aligned boxes given by center and
// full extents overlap. Usable outside the tick loop for gameplay queries.
func IsOverlapping(posA, sizeA, posB, sizeB mgl32.Vec2) bool {
	return absf(posA.X()-posB.X())*2 < sizeA.X()+sizeB.X() &&
		absf(posA.Y()-posB.Y())*2 < sizeA.Y()+sizeB.Y()
}

// IsIntersecting reports whether the segment from start to end crosses an
// axis-aligned box (center, full extents). Slab test.
func IsIntersecting(start, end, pos, size mgl32.Vec2) bool {
	d := end.Sub(start)
	tMin, tMax := float32(0), float32(1)

	for axis := 0; axis < 2; axis++ {
		lo := pos[axis] - size[axis]/2
		hi := pos[axis] + size[axis]/2
		if d[axis] == 0 {
			if start[axis] < lo || start[axis] > hi {
				return false
			}
			continue
		}
		inv := 1 / d[axis]
		t1 := (lo - start[axis]) * inv
		t2 := (hi - start[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tMin = maxf(tMin, t1)
		tMax = minf(tMax, t2)
		if tMin > tMax {
			return false
		}
	}
	return true
}

// ObjectRaycast returns, in id order, the entities whose colliders accept
// raycasts and whose box intersects the segment.
func ObjectRaycast(cmd *Commands, start, end mgl32.Vec2) []EntityId {
	var hits []EntityId
	MakeQuery2[TransformComponent, ColliderComponent](cmd).Map(func(eid EntityId, tr *TransformComponent, col *ColliderComponent) bool {
		if col.CollideRays && IsIntersecting(start, end, tr.Position, col.Size) {
			hits = append(hits, eid)
		}
		return true
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i] < hits[j] })
	return hits
}

// GridRaycast casts a segment against every tile layer through the given
// body's WithRay filter, returning the nearest accepted cell across layers.
// NoEntity, or a body without a filter, casts with the default acceptance
// (any positive code stops the ray). Used for per-body line of sight.
func GridRaycast(cmd *Commands, eid EntityId, start, end mgl32.Vec2) RaycastHit {
	var accept func(code TileCode, cx, cy int) bool
	if eid != NoEntity {
		for _, c := range cmd.GetAllComponents(eid) {
			if filter, ok := c.(CollisionFilter); ok {
				accept = filter.WithRay
			}
		}
	}

	var best RaycastHit
	MakeQuery1[TileLayerComponent](cmd).Map(func(_ EntityId, layer *TileLayerComponent) bool {
		if layer.Grid == nil {
			return true
		}
		hit := layer.Grid.Raycast(start, end, accept)
		if hit.Hit && (!best.Hit || hit.T < best.T) {
			best = hit
		}
		return true
	})
	return best
}

type bodyRef struct {
	Eid      EntityId
	Tr       *TransformComponent
	Body     *BodyComponent
	Col      *ColliderComponent
	Filter   *CollisionFilter
	Parented bool
}

type layerRef struct {
	Eid   EntityId
	Layer *TileLayerComponent
}

// PhysicsSystem advances every top-level body one tick: ground friction,
// speed clamp, damping, gravity, integration, then object-object and tile
// resolution. Bodies are visited in ascending EntityId (insertion order);
// with more than two interacting bodies the visiting order is part of the
// observable contract, so it must stay stable.
//
// Parented bodies are skipped here; TransformHierarchySystem derives their
// transforms in PostUpdate.
func PhysicsSystem(cmd *Commands, time *Time, physics *PhysicsWorld) {
	dt := float32(time.Dt)
	if dt <= 0 || dt > 1.0 { // Safety cap for dt
		return
	}

	parented := make(set[EntityId])
	MakeQuery1[Parent](cmd).Map(func(eid EntityId, p *Parent) bool {
		parented[eid] = struct{}{}
		return true
	})

	var bodies []bodyRef
	MakeQuery4[TransformComponent, BodyComponent, ColliderComponent, CollisionFilter](cmd).Map(func(eid EntityId, tr *TransformComponent, body *BodyComponent, col *ColliderComponent, filter *CollisionFilter) bool {
		_, isParented := parented[eid]
		bodies = append(bodies, bodyRef{eid, tr, body, col, filter, isParented})
		return true
	}, CollisionFilter{})
	sort.Slice(bodies, func(i, j int) bool { return bodies[i].Eid < bodies[j].Eid })

	var layers []layerRef
	MakeQuery1[TileLayerComponent](cmd).Map(func(eid EntityId, layer *TileLayerComponent) bool {
		layers = append(layers, layerRef{eid, layer})
		return true
	})
	sort.Slice(layers, func(i, j int) bool { return layers[i].Eid < layers[j].Eid })

	bodyByEid := make(map[EntityId]*bodyRef, len(bodies))
	for i := range bodies {
		bodyByEid[bodies[i].Eid] = &bodies[i]
	}
	layerByEid := make(map[EntityId]*layerRef, len(layers))
	for i := range layers {
		layerByEid[layers[i].Eid] = &layers[i]
	}

	for i := range bodies {
		b := &bodies[i]
		if b.Parented {
			continue
		}

		integrateBody(physics, b, bodyByEid, layerByEid, dt)

		if !physics.Enabled || b.Body.Mass <= 0 {
			continue
		}
		if b.Col.CollideObjects {
			resolveObjectCollisions(cmd, physics, bodies, b, dt)
		}
		if b.Col.CollideTiles {
			resolveTileCollisions(layers, b)
		}
	}
}

// integrateBody applies the per-tick velocity and position update from the
// body integrator contract. Immovable bodies only refresh LastPos.
func integrateBody(physics *PhysicsWorld, b *bodyRef, bodyByEid map[EntityId]*bodyRef, layerByEid map[EntityId]*layerRef, dt float32) {
	body := b.Body

	if body.Mass <= 0 {
		body.LastPos = b.Tr.Position
		return
	}

	// Ground friction from last tick's contact: blend horizontal velocity
	// toward the ground's, weighted by the higher friction of the pair.
	// The reference is cleared here and re-established only if the body is
	// still touching after resolution.
	if body.Ground != NoEntity {
		var groundVelX, groundFriction float32
		if g, ok := bodyByEid[body.Ground]; ok {
			groundVelX = g.Body.Velocity.X()
			groundFriction = g.Col.Friction
		} else if l, ok := layerByEid[body.Ground]; ok {
			groundFriction = l.Layer.Friction
		}
		w := mgl32.Clamp(maxf(b.Col.Friction, groundFriction), 0, 1)
		body.Velocity[0] += (groundVelX - body.Velocity.X()) * w
		body.Ground = NoEntity
	}

	// Speed clamp bounds per-tick displacement so thin obstacles are not
	// skipped over.
	switch physics.Clamp {
	case ClampLength:
		if l := body.Velocity.Len(); l > physics.MaxSpeed {
			body.Velocity = body.Velocity.Mul(physics.MaxSpeed / l)
		}
	default:
		body.Velocity[0] = mgl32.Clamp(body.Velocity.X(), -physics.MaxSpeed, physics.MaxSpeed)
		body.Velocity[1] = mgl32.Clamp(body.Velocity.Y(), -physics.MaxSpeed, physics.MaxSpeed)
	}

	body.Velocity[0] *= body.Damping
	body.Velocity[1] *= body.Damping
	body.Velocity = body.Velocity.Add(physics.Gravity.Mul(body.GravityScale * dt))

	// NaN/Inf check
	if vl := float64(body.Velocity.Len()); math.IsNaN(vl) || math.IsInf(vl, 0) {
		body.Velocity = mgl32.Vec2{}
	}

	body.LastPos = b.Tr.Position
	b.Tr.Position = b.Tr.Position.Add(body.Velocity.Mul(dt))

	body.AngleVelocity *= body.AngleDamping
	b.Tr.Angle += body.AngleVelocity * dt
}

// resolveObjectCollisions runs self against the whole collidable working
// set. The all-pairs scan and its visiting order are observable behavior;
// a broad phase must not change outcomes, so none is used here.
func resolveObjectCollisions(cmd *Commands, physics *PhysicsWorld, bodies []bodyRef, self *bodyRef, dt float32) {
	sizeA := self.Col.Size

	for j := range bodies {
		o := &bodies[j]
		if o.Eid == self.Eid {
			continue
		}
		if !o.Col.CollideObjects {
			continue
		}
		if !self.Col.IsSolid && !o.Col.IsSolid {
			continue
		}
		if o.Parented || cmd.PendingRemoval(o.Eid) {
			continue
		}
		if !IsOverlapping(self.Tr.Position, sizeA, o.Tr.Position, o.Col.Size) {
			continue
		}

		// Either side may veto physical resolution (one-way interactions).
		if self.Filter != nil && self.Filter.WithObject != nil && !self.Filter.WithObject(self.Eid, o.Eid) {
			continue
		}
		if o.Filter != nil && o.Filter.WithObject != nil && !o.Filter.WithObject(o.Eid, self.Eid) {
			continue
		}

		oldPos := self.Body.LastPos

		if IsOverlapping(oldPos, sizeA, o.Tr.Position, o.Col.Size) {
			// Already overlapping last tick: a stuck pair, not a fresh
			// hit. Accelerate the bodies apart instead of bouncing, so
			// they neither stick forever nor explode.
			deltaPos := oldPos.Sub(o.Tr.Position)
			length := deltaPos.Len()
			var push mgl32.Vec2
			if length < 0.01 {
				// Degenerate: effectively coincident, pick a direction.
				push = physics.randDirection().Mul(pushApartAccel)
			} else {
				push = deltaPos.Mul(pushApartAccel / length)
			}
			self.Body.Velocity = self.Body.Velocity.Add(push)
			if o.Body.Mass > 0 {
				o.Body.Velocity = o.Body.Velocity.Sub(push)
			}
			continue
		}

		sizeBoth := sizeA.Add(o.Col.Size)

		// Axis choice. smallStepUp lets a body walking into a ledge pop on
		// top of it: vertical overlap no deeper than this tick's gravity
		// step still counts as standing level with the obstacle. The
		// overlap tests at the previous position tell which axis was
		// actually crossed this tick.
		gravityStep := absf(physics.Gravity.Y()) * self.Body.GravityScale * dt * dt
		smallStepUp := (oldPos.Y()-o.Tr.Position.Y())*2 > sizeBoth.Y()-gravityStep
		hOverlapPrev := absf(oldPos.X()-o.Tr.Position.X())*2 < sizeBoth.X()
		vOverlapPrev := absf(oldPos.Y()-o.Tr.Position.Y())*2 < sizeBoth.Y()

		elasticity := maxf(self.Col.Elasticity, o.Col.Elasticity)
		wasMovingDown := self.Body.Velocity.Y() < 0

		if smallStepUp || hOverlapPrev || !vOverlapPrev { // resolve Y
			self.Tr.Position[1] = o.Tr.Position.Y() + (sizeBoth.Y()/2+collisionEpsilon)*signf(oldPos.Y()-o.Tr.Position.Y())

			if (o.Body.Ground != NoEntity && wasMovingDown) || o.Body.Mass <= 0 {
				// Fixed or grounded obstacle: plain bounce.
				if wasMovingDown {
					self.Body.Ground = o.Eid
				}
				self.Body.Velocity[1] *= -elasticity
			} else {
				v0, v1 := collisionResponse1D(
					self.Body.Velocity.Y(), self.Body.Mass,
					o.Body.Velocity.Y(), o.Body.Mass,
					elasticity,
				)
				self.Body.Velocity[1] = v0
				o.Body.Velocity[1] = v1
			}
		}
		if !smallStepUp && vOverlapPrev { // resolve X
			self.Tr.Position[0] = o.Tr.Position.X() + (sizeBoth.X()/2+collisionEpsilon)*signf(oldPos.X()-o.Tr.Position.X())

			if o.Body.Mass > 0 {
				v0, v1 := collisionResponse1D(
					self.Body.Velocity.X(), self.Body.Mass,
					o.Body.Velocity.X(), o.Body.Mass,
					elasticity,
				)
				self.Body.Velocity[0] = v0
				o.Body.Velocity[0] = v1
			} else {
				self.Body.Velocity[0] *= -elasticity
			}
		}
	}
}

// collisionResponse1D blends a fully inelastic response (shared momentum)
// with a fully elastic one (standard 1D formulas), using elasticity as the
// blend weight, and returns the new velocities of both bodies.
func collisionResponse1D(vA, mA, vB, mB, elasticity float32) (float32, float32) {
	total := mA + mB
	inelastic := (mA*vA + mB*vB) / total
	elasticA := vA*(mA-mB)/total + vB*2*mB/total
	elasticB := vB*(mB-mA)/total + vA*2*mA/total
	return lerpf(elasticity, inelastic, elasticA), lerpf(elasticity, inelastic, elasticB)
}

// resolveTileCollisions rolls the body back axis by axis against every tile
// layer it overlaps. A body whose previous position already collided is
// left alone: something placed inside terrain should not be fought with
// every tick.
func resolveTileCollisions(layers []layerRef, self *bodyRef) {
	size := self.Col.Size
	pos := self.Tr.Position
	oldPos := self.Body.LastPos

	var accept func(code TileCode, cx, cy int) bool
	if self.Filter != nil {
		accept = self.Filter.WithTile
	}

	for li := range layers {
		grid := layers[li].Layer.Grid
		if grid == nil {
			continue
		}
		if !grid.HitTest(pos, size, accept) {
			continue
		}
		if grid.HitTest(oldPos, size, accept) {
			continue
		}

		// Probe each axis separately to find which one was crossed.
		blockedY := grid.HitTest(mgl32.Vec2{oldPos.X(), pos.Y()}, size, accept)
		blockedX := grid.HitTest(mgl32.Vec2{pos.X(), oldPos.Y()}, size, accept)
		wasMovingDown := self.Body.Velocity.Y() < 0

		if blockedY || !blockedX {
			self.Body.Velocity[1] *= -self.Col.Elasticity

			if wasMovingDown {
				// Snap the bottom edge to just above the tile boundary so
				// no visible gap is left, and record the layer as ground.
				self.Tr.Position[1] = float32(math.Floor(float64(oldPos.Y()-size.Y()/2))) + size.Y()/2 + groundEpsilon
				self.Body.Ground = layers[li].Eid
			} else {
				self.Tr.Position[1] = oldPos.Y()
				self.Body.Ground = NoEntity
			}
		}
		if blockedX {
			self.Tr.Position[0] = oldPos.X()
			self.Body.Velocity[0] *= -self.Col.Elasticity
		}

		pos = self.Tr.Position
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}

func signf(v float32) float32 {
	if v > 0 {
		return 1
	}
	if v < 0 {
		return -1
	}
	return 0
}

func lerpf(t, a, b float32) float32 {
	return a + (b-a)*t
}
