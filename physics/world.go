// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"log/slog"

	"github.com/gazed/rigid2d/math2d"
	"github.com/google/uuid"
)

// world.go implements spec.md §4.9 (the World::Step orchestrator) and
// the body/fixture/joint creation API bodies and fixtures are reached
// through. Grounded on the teacher's eng.go/simulation.go Step loop
// shape (integrate, resolve, synchronize) generalized to the spec's
// ordered broad-phase/collide/solve/TOI/synchronize pipeline.

// World owns every body, fixture, joint, and contact, and advances them
// one Step at a time. The zero value is not usable; construct with
// NewWorld.
type World struct {
	id uuid.UUID

	bodies   *arena[Body]
	fixtures *arena[Fixture]
	joints   *arena[Joint]
	contacts *arena[Contact]

	contactManager *ContactManager

	gravity math2d.Vec2
	conf    StepConf

	contactFilter       ContactFilter
	contactListener     ContactListener
	destructionListener DestructionListener

	hasNewFixtures  bool
	autoClearForces bool
	locked          bool

	logger *slog.Logger
}

// NewWorld constructs a World with the given gravity and options (the
// teacher's vu.Attr functional-options pattern, config.go), returning an
// error if the resulting StepConf fails Validate (§7 "Configuration
// out-of-range").
func NewWorld(gravity math2d.Vec2, opts ...WorldOption) (*World, error) {
	id := uuid.New()
	w := &World{
		id:              id,
		bodies:          newArena[Body](),
		fixtures:        newArena[Fixture](),
		joints:          newArena[Joint](),
		gravity:         gravity,
		conf:            DefaultStepConf(),
		autoClearForces: true,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	// Tag every record this world emits with its instance id (see
	// WithLogger in settings.go, which runs in the options loop above, before
	// this, so a caller-supplied logger still gets the id attached) so a host running many worlds at
	// once can tell which one logged what.
	w.logger = w.logger.With("world", id.String())
	if err := w.conf.Validate(); err != nil {
		return nil, err
	}
	w.contactManager = newContactManager(w, w.conf.AABBExtension, w.conf.AABBMultiplier)
	w.contactManager.filter = w.contactFilter
	w.contactManager.listener = w.contactListener
	w.contacts = w.contactManager.contacts
	return w, nil
}

// ID returns the world's instance id, useful for correlating its log
// records across a host running multiple worlds at once.
func (w *World) ID() uuid.UUID { return w.id }

func (w *World) checkUnlocked(op string) {
	if w.locked {
		violate(op, "cannot mutate the world from inside a Step call or listener callback")
	}
}

// CreateBody adds a new body to the world.
func (w *World) CreateBody(def BodyDef) BodyHandle {
	w.checkUnlocked("CreateBody")
	b := newBody(def)
	h := BodyHandle{h: w.bodies.create(*b)}
	return h
}

// DestroyBody removes a body along with every fixture and joint attached
// to it, notifying the DestructionListener for each (§4.3's implicit
// destruction note).
func (w *World) DestroyBody(h BodyHandle) {
	w.checkUnlocked("DestroyBody")
	b, ok := w.bodies.get(h.h)
	if !ok {
		violate("DestroyBody", "stale or already-destroyed body handle")
	}

	for _, ch := range append([]ContactHandle(nil), b.contacts...) {
		w.contactManager.destroy(ch)
	}
	for _, je := range append([]JointEdge(nil), b.jointEdges...) {
		w.destroyJointInternal(je.Joint)
	}
	for _, fh := range append([]FixtureHandle(nil), b.fixtures...) {
		w.destroyFixtureInternal(fh, b)
	}

	w.bodies.destroy(h.h)
}

// CreateFixture attaches a new fixture to body, seeding its broad-phase
// proxies and recomputing the body's mass data.
func (w *World) CreateFixture(body BodyHandle, def FixtureDef) FixtureHandle {
	w.checkUnlocked("CreateFixture")
	b, ok := w.bodies.get(body.h)
	if !ok {
		violate("CreateFixture", "stale or already-destroyed body handle")
	}
	if def.Shape == nil {
		violate("CreateFixture", "fixture shape must not be nil")
	}

	f := newFixture(body, def)
	fh := FixtureHandle{h: w.fixtures.create(*f)}
	stored, _ := w.fixtures.get(fh.h)
	b.fixtures = append(b.fixtures, fh)

	w.contactManager.createProxies(fh, stored, b.xf)
	w.hasNewFixtures = true

	w.recomputeMass(body, b)
	return fh
}

// DestroyFixture removes a fixture from its body.
func (w *World) DestroyFixture(h FixtureHandle) {
	w.checkUnlocked("DestroyFixture")
	f, ok := w.fixtures.get(h.h)
	if !ok {
		violate("DestroyFixture", "stale or already-destroyed fixture handle")
	}
	b, ok := w.bodies.get(f.body.h)
	if !ok {
		violate("DestroyFixture", "fixture's owning body no longer exists")
	}
	w.destroyFixtureInternal(h, b)
	w.recomputeMass(f.body, b)
}

func (w *World) destroyFixtureInternal(h FixtureHandle, b *Body) {
	f, ok := w.fixtures.get(h.h)
	if !ok {
		return
	}
	var remaining []ContactHandle
	for _, ch := range b.contacts {
		c, ok := w.contacts.get(ch.h)
		if ok && (c.fixtureA == h || c.fixtureB == h) {
			w.contactManager.destroy(ch)
			continue
		}
		remaining = append(remaining, ch)
	}
	b.contacts = remaining

	w.contactManager.destroyProxies(f)
	for i, fh := range b.fixtures {
		if fh == h {
			b.fixtures = append(b.fixtures[:i], b.fixtures[i+1:]...)
			break
		}
	}
	if w.destructionListener != nil {
		w.destructionListener.FixtureDestroyed(h)
	}
	w.fixtures.destroy(h.h)
}

func (w *World) recomputeMass(bh BodyHandle, b *Body) {
	fixtures := make([]*Fixture, 0, len(b.fixtures))
	for _, fh := range b.fixtures {
		if f, ok := w.fixtures.get(fh.h); ok {
			fixtures = append(fixtures, f)
		}
	}
	b.resetMassData(fixtures)
}

// createJoint is the shared path CreateDistanceJoint/CreateRevoluteJoint
// funnel through: register the joint, wire both bodies' adjacency, and
// wake them.
func (w *World) createJoint(j Joint, a, b BodyHandle) JointHandle {
	w.checkUnlocked("CreateJoint")
	if a == b {
		violate("CreateJoint", "a joint cannot connect a body to itself")
	}
	bodyA, okA := w.bodies.get(a.h)
	bodyB, okB := w.bodies.get(b.h)
	if !okA || !okB {
		violate("CreateJoint", "stale or already-destroyed body handle")
	}

	jh := JointHandle{h: w.joints.create(j)}
	bodyA.jointEdges = append(bodyA.jointEdges, JointEdge{Other: b, Joint: jh})
	bodyB.jointEdges = append(bodyB.jointEdges, JointEdge{Other: a, Joint: jh})
	bodyA.setAwake(true)
	bodyB.setAwake(true)
	return jh
}

// CreateDistanceJoint adds a DistanceJoint to the world.
func (w *World) CreateDistanceJoint(def DistanceJointDef) JointHandle {
	return w.createJoint(newDistanceJoint(def), def.BodyA, def.BodyB)
}

// CreateRevoluteJoint adds a RevoluteJoint to the world.
func (w *World) CreateRevoluteJoint(def RevoluteJointDef) JointHandle {
	return w.createJoint(newRevoluteJoint(def), def.BodyA, def.BodyB)
}

// DestroyJoint removes a joint from the world.
func (w *World) DestroyJoint(h JointHandle) {
	w.checkUnlocked("DestroyJoint")
	w.destroyJointInternal(h)
}

func (w *World) destroyJointInternal(h JointHandle) {
	j, ok := w.joints.get(h.h)
	if !ok {
		return
	}
	jv := *j
	for _, bh := range []BodyHandle{jv.bodyA(), jv.bodyB()} {
		if b, ok := w.bodies.get(bh.h); ok {
			b.jointEdges = removeJointEdge(b.jointEdges, h)
			b.setAwake(true)
		}
	}
	if w.destructionListener != nil {
		w.destructionListener.JointDestroyed(h)
	}
	w.joints.destroy(h.h)
}

func removeJointEdge(edges []JointEdge, h JointHandle) []JointEdge {
	for i, e := range edges {
		if e.Joint == h {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// Step advances the simulation by dt seconds: find contacts for fixtures
// added since the last step, refresh manifolds, solve islands, run TOI
// sweeps, synchronize fixtures and clear forces, then find new contacts.
// Forces and gravity are integrated inside each island's solve, after the
// manifolds are refreshed; there is no integration pass before collide.
func (w *World) Step(dt float64) StepStats {
	w.checkUnlocked("Step")
	var stats StepStats
	if dt <= 0 {
		return stats
	}

	w.locked = true
	defer func() { w.locked = false }()

	conf := w.conf.withDt(dt)
	w.conf = conf

	if w.hasNewFixtures {
		w.contactManager.findNewContacts()
		w.hasNewFixtures = false
	}

	_, destroyed, touching := w.contactManager.collide(conf)
	stats.ContactsDestroyed = destroyed
	stats.TouchingContacts = touching

	islands := buildIslands(w)
	stats.IslandCount = len(islands)
	for _, isl := range islands {
		solveIsland(w, isl, w.gravity, conf, &stats)
	}

	if conf.DoToi {
		w.solveToi(conf, &stats)
	}

	w.bodies.each(func(_ handle, b *Body) {
		xf0 := b.sweep.Transform(0)
		for _, fh := range b.fixtures {
			if f, ok := w.fixtures.get(fh.h); ok {
				w.contactManager.synchronize(f, xf0, b.xf)
			}
		}
		if w.autoClearForces {
			b.force = math2d.Zero2
			b.torque = 0
		}
	})

	stats.ContactsCreated = w.contactManager.findNewContacts()

	if stats.RegPositionUnsolvedIslands > 0 {
		w.logger.Warn("position solver did not converge", "islands", stats.RegPositionUnsolvedIslands)
	}
	if stats.ToiRootFinderFailures > 0 {
		w.logger.Warn("toi root finder exhausted iterations", "count", stats.ToiRootFinderFailures)
	}

	return stats
}

// QueryAABB visits every fixture whose broad-phase proxy overlaps aabb.
func (w *World) QueryAABB(aabb AABB, cb func(FixtureHandle) bool) {
	w.contactManager.broadPhase.Query(aabb, func(proxyID int32) bool {
		ref := w.contactManager.proxyRefs[w.contactManager.broadPhase.GetUserData(proxyID)]
		return cb(ref.fixture)
	})
}

// RayCastResult is one fixture hit reported by RayCast.
type RayCastResult struct {
	Fixture  FixtureHandle
	Point    math2d.Vec2
	Normal   math2d.Vec2
	Fraction float64
}

// RayCast casts a segment through the world. cb is invoked per hit in
// broad-phase tree order (not sorted by distance); it returns the new
// maxFraction to continue searching with a tighter bound, 0 to stop, or
// a negative value to ignore this fixture and keep the current bound.
func (w *World) RayCast(p1, p2 math2d.Vec2, cb func(RayCastResult) float64) {
	w.contactManager.broadPhase.RayCast(p1, p2, 1.0, func(proxyID int32, maxFraction float64) float64 {
		ref := w.contactManager.proxyRefs[w.contactManager.broadPhase.GetUserData(proxyID)]
		f, ok := w.fixtures.get(ref.fixture.h)
		if !ok {
			return -1
		}
		b, ok := w.bodies.get(f.body.h)
		if !ok {
			return -1
		}
		input := RayCastInput{P1: p1, P2: p2, MaxFraction: maxFraction}
		out := f.shape.RayCast(input, b.xf, ref.childIndex)
		if !out.Hit {
			return -1
		}
		point := math2d.Add(p1, math2d.Scale(math2d.Sub(p2, p1), out.Fraction))
		return cb(RayCastResult{Fixture: ref.fixture, Point: point, Normal: out.Normal, Fraction: out.Fraction})
	})
}

// ShiftOrigin moves the world's coordinate origin to newOrigin, useful
// for games that keep the camera's area of interest near (0,0) to
// preserve floating-point precision over long play sessions (ported from
// original_source/Box2D's b2World::ShiftOrigin).
func (w *World) ShiftOrigin(newOrigin math2d.Vec2) {
	w.checkUnlocked("ShiftOrigin")
	w.bodies.each(func(_ handle, b *Body) {
		b.xf.Position = math2d.Sub(b.xf.Position, newOrigin)
		b.sweep.C0 = math2d.Sub(b.sweep.C0, newOrigin)
		b.sweep.C1 = math2d.Sub(b.sweep.C1, newOrigin)
	})
	w.contactManager.broadPhase.ShiftOrigin(newOrigin)
}
