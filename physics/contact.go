// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// contact.go implements spec.md §3's Contact and §4.3's lifecycle
// (narrow-phase dispatch, touching-state transitions, listener
// notification), grounded on the teacher's gazed-vu/physics/contact.go
// (which holds bodyA/bodyB, a world manifold, friction/restitution mix)
// generalized to the handle-based Fixture/Body model and the spec's
// manifold-driven touching test instead of the teacher's simple AABB
// overlap test.

type contactFlags uint8

const (
	contactTouching contactFlags = 1 << iota
	contactEnabled
	contactFiltered
	contactIsland
	contactToi // a valid cached TOI has been computed this step
)

// Contact is one persistent fixtureA/fixtureB pairing tracked across
// steps so manifold points (and their accumulated impulses) can be
// warm-started rather than recomputed from scratch.
type Contact struct {
	fixtureA, fixtureB FixtureHandle
	bodyA, bodyB       BodyHandle
	childA, childB     int

	manifold Manifold
	friction float64

	restitution          float64
	restitutionThreshold float64
	tangentSpeed         float64

	radiusA, radiusB float64

	flags contactFlags

	toi      float64
	toiCount int
}

func newContact(fixA, fixB FixtureHandle, bodyA, bodyB BodyHandle, childA, childB int, fA, fB *Fixture) *Contact {
	return &Contact{
		fixtureA: fixA, fixtureB: fixB,
		bodyA: bodyA, bodyB: bodyB,
		childA: childA, childB: childB,
		friction:             mixFriction(fA.friction, fB.friction),
		restitution:          mixRestitution(fA.restitution, fB.restitution),
		restitutionThreshold: maxF(fA.restitutionThreshold, fB.restitutionThreshold),
		radiusA:              shapeRadius(fA.shape),
		radiusB:              shapeRadius(fB.shape),
		flags:                contactEnabled,
	}
}

// mixFriction and mixRestitution follow Box2D's defaults: geometric mean
// for friction, max for restitution.
func mixFriction(a, b float64) float64 {
	if a*b <= 0 {
		return 0
	}
	return math.Sqrt(a * b)
}

func mixRestitution(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func (c *Contact) isTouching() bool { return c.flags&contactTouching != 0 }
func (c *Contact) isEnabled() bool  { return c.flags&contactEnabled != 0 }

// update recomputes c's manifold from the two fixtures' current
// transforms, carries matching points' impulses forward for warm starting,
// sets the touching flag, and dispatches BeginContact/EndContact (plus
// PreSolve for touching non-sensor pairs) when listener is non-nil. A
// sensor pair gets a distance-based touching test and an empty manifold,
// so it never generates impulses.
func (c *Contact) update(shapeA, shapeB Shape, xfA, xfB math2d.Transform, fA, fB *Fixture, conf StepConf, listener ContactListener) {
	oldManifold := c.manifold
	wasTouching := c.isTouching()

	touching := false
	sensor := fA.isSensor || fB.isSensor
	if sensor {
		pA := shapeA.GetChild(c.childA)
		pB := shapeB.GetChild(c.childB)
		var cache SimplexCache
		out := Distance(DistanceInput{ProxyA: pA, TransformA: xfA, ProxyB: pB, TransformB: xfB, UseRadii: true}, &cache, conf)
		touching = out.Distance < 10*math2d.Epsilon
		c.manifold = Manifold{}
	} else {
		c.manifold = CollideShapes(shapeA, c.childA, xfA, shapeB, c.childB, xfB)
		touching = c.manifold.PointCount > 0
		// Warm-start: carry forward accumulated impulses for points whose
		// feature matches a point from the previous step's manifold.
		for i := 0; i < c.manifold.PointCount; i++ {
			mp := &c.manifold.Points[i]
			mp.NormalImpulse = 0
			mp.TangentImpulse = 0
			for j := 0; j < oldManifold.PointCount; j++ {
				op := oldManifold.Points[j]
				if mp.Feature == op.Feature {
					mp.NormalImpulse = op.NormalImpulse
					mp.TangentImpulse = op.TangentImpulse
					break
				}
			}
		}
	}

	if touching {
		c.flags |= contactTouching
	} else {
		c.flags &^= contactTouching
	}

	if listener == nil {
		return
	}
	switch {
	case touching && !wasTouching:
		listener.BeginContact(c)
	case !touching && wasTouching:
		listener.EndContact(c)
	}
	if touching && !sensor {
		listener.PreSolve(c, oldManifold)
	}
}

// ContactFilter lets a host application veto a contact's creation
// entirely, beyond the fixture Filter bitmask test (§4.3).
type ContactFilter interface {
	ShouldCollide(fixtureA, fixtureB FixtureHandle) bool
}

// ContactListener receives the ordered callbacks described in spec.md §5:
// BeginContact/EndContact during Collide(), PreSolve before velocity
// iterations, PostSolve after. Implementations MUST NOT mutate the world.
type ContactListener interface {
	BeginContact(c *Contact)
	EndContact(c *Contact)
	PreSolve(c *Contact, oldManifold Manifold)
	PostSolve(c *Contact, impulse *ContactImpulse)
}

// ContactImpulse reports the per-point normal/tangent impulses applied
// during one contact's velocity solve, for PostSolve instrumentation
// (sound effects, damage, etc. in a host application).
type ContactImpulse struct {
	NormalImpulses  [2]float64
	TangentImpulses [2]float64
	Count           int
}

// DestructionListener is notified when a joint or fixture is destroyed
// implicitly as a side effect of destroying one of its bodies (§4.3 /
// §7's implicit-destruction note), so a host application can drop its
// own references before they dangle.
type DestructionListener interface {
	JointDestroyed(h JointHandle)
	FixtureDestroyed(h FixtureHandle)
}
