// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorld(t *testing.T, gravity math2d.Vec2) *World {
	t.Helper()
	w, err := NewWorld(gravity)
	require.NoError(t, err)
	return w
}

func groundBody(t *testing.T, w *World) BodyHandle {
	t.Helper()
	def := DefaultBodyDef()
	def.Type = StaticBody
	ground := w.CreateBody(def)
	w.CreateFixture(ground, DefaultFixtureDef(NewPolygonBox(50, 1), 0))
	return ground
}

func TestWorldCircleFreeFall(t *testing.T) {
	w := newTestWorld(t, math2d.Vec2{0, -10})
	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{0, 10}
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	startY := w.Position(body)[1]
	for i := 0; i < 10; i++ {
		w.Step(1.0 / 60.0)
	}
	endY := w.Position(body)[1]

	assert.Less(t, endY, startY, "a body with no support under gravity must fall")
	assert.Less(t, w.LinearVelocity(body)[1], 0.0)
}

func TestWorldStackedBoxesEventuallySleep(t *testing.T) {
	w := newTestWorld(t, math2d.Vec2{0, -10})
	groundBody(t, w)

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{0, 1.01}
	boxA := w.CreateBody(def)
	w.CreateFixture(boxA, DefaultFixtureDef(NewPolygonBox(0.5, 0.5), 1))

	def.Position = math2d.Vec2{0, 2.03}
	boxB := w.CreateBody(def)
	w.CreateFixture(boxB, DefaultFixtureDef(NewPolygonBox(0.5, 0.5), 1))

	asleep := false
	for i := 0; i < 300; i++ {
		w.Step(1.0 / 60.0)
		if !w.IsAwake(boxA) && !w.IsAwake(boxB) {
			asleep = true
			break
		}
	}

	assert.True(t, asleep, "two stacked boxes resting on the ground should fall asleep")
}

func TestWorldRevoluteJointPendulumSwings(t *testing.T) {
	w := newTestWorld(t, math2d.Vec2{0, -10})
	def := DefaultBodyDef()
	def.Type = StaticBody
	anchor := w.CreateBody(def)

	def.Type = DynamicBody
	def.Position = math2d.Vec2{5, 0}
	bob := w.CreateBody(def)
	w.CreateFixture(bob, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	w.CreateRevoluteJoint(RevoluteJointDef{
		BodyA: anchor, BodyB: bob,
		LocalAnchorA: math2d.Vec2{0, 0},
		LocalAnchorB: math2d.Vec2{-5, 0},
	})

	startDist := math2d.Len(w.Position(bob))
	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60.0)
	}
	endDist := math2d.Len(w.Position(bob))

	assert.InDelta(t, startDist, endDist, 0.1, "the pendulum bob should stay roughly the pin's length from the anchor")
	assert.NotEqual(t, math2d.Vec2{5, 0}, w.Position(bob), "the bob must actually have swung")
}

func TestWorldBulletDoesNotTunnelThroughWall(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)

	def := DefaultBodyDef()
	def.Type = StaticBody
	def.Position = math2d.Vec2{0, 0}
	wall := w.CreateBody(def)
	w.CreateFixture(wall, DefaultFixtureDef(NewPolygonBox(0.1, 5), 0))

	def.Type = DynamicBody
	def.Position = math2d.Vec2{-10, 0}
	def.Bullet = true
	def.LinearVelocity = math2d.Vec2{1000, 0}
	bullet := w.CreateBody(def)
	w.CreateFixture(bullet, DefaultFixtureDef(Circle{Radius: 0.05}, 1))

	w.Step(1.0 / 60.0)

	assert.Less(t, w.Position(bullet)[0], 0.0, "CCD must stop the bullet at the wall instead of letting it tunnel through")
}

func TestWorldZeroGravityBodyStaysPut(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{3, 4}
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60.0)
	}

	assert.InDelta(t, 3.0, w.Position(body)[0], 1e-6)
	assert.InDelta(t, 4.0, w.Position(body)[1], 1e-6)
}

func TestWorldShiftOriginRoundTrip(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{10, -3}
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	shift := math2d.Vec2{4, -2}
	w.ShiftOrigin(shift)
	assert.Equal(t, math2d.Vec2{6, -1}, w.Position(body))

	w.ShiftOrigin(math2d.Neg(shift))
	assert.Equal(t, math2d.Vec2{10, -3}, w.Position(body))
}

func TestWorldStepPanicsWhenCalledReentrantly(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	listener := &reentrantListener{w: w, body: body}
	w.contactListener = listener
	w.contactManager.listener = listener

	require.Panics(t, func() { w.Step(1.0 / 60.0) })
}

type reentrantListener struct {
	w    *World
	body BodyHandle
}

func (l *reentrantListener) BeginContact(*Contact) {}
func (l *reentrantListener) EndContact(*Contact)   {}
func (l *reentrantListener) PreSolve(*Contact, Manifold) {
	l.w.DestroyBody(l.body)
}
func (l *reentrantListener) PostSolve(*Contact, *ContactImpulse) {}

func TestWorldDestroyBodyRemovesFixturesAndContacts(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	ground := groundBody(t, w)

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{0, 1.01}
	box := w.CreateBody(def)
	w.CreateFixture(box, DefaultFixtureDef(NewPolygonBox(0.5, 0.5), 1))

	w.Step(1.0 / 60.0)
	w.DestroyBody(box)

	require.Panics(t, func() { w.Position(box) }, "a stale body handle must be rejected")
	_ = ground
}

func TestCreateFixtureOnStaleBodyPanics(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	body := w.CreateBody(def)
	w.DestroyBody(body)

	assert.Panics(t, func() {
		w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 1}, 1))
	})
}
