// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyForceToCenterAccumulatesUntilStep(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	w.ApplyForceToCenter(body, math2d.Vec2{10, 0}, true)
	assert.Equal(t, math2d.Zero2, w.LinearVelocity(body), "a force only takes effect at the next Step, not immediately")

	w.Step(1.0 / 60.0)
	assert.Greater(t, w.LinearVelocity(body)[0], 0.0)
}

func TestApplyForceWithWakeFalseNeverWakesASleepingBody(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))
	w.SetAwake(body, false)

	w.ApplyForceToCenter(body, math2d.Vec2{10, 0}, false)
	assert.False(t, w.IsAwake(body))
}

func TestApplyLinearImpulseChangesVelocityImmediately(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	w.ApplyLinearImpulse(body, math2d.Vec2{2, 0}, w.WorldCenter(body), true)
	assert.Greater(t, w.LinearVelocity(body)[0], 0.0, "an impulse (unlike a force) changes velocity right away")
}

func TestSetLinearVelocityZeroDoesNotWakeASleepingBody(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))
	w.SetAwake(body, false)

	w.SetLinearVelocity(body, math2d.Zero2)
	assert.False(t, w.IsAwake(body))

	w.SetLinearVelocity(body, math2d.Vec2{1, 0})
	assert.True(t, w.IsAwake(body))
}

func TestSetBodyTypeDropsExistingContacts(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	a := w.CreateBody(def)
	w.CreateFixture(a, DefaultFixtureDef(Circle{Radius: 1}, 1))

	def.Position = math2d.Vec2{1.5, 0}
	b := w.CreateBody(def)
	w.CreateFixture(b, DefaultFixtureDef(Circle{Radius: 1}, 1))

	w.Step(1.0 / 60.0)
	require.Equal(t, 1, w.contacts.len())

	w.SetBodyType(a, StaticBody)
	assert.Equal(t, 0, w.contacts.len(), "changing a body's type drops its contacts so they are re-filtered next Step")
}

func TestSetFixedRotationZeroesInverseInertia(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(NewPolygonBox(1, 1), 1))

	b, ok := w.bodies.get(body.h)
	require.True(t, ok)
	require.Greater(t, b.invInertia, 0.0, "a box has nonzero rotational inertia before fixing rotation")

	w.SetFixedRotation(body, true)
	assert.Equal(t, 0.0, b.invInertia)
}

func TestSetAllowSleepFalseWakesABodyImmediately(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))
	w.SetAwake(body, false)

	w.SetAllowSleep(body, false)
	assert.True(t, w.IsAwake(body))
}

func TestUserDataRoundTrips(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.UserData = "tag-a"
	body := w.CreateBody(def)

	assert.Equal(t, "tag-a", w.UserData(body))
	w.SetUserData(body, 42)
	assert.Equal(t, 42, w.UserData(body))
}
