// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
)

func TestMixFrictionGeometricMean(t *testing.T) {
	assert.InDelta(t, 0.3, mixFriction(0.9, 0.1), 1e-9)
	assert.Equal(t, 0.0, mixFriction(0, 0.5))
}

func TestMixRestitutionIsMax(t *testing.T) {
	assert.Equal(t, 0.8, mixRestitution(0.3, 0.8))
	assert.Equal(t, 0.8, mixRestitution(0.8, 0.3))
}

func TestContactUpdateTouchingTransitions(t *testing.T) {
	fA := &Fixture{shape: Circle{Radius: 1}, friction: 0.2}
	fB := &Fixture{shape: Circle{Radius: 1}, friction: 0.2}
	c := newContact(FixtureHandle{}, FixtureHandle{}, BodyHandle{}, BodyHandle{}, 0, 0, fA, fB)

	far := math2d.Transform{Position: math2d.Vec2{10, 0}, Rotation: math2d.IdentityRot}
	c.update(fA.shape, fB.shape, math2d.IdentityTransform, far, fA, fB, DefaultStepConf(), nil)
	assert.False(t, c.isTouching())

	near := math2d.Transform{Position: math2d.Vec2{1, 0}, Rotation: math2d.IdentityRot}
	c.update(fA.shape, fB.shape, math2d.IdentityTransform, near, fA, fB, DefaultStepConf(), nil)
	assert.True(t, c.isTouching())
}

type recordingListener struct {
	began, ended int
}

func (l *recordingListener) BeginContact(*Contact)                   { l.began++ }
func (l *recordingListener) EndContact(*Contact)                     { l.ended++ }
func (l *recordingListener) PreSolve(*Contact, Manifold)             {}
func (l *recordingListener) PostSolve(*Contact, *ContactImpulse)     {}

func TestContactUpdateFiresBeginAndEndContact(t *testing.T) {
	fA := &Fixture{shape: Circle{Radius: 1}, friction: 0.2}
	fB := &Fixture{shape: Circle{Radius: 1}, friction: 0.2}
	c := newContact(FixtureHandle{}, FixtureHandle{}, BodyHandle{}, BodyHandle{}, 0, 0, fA, fB)

	listener := &recordingListener{}
	near := math2d.Transform{Position: math2d.Vec2{1, 0}, Rotation: math2d.IdentityRot}
	far := math2d.Transform{Position: math2d.Vec2{10, 0}, Rotation: math2d.IdentityRot}

	c.update(fA.shape, fB.shape, math2d.IdentityTransform, near, fA, fB, DefaultStepConf(), listener)
	assert.Equal(t, 1, listener.began)

	c.update(fA.shape, fB.shape, math2d.IdentityTransform, far, fA, fB, DefaultStepConf(), listener)
	assert.Equal(t, 1, listener.ended)
}

func TestContactUpdateWarmStartsMatchingFeature(t *testing.T) {
	fA := &Fixture{shape: NewPolygonBox(1, 1), friction: 0.2}
	fB := &Fixture{shape: NewPolygonBox(1, 1), friction: 0.2}
	c := newContact(FixtureHandle{}, FixtureHandle{}, BodyHandle{}, BodyHandle{}, 0, 0, fA, fB)

	xfB := math2d.Transform{Position: math2d.Vec2{1.9, 0}, Rotation: math2d.IdentityRot}
	c.update(fA.shape, fB.shape, math2d.IdentityTransform, xfB, fA, fB, DefaultStepConf(), nil)
	assert.True(t, c.isTouching())
	c.manifold.Points[0].NormalImpulse = 5

	// A second update with an unchanged pose should preserve the same
	// feature and warm-start from the prior impulse.
	c.update(fA.shape, fB.shape, math2d.IdentityTransform, xfB, fA, fB, DefaultStepConf(), nil)
	assert.Equal(t, 5.0, c.manifold.Points[0].NormalImpulse)
}
