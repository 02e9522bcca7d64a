// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeWorldManifoldCircles(t *testing.T) {
	fA := &Fixture{shape: Circle{Radius: 1}, friction: 0.2}
	fB := &Fixture{shape: Circle{Radius: 1}, friction: 0.2}
	c := newContact(FixtureHandle{}, FixtureHandle{}, BodyHandle{}, BodyHandle{}, 0, 0, fA, fB)

	xfB := math2d.Transform{Position: math2d.Vec2{1.5, 0}, Rotation: math2d.IdentityRot}
	c.update(fA.shape, fB.shape, math2d.IdentityTransform, xfB, fA, fB, DefaultStepConf(), nil)
	require.True(t, c.isTouching())

	wm := computeWorldManifold(c, math2d.IdentityTransform, xfB)
	assert.InDelta(t, 1.0, wm.normal[0], 1e-9)
	assert.InDelta(t, 0.0, wm.normal[1], 1e-9)
}

func TestSolveVelocityConstraintsResolvesApproachingNormalVelocity(t *testing.T) {
	_, c, bodies, indexOf := buildOverlappingContact(t)
	// Send the bodies toward each other along the contact normal.
	bodies[0].v = math2d.Vec2{1, 0}
	bodies[1].v = math2d.Vec2{-1, 0}

	conf := DefaultStepConf().withDt(1.0 / 60.0)
	vcs := buildVelocityConstraints([]*Contact{c}, bodies, indexOf, conf)
	require.Len(t, vcs, 1)

	for i := 0; i < 8; i++ {
		solveVelocityConstraints(vcs, bodies, conf.DoBlockSolve)
	}

	closingSpeed := relativeVelocity(bodies[0], bodies[1], math2d.Zero2, math2d.Zero2)
	assert.GreaterOrEqual(t, closingSpeed[0], 0.0, "the velocity solver must stop (or reverse) the bodies' approach along the normal")
}

func TestWarmStartAppliesCarriedImpulse(t *testing.T) {
	w, c, bodies, indexOf := buildOverlappingContact(t)
	c.manifold.Points[0].NormalImpulse = 2

	conf := DefaultStepConf().withDt(1.0 / 60.0)
	vcs := buildVelocityConstraints([]*Contact{c}, bodies, indexOf, conf)

	beforeA, beforeB := bodies[0].v, bodies[1].v
	warmStart(vcs, bodies)

	assert.NotEqual(t, beforeA, bodies[0].v, "warm-starting a nonzero carried impulse must change velocity")
	assert.NotEqual(t, beforeB, bodies[1].v)
	_ = w
}

func TestWriteBackImpulsesPersistsToContactManifold(t *testing.T) {
	_, c, bodies, indexOf := buildOverlappingContact(t)
	conf := DefaultStepConf().withDt(1.0 / 60.0)
	vcs := buildVelocityConstraints([]*Contact{c}, bodies, indexOf, conf)
	vcs[0].points[0].normalImpulse = 3.5
	vcs[0].points[0].tangentImpulse = 1.25

	writeBackImpulses(vcs)

	assert.Equal(t, 3.5, c.manifold.Points[0].NormalImpulse)
	assert.Equal(t, 1.25, c.manifold.Points[0].TangentImpulse)
}
