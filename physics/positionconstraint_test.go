// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShapeRadius(t *testing.T) {
	assert.Equal(t, 1.5, shapeRadius(Circle{Radius: 1.5}))
	assert.Equal(t, NewPolygonBox(1, 1).Radius, shapeRadius(NewPolygonBox(1, 1)))
	assert.Equal(t, 0.0, shapeRadius(Edge{}))
}

// buildOverlappingContact wires two overlapping dynamic circle bodies into
// a fresh World, steps once so the broad phase discovers their contact,
// and returns the live *Contact plus matching solverBody working copies.
func buildOverlappingContact(t *testing.T) (w *World, c *Contact, bodies []*solverBody, indexOf map[BodyHandle]int) {
	t.Helper()
	w = newTestWorld(t, math2d.Zero2)

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{0, 0}
	bA := w.CreateBody(def)
	w.CreateFixture(bA, DefaultFixtureDef(Circle{Radius: 1}, 1))

	def.Position = math2d.Vec2{1.5, 0}
	bB := w.CreateBody(def)
	w.CreateFixture(bB, DefaultFixtureDef(Circle{Radius: 1}, 1))

	w.Step(1.0 / 60.0)

	w.contacts.each(func(_ handle, found *Contact) { c = found })
	require.NotNil(t, c, "overlapping circles must produce a contact")
	require.True(t, c.isTouching())

	indexOf = map[BodyHandle]int{bA: 0, bB: 1}
	bodies = make([]*solverBody, 2)
	for h, i := range indexOf {
		b, _ := w.bodies.get(h.h)
		bodies[i] = &solverBody{
			handle: h, bodyType: b.bodyType, localCenter: b.sweep.LocalCenter,
			invMass: b.invMass, invI: b.invInertia, c: b.sweep.C1, a: b.sweep.A1,
		}
	}
	return w, c, bodies, indexOf
}

func TestSolvePositionConstraintsReducesOverlap(t *testing.T) {
	w, c, bodies, indexOf := buildOverlappingContact(t)
	pcs := buildPositionConstraints([]*Contact{c}, bodies, indexOf, w)
	require.Len(t, pcs, 1)
	require.Equal(t, 1, pcs[0].pointCount)

	startSeparation := math2d.Len(math2d.Sub(bodies[1].c, bodies[0].c)) - 2
	for i := 0; i < 10; i++ {
		solvePositionConstraints(pcs, bodies, 0.2, 0.005, 0.2)
	}
	endSeparation := math2d.Len(math2d.Sub(bodies[1].c, bodies[0].c)) - 2

	assert.Greater(t, endSeparation, startSeparation, "iterating the position solver should push overlapping circles apart")
}

func TestSolvePositionConstraintsStaticBodyIsUnmoved(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = StaticBody
	ground := w.CreateBody(def)
	w.CreateFixture(ground, DefaultFixtureDef(NewPolygonBox(5, 1), 0))

	def.Type = DynamicBody
	def.Position = math2d.Vec2{0, 0.5}
	box := w.CreateBody(def)
	w.CreateFixture(box, DefaultFixtureDef(NewPolygonBox(0.5, 0.5), 1))

	w.Step(1.0 / 60.0)

	var c *Contact
	w.contacts.each(func(_ handle, found *Contact) { c = found })
	require.NotNil(t, c)

	indexOf := map[BodyHandle]int{ground: 0, box: 1}
	bodies := make([]*solverBody, 2)
	for h, i := range indexOf {
		b, _ := w.bodies.get(h.h)
		bodies[i] = &solverBody{
			handle: h, bodyType: b.bodyType, localCenter: b.sweep.LocalCenter,
			invMass: b.invMass, invI: b.invInertia, c: b.sweep.C1, a: b.sweep.A1,
		}
	}
	groundStart := bodies[0].c

	pcs := buildPositionConstraints([]*Contact{c}, bodies, indexOf, w)
	solvePositionConstraints(pcs, bodies, 0.2, 0.005, 0.2)

	assert.Equal(t, groundStart, bodies[0].c, "a static body's invMass of 0 must keep the position solver from ever moving it")
}
