// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildIslandsSeparatesDisjointBodies(t *testing.T) {
	// Two bodies far enough apart to never touch stay in separate islands.
	w2 := newTestWorld(t, math2d.Vec2{0, -10})
	defA := DefaultBodyDef()
	defA.Type = DynamicBody
	defA.Position = math2d.Vec2{-50, 0}
	a := w2.CreateBody(defA)
	w2.CreateFixture(a, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	defB := DefaultBodyDef()
	defB.Type = DynamicBody
	defB.Position = math2d.Vec2{50, 0}
	b := w2.CreateBody(defB)
	w2.CreateFixture(b, DefaultFixtureDef(Circle{Radius: 0.5}, 1))

	islands := buildIslands(w2)
	require.Len(t, islands, 2)
	assert.Len(t, islands[0].bodies, 1)
	assert.Len(t, islands[1].bodies, 1)
}

func TestBuildIslandsMergesTouchingBodiesIntoOneIsland(t *testing.T) {
	w := newTestWorld(t, math2d.Vec2{0, -10})
	groundBody(t, w)

	def := DefaultBodyDef()
	def.Type = DynamicBody
	def.Position = math2d.Vec2{0, 1.01}
	boxA := w.CreateBody(def)
	w.CreateFixture(boxA, DefaultFixtureDef(NewPolygonBox(0.5, 0.5), 1))

	def.Position = math2d.Vec2{0, 2.0}
	boxB := w.CreateBody(def)
	w.CreateFixture(boxB, DefaultFixtureDef(NewPolygonBox(0.5, 0.5), 1))

	w.Step(1.0 / 60.0)
	islands := buildIslands(w)

	require.Len(t, islands, 1, "a touching stack of dynamic bodies forms a single island; the static ground never starts one")
	assert.Len(t, islands[0].bodies, 3, "the two boxes plus the static ground they rest on")
}

func TestBuildIslandsSkipsSleepingBodies(t *testing.T) {
	w := newTestWorld(t, math2d.Zero2)
	def := DefaultBodyDef()
	def.Type = DynamicBody
	body := w.CreateBody(def)
	w.CreateFixture(body, DefaultFixtureDef(Circle{Radius: 0.5}, 1))
	w.SetAwake(body, false)

	islands := buildIslands(w)
	assert.Empty(t, islands, "a sleeping dynamic body must not be picked up into any island")
}
