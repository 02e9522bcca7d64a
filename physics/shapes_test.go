// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
)

func TestCircleMassData(t *testing.T) {
	c := Circle{Radius: 2}
	md := c.ComputeMassData(1)
	assert.InDelta(t, math.Pi*4, md.Mass, 1e-9)
	assert.Equal(t, math2d.Zero2, md.Center)
}

func TestCircleTestPointAndRayCast(t *testing.T) {
	c := Circle{Radius: 1}
	assert.True(t, c.TestPoint(math2d.IdentityTransform, math2d.Vec2{0.5, 0}))
	assert.False(t, c.TestPoint(math2d.IdentityTransform, math2d.Vec2{2, 0}))

	out := c.RayCast(RayCastInput{P1: math2d.Vec2{-5, 0}, P2: math2d.Vec2{5, 0}, MaxFraction: 1}, math2d.IdentityTransform, 0)
	assert.True(t, out.Hit)
	assert.InDelta(t, 0.4, out.Fraction, 1e-9)
}

func TestNewPolygonBoxVertexCount(t *testing.T) {
	p := NewPolygonBox(1, 2)
	assert.Len(t, p.Vertices, 4)
	assert.Len(t, p.Normals, 4)
}

func TestNewPolygonComputesConvexHull(t *testing.T) {
	// An interior point must not survive into the hull.
	pts := []math2d.Vec2{{0, 0}, {2, 0}, {2, 2}, {0, 2}, {1, 1}}
	p := NewPolygon(pts)
	assert.Len(t, p.Vertices, 4)
}

func TestPolygonTestPoint(t *testing.T) {
	p := NewPolygonBox(1, 1)
	assert.True(t, p.TestPoint(math2d.IdentityTransform, math2d.Vec2{0, 0}))
	assert.False(t, p.TestPoint(math2d.IdentityTransform, math2d.Vec2{2, 2}))
}

func TestPolygonMassDataOfUnitBox(t *testing.T) {
	p := NewPolygonBox(1, 1)
	md := p.ComputeMassData(1)
	assert.InDelta(t, 4.0, md.Mass, 1e-9, "a 2x2 box has area 4")
	assert.InDelta(t, 0.0, md.Center[0], 1e-9)
	assert.InDelta(t, 0.0, md.Center[1], 1e-9)
}

func TestPolygonComputeAABB(t *testing.T) {
	p := NewPolygonBox(1, 1)
	xf := math2d.Transform{Position: math2d.Vec2{5, 5}, Rotation: math2d.IdentityRot}
	ab := p.ComputeAABB(0, xf)
	assert.InDelta(t, 2+2*p.Radius, ab.Upper[0]-ab.Lower[0], 1e-9)
}

func TestEdgeRayCast(t *testing.T) {
	e := Edge{V1: math2d.Vec2{0, -1}, V2: math2d.Vec2{0, 1}}
	out := e.RayCast(RayCastInput{P1: math2d.Vec2{-5, 0}, P2: math2d.Vec2{5, 0}, MaxFraction: 1}, math2d.IdentityTransform, 0)
	assert.True(t, out.Hit)
	assert.InDelta(t, 0.5, out.Fraction, 1e-9)
}

func TestChainChildCount(t *testing.T) {
	open := Chain{Vertices: []math2d.Vec2{{0, 0}, {1, 0}, {2, 0}}}
	assert.Equal(t, 2, open.ChildCount())

	loop := Chain{Vertices: []math2d.Vec2{{0, 0}, {1, 0}, {1, 1}}, Loop: true}
	assert.Equal(t, 3, loop.ChildCount())
}
