// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "github.com/gazed/rigid2d/math2d"

// Filter controls which fixture pairs the broad/narrow phase will ever
// consider, per the original sources' b2Fixture.cpp ShouldCollide: two
// fixtures that share a non-zero GroupIndex always collide if it is
// positive and never collide if it is negative; otherwise the usual
// category/mask bitmask test applies.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything: category bit 0, mask all bits.
func DefaultFilter() Filter {
	return Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF, GroupIndex: 0}
}

// ShouldCollide implements the three-tier filter rule: group override
// first, category/mask bitwise test otherwise.
func (f Filter) ShouldCollide(other Filter) bool {
	if f.GroupIndex == other.GroupIndex && f.GroupIndex != 0 {
		return f.GroupIndex > 0
	}
	return f.CategoryBits&other.MaskBits != 0 && f.MaskBits&other.CategoryBits != 0
}

// FixtureDef is the immutable-at-creation configuration for a new
// fixture attached to a body.
type FixtureDef struct {
	Shape                Shape
	Density              float64
	Friction             float64
	Restitution          float64
	RestitutionThreshold float64
	IsSensor             bool
	Filter               Filter
	UserData             any
}

// DefaultFixtureDef returns friction 0.2, zero restitution, the default
// filter, a non-sensor fixture — Box2D's conventional defaults.
func DefaultFixtureDef(shape Shape, density float64) FixtureDef {
	return FixtureDef{
		Shape:                shape,
		Density:              density,
		Friction:             0.2,
		RestitutionThreshold: 1.0,
		Filter:               DefaultFilter(),
	}
}

// FixtureProxy is one broad-phase proxy for one child of a fixture's
// shape (a Polygon/Circle has one child; a Chain has one per edge).
type FixtureProxy struct {
	aabb       AABB
	fixture    FixtureHandle
	childIndex int
	proxyID    int32
}

// Fixture binds a Shape to a Body with material and filtering
// properties, per spec.md §3. Like Body, callers only ever hold a
// FixtureHandle; internal state lives in the owning World's arena.
type Fixture struct {
	body                 BodyHandle
	shape                Shape
	density              float64
	friction             float64
	restitution          float64
	restitutionThreshold float64
	isSensor             bool
	filter               Filter
	userData             any
	proxies              []FixtureProxy
}

func newFixture(body BodyHandle, def FixtureDef) *Fixture {
	return &Fixture{
		body:                 body,
		shape:                def.Shape,
		density:              def.Density,
		friction:             def.Friction,
		restitution:          def.Restitution,
		restitutionThreshold: def.RestitutionThreshold,
		isSensor:             def.IsSensor,
		filter:               def.Filter,
		userData:             def.UserData,
	}
}

// testPoint reports whether p (world space) lies inside the fixture's shape.
func (f *Fixture) testPoint(xf math2d.Transform, p math2d.Vec2) bool {
	return f.shape.TestPoint(xf, p)
}

func (f *Fixture) computeAABB(xf math2d.Transform, childIndex int) AABB {
	return f.shape.ComputeAABB(childIndex, xf)
}
