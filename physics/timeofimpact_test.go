// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
)

func TestTimeOfImpactBulletHitsWall(t *testing.T) {
	bullet := Circle{Radius: 0.1}.GetChild(0)
	wall := NewPolygonBox(0.5, 5).GetChild(0)

	sweepBullet := math2d.Sweep{C0: math2d.Vec2{-10, 0}, C1: math2d.Vec2{10, 0}}
	sweepWall := math2d.Sweep{C0: math2d.Vec2{0, 0}, C1: math2d.Vec2{0, 0}}

	out := TimeOfImpact(ToiInput{ProxyA: bullet, ProxyB: wall, SweepA: sweepBullet, SweepB: sweepWall, TMax: 1.0}, DefaultStepConf(), nil)

	assert.Equal(t, ToiTouching, out.State)
	assert.Greater(t, out.T, 0.0)
	assert.Less(t, out.T, 1.0)
}

func TestTimeOfImpactNeverApproachingIsSeparated(t *testing.T) {
	a := Circle{Radius: 0.1}.GetChild(0)
	b := Circle{Radius: 0.1}.GetChild(0)

	sweepA := math2d.Sweep{C0: math2d.Vec2{-10, 0}, C1: math2d.Vec2{-9, 0}}
	sweepB := math2d.Sweep{C0: math2d.Vec2{10, 0}, C1: math2d.Vec2{11, 0}}

	out := TimeOfImpact(ToiInput{ProxyA: a, ProxyB: b, SweepA: sweepA, SweepB: sweepB, TMax: 1.0}, DefaultStepConf(), nil)
	assert.Equal(t, ToiSeparated, out.State)
}

func TestTimeOfImpactAlreadyOverlappingAtStart(t *testing.T) {
	a := Circle{Radius: 1}.GetChild(0)
	b := Circle{Radius: 1}.GetChild(0)

	sweepA := math2d.Sweep{C0: math2d.Vec2{0, 0}, C1: math2d.Vec2{0, 0}}
	sweepB := math2d.Sweep{C0: math2d.Vec2{0.1, 0}, C1: math2d.Vec2{0.1, 0}}

	out := TimeOfImpact(ToiInput{ProxyA: a, ProxyB: b, SweepA: sweepA, SweepB: sweepB, TMax: 1.0}, DefaultStepConf(), nil)
	assert.Equal(t, ToiOverlapped, out.State)
	assert.Equal(t, 0.0, out.T)
}

func TestTimeOfImpactIsDeterministic(t *testing.T) {
	bullet := Circle{Radius: 0.1}.GetChild(0)
	wall := NewPolygonBox(0.5, 5).GetChild(0)
	sweepBullet := math2d.Sweep{C0: math2d.Vec2{-10, 0}, C1: math2d.Vec2{10, 0}}
	sweepWall := math2d.Sweep{C0: math2d.Vec2{0, 0}, C1: math2d.Vec2{0, 0}}

	first := TimeOfImpact(ToiInput{ProxyA: bullet, ProxyB: wall, SweepA: sweepBullet, SweepB: sweepWall, TMax: 1.0}, DefaultStepConf(), nil)
	second := TimeOfImpact(ToiInput{ProxyA: bullet, ProxyB: wall, SweepA: sweepBullet, SweepB: sweepWall, TMax: 1.0}, DefaultStepConf(), nil)

	assert.Equal(t, first.State, second.State)
	assert.Equal(t, first.T, second.T, "repeat TOI queries on identical input must be bit-identical")
}
