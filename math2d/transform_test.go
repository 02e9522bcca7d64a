// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package math2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransformApplyInverse(t *testing.T) {
	xf := Transform{Position: Vec2{5, -2}, Rotation: NewRot(math.Pi / 4)}
	local := Vec2{1, 2}
	world := xf.Apply(local)
	back := xf.ApplyT(world)
	assert.InDelta(t, local[0], back[0], 1e-9)
	assert.InDelta(t, local[1], back[1], 1e-9)
}

func TestMulTIsInverseOfMul(t *testing.T) {
	a := Transform{Position: Vec2{1, 1}, Rotation: NewRot(0.5)}
	b := Transform{Position: Vec2{2, -3}, Rotation: NewRot(-0.2)}
	composed := Mul(a, b)
	recovered := MulT(a, composed)
	assert.InDelta(t, b.Position[0], recovered.Position[0], 1e-9)
	assert.InDelta(t, b.Position[1], recovered.Position[1], 1e-9)
	assert.InDelta(t, b.Rotation.Angle(), recovered.Rotation.Angle(), 1e-9)
}

func TestSweepTransformInterpolates(t *testing.T) {
	s := Sweep{C0: Vec2{0, 0}, C1: Vec2{10, 0}, A0: 0, A1: math.Pi}
	mid := s.Transform(0.5)
	assert.InDelta(t, 5.0, mid.Position[0]+mid.Rotation.Apply(s.LocalCenter)[0], 1e-9)
	assert.InDelta(t, math.Pi/2, mid.Rotation.Angle(), 1e-9)
}

func TestSweepAdvance(t *testing.T) {
	s := Sweep{C0: Vec2{0, 0}, C1: Vec2{10, 0}, A0: 0, A1: 0}
	s.Advance(0.5)
	assert.InDelta(t, 5.0, s.C0[0], 1e-9)
	assert.InDelta(t, 0.5, s.Alpha0, 1e-9)
	assert.Equal(t, Vec2{10, 0}, s.C1)

	// Advancing to an earlier fraction than already applied is a no-op.
	before := s.C0
	s.Advance(0.1)
	assert.Equal(t, before, s.C0)
}

func TestSweepNormalizeKeepsAnglesClose(t *testing.T) {
	s := Sweep{A0: 10 * math.Pi, A1: 10*math.Pi + 0.1}
	s.Normalize()
	assert.InDelta(t, 0.1, s.A1-s.A0, 1e-9)
	assert.Less(t, math.Abs(s.A0), 2*math.Pi)
}
