// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package math2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRotAngleRoundTrip(t *testing.T) {
	for _, angle := range []float64{0, 0.3, math.Pi / 2, math.Pi, -1.2} {
		r := NewRot(angle)
		assert.InDelta(t, angle, r.Angle(), 1e-9)
	}
}

func TestRotApplyInverse(t *testing.T) {
	r := NewRot(math.Pi / 3)
	v := Vec2{2, -1}
	rotated := r.Apply(v)
	back := r.ApplyT(rotated)
	assert.InDelta(t, v[0], back[0], 1e-9)
	assert.InDelta(t, v[1], back[1], 1e-9)
}

func TestRotMulComposesAngles(t *testing.T) {
	a, b := NewRot(0.4), NewRot(0.9)
	composed := a.Mul(b)
	assert.InDelta(t, 1.3, composed.Angle(), 1e-9)
}

func TestRotMulTIsInverseCompose(t *testing.T) {
	a, b := NewRot(0.4), NewRot(0.4)
	qc := a.MulT(b)
	assert.InDelta(t, 0.0, qc.Angle(), 1e-9)
}

func TestMat22InverseAndSolve(t *testing.T) {
	m := NewMat22(2, 0, 0, 4)
	inv := m.Inverse()
	identity := m.Apply(inv.Apply(Vec2{1, 1}))
	assert.InDelta(t, 1.0, identity[0], 1e-9)
	assert.InDelta(t, 1.0, identity[1], 1e-9)

	x := m.Solve(Vec2{4, 8})
	assert.InDelta(t, 2.0, x[0], 1e-9)
	assert.InDelta(t, 2.0, x[1], 1e-9)
}

func TestMat22SingularInverseIsZero(t *testing.T) {
	m := NewMat22(1, 1, 1, 1)
	inv := m.Inverse()
	assert.Equal(t, Mat22{}, inv)
}
