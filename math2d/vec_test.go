// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package math2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCross2(t *testing.T) {
	assert.InDelta(t, 1.0, Cross2(Vec2{1, 0}, Vec2{0, 1}), Epsilon)
	assert.InDelta(t, 0.0, Cross2(Vec2{2, 2}, Vec2{4, 4}), Epsilon, "parallel vectors cross to zero")
}

func TestCrossVSAndCrossSV(t *testing.T) {
	v := Vec2{3, -1}
	assert.Equal(t, Vec2{-1, -3}, CrossVS(v, 1))
	assert.Equal(t, Vec2{1, 3}, CrossSV(1, v))
}

func TestDotAddSub(t *testing.T) {
	a, b := Vec2{1, 2}, Vec2{3, 4}
	assert.InDelta(t, 11.0, Dot(a, b), Epsilon)
	assert.Equal(t, Vec2{4, 6}, Add(a, b))
	assert.Equal(t, Vec2{-2, -2}, Sub(a, b))
}

func TestNormalize(t *testing.T) {
	n, length := Normalize(Vec2{3, 4})
	assert.InDelta(t, 5.0, length, Epsilon)
	assert.InDelta(t, 1.0, Len(n), Epsilon)

	zero, zeroLen := Normalize(Zero2)
	assert.Equal(t, Zero2, zero)
	assert.Equal(t, 0.0, zeroLen)
}

func TestLenSqrAndDistSqr(t *testing.T) {
	assert.InDelta(t, 25.0, LenSqr(Vec2{3, 4}), Epsilon)
	assert.InDelta(t, 25.0, DistSqr(Vec2{0, 0}, Vec2{3, 4}), Epsilon)
}

func TestClampAndLerp(t *testing.T) {
	assert.Equal(t, 5.0, Clamp(10, 0, 5))
	assert.Equal(t, 0.0, Clamp(-10, 0, 5))
	assert.Equal(t, 2.5, Clamp(2.5, 0, 5))

	assert.Equal(t, Vec2{5, 5}, Lerp(Vec2{0, 0}, Vec2{10, 10}, 0.5))
}

func TestMinMax(t *testing.T) {
	a, b := Vec2{1, 5}, Vec2{3, 2}
	assert.Equal(t, Vec2{1, 2}, Min(a, b))
	assert.Equal(t, Vec2{3, 5}, Max(a, b))
}
