// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

// Package math2d collects the 2D vector/rotation math the simulation core
// needs. It builds on github.com/go-gl/mathgl's Vec2/Mat2 value types and
// adds the handful of 2D-specific operations (scalar<->vector cross
// products, angle-to-rotation helpers) mathgl does not carry, following
// the mutating-little-helper style of the teacher engine's math/lin
// package (github.com/gazed/vu/math/lin) adapted to mathgl's value types.
package math2d

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is a 2-element vector: a point, a direction, or a velocity.
type Vec2 = mgl64.Vec2

// Epsilon is the smallest difference treated as meaningful for
// almost-equal comparisons throughout the core.
const Epsilon = 1e-9

// Zero2 is the zero vector.
var Zero2 = Vec2{0, 0}

// V2 builds a Vec2 from components.
func V2(x, y float64) Vec2 { return Vec2{x, y} }

// Cross2 is the 2D cross product of two vectors, a scalar equal to the
// z-component of the 3D cross product (a.X*b.Y - a.Y*b.X).
func Cross2(a, b Vec2) float64 { return a[0]*b[1] - a[1]*b[0] }

// CrossVS crosses a vector with a scalar, producing a vector rotated
// -90 degrees and scaled: (v.Y*s, -v.X*s).
func CrossVS(v Vec2, s float64) Vec2 { return Vec2{s * v[1], -s * v[0]} }

// CrossSV crosses a scalar with a vector, producing a vector rotated
// +90 degrees and scaled: (-s*v.Y, s*v.X).
func CrossSV(s float64, v Vec2) Vec2 { return Vec2{-s * v[1], s * v[0]} }

// Perp returns v rotated +90 degrees: (-v.Y, v.X).
func Perp(v Vec2) Vec2 { return Vec2{-v[1], v[0]} }

// Dot is the inner product of a and b.
func Dot(a, b Vec2) float64 { return a[0]*b[0] + a[1]*b[1] }

// Add returns a+b.
func Add(a, b Vec2) Vec2 { return Vec2{a[0] + b[0], a[1] + b[1]} }

// Sub returns a-b.
func Sub(a, b Vec2) Vec2 { return Vec2{a[0] - b[0], a[1] - b[1]} }

// Scale returns v*s.
func Scale(v Vec2, s float64) Vec2 { return Vec2{v[0] * s, v[1] * s} }

// Neg returns -v.
func Neg(v Vec2) Vec2 { return Vec2{-v[0], -v[1]} }

// Mul returns the component-wise product of a and b.
func Mul(a, b Vec2) Vec2 { return Vec2{a[0] * b[0], a[1] * b[1]} }

// Len is the Euclidean length of v.
func Len(v Vec2) float64 { return math.Hypot(v[0], v[1]) }

// LenSqr is the squared Euclidean length of v, cheaper than Len.
func LenSqr(v Vec2) float64 { return v[0]*v[0] + v[1]*v[1] }

// DistSqr is the squared distance between a and b.
func DistSqr(a, b Vec2) float64 { return LenSqr(Sub(a, b)) }

// Normalize returns a unit vector in the direction of v, and v's original
// length. A zero-length v returns the zero vector and length 0.
func Normalize(v Vec2) (Vec2, float64) {
	length := Len(v)
	if length < Epsilon {
		return Zero2, 0
	}
	inv := 1.0 / length
	return Vec2{v[0] * inv, v[1] * inv}, length
}

// Min returns the component-wise minimum of a and b.
func Min(a, b Vec2) Vec2 { return Vec2{math.Min(a[0], b[0]), math.Min(a[1], b[1])} }

// Max returns the component-wise maximum of a and b.
func Max(a, b Vec2) Vec2 { return Vec2{math.Max(a[0], b[0]), math.Max(a[1], b[1])} }

// Clamp restricts x to [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// ClampV clamps each component of v to [lo, hi].
func ClampV(v, lo, hi Vec2) Vec2 {
	return Vec2{Clamp(v[0], lo[0], hi[0]), Clamp(v[1], lo[1], hi[1])}
}

// Lerp linearly interpolates between a and b by t in [0,1].
func Lerp(a, b Vec2, t float64) Vec2 {
	return Vec2{a[0] + (b[0]-a[0])*t, a[1] + (b[1]-a[1])*t}
}
