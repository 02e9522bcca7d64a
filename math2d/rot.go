// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package math2d

import "math"

// Rot is a 2D rotation stored as (cos, sin) rather than a bare angle, so
// repeated composition never needs re-normalizing a degenerate angle.
type Rot struct {
	S, C float64 // sin, cos
}

// NewRot builds a Rot from an angle in radians.
func NewRot(angle float64) Rot {
	return Rot{S: math.Sin(angle), C: math.Cos(angle)}
}

// IdentityRot is the zero rotation.
var IdentityRot = Rot{S: 0, C: 1}

// Angle returns the rotation's angle in radians.
func (r Rot) Angle() float64 { return math.Atan2(r.S, r.C) }

// Mul composes two rotations: apply q then r.
func (r Rot) Mul(q Rot) Rot {
	return Rot{
		S: r.S*q.C + r.C*q.S,
		C: r.C*q.C - r.S*q.S,
	}
}

// MulT composes the inverse of r with q: qc = r^-1 * q.
func (r Rot) MulT(q Rot) Rot {
	return Rot{
		S: r.C*q.S - r.S*q.C,
		C: r.C*q.C + r.S*q.S,
	}
}

// Apply rotates v by r.
func (r Rot) Apply(v Vec2) Vec2 {
	return Vec2{r.C*v[0] - r.S*v[1], r.S*v[0] + r.C*v[1]}
}

// ApplyT rotates v by the inverse of r.
func (r Rot) ApplyT(v Vec2) Vec2 {
	return Vec2{r.C*v[0] + r.S*v[1], -r.S*v[0] + r.C*v[1]}
}

// XAxis returns r's local x-axis in world space.
func (r Rot) XAxis() Vec2 { return Vec2{r.C, r.S} }

// YAxis returns r's local y-axis in world space.
func (r Rot) YAxis() Vec2 { return Vec2{-r.S, r.C} }

// Mat22 is a 2x2 matrix stored by columns, used for the block solver's
// effective-mass matrix K and for the separation-finder's local axes.
type Mat22 struct {
	Col1, Col2 Vec2
}

// NewMat22FromRot builds a rotation matrix equivalent to r.
func NewMat22FromRot(r Rot) Mat22 {
	return Mat22{Col1: Vec2{r.C, r.S}, Col2: Vec2{-r.S, r.C}}
}

// NewMat22 builds a matrix from explicit entries.
func NewMat22(a11, a12, a21, a22 float64) Mat22 {
	return Mat22{Col1: Vec2{a11, a21}, Col2: Vec2{a12, a22}}
}

// Apply returns m*v.
func (m Mat22) Apply(v Vec2) Vec2 {
	return Vec2{m.Col1[0]*v[0] + m.Col2[0]*v[1], m.Col1[1]*v[0] + m.Col2[1]*v[1]}
}

// Transpose returns m^T.
func (m Mat22) Transpose() Mat22 {
	return Mat22{Col1: Vec2{m.Col1[0], m.Col2[0]}, Col2: Vec2{m.Col1[1], m.Col2[1]}}
}

// Add returns m+o.
func (m Mat22) Add(o Mat22) Mat22 {
	return Mat22{Col1: Add(m.Col1, o.Col1), Col2: Add(m.Col2, o.Col2)}
}

// Det is the determinant of m.
func (m Mat22) Det() float64 { return m.Col1[0]*m.Col2[1] - m.Col2[0]*m.Col1[1] }

// Inverse returns m^-1, or the zero matrix if m is singular.
func (m Mat22) Inverse() Mat22 {
	det := m.Det()
	if det != 0 {
		det = 1.0 / det
	}
	return Mat22{
		Col1: Vec2{det * m.Col2[1], -det * m.Col1[1]},
		Col2: Vec2{-det * m.Col2[0], det * m.Col1[0]},
	}
}

// Solve solves m*x = b for x using Cramer's rule, used by the block
// contact solver. Returns the zero vector if m is singular.
func (m Mat22) Solve(b Vec2) Vec2 {
	a11, a12, a21, a22 := m.Col1[0], m.Col2[0], m.Col1[1], m.Col2[1]
	det := a11*a22 - a12*a21
	if det != 0 {
		det = 1.0 / det
	}
	return Vec2{det * (a22*b[0] - a12*b[1]), det * (a11*b[1] - a21*b[0])}
}
