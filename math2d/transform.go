// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package math2d

// Transform is a rigid-body pose: a position plus a rotation, used to move
// shape-local points and normals into world space.
type Transform struct {
	Position Vec2
	Rotation Rot
}

// IdentityTransform is the zero position, zero rotation transform.
var IdentityTransform = Transform{Position: Zero2, Rotation: IdentityRot}

// Apply maps a local-space point into world space.
func (t Transform) Apply(v Vec2) Vec2 {
	return Add(t.Rotation.Apply(v), t.Position)
}

// ApplyT maps a world-space point into t's local space.
func (t Transform) ApplyT(v Vec2) Vec2 {
	return t.Rotation.ApplyT(Sub(v, t.Position))
}

// Mul composes two transforms: apply b then a.
func Mul(a, b Transform) Transform {
	return Transform{
		Rotation: a.Rotation.Mul(b.Rotation),
		Position: Add(a.Rotation.Apply(b.Position), a.Position),
	}
}

// MulT computes a^-1 * b.
func MulT(a, b Transform) Transform {
	return Transform{
		Rotation: a.Rotation.MulT(b.Rotation),
		Position: a.Rotation.ApplyT(Sub(b.Position, a.Position)),
	}
}

// Sweep describes the motion of a body's center of mass over one step, so
// the continuous-collision pipeline can interpolate an intermediate pose.
// Mirrors the (pos0, pos1, localCenter, alpha0) tuple of spec.md §3.
type Sweep struct {
	LocalCenter Vec2 // center of mass in body-local space
	C0, C1      Vec2 // center of mass, world space, at alpha0 and 1
	A0, A1      float64
	Alpha0      float64 // fraction of the step at which C0/A0 apply, in [0,1)
}

// Transform returns the interpolated world transform of the body's origin
// (not its center of mass) at fraction beta of the way from C0/A0 to C1/A1.
func (s Sweep) Transform(beta float64) Transform {
	rot := NewRot(s.A0 + beta*(s.A1-s.A0))
	center := Lerp(s.C0, s.C1, beta)
	return Transform{
		Rotation: rot,
		Position: Sub(center, rot.Apply(s.LocalCenter)),
	}
}

// Advance moves the sweep's origin (alpha0) forward to the given fraction
// of the step, keeping C1/A1 fixed. Used by TOI to re-base a sweep after
// advancing a body to its impact time.
func (s *Sweep) Advance(alpha float64) {
	if s.Alpha0 >= alpha {
		return
	}
	beta := (alpha - s.Alpha0) / (1.0 - s.Alpha0)
	s.C0 = Lerp(s.C0, s.C1, beta)
	s.A0 = s.A0 + beta*(s.A1-s.A0)
	s.Alpha0 = alpha
}

// Normalize shifts A0 and A1 by the same multiple of 2*pi so that A0 lies
// in [0, 2*pi); the difference A1-A0 is unchanged.
func (s *Sweep) Normalize() {
	const twoPi = 2 * 3.14159265358979323846
	d := twoPi * floor(s.A0/twoPi)
	s.A0 -= d
	s.A1 -= d
}

func floor(x float64) float64 {
	i := float64(int64(x))
	if x < 0 && i != x {
		return i - 1
	}
	return i
}
