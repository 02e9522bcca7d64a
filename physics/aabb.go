// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// AABB is an axis-aligned bounding box, two corner points with Lower <=
// Upper component-wise for any non-empty box. Mirrors spec.md §3.
type AABB struct {
	Lower, Upper math2d.Vec2
}

// EmptyAABB is the identity element for Union: lower at +inf, upper at
// -inf, so unioning it with any AABB yields that AABB unchanged.
var EmptyAABB = AABB{
	Lower: math2d.Vec2{math.Inf(1), math.Inf(1)},
	Upper: math2d.Vec2{math.Inf(-1), math.Inf(-1)},
}

// IsValid reports whether the box is non-empty (Lower <= Upper on both axes).
func (a AABB) IsValid() bool {
	return a.Lower[0] <= a.Upper[0] && a.Lower[1] <= a.Upper[1]
}

// Center returns the midpoint of the box.
func (a AABB) Center() math2d.Vec2 {
	return math2d.Scale(math2d.Add(a.Lower, a.Upper), 0.5)
}

// Extents returns the half-width/half-height of the box.
func (a AABB) Extents() math2d.Vec2 {
	return math2d.Scale(math2d.Sub(a.Upper, a.Lower), 0.5)
}

// Perimeter returns the box's perimeter, the surface-area-heuristic cost
// metric used by the dynamic tree's insertion search.
func (a AABB) Perimeter() float64 {
	wx := a.Upper[0] - a.Lower[0]
	wy := a.Upper[1] - a.Lower[1]
	return 2 * (wx + wy)
}

// Union returns the smallest AABB enclosing both a and b.
func Union(a, b AABB) AABB {
	return AABB{Lower: math2d.Min(a.Lower, b.Lower), Upper: math2d.Max(a.Upper, b.Upper)}
}

// Contains reports whether a fully encloses b.
func (a AABB) Contains(b AABB) bool {
	return a.Lower[0] <= b.Lower[0] && a.Lower[1] <= b.Lower[1] &&
		b.Upper[0] <= a.Upper[0] && b.Upper[1] <= a.Upper[1]
}

// Overlaps reports whether a and b share any area (touching edges count).
func Overlaps(a, b AABB) bool {
	d1x := b.Lower[0] - a.Upper[0]
	d1y := b.Lower[1] - a.Upper[1]
	d2x := a.Lower[0] - b.Upper[0]
	d2y := a.Lower[1] - b.Upper[1]
	if d1x > 0 || d1y > 0 {
		return false
	}
	if d2x > 0 || d2y > 0 {
		return false
	}
	return true
}

// Extend grows the box by margin on every side.
func (a AABB) Extend(margin float64) AABB {
	m := math2d.Vec2{margin, margin}
	return AABB{Lower: math2d.Sub(a.Lower, m), Upper: math2d.Add(a.Upper, m)}
}

// RayCastAABB computes the fraction along p1->p2 at which the ray enters
// box a, bounded by maxFraction. ok is false if the ray misses or the
// first hit is beyond maxFraction.
func RayCastAABB(a AABB, p1, p2 math2d.Vec2, maxFraction float64) (fraction float64, ok bool) {
	tmin, tmax := 0.0, maxFraction
	d := math2d.Sub(p2, p1)
	absD := math2d.Vec2{math.Abs(d[0]), math.Abs(d[1])}

	for axis := 0; axis < 2; axis++ {
		if absD[axis] < math2d.Epsilon {
			if p1[axis] < a.Lower[axis] || a.Upper[axis] < p1[axis] {
				return 0, false
			}
			continue
		}
		inv := 1.0 / d[axis]
		t1 := (a.Lower[axis] - p1[axis]) * inv
		t2 := (a.Upper[axis] - p1[axis]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tmin {
			tmin = t1
		}
		if t2 < tmax {
			tmax = t2
		}
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
