// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"github.com/gazed/rigid2d/math2d"
)

// distance.go implements spec.md §4.5: a GJK-family closest-point query
// between two convex DistanceProxy views, with a simplex cache the TOI
// inner loop (timeofimpact.go) reuses across nearby time samples. No
// teacher code does convex-distance queries (broad.go's proxies are
// sphere/box only), so this follows the spec's own simplex-reduction
// algorithm, named to match this module's conventions.

// DistanceInput is one DistanceEngine query.
type DistanceInput struct {
	ProxyA, ProxyB DistanceProxy
	TransformA     math2d.Transform
	TransformB     math2d.Transform
	UseRadii       bool
}

// DistanceOutput is the result of a DistanceEngine query.
type DistanceOutput struct {
	PointA      math2d.Vec2
	PointB      math2d.Vec2
	Distance    float64
	Iterations  int
	MaxItersHit bool
}

// SimplexCache lets a caller warm-start the next nearby query (in
// particular TOI's repeated queries at shrinking time steps) from the
// previous query's terminal simplex.
type SimplexCache struct {
	Count  int
	IndexA [3]int
	IndexB [3]int
}

// simplexVertex is one GJK simplex entry: a pair of support indices plus
// the Minkowski-difference point they produce and its barycentric weight.
type simplexVertex struct {
	wA, wB math2d.Vec2 // support points in world space
	w      math2d.Vec2 // wB - wA
	a      float64     // barycentric coordinate
	indexA int
	indexB int
}

type simplex struct {
	v     [3]simplexVertex
	count int
}

// readCache seeds the simplex from cache if the cached indices are still
// in range, falling back to a single arbitrary support pair otherwise.
func (s *simplex) readCache(cache *SimplexCache, proxyA DistanceProxy, xfA math2d.Transform, proxyB DistanceProxy, xfB math2d.Transform) {
	s.count = cache.Count
	for i := 0; i < s.count; i++ {
		v := &s.v[i]
		v.indexA = cache.IndexA[i]
		v.indexB = cache.IndexB[i]
		v.wA = xfA.Apply(proxyA.Vertices[v.indexA])
		v.wB = xfB.Apply(proxyB.Vertices[v.indexB])
		v.w = math2d.Sub(v.wB, v.wA)
		v.a = 0
	}
	if s.count == 0 {
		v := &s.v[0]
		v.indexA, v.indexB = 0, 0
		v.wA = xfA.Apply(proxyA.Vertices[0])
		v.wB = xfB.Apply(proxyB.Vertices[0])
		v.w = math2d.Sub(v.wB, v.wA)
		v.a = 1
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = s.v[i].indexA
		cache.IndexB[i] = s.v[i].indexB
	}
}

func (s *simplex) searchDirection() math2d.Vec2 {
	switch s.count {
	case 1:
		return math2d.Neg(s.v[0].w)
	case 2:
		e12 := math2d.Sub(s.v[1].w, s.v[0].w)
		sgn := math2d.Cross2(e12, math2d.Neg(s.v[0].w))
		if sgn > 0 {
			return math2d.CrossSV(1, e12)
		}
		return math2d.CrossVS(e12, 1)
	default:
		return math2d.Zero2
	}
}

func (s *simplex) closestPoint() math2d.Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return math2d.Add(math2d.Scale(s.v[0].w, s.v[0].a), math2d.Scale(s.v[1].w, s.v[1].a))
	default:
		return math2d.Zero2
	}
}

func (s *simplex) witnessPoints() (pA, pB math2d.Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA = math2d.Add(math2d.Scale(s.v[0].wA, s.v[0].a), math2d.Scale(s.v[1].wA, s.v[1].a))
		pB = math2d.Add(math2d.Scale(s.v[0].wB, s.v[0].a), math2d.Scale(s.v[1].wB, s.v[1].a))
		return
	default:
		pA = math2d.Add(math2d.Add(math2d.Scale(s.v[0].wA, s.v[0].a), math2d.Scale(s.v[1].wA, s.v[1].a)), math2d.Scale(s.v[2].wA, s.v[2].a))
		pB = pA
		return
	}
}

// solve2 reduces a 2-simplex to its closest feature to the origin:
// vertex 0, vertex 1, or the full edge, assigning barycentric weights.
func (s *simplex) solve2() {
	w1, w2 := s.v[0].w, s.v[1].w
	e12 := math2d.Sub(w2, w1)

	d12_2 := -math2d.Dot(w1, e12)
	if d12_2 <= 0 {
		s.v[0].a = 1
		s.count = 1
		return
	}
	d12_1 := math2d.Dot(w2, e12)
	if d12_1 <= 0 {
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
		return
	}
	inv := 1.0 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 reduces a 3-simplex (which always contains the origin, since
// GJK only forms one when the search direction sign flips across it) to
// its closest feature: a vertex, an edge, or the full triangle.
func (s *simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := math2d.Sub(w2, w1)
	w1e12 := math2d.Dot(w1, e12)
	w2e12 := math2d.Dot(w2, e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	e13 := math2d.Sub(w3, w1)
	w1e13 := math2d.Dot(w1, e13)
	w3e13 := math2d.Dot(w3, e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	e23 := math2d.Sub(w3, w2)
	w2e23 := math2d.Dot(w2, e23)
	w3e23 := math2d.Dot(w3, e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	n123 := math2d.Cross2(e12, e13)
	d123_1 := n123 * math2d.Cross2(w2, w3)
	d123_2 := n123 * math2d.Cross2(w3, w1)
	d123_3 := n123 * math2d.Cross2(w1, w2)

	switch {
	case d12_2 <= 0 && d13_2 <= 0:
		s.v[0].a = 1
		s.count = 1
	case d12_1 > 0 && d12_2 > 0 && d123_3 <= 0:
		inv := 1.0 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
	case d13_1 > 0 && d13_2 > 0 && d123_2 <= 0:
		inv := 1.0 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[1] = s.v[2]
		s.v[1].a = d13_2 * inv
		s.count = 2
	case d12_1 <= 0 && d23_2 <= 0:
		s.v[0] = s.v[1]
		s.v[0].a = 1
		s.count = 1
	case d13_1 <= 0 && d23_1 <= 0:
		s.v[0] = s.v[2]
		s.v[0].a = 1
		s.count = 1
	case d23_1 > 0 && d23_2 > 0 && d123_1 <= 0:
		inv := 1.0 / (d23_1 + d23_2)
		s.v[0] = s.v[1]
		s.v[1] = s.v[2]
		s.v[0].a = d23_1 * inv
		s.v[1].a = d23_2 * inv
		s.count = 2
	default:
		inv := 1.0 / (d123_1 + d123_2 + d123_3)
		s.v[0].a = d123_1 * inv
		s.v[1].a = d123_2 * inv
		s.v[2].a = d123_3 * inv
		s.count = 3
	}
}

// Distance implements spec.md §4.5: iterated support-point refinement of
// the Minkowski-difference simplex until the closest feature to the
// origin stops changing (a duplicate support pair appears) or
// conf.MaxDistanceIters is hit.
func Distance(input DistanceInput, cache *SimplexCache, conf StepConf) DistanceOutput {
	proxyA, proxyB := input.ProxyA, input.ProxyB
	xfA, xfB := input.TransformA, input.TransformB

	var s simplex
	s.readCache(cache, proxyA, xfA, proxyB, xfB)

	var saveA, saveB [3]int
	iter := 0
	for ; iter < conf.MaxDistanceIters; iter++ {
		saveCount := s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.v[i].indexA
			saveB[i] = s.v[i].indexB
		}

		switch s.count {
		case 1:
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}

		if s.count == 3 {
			break
		}

		d := s.searchDirection()
		if math2d.LenSqr(d) < math2d.Epsilon*math2d.Epsilon {
			break
		}

		xfAInvD := xfA.Rotation.ApplyT(math2d.Neg(d))
		indexA := proxyA.Support(xfAInvD)
		wA := xfA.Apply(proxyA.Vertices[indexA])

		xfBInvD := xfB.Rotation.ApplyT(d)
		indexB := proxyB.Support(xfBInvD)
		wB := xfB.Apply(proxyB.Vertices[indexB])

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if indexA == saveA[i] && indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		v := &s.v[s.count]
		v.indexA, v.indexB = indexA, indexB
		v.wA, v.wB = wA, wB
		v.w = math2d.Sub(wB, wA)
		s.count++
	}

	pA, pB := s.witnessPoints()
	dist := math2d.Len(math2d.Sub(pB, pA))

	out := DistanceOutput{PointA: pA, PointB: pB, Distance: dist, Iterations: iter, MaxItersHit: iter >= conf.MaxDistanceIters}

	if input.UseRadii {
		if dist < math2d.Epsilon {
			mid := math2d.Scale(math2d.Add(pA, pB), 0.5)
			out.PointA, out.PointB = mid, mid
		} else {
			n, _ := math2d.Normalize(math2d.Sub(pB, pA))
			out.PointA = math2d.Add(pA, math2d.Scale(n, proxyA.Radius))
			out.PointB = math2d.Sub(pB, math2d.Scale(n, proxyB.Radius))
		}
		out.Distance = maxF(0, out.Distance-proxyA.Radius-proxyB.Radius)
	}

	s.writeCache(cache)
	return out
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
