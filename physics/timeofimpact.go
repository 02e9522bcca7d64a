// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"github.com/gazed/rigid2d/math2d"
)

// timeofimpact.go implements spec.md §4.6: the conservative-advancement
// time-of-impact query used by the TOI (CCD) solve step. Grounded on the
// same spec algorithm as distance.go since no teacher/example repo ships
// a 2D TOI implementation; structured as the spec's outer/inner/root-find
// loop nest, named to this module's conventions.

// ToiState classifies a TimeOfImpact result.
type ToiState int

const (
	ToiUnknown ToiState = iota
	ToiFailed
	ToiOverlapped
	ToiTouching
	ToiSeparated
)

// ToiInput bundles the two swept proxies and the time horizon to search.
type ToiInput struct {
	ProxyA, ProxyB DistanceProxy
	SweepA, SweepB math2d.Sweep
	TMax           float64
}

// ToiOutput is the result of a TimeOfImpact query.
type ToiOutput struct {
	State ToiState
	T     float64
}

// separationAxisType tags which body's local frame a SeparationFinder's
// fixed axis lives in.
type separationAxisType int

const (
	sepPoints separationAxisType = iota
	sepFaceA
	sepFaceB
)

// separationFinder evaluates the signed separation along a single fixed
// axis (taken from the Distance simplex cache at t1) as the two proxies'
// transforms sweep forward, per §4.6's "SeparationFinder" step.
type separationFinder struct {
	proxyA, proxyB DistanceProxy
	sweepA, sweepB math2d.Sweep
	axisType       separationAxisType
	localAxis      math2d.Vec2
	localPoint     math2d.Vec2
}

func newSeparationFinder(cache *SimplexCache, proxyA DistanceProxy, sweepA math2d.Sweep, proxyB DistanceProxy, sweepB math2d.Sweep, t1 float64) separationFinder {
	f := separationFinder{proxyA: proxyA, proxyB: proxyB, sweepA: sweepA, sweepB: sweepB}

	xfA := sweepA.Transform(t1)
	xfB := sweepB.Transform(t1)

	switch {
	case cache.Count == 1:
		f.axisType = sepPoints
		localPointA := proxyA.Vertices[cache.IndexA[0]]
		localPointB := proxyB.Vertices[cache.IndexB[0]]
		pA := xfA.Apply(localPointA)
		pB := xfB.Apply(localPointB)
		f.localAxis, _ = math2d.Normalize(math2d.Sub(pB, pA))
	case cache.IndexA[0] == cache.IndexA[1]:
		// Two points on proxy B, one on proxy A: axis is B's edge normal.
		f.axisType = sepFaceB
		lp1 := proxyB.Vertices[cache.IndexB[0]]
		lp2 := proxyB.Vertices[cache.IndexB[1]]
		f.localPoint = math2d.Scale(math2d.Add(lp1, lp2), 0.5)
		edge := math2d.Sub(lp2, lp1)
		f.localAxis, _ = math2d.Normalize(math2d.Vec2{edge[1], -edge[0]})
		n := xfB.Rotation.Apply(f.localAxis)
		pA := xfA.Apply(proxyA.Vertices[cache.IndexA[0]])
		if math2d.Dot(math2d.Sub(pA, xfB.Apply(f.localPoint)), n) < 0 {
			f.localAxis = math2d.Neg(f.localAxis)
		}
	default:
		// Two points on proxy A: axis is A's edge normal.
		f.axisType = sepFaceA
		lp1 := proxyA.Vertices[cache.IndexA[0]]
		lp2 := proxyA.Vertices[cache.IndexA[1]]
		f.localPoint = math2d.Scale(math2d.Add(lp1, lp2), 0.5)
		edge := math2d.Sub(lp2, lp1)
		f.localAxis, _ = math2d.Normalize(math2d.Vec2{edge[1], -edge[0]})
		n := xfA.Rotation.Apply(f.localAxis)
		pB := xfB.Apply(proxyB.Vertices[cache.IndexB[0]])
		if math2d.Dot(math2d.Sub(pB, xfA.Apply(f.localPoint)), n) < 0 {
			f.localAxis = math2d.Neg(f.localAxis)
		}
	}
	return f
}

// findMinSeparation returns, at time t, the (indexA, indexB) witness pair
// that minimizes separation along the finder's fixed axis, and that
// separation.
func (f separationFinder) findMinSeparation(t float64) (indexA, indexB int, separation float64) {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.axisType {
	case sepPoints:
		axisA := xfA.Rotation.ApplyT(f.localAxis)
		axisB := xfB.Rotation.ApplyT(math2d.Neg(f.localAxis))
		indexA = f.proxyA.Support(axisA)
		indexB = f.proxyB.Support(axisB)
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		separation = math2d.Dot(math2d.Sub(pB, pA), f.localAxis)
	case sepFaceA:
		n := xfA.Rotation.Apply(f.localAxis)
		pointA := xfA.Apply(f.localPoint)
		axisB := xfB.Rotation.ApplyT(math2d.Neg(n))
		indexB = f.proxyB.Support(axisB)
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		separation = math2d.Dot(math2d.Sub(pB, pointA), n)
		indexA = -1
	default: // sepFaceB
		n := xfB.Rotation.Apply(f.localAxis)
		pointB := xfB.Apply(f.localPoint)
		axisA := xfA.Rotation.ApplyT(math2d.Neg(n))
		indexA = f.proxyA.Support(axisA)
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		separation = math2d.Dot(math2d.Sub(pA, pointB), n)
		indexB = -1
	}
	return
}

// evaluate returns the separation of a specific witness pair at time t
// (used by the root finder, which fixes the pair found at t2 and samples
// the same pair at varying t).
func (f separationFinder) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.Transform(t)
	xfB := f.sweepB.Transform(t)

	switch f.axisType {
	case sepPoints:
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		return math2d.Dot(math2d.Sub(pB, pA), f.localAxis)
	case sepFaceA:
		n := xfA.Rotation.Apply(f.localAxis)
		pointA := xfA.Apply(f.localPoint)
		pB := xfB.Apply(f.proxyB.Vertices[indexB])
		return math2d.Dot(math2d.Sub(pB, pointA), n)
	default:
		n := xfB.Rotation.Apply(f.localAxis)
		pointB := xfB.Apply(f.localPoint)
		pA := xfA.Apply(f.proxyA.Vertices[indexA])
		return math2d.Dot(math2d.Sub(pA, pointB), n)
	}
}

// TimeOfImpact implements spec.md §4.6 in full: the outer Distance-driven
// loop, the SeparationFinder, and the secant/bisection root finder,
// returning the earliest impact fraction in [0, tMax] and its
// classification.
func TimeOfImpact(input ToiInput, conf StepConf, stats *StepStats) ToiOutput {
	proxyA, proxyB := input.ProxyA, input.ProxyB
	sweepA, sweepB := input.SweepA, input.SweepB
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.Radius + proxyB.Radius
	linearSlop := conf.LinearSlop
	target := maxF(linearSlop, totalRadius-3*linearSlop)
	tolerance := 0.25 * linearSlop

	t1 := 0.0
	var cache SimplexCache

	for iter := 0; iter < conf.MaxToiIters; iter++ {
		xfA := sweepA.Transform(t1)
		xfB := sweepB.Transform(t1)

		distOut := Distance(DistanceInput{ProxyA: proxyA, TransformA: xfA, ProxyB: proxyB, TransformB: xfB}, &cache, conf)
		if distOut.MaxItersHit && stats != nil {
			stats.DistanceMaxIterHits++
		}
		if distOut.Distance <= 0 {
			return ToiOutput{State: ToiOverlapped, T: 0}
		}
		if distOut.Distance < target+tolerance {
			return ToiOutput{State: ToiTouching, T: t1}
		}

		finder := newSeparationFinder(&cache, proxyA, sweepA, proxyB, sweepB, t1)

		converged := false
		t2 := tMax
		for pushBackIter := 0; pushBackIter < cache.Count; pushBackIter++ {
			indexA, indexB, s2 := finder.findMinSeparation(t2)
			if s2 > target+tolerance {
				return ToiOutput{State: ToiSeparated, T: tMax}
			}
			if s2 > target-tolerance {
				t1 = t2
				converged = true
				break
			}

			s1 := finder.evaluate(indexA, indexB, t1)
			if s1 < target-tolerance {
				if stats != nil {
					stats.ToiRootFinderFailures++
				}
				return ToiOutput{State: ToiFailed, T: t1}
			}
			if s1 <= target+tolerance {
				return ToiOutput{State: ToiTouching, T: t1}
			}

			// Root-find f(t) = evaluate(t) - target on [t1, t2].
			a1, a2 := t1, t2
			rootIter := 0
			for ; rootIter < conf.MaxToiRootIters; rootIter++ {
				var t float64
				if rootIter&1 == 1 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				s := finder.evaluate(indexA, indexB, t)
				if abs(s-target) < tolerance {
					t2 = t
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
			}
			if rootIter >= conf.MaxToiRootIters && stats != nil {
				stats.ToiRootFinderFailures++
			}
			if stats != nil {
				stats.ToiSubSteps++
			}
			if pushBackIter+1 >= cache.Count {
				// Cache exhausted without a conclusive classification at
				// this t1: accept the pushed-back t2 as the impact time.
				t1 = t2
				converged = true
			}
		}
		if converged {
			break
		}
	}

	if stats != nil {
		stats.ToiContactsProcessed++
	}

	return ToiOutput{State: ToiTouching, T: t1}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
