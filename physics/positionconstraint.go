// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "github.com/gazed/rigid2d/math2d"

// positionconstraint.go implements spec.md §4.7's position half: a
// non-linear Gauss-Seidel corrector that nudges positions/angles (never
// velocities) to remove overlap left after the velocity solve, run for
// both the regular and TOI phases with different tolerances.

type positionConstraintPoint struct {
	localPoint math2d.Vec2
}

type positionConstraint struct {
	points     [2]positionConstraintPoint
	pointCount int

	localNormal math2d.Vec2
	localPoint  math2d.Vec2
	manifoldType ManifoldType

	localCenterA, localCenterB math2d.Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	radiusA, radiusB           float64

	indexA, indexB int
}

func buildPositionConstraints(contacts []*Contact, bodies []*solverBody, indexOf map[BodyHandle]int, world *World) []positionConstraint {
	pcs := make([]positionConstraint, len(contacts))
	for i, c := range contacts {
		pc := &pcs[i]
		pc.pointCount = c.manifold.PointCount
		pc.localNormal = c.manifold.LocalNormal
		pc.localPoint = c.manifold.LocalPoint
		pc.manifoldType = c.manifold.Type

		pc.indexA = indexOf[c.bodyA]
		pc.indexB = indexOf[c.bodyB]
		bA, bB := bodies[pc.indexA], bodies[pc.indexB]
		pc.invMassA, pc.invMassB = bA.invMass, bB.invMass
		pc.invIA, pc.invIB = bA.invI, bB.invI
		pc.localCenterA, pc.localCenterB = bA.localCenter, bB.localCenter

		fA, _ := world.fixtures.get(c.fixtureA.h)
		fB, _ := world.fixtures.get(c.fixtureB.h)
		if fA != nil {
			pc.radiusA = shapeRadius(fA.shape)
		}
		if fB != nil {
			pc.radiusB = shapeRadius(fB.shape)
		}

		for j := 0; j < pc.pointCount; j++ {
			pc.points[j].localPoint = c.manifold.Points[j].LocalPoint
		}
	}
	return pcs
}

func shapeRadius(s Shape) float64 {
	switch v := s.(type) {
	case Circle:
		return v.Radius
	case Polygon:
		return v.Radius
	default:
		return 0
	}
}

// solvePositionConstraints runs one Gauss-Seidel iteration over every
// constraint, returning the minimum separation seen (used by the caller
// to decide whether the phase has converged).
func solvePositionConstraints(pcs []positionConstraint, bodies []*solverBody, resolutionRate, linearSlop, maxLinearCorrection float64) float64 {
	minSeparation := 0.0

	for i := range pcs {
		pc := &pcs[i]
		bA, bB := bodies[pc.indexA], bodies[pc.indexB]

		for j := 0; j < pc.pointCount; j++ {
			point, normal, separation := positionAnchor(pc, j, bA, bB)
			if separation < minSeparation {
				minSeparation = separation
			}

			cCorrection := math2d.Clamp(resolutionRate*(separation+linearSlop), -maxLinearCorrection, 0)
			rA := math2d.Sub(point, bA.c)
			rB := math2d.Sub(point, bB.c)

			rnA := math2d.Cross2(rA, normal)
			rnB := math2d.Cross2(rB, normal)
			k := pc.invMassA + pc.invMassB + pc.invIA*rnA*rnA + pc.invIB*rnB*rnB
			var impulse float64
			if k > 0 {
				impulse = -cCorrection / k
			}

			p := math2d.Scale(normal, impulse)
			bA.c = math2d.Sub(bA.c, math2d.Scale(p, pc.invMassA))
			bA.a -= pc.invIA * math2d.Cross2(rA, p)
			bB.c = math2d.Add(bB.c, math2d.Scale(p, pc.invMassB))
			bB.a += pc.invIB * math2d.Cross2(rB, p)
		}
	}
	return minSeparation
}

// positionAnchor reconstructs the world-space contact point, normal, and
// signed separation for constraint point j from the solver bodies'
// CURRENT position/angle (not their state at manifold-build time),
// which is what makes this a non-linear Gauss-Seidel corrector.
func positionAnchor(pc *positionConstraint, j int, bA, bB *solverBody) (point, normal math2d.Vec2, separation float64) {
	xfA := math2d.Transform{Position: math2d.Sub(bA.c, math2d.NewRot(bA.a).Apply(pc.localCenterA)), Rotation: math2d.NewRot(bA.a)}
	xfB := math2d.Transform{Position: math2d.Sub(bB.c, math2d.NewRot(bB.a).Apply(pc.localCenterB)), Rotation: math2d.NewRot(bB.a)}

	switch pc.manifoldType {
	case ManifoldCircles:
		pA := xfA.Apply(pc.localPoint)
		pB := xfB.Apply(pc.points[0].localPoint)
		normal, _ = math2d.Normalize(math2d.Sub(pB, pA))
		point = math2d.Scale(math2d.Add(pA, pB), 0.5)
		separation = math2d.Dot(math2d.Sub(pB, pA), normal) - pc.radiusA - pc.radiusB
	case ManifoldFaceA:
		normal = xfA.Rotation.Apply(pc.localNormal)
		planePoint := xfA.Apply(pc.localPoint)
		clip := xfB.Apply(pc.points[j].localPoint)
		separation = math2d.Dot(math2d.Sub(clip, planePoint), normal) - pc.radiusA - pc.radiusB
		point = clip
	default: // ManifoldFaceB
		normal = xfB.Rotation.Apply(pc.localNormal)
		planePoint := xfB.Apply(pc.localPoint)
		clip := xfA.Apply(pc.points[j].localPoint)
		separation = math2d.Dot(math2d.Sub(clip, planePoint), normal) - pc.radiusA - pc.radiusB
		point = clip
		normal = math2d.Neg(normal)
	}
	return
}
