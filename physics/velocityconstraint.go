// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "github.com/gazed/rigid2d/math2d"

// velocityconstraint.go implements spec.md §4.7's velocity half: warm
// starting, per-point friction solve, then normal solve (single-point or
// 2x2 block for two-point manifolds). Grounded on the same spec text as
// positionconstraint.go; no teacher/example repo carries a sequential-
// impulse solver to draw from.

type velocityConstraintPoint struct {
	rA, rB           math2d.Vec2 // contact point relative to each body's COM
	normalImpulse    float64
	tangentImpulse   float64
	normalMass       float64
	tangentMass      float64
	velocityBias     float64
}

type velocityConstraint struct {
	points     [2]velocityConstraintPoint
	pointCount int

	normal math2d.Vec2

	indexA, indexB     int
	invMassA, invMassB float64
	invIA, invIB       float64

	friction     float64
	restitution  float64
	tangentSpeed float64

	K       math2d.Mat22
	validK  bool

	contact *Contact
}

// buildVelocityConstraints initializes one velocityConstraint per island
// contact from its current manifold, in the bodies' solver-local center-
// of-mass frame, per the standard Box2D-family b2ContactSolver::
// InitializeVelocityConstraints algorithm.
func buildVelocityConstraints(contacts []*Contact, bodies []*solverBody, indexOf map[BodyHandle]int, conf StepConf) []velocityConstraint {
	vcs := make([]velocityConstraint, len(contacts))
	for ci, c := range contacts {
		vc := &vcs[ci]
		vc.contact = c
		vc.pointCount = c.manifold.PointCount
		vc.friction = c.friction
		vc.restitution = c.restitution
		vc.tangentSpeed = c.tangentSpeed

		vc.indexA = indexOf[c.bodyA]
		vc.indexB = indexOf[c.bodyB]
		bA, bB := bodies[vc.indexA], bodies[vc.indexB]
		vc.invMassA, vc.invMassB = bA.invMass, bB.invMass
		vc.invIA, vc.invIB = bA.invI, bB.invI

		worldManifold := computeWorldManifold(c, bA.xf(), bB.xf())
		vc.normal = worldManifold.normal

		for i := 0; i < vc.pointCount; i++ {
			p := &vc.points[i]
			p.rA = math2d.Sub(worldManifold.points[i], bA.c)
			p.rB = math2d.Sub(worldManifold.points[i], bB.c)

			rnA := math2d.Cross2(p.rA, vc.normal)
			rnB := math2d.Cross2(p.rB, vc.normal)
			kNormal := vc.invMassA + vc.invMassB + vc.invIA*rnA*rnA + vc.invIB*rnB*rnB
			if kNormal > 0 {
				p.normalMass = 1.0 / kNormal
			}

			tangent := math2d.CrossVS(vc.normal, 1)
			rtA := math2d.Cross2(p.rA, tangent)
			rtB := math2d.Cross2(p.rB, tangent)
			kTangent := vc.invMassA + vc.invMassB + vc.invIA*rtA*rtA + vc.invIB*rtB*rtB
			if kTangent > 0 {
				p.tangentMass = 1.0 / kTangent
			}

			relVel := relativeVelocity(bA, bB, p.rA, p.rB)
			vn := math2d.Dot(relVel, vc.normal)
			if vn < -conf.VelocityThreshold {
				p.velocityBias = -vc.restitution * vn
			}

			p.normalImpulse = c.manifold.Points[i].NormalImpulse
			p.tangentImpulse = c.manifold.Points[i].TangentImpulse
		}

		if vc.pointCount == 2 {
			p1, p2 := &vc.points[0], &vc.points[1]
			rn1A := math2d.Cross2(p1.rA, vc.normal)
			rn1B := math2d.Cross2(p1.rB, vc.normal)
			rn2A := math2d.Cross2(p2.rA, vc.normal)
			rn2B := math2d.Cross2(p2.rB, vc.normal)
			k11 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn1A + vc.invIB*rn1B*rn1B
			k22 := vc.invMassA + vc.invMassB + vc.invIA*rn2A*rn2A + vc.invIB*rn2B*rn2B
			k12 := vc.invMassA + vc.invMassB + vc.invIA*rn1A*rn2A + vc.invIB*rn1B*rn2B
			const maxConditionNumber = 1000.0
			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.K = math2d.NewMat22(k11, k12, k12, k22)
				vc.validK = true
			}
		}
	}
	return vcs
}

// warmStart re-applies each constraint's carried-over impulses before the
// first velocity iteration, per §4.7 "Warm start".
func warmStart(vcs []velocityConstraint, bodies []*solverBody) {
	for i := range vcs {
		vc := &vcs[i]
		bA, bB := bodies[vc.indexA], bodies[vc.indexB]
		tangent := math2d.CrossVS(vc.normal, 1)
		for j := 0; j < vc.pointCount; j++ {
			p := vc.points[j]
			impulse := math2d.Add(math2d.Scale(vc.normal, p.normalImpulse), math2d.Scale(tangent, p.tangentImpulse))
			bA.applyImpulse(math2d.Neg(impulse), p.rA)
			bB.applyImpulse(impulse, p.rB)
		}
	}
}

// solveVelocityConstraints runs one velocity iteration over every
// constraint: friction first, then normal (block-solved when a valid 2x2
// K exists and DoBlockSolve is set).
func solveVelocityConstraints(vcs []velocityConstraint, bodies []*solverBody, doBlockSolve bool) {
	for i := range vcs {
		vc := &vcs[i]
		bA, bB := bodies[vc.indexA], bodies[vc.indexB]
		tangent := math2d.CrossVS(vc.normal, 1)

		for j := 0; j < vc.pointCount; j++ {
			p := &vc.points[j]
			dv := relativeVelocity(bA, bB, p.rA, p.rB)
			vt := math2d.Dot(dv, tangent) - vc.tangentSpeed
			lambda := p.tangentMass * (-vt)

			maxFriction := vc.friction * p.normalImpulse
			newImpulse := clampAbs(p.tangentImpulse+lambda, maxFriction)
			lambda = newImpulse - p.tangentImpulse
			p.tangentImpulse = newImpulse

			impulse := math2d.Scale(tangent, lambda)
			bA.applyImpulse(math2d.Neg(impulse), p.rA)
			bB.applyImpulse(impulse, p.rB)
		}

		if vc.pointCount == 1 || !vc.validK || !doBlockSolve {
			for j := 0; j < vc.pointCount; j++ {
				p := &vc.points[j]
				dv := relativeVelocity(bA, bB, p.rA, p.rB)
				vn := math2d.Dot(dv, vc.normal)
				lambda := -p.normalMass * (vn - p.velocityBias)
				newImpulse := maxF(p.normalImpulse+lambda, 0)
				lambda = newImpulse - p.normalImpulse
				p.normalImpulse = newImpulse

				impulse := math2d.Scale(vc.normal, lambda)
				bA.applyImpulse(math2d.Neg(impulse), p.rA)
				bB.applyImpulse(impulse, p.rB)
			}
			continue
		}

		solveBlockNormal(vc, bA, bB)
	}
}

// solveBlockNormal implements §4.7's 2x2 LCP by case enumeration: both
// points free, only point 1 active, only point 2 active, both clamped.
func solveBlockNormal(vc *velocityConstraint, bA, bB *solverBody) {
	p1, p2 := &vc.points[0], &vc.points[1]

	a := math2d.Vec2{p1.normalImpulse, p2.normalImpulse}

	dv1 := relativeVelocity(bA, bB, p1.rA, p1.rB)
	dv2 := relativeVelocity(bA, bB, p2.rA, p2.rB)
	vn1 := math2d.Dot(dv1, vc.normal)
	vn2 := math2d.Dot(dv2, vc.normal)

	b := math2d.Vec2{vn1 - p1.velocityBias, vn2 - p2.velocityBias}
	b = math2d.Sub(b, vc.K.Apply(a))

	const epsilon = 1e-9

	// Case 1: both impulses free (unconstrained 2x2 solve).
	x := math2d.Neg(vc.K.Solve(b))
	if x[0] >= 0 && x[1] >= 0 {
		applyBlockDelta(vc, bA, bB, math2d.Sub(x, a))
		p1.normalImpulse, p2.normalImpulse = x[0], x[1]
		return
	}

	// Case 2: only point 1 active.
	x0 := -p1.normalMass * b[0]
	x1 := 0.0
	if x0 >= 0 {
		vn2c := vc.K.Col2[1]*x0 + b[1]
		if vn2c >= -epsilon {
			applyBlockDelta(vc, bA, bB, math2d.Vec2{x0 - a[0], x1 - a[1]})
			p1.normalImpulse, p2.normalImpulse = x0, x1
			return
		}
	}

	// Case 3: only point 2 active.
	x1b := -p2.normalMass * b[1]
	x0b := 0.0
	if x1b >= 0 {
		vn1c := vc.K.Col2[0]*x1b + b[0]
		if vn1c >= -epsilon {
			applyBlockDelta(vc, bA, bB, math2d.Vec2{x0b - a[0], x1b - a[1]})
			p1.normalImpulse, p2.normalImpulse = x0b, x1b
			return
		}
	}

	// Case 4: both clamped to zero; only valid if resulting relative
	// velocities are separating.
	vn1c := b[0]
	vn2c := b[1]
	if vn1c >= -epsilon && vn2c >= -epsilon {
		applyBlockDelta(vc, bA, bB, math2d.Vec2{0 - a[0], 0 - a[1]})
		p1.normalImpulse, p2.normalImpulse = 0, 0
	}
}

func applyBlockDelta(vc *velocityConstraint, bA, bB *solverBody, d math2d.Vec2) {
	p1, p2 := vc.points[0], vc.points[1]
	impulse1 := math2d.Scale(vc.normal, d[0])
	impulse2 := math2d.Scale(vc.normal, d[1])
	bA.applyImpulse(math2d.Neg(impulse1), p1.rA)
	bB.applyImpulse(impulse1, p1.rB)
	bA.applyImpulse(math2d.Neg(impulse2), p2.rA)
	bB.applyImpulse(impulse2, p2.rB)
}

// writeBackImpulses stores each velocity constraint's final accumulated
// impulses back onto the Contact's manifold points, so the next step's
// update() can warm-start from them.
func writeBackImpulses(vcs []velocityConstraint) {
	for i := range vcs {
		vc := &vcs[i]
		for j := 0; j < vc.pointCount; j++ {
			vc.contact.manifold.Points[j].NormalImpulse = vc.points[j].normalImpulse
			vc.contact.manifold.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

func relativeVelocity(bA, bB *solverBody, rA, rB math2d.Vec2) math2d.Vec2 {
	vA := math2d.Add(bA.v, math2d.CrossSV(bA.w, rA))
	vB := math2d.Add(bB.v, math2d.CrossSV(bB.w, rB))
	return math2d.Sub(vB, vA)
}

// worldManifold is the manifold's points and normal expressed in world
// space, rebuilt each time from the bodies' current transforms (the
// manifold itself only ever stores local-frame data).
type worldManifold struct {
	normal math2d.Vec2
	points [2]math2d.Vec2
}

// computeWorldManifold follows Box2D's b2WorldManifold::Initialize: the
// returned points sit midway between each shape's surface (not its
// reference feature), using the contact's cached per-fixture radii, so a
// circle-vs-polygon pair anchors its constraint at the true contact point
// instead of one shape's raw clip point.
func computeWorldManifold(c *Contact, xfA, xfB math2d.Transform) worldManifold {
	var wm worldManifold
	m := c.manifold
	if m.PointCount == 0 {
		return wm
	}
	radiusA, radiusB := c.radiusA, c.radiusB
	switch m.Type {
	case ManifoldCircles:
		wm.normal = math2d.Vec2{1, 0}
		pA := xfA.Apply(m.LocalPoint)
		pB := xfB.Apply(m.Points[0].LocalPoint)
		if math2d.DistSqr(pA, pB) > math2d.Epsilon {
			wm.normal, _ = math2d.Normalize(math2d.Sub(pB, pA))
		}
		cA := math2d.Add(pA, math2d.Scale(wm.normal, radiusA))
		cB := math2d.Sub(pB, math2d.Scale(wm.normal, radiusB))
		wm.points[0] = math2d.Scale(math2d.Add(cA, cB), 0.5)
	case ManifoldFaceA:
		wm.normal = xfA.Rotation.Apply(m.LocalNormal)
		planePoint := xfA.Apply(m.LocalPoint)
		for i := 0; i < m.PointCount; i++ {
			clip := xfB.Apply(m.Points[i].LocalPoint)
			cA := math2d.Add(clip, math2d.Scale(wm.normal, radiusA-math2d.Dot(math2d.Sub(clip, planePoint), wm.normal)))
			cB := math2d.Sub(clip, math2d.Scale(wm.normal, radiusB))
			wm.points[i] = math2d.Scale(math2d.Add(cA, cB), 0.5)
		}
	case ManifoldFaceB:
		wm.normal = xfB.Rotation.Apply(m.LocalNormal)
		planePoint := xfB.Apply(m.LocalPoint)
		for i := 0; i < m.PointCount; i++ {
			clip := xfA.Apply(m.Points[i].LocalPoint)
			cB := math2d.Add(clip, math2d.Scale(wm.normal, radiusB-math2d.Dot(math2d.Sub(clip, planePoint), wm.normal)))
			cA := math2d.Sub(clip, math2d.Scale(wm.normal, radiusA))
			wm.points[i] = math2d.Scale(math2d.Add(cA, cB), 0.5)
		}
		wm.normal = math2d.Neg(wm.normal)
	}
	return wm
}
