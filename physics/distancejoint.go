// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// distancejoint.go implements a rigid or soft-spring distance constraint
// between a point on each of two bodies, grounded on
// original_source/Box2D's b2DistanceJoint.cpp: the same effective-mass
// derivation and (optional) soft-constraint gamma/bias terms, adapted to
// this module's solverBody/indexOf convention instead of Box2D's direct
// b2Body* pointers.
type DistanceJoint struct {
	jointBase

	length    float64
	stiffness float64 // 0 disables the spring: the joint is rigid
	damping   float64

	// per-step working state, recomputed in initVelocityConstraint.
	localCenterA, localCenterB math2d.Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	u                          math2d.Vec2
	rA, rB                     math2d.Vec2
	mass                       float64
	gamma                      float64
	bias                       float64
	impulse                    float64
}

// DistanceJointDef configures a new DistanceJoint.
type DistanceJointDef struct {
	BodyA, BodyB     BodyHandle
	LocalAnchorA     math2d.Vec2
	LocalAnchorB     math2d.Vec2
	Length           float64
	Stiffness        float64
	Damping          float64
	CollideConnected bool
	UserData         any
}

func newDistanceJoint(def DistanceJointDef) *DistanceJoint {
	return &DistanceJoint{
		jointBase: jointBase{
			a: def.BodyA, b: def.BodyB, enabled: true,
			noCollide:    !def.CollideConnected,
			localAnchorA: def.LocalAnchorA,
			localAnchorB: def.LocalAnchorB,
			userData:     def.UserData,
		},
		length:    def.Length,
		stiffness: def.Stiffness,
		damping:   def.Damping,
	}
}

func (dj *DistanceJoint) initVelocityConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, dt float64) {
	bA, bB := bodies[indexOf[dj.a]], bodies[indexOf[dj.b]]
	dj.localCenterA, dj.localCenterB = bA.localCenter, bB.localCenter
	dj.invMassA, dj.invMassB = bA.invMass, bB.invMass
	dj.invIA, dj.invIB = bA.invI, bB.invI

	qA, qB := math2d.NewRot(bA.a), math2d.NewRot(bB.a)
	dj.rA = qA.Apply(math2d.Sub(dj.localAnchorA, dj.localCenterA))
	dj.rB = qB.Apply(math2d.Sub(dj.localAnchorB, dj.localCenterB))

	d := math2d.Sub(math2d.Add(bB.c, dj.rB), math2d.Add(bA.c, dj.rA))
	length := math2d.Len(d)
	if length > 10*math2d.Epsilon {
		dj.u = math2d.Scale(d, 1.0/length)
	} else {
		dj.u = math2d.Zero2
	}

	crA := math2d.Cross2(dj.rA, dj.u)
	crB := math2d.Cross2(dj.rB, dj.u)
	invMass := dj.invMassA + dj.invIA*crA*crA + dj.invMassB + dj.invIB*crB*crB
	if invMass != 0 {
		dj.mass = 1.0 / invMass
	} else {
		dj.mass = 0
	}

	if dj.stiffness > 0 {
		c := length - dj.length
		omega := 2 * math.Pi * dj.stiffness
		a1 := 2*dj.damping + dt*omega
		a2 := dt * omega * a1
		a3 := 1.0 / (1.0 + a2)
		dj.gamma = 1.0 / (dt * omega * a1)
		dj.bias = c * dt * omega * omega * a3 / a1
		invMass2 := invMass + dj.gamma
		if invMass2 != 0 {
			dj.mass = 1.0 / invMass2
		}
	} else {
		dj.gamma = 0
		dj.bias = 0
	}
}

func (dj *DistanceJoint) warmStartJoint(bodies []*solverBody, indexOf map[BodyHandle]int) {
	bA, bB := bodies[indexOf[dj.a]], bodies[indexOf[dj.b]]
	p := math2d.Scale(dj.u, dj.impulse)
	bA.applyImpulse(math2d.Neg(p), dj.rA)
	bB.applyImpulse(p, dj.rB)
}

func (dj *DistanceJoint) solveVelocityConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, dt float64) {
	bA, bB := bodies[indexOf[dj.a]], bodies[indexOf[dj.b]]
	vpA := math2d.Add(bA.v, math2d.CrossSV(bA.w, dj.rA))
	vpB := math2d.Add(bB.v, math2d.CrossSV(bB.w, dj.rB))
	cdot := math2d.Dot(dj.u, math2d.Sub(vpB, vpA))

	impulse := -dj.mass * (cdot + dj.bias + dj.gamma*dj.impulse)
	dj.impulse += impulse

	p := math2d.Scale(dj.u, impulse)
	bA.applyImpulse(math2d.Neg(p), dj.rA)
	bB.applyImpulse(p, dj.rB)
}

func (dj *DistanceJoint) solvePositionConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, conf StepConf) bool {
	if dj.stiffness > 0 {
		return true // soft constraints are velocity-only, per Box2D.
	}
	bA, bB := bodies[indexOf[dj.a]], bodies[indexOf[dj.b]]
	qA, qB := math2d.NewRot(bA.a), math2d.NewRot(bB.a)
	rA := qA.Apply(math2d.Sub(dj.localAnchorA, dj.localCenterA))
	rB := qB.Apply(math2d.Sub(dj.localAnchorB, dj.localCenterB))

	d := math2d.Sub(math2d.Add(bB.c, rB), math2d.Add(bA.c, rA))
	l := math2d.Len(d)
	var u math2d.Vec2
	if l > 10*math2d.Epsilon {
		u = math2d.Scale(d, 1.0/l)
	}
	c := math2d.Clamp(l-dj.length, -conf.MaxLinearCorrection, conf.MaxLinearCorrection)

	crA := math2d.Cross2(rA, u)
	crB := math2d.Cross2(rB, u)
	invMass := dj.invMassA + dj.invIA*crA*crA + dj.invMassB + dj.invIB*crB*crB
	var impulse float64
	if invMass != 0 {
		impulse = -c / invMass
	}

	p := math2d.Scale(u, impulse)
	bA.c = math2d.Sub(bA.c, math2d.Scale(p, dj.invMassA))
	bA.a -= dj.invIA * math2d.Cross2(rA, p)
	bB.c = math2d.Add(bB.c, math2d.Scale(p, dj.invMassB))
	bB.a += dj.invIB * math2d.Cross2(rB, p)

	return math.Abs(l-dj.length) < conf.LinearSlop
}
