// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// revolutejoint.go implements a pin joint with an optional motor and
// angle limit, grounded on original_source/PlayRho's RevoluteJoint.hpp:
// a 2x2 point-to-point constraint plus a scalar motor/limit constraint
// on the relative angle, solved motor first, then limit, then the point
// constraint, matching PlayRho's SolveVelocityConstraints ordering.
type RevoluteJoint struct {
	jointBase

	referenceAngle float64

	enableMotor   bool
	motorSpeed    float64
	maxMotorTorque float64

	enableLimit bool
	lowerAngle  float64
	upperAngle  float64

	// per-step working state.
	localCenterA, localCenterB math2d.Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	rA, rB                     math2d.Vec2
	K                          math2d.Mat22
	axialMass                  float64
	angle                      float64

	impulse      math2d.Vec2
	motorImpulse float64
	lowerImpulse float64
	upperImpulse float64
}

// RevoluteJointDef configures a new RevoluteJoint.
type RevoluteJointDef struct {
	BodyA, BodyB     BodyHandle
	LocalAnchorA     math2d.Vec2
	LocalAnchorB     math2d.Vec2
	ReferenceAngle   float64
	EnableMotor      bool
	MotorSpeed       float64
	MaxMotorTorque   float64
	EnableLimit      bool
	LowerAngle       float64
	UpperAngle       float64
	CollideConnected bool
	UserData         any
}

func newRevoluteJoint(def RevoluteJointDef) *RevoluteJoint {
	return &RevoluteJoint{
		jointBase: jointBase{
			a: def.BodyA, b: def.BodyB, enabled: true,
			noCollide:    !def.CollideConnected,
			localAnchorA: def.LocalAnchorA,
			localAnchorB: def.LocalAnchorB,
			userData:     def.UserData,
		},
		referenceAngle: def.ReferenceAngle,
		enableMotor:    def.EnableMotor,
		motorSpeed:     def.MotorSpeed,
		maxMotorTorque: def.MaxMotorTorque,
		enableLimit:    def.EnableLimit,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
	}
}

func (rj *RevoluteJoint) initVelocityConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, dt float64) {
	bA, bB := bodies[indexOf[rj.a]], bodies[indexOf[rj.b]]
	rj.localCenterA, rj.localCenterB = bA.localCenter, bB.localCenter
	rj.invMassA, rj.invMassB = bA.invMass, bB.invMass
	rj.invIA, rj.invIB = bA.invI, bB.invI

	rj.angle = bB.a - bA.a - rj.referenceAngle

	qA, qB := math2d.NewRot(bA.a), math2d.NewRot(bB.a)
	rj.rA = qA.Apply(math2d.Sub(rj.localAnchorA, rj.localCenterA))
	rj.rB = qB.Apply(math2d.Sub(rj.localAnchorB, rj.localCenterB))

	mA, mB, iA, iB := rj.invMassA, rj.invMassB, rj.invIA, rj.invIB
	rj.K.Col1[0] = mA + mB + rj.rA[1]*rj.rA[1]*iA + rj.rB[1]*rj.rB[1]*iB
	rj.K.Col2[0] = -rj.rA[1]*rj.rA[0]*iA - rj.rB[1]*rj.rB[0]*iB
	rj.K.Col1[1] = rj.K.Col2[0]
	rj.K.Col2[1] = mA + mB + rj.rA[0]*rj.rA[0]*iA + rj.rB[0]*rj.rB[0]*iB

	axialMass := iA + iB
	if axialMass > 0 {
		rj.axialMass = 1.0 / axialMass
	} else {
		rj.axialMass = 0
	}

	if !rj.enableMotor {
		rj.motorImpulse = 0
	}
	if !rj.enableLimit {
		rj.lowerImpulse = 0
		rj.upperImpulse = 0
	}
}

func (rj *RevoluteJoint) warmStartJoint(bodies []*solverBody, indexOf map[BodyHandle]int) {
	bA, bB := bodies[indexOf[rj.a]], bodies[indexOf[rj.b]]
	axialImpulse := rj.motorImpulse + rj.lowerImpulse - rj.upperImpulse
	bA.v = math2d.Sub(bA.v, math2d.Scale(rj.impulse, rj.invMassA))
	bA.w -= rj.invIA * (math2d.Cross2(rj.rA, rj.impulse) + axialImpulse)
	bB.v = math2d.Add(bB.v, math2d.Scale(rj.impulse, rj.invMassB))
	bB.w += rj.invIB * (math2d.Cross2(rj.rB, rj.impulse) + axialImpulse)
}

func (rj *RevoluteJoint) solveVelocityConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, dt float64) {
	bA, bB := bodies[indexOf[rj.a]], bodies[indexOf[rj.b]]

	if rj.enableMotor {
		cdot := bB.w - bA.w - rj.motorSpeed
		impulse := -rj.axialMass * cdot
		oldImpulse := rj.motorImpulse
		maxImpulse := rj.maxMotorTorque * dt
		rj.motorImpulse = math2d.Clamp(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = rj.motorImpulse - oldImpulse
		bA.w -= rj.invIA * impulse
		bB.w += rj.invIB * impulse
	}

	if rj.enableLimit {
		cLower := rj.angle - rj.lowerAngle
		cdot := bB.w - bA.w
		impulse := -rj.axialMass * (cdot + math.Max(cLower, 0)/dt)
		oldImpulse := rj.lowerImpulse
		rj.lowerImpulse = math.Max(oldImpulse+impulse, 0)
		impulse = rj.lowerImpulse - oldImpulse
		bA.w -= rj.invIA * impulse
		bB.w += rj.invIB * impulse

		cUpper := rj.upperAngle - rj.angle
		cdot2 := bA.w - bB.w
		impulse2 := -rj.axialMass * (cdot2 + math.Max(cUpper, 0)/dt)
		oldImpulse2 := rj.upperImpulse
		rj.upperImpulse = math.Max(oldImpulse2+impulse2, 0)
		impulse2 = rj.upperImpulse - oldImpulse2
		bA.w += rj.invIA * impulse2
		bB.w -= rj.invIB * impulse2
	}

	vpA := math2d.Add(bA.v, math2d.CrossSV(bA.w, rj.rA))
	vpB := math2d.Add(bB.v, math2d.CrossSV(bB.w, rj.rB))
	cdot := math2d.Sub(vpB, vpA)
	impulse := rj.K.Solve(math2d.Neg(cdot))

	rj.impulse = math2d.Add(rj.impulse, impulse)

	bA.v = math2d.Sub(bA.v, math2d.Scale(impulse, rj.invMassA))
	bA.w -= rj.invIA * math2d.Cross2(rj.rA, impulse)
	bB.v = math2d.Add(bB.v, math2d.Scale(impulse, rj.invMassB))
	bB.w += rj.invIB * math2d.Cross2(rj.rB, impulse)
}

func (rj *RevoluteJoint) solvePositionConstraint(bodies []*solverBody, indexOf map[BodyHandle]int, conf StepConf) bool {
	bA, bB := bodies[indexOf[rj.a]], bodies[indexOf[rj.b]]
	linearSlop := conf.LinearSlop
	angularSlop := conf.AngularSlop
	maxLinearCorrection := conf.MaxLinearCorrection

	angularError := 0.0
	if rj.enableLimit {
		angle := bB.a - bA.a - rj.referenceAngle
		var c float64
		if rj.upperAngle-rj.lowerAngle < 2*angularSlop {
			c = math2d.Clamp(angle-rj.lowerAngle, -maxLinearCorrection, maxLinearCorrection)
		} else if angle <= rj.lowerAngle {
			c = math2d.Clamp(angle-rj.lowerAngle+angularSlop, -maxLinearCorrection, 0)
		} else if angle >= rj.upperAngle {
			c = math2d.Clamp(angle-rj.upperAngle-angularSlop, 0, maxLinearCorrection)
		}
		if c != 0 {
			angularError = math.Abs(c)
			invMass := rj.invIA + rj.invIB
			var impulse float64
			if invMass > 0 {
				impulse = -c / invMass
			}
			bA.a -= rj.invIA * impulse
			bB.a += rj.invIB * impulse
		}
	}

	qA, qB := math2d.NewRot(bA.a), math2d.NewRot(bB.a)
	rA := qA.Apply(math2d.Sub(rj.localAnchorA, rj.localCenterA))
	rB := qB.Apply(math2d.Sub(rj.localAnchorB, rj.localCenterB))

	c := math2d.Sub(math2d.Add(bB.c, rB), math2d.Add(bA.c, rA))
	positionError := math2d.Len(c)

	mA, mB, iA, iB := rj.invMassA, rj.invMassB, rj.invIA, rj.invIB
	var k math2d.Mat22
	k.Col1[0] = mA + mB + rA[1]*rA[1]*iA + rB[1]*rB[1]*iB
	k.Col2[0] = -rA[1]*rA[0]*iA - rB[1]*rB[0]*iB
	k.Col1[1] = k.Col2[0]
	k.Col2[1] = mA + mB + rA[0]*rA[0]*iA + rB[0]*rB[0]*iB

	impulse := math2d.Neg(k.Solve(c))
	bA.c = math2d.Sub(bA.c, math2d.Scale(impulse, mA))
	bA.a -= iA * math2d.Cross2(rA, impulse)
	bB.c = math2d.Add(bB.c, math2d.Scale(impulse, mB))
	bB.a += iB * math2d.Cross2(rB, impulse)

	return positionError <= linearSlop && angularError <= angularSlop
}
