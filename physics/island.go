// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// island.go implements spec.md §4.8 (the island builder) and the island-
// local portion of §4.7's solve (warm start, velocity/position
// iterations, integration, sleep). No teacher code forms islands (its
// physics/ steps bodies independently), so this follows the spec's own
// DFS description directly.

// solverBody is the per-step working copy of one island body's dynamic
// state: position/rotation and velocity, integrated and corrected in
// place, then written back to the Body at the end of the solve.
type solverBody struct {
	handle      BodyHandle
	bodyType    BodyType
	localCenter math2d.Vec2
	invMass     float64
	invI        float64

	c math2d.Vec2 // center of mass position
	a float64     // angle

	v math2d.Vec2
	w float64
}

func (b *solverBody) xf() math2d.Transform {
	rot := math2d.NewRot(b.a)
	return math2d.Transform{Position: math2d.Sub(b.c, rot.Apply(b.localCenter)), Rotation: rot}
}

func (b *solverBody) applyImpulse(impulse, r math2d.Vec2) {
	b.v = math2d.Add(b.v, math2d.Scale(impulse, b.invMass))
	b.w += b.invI * math2d.Cross2(r, impulse)
}

// island is one connected component of awake, non-static bodies, the
// static bodies they touch (members that do not extend the component),
// and the touching, non-sensor contacts and enabled joints linking them.
type island struct {
	bodies   []BodyHandle
	contacts []*Contact
	joints   []Joint
}

// buildIslands runs the §4.8 DFS from every unvisited, awake, non-static
// body. A static body joins every island that reaches it: its flagIsland
// is cleared after each island. The other bodies' flagIsland and the
// contacts' contactIsland bits stay set until solveIsland clears them.
func buildIslands(w *World) []island {
	var islands []island
	visitedJoint := make(map[JointHandle]bool)

	var stack []BodyHandle
	w.bodies.each(func(h handle, b *Body) {
		bh := BodyHandle{h: h}
		if b.flags.has(flagIsland) || !b.isAwake() || !b.flags.has(flagEnabled) || b.bodyType == StaticBody {
			return
		}

		var isl island
		stack = stack[:0]
		stack = append(stack, bh)
		b.flags.set(flagIsland, true)

		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			curBody, ok := w.bodies.get(cur.h)
			if !ok {
				continue
			}
			isl.bodies = append(isl.bodies, cur)

			if curBody.bodyType == StaticBody {
				continue
			}
			if !curBody.isAwake() {
				curBody.setAwake(true)
			}

			for _, ch := range curBody.contacts {
				c, ok := w.contacts.get(ch.h)
				if !ok || c.flags&contactIsland != 0 {
					continue
				}
				if !c.isEnabled() || !c.isTouching() {
					continue
				}
				fA, okA := w.fixtures.get(c.fixtureA.h)
				fB, okB := w.fixtures.get(c.fixtureB.h)
				if !okA || !okB || fA.isSensor || fB.isSensor {
					continue
				}
				c.flags |= contactIsland
				isl.contacts = append(isl.contacts, c)

				other := c.bodyA
				if other == cur {
					other = c.bodyB
				}
				otherBody, ok := w.bodies.get(other.h)
				if !ok || otherBody.flags.has(flagIsland) {
					continue
				}
				otherBody.flags.set(flagIsland, true)
				stack = append(stack, other)
			}

			for _, je := range curBody.jointEdges {
				j, ok := w.joints.get(je.Joint.h)
				if !ok || visitedJoint[je.Joint] {
					continue
				}
				jv := *j
				if !jv.isEnabled() {
					continue
				}
				visitedJoint[je.Joint] = true
				jv.setIsland(true)
				isl.joints = append(isl.joints, jv)

				otherBody, ok := w.bodies.get(je.Other.h)
				if !ok || otherBody.flags.has(flagIsland) {
					continue
				}
				otherBody.flags.set(flagIsland, true)
				stack = append(stack, je.Other)
			}
		}

		for _, ib := range isl.bodies {
			if sb, ok := w.bodies.get(ib.h); ok && sb.bodyType == StaticBody {
				sb.flags.set(flagIsland, false)
			}
		}

		islands = append(islands, isl)
	})

	return islands
}

// solveIsland runs the full per-island regular-phase solve: build
// solver bodies, integrate forces, warm-start, iterate velocity then
// position constraints, write results back, and update sleep timers.
func solveIsland(w *World, isl island, gravity math2d.Vec2, conf StepConf, stats *StepStats) {
	bodies := make([]*solverBody, len(isl.bodies))
	indexOf := make(map[BodyHandle]int, len(isl.bodies))
	srcBodies := make([]*Body, len(isl.bodies))

	for i, bh := range isl.bodies {
		b, _ := w.bodies.get(bh.h)
		srcBodies[i] = b
		indexOf[bh] = i
		sb := &solverBody{
			handle:      bh,
			bodyType:    b.bodyType,
			localCenter: b.sweep.LocalCenter,
			invMass:     b.invMass,
			invI:        b.invInertia,
			c:           b.sweep.C1,
			a:           b.sweep.A1,
			v:           b.linearVelocity,
			w:           b.angularVelocity,
		}
		if b.bodyType == DynamicBody {
			sb.v = math2d.Add(sb.v, math2d.Scale(math2d.Add(math2d.Scale(gravity, b.gravityScale), math2d.Scale(b.force, b.invMass)), conf.Dt))
			sb.w += conf.Dt * b.invInertia * b.torque
			sb.v = math2d.Scale(sb.v, 1.0/(1.0+conf.Dt*b.linearDamping))
			sb.w *= 1.0 / (1.0 + conf.Dt*b.angularDamping)
		}
		bodies[i] = sb
	}

	vcs := buildVelocityConstraints(isl.contacts, bodies, indexOf, conf)
	pcs := buildPositionConstraints(isl.contacts, bodies, indexOf, w)

	for _, j := range isl.joints {
		j.initVelocityConstraint(bodies, indexOf, conf.Dt)
	}

	if conf.DoWarmStart {
		warmStart(vcs, bodies)
		for _, j := range isl.joints {
			j.warmStartJoint(bodies, indexOf)
		}
	}

	for i := 0; i < conf.RegVelocityIterations; i++ {
		for _, j := range isl.joints {
			j.solveVelocityConstraint(bodies, indexOf, conf.Dt)
		}
		solveVelocityConstraints(vcs, bodies, conf.DoBlockSolve)
	}
	writeBackImpulses(vcs)

	if listener := w.contactManager.listener; listener != nil {
		for i := range vcs {
			vc := &vcs[i]
			var impulse ContactImpulse
			impulse.Count = vc.pointCount
			for j := 0; j < vc.pointCount; j++ {
				impulse.NormalImpulses[j] = vc.points[j].normalImpulse
				impulse.TangentImpulses[j] = vc.points[j].tangentImpulse
			}
			listener.PostSolve(vc.contact, &impulse)
		}
	}

	for _, sb := range bodies {
		translation := math2d.Scale(sb.v, conf.Dt)
		if math2d.LenSqr(translation) > conf.MaxTranslation*conf.MaxTranslation {
			sb.v = clampMag(sb.v, conf.MaxTranslation/conf.Dt)
		}
		if rot := sb.w * conf.Dt; rot*rot > conf.MaxRotation*conf.MaxRotation {
			sb.w = clampAbs(sb.w, conf.MaxRotation/conf.Dt)
		}
		sb.c = math2d.Add(sb.c, math2d.Scale(sb.v, conf.Dt))
		sb.a += sb.w * conf.Dt
	}

	positionSolved := false
	for i := 0; i < conf.RegPositionIterations; i++ {
		minSeparation := solvePositionConstraints(pcs, bodies, conf.RegResolutionRate, conf.LinearSlop, conf.MaxLinearCorrection)
		jointsOK := true
		for _, j := range isl.joints {
			if !j.solvePositionConstraint(bodies, indexOf, conf) {
				jointsOK = false
			}
		}
		if minSeparation >= conf.RegMinSeparation && jointsOK {
			positionSolved = true
			break
		}
	}
	if !positionSolved && stats != nil {
		stats.RegPositionUnsolvedIslands++
	}

	minSleepTime := math.MaxFloat64
	for i, sb := range bodies {
		b := srcBodies[i]
		b.sweep.C0 = sb.c
		b.sweep.C1 = sb.c
		b.sweep.A0 = sb.a
		b.sweep.A1 = sb.a
		b.xf = sb.xf()
		b.linearVelocity = sb.v
		b.angularVelocity = sb.w

		if b.bodyType == StaticBody {
			continue
		}
		if !b.flags.has(flagAllowSleep) ||
			b.angularVelocity*b.angularVelocity > conf.AngularSleepTolerance*conf.AngularSleepTolerance ||
			math2d.LenSqr(b.linearVelocity) > conf.LinearSleepTolerance*conf.LinearSleepTolerance {
			b.sleepTime = 0
			minSleepTime = 0
		} else {
			b.sleepTime += conf.Dt
			if b.sleepTime < minSleepTime {
				minSleepTime = b.sleepTime
			}
		}
	}

	if minSleepTime >= conf.MinStillTimeToSleep {
		for _, sb := range bodies {
			b, _ := w.bodies.get(sb.handle.h)
			b.setAwake(false)
		}
	}

	for _, bh := range isl.bodies {
		if b, ok := w.bodies.get(bh.h); ok {
			b.flags.set(flagIsland, false)
		}
	}
	for _, c := range isl.contacts {
		c.flags &^= contactIsland
	}
}
