// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

// toistep.go implements spec.md §4.9's SolveToiStep: the continuous-
// collision sub-step that runs after the regular island solve, advancing
// fast-moving bodies to their first time of impact instead of letting
// them tunnel through thin geometry during one Step. Grounded on the
// same §4.6/§4.7 primitives as the regular solve (TimeOfImpact,
// buildVelocityConstraints, buildPositionConstraints), reused here over
// a 2-body sub-island per impact event rather than a whole connected
// component.

// maxToiCountPerContact bounds how many times a single contact can be
// the minimum-TOI event in one Step, so a degenerate repeated contact
// cannot starve the rest of the world's TOI budget.
const maxToiCountPerContact = 4

// solveToi runs spec.md §4.9's CCD sub-step loop: repeatedly find the
// contact with the earliest time of impact among eligible pairs, advance
// its two bodies to that instant, and resolve it with a small velocity
// and position solve, until no eligible contact reports an impact before
// t=1 or the per-step sub-step budget is spent.
func (w *World) solveToi(conf StepConf, stats *StepStats) {
	for sub := 0; sub < conf.MaxSubSteps; sub++ {
		minT := 1.0
		var minContact *Contact

		w.contacts.each(func(h handle, c *Contact) {
			if !c.isEnabled() || c.toiCount >= maxToiCountPerContact {
				return
			}
			fA, okA := w.fixtures.get(c.fixtureA.h)
			fB, okB := w.fixtures.get(c.fixtureB.h)
			if !okA || !okB || fA.isSensor || fB.isSensor {
				return
			}
			bodyA, okBA := w.bodies.get(c.bodyA.h)
			bodyB, okBB := w.bodies.get(c.bodyB.h)
			if !okBA || !okBB {
				return
			}
			if !eligibleForToi(bodyA, bodyB) {
				return
			}
			if !bodyA.isAwake() && !bodyB.isAwake() {
				return
			}

			input := ToiInput{
				ProxyA: fA.shape.GetChild(c.childA),
				ProxyB: fB.shape.GetChild(c.childB),
				SweepA: bodyA.sweep,
				SweepB: bodyB.sweep,
				TMax:   1.0,
			}
			out := TimeOfImpact(input, conf, stats)
			if out.State != ToiTouching {
				return
			}
			if out.T < minT {
				minT = out.T
				minContact = c
			}
		})

		if minContact == nil {
			break
		}

		bodyA, _ := w.bodies.get(minContact.bodyA.h)
		bodyB, _ := w.bodies.get(minContact.bodyB.h)
		bodyA.sweep.Advance(minT)
		bodyB.sweep.Advance(minT)
		bodyA.xf = bodyA.sweep.Transform(1.0)
		bodyB.xf = bodyB.sweep.Transform(1.0)

		w.logger.Debug("toi: resolved", "t", minT, "subStep", sub)
		if !w.solveToiIsland(minContact, bodyA, bodyB, conf) {
			stats.ToiPositionUnsolvedContacts++
		}

		minContact.toiCount++
		stats.ToiSubSteps++
	}
}

// eligibleForToi decides whether a pair of bodies should be considered
// for continuous collision at all: at least one dynamic body of the pair
// must be a bullet. A non-bullet dynamic body is not swept against static
// or kinematic geometry either, and a pair with no dynamic body never is.
func eligibleForToi(a, b *Body) bool {
	if a.bodyType != DynamicBody && b.bodyType != DynamicBody {
		return false
	}
	if a.bodyType == DynamicBody && b.bodyType == DynamicBody {
		return a.flags.has(flagBullet) || b.flags.has(flagBullet)
	}
	dynamic := a
	if a.bodyType != DynamicBody {
		dynamic = b
	}
	return dynamic.flags.has(flagBullet)
}

// solveToiIsland resolves a single TOI event: a minimal 2-body island
// containing just the impacting contact, solved with the TOI iteration
// counts, ToiResolutionRate and ToiMinSeparation; each position iteration's
// correction is capped by the same MaxLinearCorrection as the regular solve.
func (w *World) solveToiIsland(c *Contact, bodyA, bodyB *Body, conf StepConf) bool {
	bodies := []*solverBody{
		newToiSolverBody(c.bodyA, bodyA),
		newToiSolverBody(c.bodyB, bodyB),
	}
	indexOf := map[BodyHandle]int{c.bodyA: 0, c.bodyB: 1}
	contacts := []*Contact{c}

	c.update(shapeOf(w, c.fixtureA), shapeOf(w, c.fixtureB), bodyA.xf, bodyB.xf, fixtureOf(w, c.fixtureA), fixtureOf(w, c.fixtureB), conf, nil)
	if !c.isTouching() {
		return true
	}

	positionSolved := false
	pcs := buildPositionConstraints(contacts, bodies, indexOf, w)
	for i := 0; i < conf.ToiPositionIterations; i++ {
		minSeparation := solvePositionConstraints(pcs, bodies, conf.ToiResolutionRate, conf.LinearSlop, conf.MaxLinearCorrection)
		if minSeparation >= conf.ToiMinSeparation {
			positionSolved = true
			break
		}
	}

	vcs := buildVelocityConstraints(contacts, bodies, indexOf, conf)
	if conf.DoWarmStart {
		warmStart(vcs, bodies)
	}
	for i := 0; i < conf.ToiVelocityIterations; i++ {
		solveVelocityConstraints(vcs, bodies, conf.DoBlockSolve)
	}
	writeBackImpulses(vcs)

	for _, sb := range bodies {
		b, _ := w.bodies.get(sb.handle.h)
		b.sweep.C0 = sb.c
		b.sweep.C1 = sb.c
		b.sweep.A0 = sb.a
		b.sweep.A1 = sb.a
		b.xf = sb.xf()
		b.linearVelocity = sb.v
		b.angularVelocity = sb.w
	}

	return positionSolved
}

func newToiSolverBody(h BodyHandle, b *Body) *solverBody {
	return &solverBody{
		handle:      h,
		bodyType:    b.bodyType,
		localCenter: b.sweep.LocalCenter,
		invMass:     invMassForToi(b),
		invI:        invIForToi(b),
		c:           b.sweep.C1,
		a:           b.sweep.A1,
		v:           b.linearVelocity,
		w:           b.angularVelocity,
	}
}

// invMassForToi/invIForToi zero out a non-dynamic body's inverse mass
// and inertia (it must never move in the TOI solve even though it still
// participates as a constraint anchor), matching resetMassData's
// treatment of static/kinematic bodies.
func invMassForToi(b *Body) float64 {
	if b.bodyType != DynamicBody {
		return 0
	}
	return b.invMass
}

func invIForToi(b *Body) float64 {
	if b.bodyType != DynamicBody {
		return 0
	}
	return b.invInertia
}

func shapeOf(w *World, fh FixtureHandle) Shape {
	f, _ := w.fixtures.get(fh.h)
	return f.shape
}

func fixtureOf(w *World, fh FixtureHandle) *Fixture {
	f, _ := w.fixtures.get(fh.h)
	return f
}
