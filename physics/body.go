// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// BodyType classifies how a body participates in the simulation, per
// spec.md §3: static bodies never move, kinematic bodies move only by
// explicit velocity and never respond to forces/impulses, dynamic bodies
// are fully simulated.
type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// BodyDef is the immutable-at-creation configuration for a new body,
// following the teacher's functional-options-adjacent "Def struct passed
// to a Create call" idiom used throughout gazed-vu's asset loaders.
type BodyDef struct {
	Type            BodyType
	Position        math2d.Vec2
	Angle           float64
	LinearVelocity  math2d.Vec2
	AngularVelocity float64
	LinearDamping   float64
	AngularDamping  float64
	GravityScale    float64
	AllowSleep      bool
	Awake           bool
	FixedRotation   bool
	Bullet          bool
	Enabled         bool
	UserData        any
}

// DefaultBodyDef returns a static body definition at the origin, awake,
// allowed to sleep, gravity scale 1; set Type for a dynamic or kinematic body.
func DefaultBodyDef() BodyDef {
	return BodyDef{
		Type:         StaticBody,
		GravityScale: 1,
		AllowSleep:   true,
		Awake:        true,
		Enabled:      true,
	}
}

type bodyFlags uint8

const (
	flagAwake bodyFlags = 1 << iota
	flagAllowSleep
	flagFixedRotation
	flagBullet
	flagEnabled
	flagIsland
)

func (f bodyFlags) has(bit bodyFlags) bool { return f&bit != 0 }
func (f *bodyFlags) set(bit bodyFlags, v bool) {
	if v {
		*f |= bit
	} else {
		*f &^= bit
	}
}

// Body is the core's internal representation of a rigid body. Callers
// never hold a *Body directly; every interaction goes through a
// BodyHandle resolved against the owning World's arena (see handles.go),
// so a stale reference is detected rather than dereferenced.
type Body struct {
	bodyType BodyType

	xf    math2d.Transform
	sweep math2d.Sweep

	linearVelocity  math2d.Vec2
	angularVelocity float64

	force  math2d.Vec2
	torque float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	mass, invMass       float64
	inertia, invInertia float64 // about the center of mass

	fixtures   []FixtureHandle
	contacts   []ContactHandle
	jointEdges []JointEdge

	flags     bodyFlags
	sleepTime float64

	userData any
}

// JointEdge names the other body and joint of one entry in a body's
// joint adjacency, used by the island builder's traversal (§4.8).
type JointEdge struct {
	Other BodyHandle
	Joint JointHandle
}

func newBody(def BodyDef) *Body {
	b := &Body{
		bodyType:       def.Type,
		xf:             math2d.Transform{Position: def.Position, Rotation: math2d.NewRot(def.Angle)},
		linearVelocity: def.LinearVelocity,
		angularVelocity: def.AngularVelocity,
		linearDamping:  def.LinearDamping,
		angularDamping: def.AngularDamping,
		gravityScale:   def.GravityScale,
		userData:       def.UserData,
	}
	b.sweep = math2d.Sweep{
		LocalCenter: math2d.Zero2,
		C0:          def.Position,
		C1:          def.Position,
		A0:          def.Angle,
		A1:          def.Angle,
	}
	b.flags.set(flagAllowSleep, def.AllowSleep)
	b.flags.set(flagAwake, def.Awake)
	b.flags.set(flagFixedRotation, def.FixedRotation)
	b.flags.set(flagBullet, def.Bullet)
	b.flags.set(flagEnabled, def.Enabled)
	if b.bodyType == DynamicBody {
		b.mass = 1
		b.invMass = 1
	}
	return b
}

func (b *Body) isAwake() bool  { return b.flags.has(flagAwake) }
func (b *Body) setAwake(v bool) {
	if b.bodyType == StaticBody {
		return
	}
	if v {
		b.flags.set(flagAwake, true)
		b.sleepTime = 0
	} else {
		b.flags.set(flagAwake, false)
		b.sleepTime = 0
		b.linearVelocity = math2d.Zero2
		b.angularVelocity = 0
		b.force = math2d.Zero2
		b.torque = 0
	}
}

// worldCenter returns the body's center of mass in world space.
func (b *Body) worldCenter() math2d.Vec2 { return b.sweep.C1 }

// applyForce accumulates a world-space force applied at a world-space
// point, and the resulting torque about the center of mass.
func (b *Body) applyForce(force, point math2d.Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake() {
		b.setAwake(true)
	}
	if !b.isAwake() {
		return
	}
	b.force = math2d.Add(b.force, force)
	b.torque += math2d.Cross2(math2d.Sub(point, b.worldCenter()), force)
}

func (b *Body) applyForceToCenter(force math2d.Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake() {
		b.setAwake(true)
	}
	if !b.isAwake() {
		return
	}
	b.force = math2d.Add(b.force, force)
}

func (b *Body) applyTorque(torque float64, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake() {
		b.setAwake(true)
	}
	if !b.isAwake() {
		return
	}
	b.torque += torque
}

func (b *Body) applyLinearImpulse(impulse, point math2d.Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake() {
		b.setAwake(true)
	}
	if !b.isAwake() {
		return
	}
	b.linearVelocity = math2d.Add(b.linearVelocity, math2d.Scale(impulse, b.invMass))
	b.angularVelocity += b.invInertia * math2d.Cross2(math2d.Sub(point, b.worldCenter()), impulse)
}

func (b *Body) applyAngularImpulse(impulse float64, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake() {
		b.setAwake(true)
	}
	if !b.isAwake() {
		return
	}
	b.angularVelocity += b.invInertia * impulse
}

func (b *Body) setTransform(position math2d.Vec2, angle float64) {
	b.xf = math2d.Transform{Position: position, Rotation: math2d.NewRot(angle)}
	b.sweep.C1 = b.xf.Apply(b.sweep.LocalCenter)
	b.sweep.A1 = angle
	b.sweep.C0 = b.sweep.C1
	b.sweep.A0 = angle
}

// resetMassData recomputes mass, center of mass, and rotational inertia
// from the body's fixtures, per the standard Box2D-family algorithm: sum
// each fixture's MassData, weighted by area, then parallel-axis-shift
// the combined inertia to the new center of mass.
func (b *Body) resetMassData(fixtures []*Fixture) {
	b.mass = 0
	b.invMass = 0
	b.inertia = 0
	b.invInertia = 0
	b.sweep.LocalCenter = math2d.Zero2

	if b.bodyType == StaticBody || b.bodyType == KinematicBody {
		b.sweep.C0 = b.xf.Position
		b.sweep.C1 = b.xf.Position
		return
	}

	localCenter := math2d.Zero2
	for _, f := range fixtures {
		if f.density == 0 {
			continue
		}
		md := f.shape.ComputeMassData(f.density)
		b.mass += md.Mass
		localCenter = math2d.Add(localCenter, math2d.Scale(md.Center, md.Mass))
		b.inertia += md.RotInertia
	}

	if b.mass > 0 {
		b.invMass = 1.0 / b.mass
		localCenter = math2d.Scale(localCenter, b.invMass)
	} else {
		// A dynamic body with no (or zero-density) fixtures still needs a
		// unit mass so it participates in the solver.
		b.mass = 1
		b.invMass = 1
	}

	if b.inertia > 0 && !b.flags.has(flagFixedRotation) {
		b.inertia -= b.mass * math2d.Dot(localCenter, localCenter)
		b.invInertia = 1.0 / b.inertia
	} else {
		b.inertia = 0
		b.invInertia = 0
	}

	oldCenter := b.sweep.C1
	b.sweep.LocalCenter = localCenter
	b.sweep.C1 = b.xf.Apply(localCenter)
	b.sweep.C0 = b.sweep.C1
	// Preserve velocity at the old center of mass under the new one.
	b.linearVelocity = math2d.Add(b.linearVelocity, math2d.CrossSV(b.angularVelocity, math2d.Sub(b.sweep.C1, oldCenter)))
}

// shouldSleep reports whether a body's recent motion is below the sleep
// thresholds for minStillTime, used by the island solver's post-solve
// sleep decision (§4.8's "sleep management" note in the component list).
func (b *Body) shouldSleep(conf StepConf) bool {
	if b.bodyType == StaticBody {
		return false
	}
	if !b.flags.has(flagAllowSleep) ||
		b.angularVelocity*b.angularVelocity > conf.AngularSleepTolerance*conf.AngularSleepTolerance ||
		math2d.LenSqr(b.linearVelocity) > conf.LinearSleepTolerance*conf.LinearSleepTolerance {
		return false
	}
	return b.sleepTime >= conf.MinStillTimeToSleep
}

func clampMag(v math2d.Vec2, maxLen float64) math2d.Vec2 {
	l := math2d.Len(v)
	if l <= maxLen || l < math2d.Epsilon {
		return v
	}
	return math2d.Scale(v, maxLen/l)
}

func clampAbs(x, maxAbs float64) float64 {
	return math.Max(-maxAbs, math.Min(x, maxAbs))
}
