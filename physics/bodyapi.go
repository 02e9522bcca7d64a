// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "github.com/gazed/rigid2d/math2d"

// bodyapi.go exposes the §6 "Body mutation" surface: getters/setters a
// host application drives a live body through, all resolved against a
// BodyHandle rather than a raw *Body (see handles.go). Grounded on the
// same Def-struct-plus-handle idiom as World's Create calls.

func (w *World) body(op string, h BodyHandle) *Body {
	b, ok := w.bodies.get(h.h)
	if !ok {
		violate(op, "stale or already-destroyed body handle")
	}
	return b
}

// Position returns a body's current world-space origin.
func (w *World) Position(h BodyHandle) math2d.Vec2 { return w.body("Position", h).xf.Position }

// Angle returns a body's current rotation in radians.
func (w *World) Angle(h BodyHandle) float64 { return w.body("Angle", h).sweep.A1 }

// WorldCenter returns a body's current center-of-mass in world space.
func (w *World) WorldCenter(h BodyHandle) math2d.Vec2 { return w.body("WorldCenter", h).worldCenter() }

// SetTransform teleports a body to position/angle, resetting its sweep
// (no interpolation, no TOI consideration for this move).
func (w *World) SetTransform(h BodyHandle, position math2d.Vec2, angle float64) {
	w.checkUnlocked("SetTransform")
	w.body("SetTransform", h).setTransform(position, angle)
}

// LinearVelocity returns a body's current linear velocity.
func (w *World) LinearVelocity(h BodyHandle) math2d.Vec2 { return w.body("LinearVelocity", h).linearVelocity }

// SetLinearVelocity sets a body's linear velocity directly, waking it if
// nonzero (a sleeping body set to zero velocity stays asleep).
func (w *World) SetLinearVelocity(h BodyHandle, v math2d.Vec2) {
	b := w.body("SetLinearVelocity", h)
	if b.bodyType == StaticBody {
		return
	}
	b.linearVelocity = v
	if math2d.LenSqr(v) > 0 {
		b.setAwake(true)
	}
}

// AngularVelocity returns a body's current angular velocity.
func (w *World) AngularVelocity(h BodyHandle) float64 { return w.body("AngularVelocity", h).angularVelocity }

// SetAngularVelocity sets a body's angular velocity directly.
func (w *World) SetAngularVelocity(h BodyHandle, omega float64) {
	b := w.body("SetAngularVelocity", h)
	if b.bodyType == StaticBody {
		return
	}
	b.angularVelocity = omega
	if omega != 0 {
		b.setAwake(true)
	}
}

// ApplyForce accumulates a world-space force at a world-space point,
// contributing to next Step's integration. A force applied to a
// sleeping body wakes it only if wake is true; a zero force never wakes
// one (§6 "Applying a force on a sleeping body wakes it; applying zero
// does not").
func (w *World) ApplyForce(h BodyHandle, force, point math2d.Vec2, wake bool) {
	w.body("ApplyForce", h).applyForce(force, point, wake && math2d.LenSqr(force) > 0)
}

// ApplyForceToCenter is ApplyForce with the point fixed at the center of
// mass, contributing no torque.
func (w *World) ApplyForceToCenter(h BodyHandle, force math2d.Vec2, wake bool) {
	w.body("ApplyForceToCenter", h).applyForceToCenter(force, wake && math2d.LenSqr(force) > 0)
}

// ApplyTorque accumulates a scalar torque.
func (w *World) ApplyTorque(h BodyHandle, torque float64, wake bool) {
	w.body("ApplyTorque", h).applyTorque(torque, wake && torque != 0)
}

// ApplyLinearImpulse immediately changes velocity by impulse/mass at a
// world-space point.
func (w *World) ApplyLinearImpulse(h BodyHandle, impulse, point math2d.Vec2, wake bool) {
	w.body("ApplyLinearImpulse", h).applyLinearImpulse(impulse, point, wake && math2d.LenSqr(impulse) > 0)
}

// ApplyAngularImpulse immediately changes angular velocity by impulse/I.
func (w *World) ApplyAngularImpulse(h BodyHandle, impulse float64, wake bool) {
	w.body("ApplyAngularImpulse", h).applyAngularImpulse(impulse, wake && impulse != 0)
}

// SetLinearDamping/SetAngularDamping/SetGravityScale adjust the body's
// per-step velocity decay and gravity response, taking effect next Step.
func (w *World) SetLinearDamping(h BodyHandle, damping float64) {
	w.body("SetLinearDamping", h).linearDamping = damping
}

func (w *World) SetAngularDamping(h BodyHandle, damping float64) {
	w.body("SetAngularDamping", h).angularDamping = damping
}

func (w *World) SetGravityScale(h BodyHandle, scale float64) {
	w.body("SetGravityScale", h).gravityScale = scale
}

// SetBodyType changes a body's simulation role; fixtures are left
// attached, but contacts are dropped and re-discovered next Step so
// filters and sleep state stay consistent with the new type.
func (w *World) SetBodyType(h BodyHandle, t BodyType) {
	w.checkUnlocked("SetBodyType")
	b := w.body("SetBodyType", h)
	if b.bodyType == t {
		return
	}
	b.bodyType = t
	b.setAwake(true)
	b.force, b.torque = math2d.Zero2, 0
	for _, ch := range append([]ContactHandle(nil), b.contacts...) {
		w.contactManager.destroy(ch)
	}
	w.recomputeMass(h, b)
}

// SetAwake forces a body awake or to sleep.
func (w *World) SetAwake(h BodyHandle, awake bool) { w.body("SetAwake", h).setAwake(awake) }

// IsAwake reports a body's current sleep state.
func (w *World) IsAwake(h BodyHandle) bool { return w.body("IsAwake", h).isAwake() }

// SetEnabled toggles whether a body (and its fixtures/contacts)
// participates in broad/narrow phase and solving at all.
func (w *World) SetEnabled(h BodyHandle, enabled bool) {
	w.checkUnlocked("SetEnabled")
	b := w.body("SetEnabled", h)
	b.flags.set(flagEnabled, enabled)
	if !enabled {
		for _, ch := range append([]ContactHandle(nil), b.contacts...) {
			w.contactManager.destroy(ch)
		}
	}
}

// IsEnabled reports whether a body currently participates in simulation.
func (w *World) IsEnabled(h BodyHandle) bool { return w.body("IsEnabled", h).flags.has(flagEnabled) }

// SetFixedRotation locks or unlocks a body's rotational inertia,
// recomputing mass data immediately since it changes invInertia.
func (w *World) SetFixedRotation(h BodyHandle, fixed bool) {
	b := w.body("SetFixedRotation", h)
	b.flags.set(flagFixedRotation, fixed)
	w.recomputeMass(h, b)
}

// SetBullet marks a body for continuous collision detection against
// dynamic and non-dynamic bodies alike, per eligibleForToi in toistep.go.
func (w *World) SetBullet(h BodyHandle, bullet bool) {
	w.body("SetBullet", h).flags.set(flagBullet, bullet)
}

// SetAllowSleep toggles whether a body is ever allowed to fall asleep.
func (w *World) SetAllowSleep(h BodyHandle, allow bool) {
	b := w.body("SetAllowSleep", h)
	b.flags.set(flagAllowSleep, allow)
	if allow {
		return
	}
	b.setAwake(true)
}

// UserData returns the opaque value attached at CreateBody.
func (w *World) UserData(h BodyHandle) any { return w.body("UserData", h).userData }

// SetUserData replaces the opaque value attached to a body.
func (w *World) SetUserData(h BodyHandle, data any) { w.body("UserData", h).userData = data }
