// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import "github.com/gazed/rigid2d/math2d"

// contactmanager.go implements spec.md §4.2/§4.3's glue: the
// BroadPhase's raw proxy-id pairs become fixture/child pairs, filtered
// and deduplicated into persistent Contacts, whose manifolds Collide()
// refreshes every step. Grounded on the teacher's broad.go (which wires
// a broad-phase test directly into contact creation) generalized to the
// spec's fixture/filter/listener model.

// proxyRef is the payload a BroadPhase proxy's userData indexes into:
// which fixture, and which shape child, that proxy represents.
type proxyRef struct {
	fixture    FixtureHandle
	childIndex int
}

// ContactManager owns the broad phase and the set of live contacts, and
// mediates all creation/destruction/collision-update of contacts.
type ContactManager struct {
	world      *World
	broadPhase *BroadPhase
	contacts   *arena[Contact]
	proxyRefs  []proxyRef
	filter     ContactFilter
	listener   ContactListener
}

func newContactManager(world *World, aabbExtension, aabbMultiplier float64) *ContactManager {
	return &ContactManager{
		world:      world,
		broadPhase: NewBroadPhase(aabbExtension, aabbMultiplier),
		contacts:   newArena[Contact](),
	}
}

func (cm *ContactManager) registerProxyRef(ref proxyRef) int32 {
	cm.proxyRefs = append(cm.proxyRefs, ref)
	return int32(len(cm.proxyRefs) - 1)
}

// createProxies seeds one broad-phase proxy per shape child of f.
func (cm *ContactManager) createProxies(handle FixtureHandle, f *Fixture, xf math2d.Transform) {
	n := f.shape.ChildCount()
	f.proxies = make([]FixtureProxy, n)
	for i := 0; i < n; i++ {
		aabb := f.shape.ComputeAABB(i, xf).Extend(cm.broadPhase.aabbExtension)
		userData := cm.registerProxyRef(proxyRef{fixture: handle, childIndex: i})
		proxyID := cm.broadPhase.CreateProxy(aabb, userData)
		f.proxies[i] = FixtureProxy{aabb: aabb, fixture: handle, childIndex: i, proxyID: proxyID}
	}
}

func (cm *ContactManager) destroyProxies(f *Fixture) {
	for _, p := range f.proxies {
		cm.broadPhase.DestroyProxy(p.proxyID)
	}
	f.proxies = nil
}

// synchronize pushes a fixture's new world AABBs into the broad phase
// after its body moved, predicting along the body's displacement so a
// fast mover's fat AABB still contains next step's swept position.
func (cm *ContactManager) synchronize(f *Fixture, xf1, xf2 math2d.Transform) {
	displacement := math2d.Sub(xf2.Position, xf1.Position)
	for i := range f.proxies {
		p := &f.proxies[i]
		aabb := f.shape.ComputeAABB(p.childIndex, xf2)
		p.aabb = aabb
		cm.broadPhase.MoveProxy(p.proxyID, aabb, displacement)
	}
}

// findNewContacts drains the broad phase's move buffer into fresh
// Contacts, skipping same-body pairs, already-tracked pairs, and pairs
// the fixture filter or user ContactFilter rejects. Returns how many new
// Contacts were actually created, for StepStats.
func (cm *ContactManager) findNewContacts() int {
	created := 0
	cm.broadPhase.UpdatePairs(func(a, b int32) {
		refA := cm.proxyRefs[cm.broadPhase.GetUserData(a)]
		refB := cm.proxyRefs[cm.broadPhase.GetUserData(b)]
		if cm.addPair(refA, refB) {
			created++
		}
	})
	return created
}

func (cm *ContactManager) addPair(refA, refB proxyRef) bool {
	w := cm.world
	fA, _ := w.fixtures.get(refA.fixture.h)
	fB, _ := w.fixtures.get(refB.fixture.h)
	if fA == nil || fB == nil {
		return false
	}
	if refA.fixture == refB.fixture {
		return false
	}
	if fA.body == fB.body {
		return false
	}
	bodyA, _ := w.bodies.get(fA.body.h)
	bodyB, _ := w.bodies.get(fB.body.h)
	if bodyA == nil || bodyB == nil {
		return false
	}

	for _, ch := range bodyA.contacts {
		c, ok := cm.contacts.get(ch.h)
		if !ok {
			continue
		}
		sameFwd := c.fixtureA == refA.fixture && c.fixtureB == refB.fixture && c.childA == refA.childIndex && c.childB == refB.childIndex
		sameRev := c.fixtureA == refB.fixture && c.fixtureB == refA.fixture && c.childA == refB.childIndex && c.childB == refA.childIndex
		if sameFwd || sameRev {
			return false
		}
	}

	if !fA.filter.ShouldCollide(fB.filter) {
		return false
	}
	if cm.filter != nil && !cm.filter.ShouldCollide(refA.fixture, refB.fixture) {
		return false
	}
	for _, je := range bodyA.jointEdges {
		if je.Other != fB.body {
			continue
		}
		if j, ok := w.joints.get(je.Joint.h); ok && !j.collideConnected() {
			return false
		}
	}
	if !bodyA.isAwake() && !bodyB.isAwake() {
		return false
	}
	if bodyA.bodyType != DynamicBody && bodyB.bodyType != DynamicBody {
		return false
	}

	c := newContact(refA.fixture, refB.fixture, fA.body, fB.body, refA.childIndex, refB.childIndex, fA, fB)
	h := ContactHandle{h: cm.contacts.create(*c)}
	bodyA.contacts = append(bodyA.contacts, h)
	bodyB.contacts = append(bodyB.contacts, h)
	return true
}

// collide refreshes every live contact's manifold, destroying any whose
// fat AABBs no longer overlap (§4.9's ContactManager.Collide step).
func (cm *ContactManager) collide(conf StepConf) (created, destroyed, touching int) {
	var toDestroy []ContactHandle

	cm.contacts.each(func(h handle, c *Contact) {
		ch := ContactHandle{h: h}
		fA, okA := cm.world.fixtures.get(c.fixtureA.h)
		fB, okB := cm.world.fixtures.get(c.fixtureB.h)
		bodyA, okBA := cm.world.bodies.get(c.bodyA.h)
		bodyB, okBB := cm.world.bodies.get(c.bodyB.h)
		if !okA || !okB || !okBA || !okBB {
			toDestroy = append(toDestroy, ch)
			return
		}

		proxyA := fA.proxies[c.childA]
		proxyB := fB.proxies[c.childB]
		if !Overlaps(cm.broadPhase.GetFatAABB(proxyA.proxyID), cm.broadPhase.GetFatAABB(proxyB.proxyID)) {
			toDestroy = append(toDestroy, ch)
			return
		}

		if !bodyA.isAwake() && !bodyB.isAwake() {
			return
		}

		c.update(fA.shape, fB.shape, bodyA.xf, bodyB.xf, fA, fB, conf, cm.listener)
		if c.isTouching() {
			touching++
		}
	})

	for _, h := range toDestroy {
		cm.destroy(h)
		destroyed++
	}
	return created, destroyed, touching
}

// destroy removes a contact from both bodies' adjacency and frees its
// arena slot, firing EndContact first if it was touching.
func (cm *ContactManager) destroy(h ContactHandle) {
	c, ok := cm.contacts.get(h.h)
	if !ok {
		return
	}
	if c.isTouching() && cm.listener != nil {
		cm.listener.EndContact(c)
	}
	if bodyA, ok := cm.world.bodies.get(c.bodyA.h); ok {
		bodyA.contacts = removeContact(bodyA.contacts, h)
	}
	if bodyB, ok := cm.world.bodies.get(c.bodyB.h); ok {
		bodyB.contacts = removeContact(bodyB.contacts, h)
	}
	cm.contacts.destroy(h.h)
}

func removeContact(list []ContactHandle, h ContactHandle) []ContactHandle {
	for i, v := range list {
		if v == h {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
