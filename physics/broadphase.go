// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"sort"

	"github.com/gazed/rigid2d/math2d"
)

// broadphase.go implements spec.md §4.2: a move buffer and pair buffer
// layered over DynamicTree, grounded on the teacher's broad.go (which
// pairs bodies with an O(n^2) distance scan) but replacing the O(n^2)
// scan with tree queries seeded only from proxies that actually moved, as
// the spec requires.

// pairKey canonically orders two proxy ids so (a,b) and (b,a) dedupe.
type pairKey struct{ a, b int32 }

// BroadPhase is a thin proxy-tracking layer: CreateProxy/DestroyProxy/
// MoveProxy delegate to an internal DynamicTree, and UpdatePairs turns
// buffered moves into deduplicated candidate pairs.
type BroadPhase struct {
	tree           *DynamicTree
	moveBuffer     []int32
	pairBuffer     []pairKey
	queryProxyID   int32
	aabbExtension  float64
	aabbMultiplier float64
}

// NewBroadPhase returns an empty broad phase.
func NewBroadPhase(aabbExtension, aabbMultiplier float64) *BroadPhase {
	return &BroadPhase{
		tree:           NewDynamicTree(),
		aabbExtension:  aabbExtension,
		aabbMultiplier: aabbMultiplier,
	}
}

// CreateProxy inserts aabb into the tree and buffers it so the next
// UpdatePairs call considers it for new pairs.
func (bp *BroadPhase) CreateProxy(aabb AABB, userData int32) int32 {
	id := bp.tree.CreateProxy(aabb, userData)
	bp.moveBuffer = append(bp.moveBuffer, id)
	return id
}

// DestroyProxy removes a proxy and drops any pending buffered move for it.
func (bp *BroadPhase) DestroyProxy(id int32) {
	bp.unbufferMove(id)
	bp.tree.DestroyProxy(id)
}

// MoveProxy re-fits id's fat AABB if needed and buffers it for re-pairing.
func (bp *BroadPhase) MoveProxy(id int32, aabb AABB, displacement math2d.Vec2) {
	if bp.tree.MoveProxy(id, aabb, displacement, bp.aabbExtension, bp.aabbMultiplier) {
		bp.moveBuffer = append(bp.moveBuffer, id)
	}
}

// TouchProxy buffers id without moving it, forcing it to be re-paired on
// the next UpdatePairs even though its AABB hasn't changed (used when a
// contact filter changes).
func (bp *BroadPhase) TouchProxy(id int32) {
	bp.moveBuffer = append(bp.moveBuffer, id)
}

func (bp *BroadPhase) unbufferMove(id int32) {
	for i, v := range bp.moveBuffer {
		if v == id {
			bp.moveBuffer = append(bp.moveBuffer[:i], bp.moveBuffer[i+1:]...)
			return
		}
	}
}

// GetFatAABB exposes the proxy's current fat AABB (used by ContactManager
// to decide whether a contact's two proxies still overlap).
func (bp *BroadPhase) GetFatAABB(id int32) AABB { return bp.tree.GetFatAABB(id) }

// GetUserData returns the payload passed at CreateProxy.
func (bp *BroadPhase) GetUserData(id int32) int32 { return bp.tree.GetUserData(id) }

// TestOverlap reports whether two proxies' fat AABBs currently overlap.
func (bp *BroadPhase) TestOverlap(a, b int32) bool {
	return Overlaps(bp.tree.GetFatAABB(a), bp.tree.GetFatAABB(b))
}

// ShiftOrigin translates every proxy's stored AABB, see DynamicTree.ShiftOrigin.
func (bp *BroadPhase) ShiftOrigin(newOrigin math2d.Vec2) { bp.tree.ShiftOrigin(newOrigin) }

// Query visits every proxy whose fat AABB overlaps aabb.
func (bp *BroadPhase) Query(aabb AABB, cb func(proxyID int32) bool) { bp.tree.Query(aabb, cb) }

// RayCast casts a segment through the tree; see DynamicTree.RayCast.
func (bp *BroadPhase) RayCast(p1, p2 math2d.Vec2, maxFraction float64, cb RayCastCallback) {
	bp.tree.RayCast(p1, p2, maxFraction, cb)
}

// UpdatePairs implements §4.2: for each buffered proxy, query the tree
// with its fat AABB, canonicalize and collect every resulting pair, sort
// and dedupe, then invoke addPair once per unique pair. O(m log n) for
// the queries plus O(k log k) to sort k raw candidates.
func (bp *BroadPhase) UpdatePairs(addPair func(a, b int32)) {
	bp.pairBuffer = bp.pairBuffer[:0]

	for _, id := range bp.moveBuffer {
		bp.queryProxyID = id
		fat := bp.tree.GetFatAABB(id)
		bp.tree.Query(fat, bp.queryCallback)
	}
	bp.moveBuffer = bp.moveBuffer[:0]

	if len(bp.pairBuffer) == 0 {
		return
	}
	sort.Slice(bp.pairBuffer, func(i, j int) bool {
		pi, pj := bp.pairBuffer[i], bp.pairBuffer[j]
		if pi.a != pj.a {
			return pi.a < pj.a
		}
		return pi.b < pj.b
	})

	prev := pairKey{-1, -1}
	for _, p := range bp.pairBuffer {
		if p == prev {
			continue
		}
		prev = p
		addPair(p.a, p.b)
	}
}

func (bp *BroadPhase) queryCallback(proxyID int32) bool {
	if proxyID == bp.queryProxyID {
		return true
	}
	a, b := bp.queryProxyID, proxyID
	if a > b {
		a, b = b, a
	}
	bp.pairBuffer = append(bp.pairBuffer, pairKey{a, b})
	return true
}
