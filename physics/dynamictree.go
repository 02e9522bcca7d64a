// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"log/slog"
	"math"

	"github.com/gazed/rigid2d/math2d"
)

// dynamictree.go implements spec.md §4.1: a self-balancing AABB BVH used
// by BroadPhase for proxy create/destroy/move, overlap queries and
// ray-casts. Logging follows the teacher's broad.go idiom of a package
// level slog call on an unexpected (but non-fatal) condition; genuine
// invariant breaks are still asserts (§4.1 "Failure semantics").

const nullNode = int32(-1)

// treeNode is either an allocated tree node (parent >= 0, or parent ==
// nullNode only at the root) or a free-list entry (next, same field,
// height == -1). Per the §9 redesign note this keeps both roles in
// explicit, separately-named-by-height fields rather than a raw union.
type treeNode struct {
	aabb     AABB
	userData int32 // caller-assigned payload, typically a FixtureProxy index
	parent   int32 // also used as "next free" when height == -1
	child1   int32
	child2   int32
	height   int32 // -1: free node, 0: leaf, >=1: internal
}

func (n treeNode) isLeaf() bool { return n.child1 == nullNode }

// DynamicTree is a binary AABB tree: every leaf holds one proxy, every
// internal node has exactly two children whose AABB union it encloses,
// and heights differ by at most 1 across any node's two children
// (AVL invariant, restored after every insert/remove).
type DynamicTree struct {
	nodes       []treeNode
	root        int32
	freeList    int32
	nodeCount   int32
	insertCount uint32
}

// NewDynamicTree returns an empty tree.
func NewDynamicTree() *DynamicTree {
	t := &DynamicTree{root: nullNode, freeList: nullNode}
	return t
}

// allocateNode pops a node off the free list, growing the backing slice
// (doubling) when the free list is empty.
func (t *DynamicTree) allocateNode() int32 {
	if t.freeList == nullNode {
		grow := 16
		if n := len(t.nodes); n > 0 {
			grow = n
		}
		start := len(t.nodes)
		t.nodes = append(t.nodes, make([]treeNode, grow)...)
		for i := start; i < len(t.nodes)-1; i++ {
			t.nodes[i] = treeNode{parent: int32(i + 1), height: -1}
		}
		t.nodes[len(t.nodes)-1] = treeNode{parent: nullNode, height: -1}
		t.freeList = int32(start)
	}
	id := t.freeList
	t.freeList = t.nodes[id].parent
	t.nodes[id] = treeNode{parent: nullNode, child1: nullNode, child2: nullNode, height: 0}
	t.nodeCount++
	return id
}

func (t *DynamicTree) freeNode(id int32) {
	t.nodes[id] = treeNode{parent: t.freeList, height: -1}
	t.freeList = id
	t.nodeCount--
}

// CreateProxy inserts a new leaf for aabb and returns its stable id.
func (t *DynamicTree) CreateProxy(aabb AABB, userData int32) int32 {
	id := t.allocateNode()
	t.nodes[id].aabb = aabb
	t.nodes[id].userData = userData
	t.nodes[id].height = 0
	t.insertLeaf(id)
	return id
}

// DestroyProxy removes the leaf referenced by proxyID.
func (t *DynamicTree) DestroyProxy(proxyID int32) {
	t.removeLeaf(proxyID)
	t.freeNode(proxyID)
}

// GetFatAABB returns the stored (enlarged) AABB for a proxy.
func (t *DynamicTree) GetFatAABB(proxyID int32) AABB { return t.nodes[proxyID].aabb }

// GetUserData returns the payload attached at CreateProxy.
func (t *DynamicTree) GetUserData(proxyID int32) int32 { return t.nodes[proxyID].userData }

// MoveProxy implements §4.1's MoveProxy: if the tight aabb still fits
// inside the stored fat AABB, nothing happens. Otherwise the fat AABB is
// rebuilt around aabb (extended by aabbExtension, plus a predictive
// extension along displacement) and the leaf is re-inserted.
func (t *DynamicTree) MoveProxy(proxyID int32, aabb AABB, displacement math2d.Vec2, aabbExtension, aabbMultiplier float64) bool {
	fat := t.nodes[proxyID].aabb
	if fat.Contains(aabb) {
		return false
	}
	t.removeLeaf(proxyID)

	newFat := aabb.Extend(aabbExtension)
	pred := math2d.Scale(displacement, aabbMultiplier)
	if pred[0] < 0 {
		newFat.Lower[0] += pred[0]
	} else {
		newFat.Upper[0] += pred[0]
	}
	if pred[1] < 0 {
		newFat.Lower[1] += pred[1]
	} else {
		newFat.Upper[1] += pred[1]
	}
	t.nodes[proxyID].aabb = newFat
	t.insertLeaf(proxyID)
	return true
}

// insertLeaf descends the tree choosing, at each internal node, the child
// that minimizes the surface-area-heuristic cost (§4.1 "Insertion
// algorithm"), then splices in a new internal parent above the chosen
// sibling and rebalances from there to the root.
func (t *DynamicTree) insertLeaf(leaf int32) {
	t.insertCount++
	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parent = nullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combined := Union(t.nodes[index].aabb, leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2 * combinedArea
		inheritCost := 2 * (combinedArea - area)

		cost1 := t.childInsertCost(child1, leafAABB) + inheritCost
		cost2 := t.childInsertCost(child2, leafAABB) + inheritCost

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}
	sibling := index

	oldParent := t.nodes[sibling].parent
	newParent := t.allocateNode()
	t.nodes[newParent].parent = oldParent
	t.nodes[newParent].aabb = Union(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
	} else {
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parent = newParent
		t.nodes[leaf].parent = newParent
		t.root = newParent
	}

	// Walk back up, refitting AABBs/heights and rebalancing.
	index = t.nodes[leaf].parent
	for index != nullNode {
		index = t.balance(index)
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2
		t.nodes[index].height = 1 + maxI32(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = Union(t.nodes[child1].aabb, t.nodes[child2].aabb)
		index = t.nodes[index].parent
	}
}

// childInsertCost estimates the cost of descending into child for leafAABB:
// the growth of the child's perimeter if it's an internal node (a lower
// bound on its eventual growth), or the full combined perimeter if it's a leaf.
func (t *DynamicTree) childInsertCost(child int32, leafAABB AABB) float64 {
	combined := Union(t.nodes[child].aabb, leafAABB)
	if t.nodes[child].isLeaf() {
		return combined.Perimeter()
	}
	return combined.Perimeter() - t.nodes[child].aabb.Perimeter()
}

func (t *DynamicTree) removeLeaf(leaf int32) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parent
	grandParent := t.nodes[parent].parent
	var sibling int32
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parent = grandParent
		t.freeNode(parent)

		index := grandParent
		for index != nullNode {
			index = t.balance(index)
			child1 := t.nodes[index].child1
			child2 := t.nodes[index].child2
			t.nodes[index].aabb = Union(t.nodes[child1].aabb, t.nodes[child2].aabb)
			t.nodes[index].height = 1 + maxI32(t.nodes[child1].height, t.nodes[child2].height)
			index = t.nodes[index].parent
		}
	} else {
		t.root = sibling
		t.nodes[sibling].parent = nullNode
		t.freeNode(parent)
	}
}

// balance performs a single AVL-style rotation at iA if its two children's
// heights differ by 2 or more, per §4.1 "Rebalance". Returns the index of
// the node now occupying iA's old position (itself, if no rotation ran).
func (t *DynamicTree) balance(iA int32) int32 {
	a := &t.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}
	iB, iC := a.child1, a.child2
	b, c := &t.nodes[iB], &t.nodes[iC]
	balance := c.height - b.height

	if balance > 1 {
		return t.rotate(iA, iC, iB)
	}
	if balance < -1 {
		return t.rotate(iA, iB, iC)
	}
	return iA
}

// rotate promotes iHeavy (the taller child of iA) to iA's old slot,
// demoting iA to be iHeavy's child, swapping in whichever of iHeavy's own
// children keeps the tree more balanced.
func (t *DynamicTree) rotate(iA, iHeavy, iLight int32) int32 {
	a := &t.nodes[iA]
	heavy := &t.nodes[iHeavy]
	f, g := heavy.child1, heavy.child2
	fNode, gNode := &t.nodes[f], &t.nodes[g]

	heavy.child1 = iA
	heavy.parent = a.parent
	a.parent = iHeavy

	if heavy.parent != nullNode {
		if t.nodes[heavy.parent].child1 == iA {
			t.nodes[heavy.parent].child1 = iHeavy
		} else {
			t.nodes[heavy.parent].child2 = iHeavy
		}
	} else {
		t.root = iHeavy
	}

	if fNode.height > gNode.height {
		heavy.child2 = f
		t.setChildren(iA, iLight, g)
		a.aabb = Union(t.nodes[iLight].aabb, gNode.aabb)
		heavy.aabb = Union(a.aabb, fNode.aabb)
		a.height = 1 + maxI32(t.nodes[iLight].height, gNode.height)
		heavy.height = 1 + maxI32(a.height, fNode.height)
		gNode.parent = iA
	} else {
		heavy.child2 = g
		t.setChildren(iA, iLight, f)
		a.aabb = Union(t.nodes[iLight].aabb, fNode.aabb)
		heavy.aabb = Union(a.aabb, gNode.aabb)
		a.height = 1 + maxI32(t.nodes[iLight].height, fNode.height)
		heavy.height = 1 + maxI32(a.height, gNode.height)
		fNode.parent = iA
	}
	return iHeavy
}

// setChildren sets node index's two children and fixes their parent
// pointers. light is always kept as child1 to match Box2D's rotation
// convention (the lighter original child stays "first").
func (t *DynamicTree) setChildren(index, light, other int32) {
	t.nodes[index].child1 = light
	t.nodes[index].child2 = other
	t.nodes[light].parent = index
	t.nodes[other].parent = index
}

func maxI32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

// Query visits every proxy whose fat AABB overlaps aabb via an explicit
// stack DFS (§4.1), invoking cb(proxyID); cb returns false to stop early.
func (t *DynamicTree) Query(aabb AABB, cb func(proxyID int32) bool) {
	if t.root == nullNode {
		return
	}
	stack := []int32{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		node := t.nodes[id]
		if !Overlaps(node.aabb, aabb) {
			continue
		}
		if node.isLeaf() {
			if !cb(id) {
				return
			}
			continue
		}
		stack = append(stack, node.child1, node.child2)
	}
}

// RayCastCallback receives each candidate proxy id the ray's bounding
// segment touches. Returning 0 stops the cast, a negative value skips
// this proxy only, and any other value becomes the new max fraction
// (shrinking the ray for subsequent candidates), per §4.1.
type RayCastCallback func(proxyID int32, fraction float64) float64

// RayCast casts the segment p1->p2 (scaled by maxFraction) through the
// tree, shrinking its search segment as cb narrows the max fraction.
func (t *DynamicTree) RayCast(p1, p2 math2d.Vec2, maxFraction float64, cb RayCastCallback) {
	if t.root == nullNode {
		return
	}
	r := math2d.Sub(p2, p1)
	if math2d.LenSqr(r) < math2d.Epsilon {
		return
	}
	v := math2d.Perp(r)
	v = math2d.Vec2{math.Abs(v[0]), math.Abs(v[1])}

	maxF := maxFraction
	segEnd := math2d.Add(p1, math2d.Scale(r, maxF))
	segAABB := Union(AABB{Lower: p1, Upper: p1}, AABB{Lower: segEnd, Upper: segEnd})

	stack := []int32{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		node := t.nodes[id]
		if !Overlaps(node.aabb, segAABB) {
			continue
		}
		if node.isLeaf() {
			value := cb(id, maxF)
			if value == 0 {
				return
			}
			if value > 0 {
				maxF = value
				segEnd = math2d.Add(p1, math2d.Scale(r, maxF))
				segAABB = Union(AABB{Lower: p1, Upper: p1}, AABB{Lower: segEnd, Upper: segEnd})
			}
			continue
		}
		stack = append(stack, node.child1, node.child2)
	}
}

// Validate checks the tree's structural invariants (§4.1 "Invariants
// checked") and logs (never panics, this is diagnostic tooling) the first
// violation found.
func (t *DynamicTree) Validate() bool {
	if t.root == nullNode {
		return true
	}
	return t.validateNode(t.root, nullNode)
}

func (t *DynamicTree) validateNode(id, expectParent int32) bool {
	node := t.nodes[id]
	if node.parent != expectParent {
		slog.Error("dynamic tree: parent mismatch", "node", id)
		return false
	}
	if node.isLeaf() {
		if node.height != 0 {
			slog.Error("dynamic tree: leaf height not zero", "node", id)
			return false
		}
		return true
	}
	h1 := t.nodes[node.child1].height
	h2 := t.nodes[node.child2].height
	if node.height != 1+maxI32(h1, h2) {
		slog.Error("dynamic tree: height mismatch", "node", id)
		return false
	}
	diff := h1 - h2
	if diff > 1 || diff < -1 {
		slog.Error("dynamic tree: avl invariant broken", "node", id, "balance", diff)
		return false
	}
	want := Union(t.nodes[node.child1].aabb, t.nodes[node.child2].aabb)
	if want != node.aabb {
		slog.Error("dynamic tree: aabb not union of children", "node", id)
		return false
	}
	return t.validateNode(node.child1, id) && t.validateNode(node.child2, id)
}

// Height returns the tree's root height, 0 for an empty or single-leaf tree.
func (t *DynamicTree) Height() int32 {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].height
}

// ShiftOrigin translates every node's AABB by -newOrigin, keeping the
// tree's shape (and thus query/insert cost) unaffected while moving
// world coordinates closer to zero (ported from original_source/Box2D's
// b2DynamicTree::ShiftOrigin).
func (t *DynamicTree) ShiftOrigin(newOrigin math2d.Vec2) {
	for i := range t.nodes {
		n := &t.nodes[i]
		n.aabb.Lower = math2d.Sub(n.aabb.Lower, newOrigin)
		n.aabb.Upper = math2d.Sub(n.aabb.Upper, newOrigin)
	}
}
