// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(lx, ly, ux, uy float64) AABB {
	return AABB{Lower: math2d.Vec2{lx, ly}, Upper: math2d.Vec2{ux, uy}}
}

func TestDynamicTreeCreateDestroyProxy(t *testing.T) {
	tr := NewDynamicTree()
	id := tr.CreateProxy(box(0, 0, 1, 1), 7)

	assert.Equal(t, int32(7), tr.GetUserData(id))
	assert.True(t, tr.GetFatAABB(id).Contains(box(0, 0, 1, 1)))
	assert.True(t, tr.Validate())

	tr.DestroyProxy(id)
	assert.True(t, tr.Validate())
}

func TestDynamicTreeQueryFindsOverlapping(t *testing.T) {
	tr := NewDynamicTree()
	idA := tr.CreateProxy(box(0, 0, 1, 1), 1)
	idB := tr.CreateProxy(box(10, 10, 11, 11), 2)

	var hits []int32
	tr.Query(box(-1, -1, 2, 2), func(id int32) bool {
		hits = append(hits, id)
		return true
	})

	assert.Contains(t, hits, idA)
	assert.NotContains(t, hits, idB)
}

func TestDynamicTreeManyProxiesStayBalanced(t *testing.T) {
	tr := NewDynamicTree()
	for i := 0; i < 200; i++ {
		x := float64(i)
		tr.CreateProxy(box(x, 0, x+0.5, 0.5), int32(i))
	}
	require.True(t, tr.Validate())
	// An AVL-balanced tree over 200 leaves should never degrade to a
	// near-linear chain.
	assert.Less(t, int(tr.Height()), 30)
}

func TestDynamicTreeMoveProxySmallShiftStaysFat(t *testing.T) {
	tr := NewDynamicTree()
	id := tr.CreateProxy(box(0, 0, 1, 1).Extend(0.1), 1)
	fatBefore := tr.GetFatAABB(id)

	moved := tr.MoveProxy(id, box(0.01, 0.01, 1.01, 1.01), math2d.Vec2{0, 0}, 0.1, 2.0)
	assert.False(t, moved, "a tiny shift within the fat margin should not reinsert")
	assert.Equal(t, fatBefore, tr.GetFatAABB(id))
}

func TestDynamicTreeMoveProxyLargeShiftReinserts(t *testing.T) {
	tr := NewDynamicTree()
	id := tr.CreateProxy(box(0, 0, 1, 1), 1)

	moved := tr.MoveProxy(id, box(100, 100, 101, 101), math2d.Vec2{1, 1}, 0.1, 2.0)
	assert.True(t, moved)
	assert.True(t, tr.GetFatAABB(id).Contains(box(100, 100, 101, 101)))
	assert.True(t, tr.Validate())
}

func TestDynamicTreeRayCastHitsProxyInPath(t *testing.T) {
	tr := NewDynamicTree()
	id := tr.CreateProxy(box(5, -1, 6, 1), 1)

	var hit bool
	tr.RayCast(math2d.Vec2{0, 0}, math2d.Vec2{10, 0}, 1.0, func(proxyID int32, maxFraction float64) float64 {
		if proxyID == id {
			hit = true
		}
		return maxFraction
	})
	assert.True(t, hit)
}

func TestDynamicTreeShiftOriginPreservesShape(t *testing.T) {
	tr := NewDynamicTree()
	tr.CreateProxy(box(0, 0, 1, 1), 1)
	id2 := tr.CreateProxy(box(10, 10, 11, 11), 2)
	heightBefore := tr.Height()

	tr.ShiftOrigin(math2d.Vec2{5, 5})

	assert.Equal(t, heightBefore, tr.Height())
	assert.Equal(t, box(5, 5, 6, 6), tr.GetFatAABB(id2))
}
