// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/gazed/rigid2d/math2d"
	"github.com/stretchr/testify/assert"
)

func TestBroadPhaseUpdatePairsDedupes(t *testing.T) {
	bp := NewBroadPhase(0.1, 2.0)
	a := bp.CreateProxy(box(0, 0, 1, 1), 1)
	b := bp.CreateProxy(box(0.5, 0, 1.5, 1), 2)
	c := bp.CreateProxy(box(100, 100, 101, 101), 3)

	var pairs [][2]int32
	bp.UpdatePairs(func(x, y int32) { pairs = append(pairs, [2]int32{x, y}) })

	assert.Len(t, pairs, 1, "only the overlapping pair should be reported")
	got := pairs[0]
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	assert.Equal(t, [2]int32{lo, hi}, got)
	assert.NotContains(t, []int32{got[0], got[1]}, c)
}

func TestBroadPhaseUpdatePairsIsOneShot(t *testing.T) {
	bp := NewBroadPhase(0.1, 2.0)
	bp.CreateProxy(box(0, 0, 1, 1), 1)
	bp.CreateProxy(box(0.5, 0, 1.5, 1), 2)

	var first, second int
	bp.UpdatePairs(func(int32, int32) { first++ })
	bp.UpdatePairs(func(int32, int32) { second++ })

	assert.Equal(t, 1, first)
	assert.Equal(t, 0, second, "a stable pair with no new moves should not be re-reported")
}

func TestBroadPhaseTouchProxyForcesRepair(t *testing.T) {
	bp := NewBroadPhase(0.1, 2.0)
	bp.CreateProxy(box(0, 0, 1, 1), 1)
	id2 := bp.CreateProxy(box(0.5, 0, 1.5, 1), 2)
	bp.UpdatePairs(func(int32, int32) {})

	bp.TouchProxy(id2)
	count := 0
	bp.UpdatePairs(func(int32, int32) { count++ })
	assert.Equal(t, 1, count)
}

func TestBroadPhaseDestroyProxyDropsBufferedMove(t *testing.T) {
	bp := NewBroadPhase(0.1, 2.0)
	id := bp.CreateProxy(box(0, 0, 1, 1), 1)
	bp.DestroyProxy(id)

	count := 0
	bp.UpdatePairs(func(int32, int32) { count++ })
	assert.Equal(t, 0, count)
}

func TestBroadPhaseTestOverlap(t *testing.T) {
	bp := NewBroadPhase(0.1, 2.0)
	a := bp.CreateProxy(box(0, 0, 1, 1), 1)
	b := bp.CreateProxy(box(0.5, 0, 1.5, 1), 2)
	c := bp.CreateProxy(box(100, 100, 101, 101), 3)

	assert.True(t, bp.TestOverlap(a, b))
	assert.False(t, bp.TestOverlap(a, c))
}

func TestBroadPhaseShiftOrigin(t *testing.T) {
	bp := NewBroadPhase(0.1, 2.0)
	id := bp.CreateProxy(box(0, 0, 1, 1), 1)
	bp.ShiftOrigin(math2d.Vec2{1, 1})
	assert.Equal(t, box(-1, -1, 0, 0), bp.GetFatAABB(id))
}
