// SPDX-FileCopyrightText : © 2024 Galvanized Logic Inc.
// SPDX-License-Identifier: BSD-2-Clause

package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaCreateGet(t *testing.T) {
	a := newArena[int]()
	h := a.create(42)

	v, ok := a.get(h)
	require.True(t, ok)
	assert.Equal(t, 42, *v)
	assert.Equal(t, 1, a.len())
}

func TestArenaDestroyInvalidatesHandle(t *testing.T) {
	a := newArena[int]()
	h := a.create(1)

	require.True(t, a.destroy(h))
	_, ok := a.get(h)
	assert.False(t, ok)
	assert.Equal(t, 0, a.len())
}

func TestArenaDoubleDestroyFails(t *testing.T) {
	a := newArena[int]()
	h := a.create(1)
	require.True(t, a.destroy(h))
	assert.False(t, a.destroy(h), "a second destroy of the same handle must fail")
}

func TestArenaReuseBumpsGeneration(t *testing.T) {
	a := newArena[int]()
	h1 := a.create(1)
	a.destroy(h1)
	h2 := a.create(2)

	assert.Equal(t, h1.index, h2.index, "freed slots are reused")
	assert.NotEqual(t, h1.generation, h2.generation)

	_, ok := a.get(h1)
	assert.False(t, ok, "a stale handle into a reused slot must not resolve")
	v2, ok := a.get(h2)
	require.True(t, ok)
	assert.Equal(t, 2, *v2)
}

func TestArenaEachVisitsOnlyLive(t *testing.T) {
	a := newArena[int]()
	h1 := a.create(10)
	h2 := a.create(20)
	a.destroy(h1)

	seen := map[uint32]int{}
	a.each(func(h handle, v *int) { seen[h.index] = *v })

	assert.Len(t, seen, 1)
	assert.Equal(t, 20, seen[h2.index])
}

func TestZeroHandleIsInvalid(t *testing.T) {
	var h BodyHandle
	assert.False(t, h.Valid())
}
