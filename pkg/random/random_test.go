package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntBetweenInclusive(t *testing.T) {
	src := New(42)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := src.IntBetween(1, 3)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.True(t, seen[1])
	assert.True(t, seen[3])
}

func TestIntBetweenSingleValue(t *testing.T) {
	src := New(1)
	assert.Equal(t, 5, src.IntBetween(5, 5))
}

func TestSeedReproducible(t *testing.T) {
	a, b := New(7), New(7)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.IntBetween(0, 1000), b.IntBetween(0, 1000))
	}
}

func TestForkIndependent(t *testing.T) {
	master := New(99)
	w1 := master.Fork()
	w2 := master.Fork()

	same := true
	for i := 0; i < 20; i++ {
		if w1.IntBetween(0, 1<<30) != w2.IntBetween(0, 1<<30) {
			same = false
		}
	}
	assert.False(t, same, "forked sources must not repeat each other")
}

func TestShufflePreservesElements(t *testing.T) {
	src := New(3)
	items := []int{1, 2, 3, 4, 5}
	out := Shuffled(src, items)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, items)
	assert.ElementsMatch(t, items, out)
}
