package types

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSet(t *testing.T) {
	t.Run("empty set", func(t *testing.T) {
		set := NewSet[int]()
		assert.Empty(t, set)
	})

	t.Run("multiple elements", func(t *testing.T) {
		set := NewSet(1, 2, 3, 4, 5)
		assert.Len(t, set, 5)
		for i := 1; i <= 5; i++ {
			assert.Contains(t, set, i)
		}
	})

	t.Run("duplicate elements", func(t *testing.T) {
		set := NewSet(1, 2, 2, 3, 3, 3)
		assert.Len(t, set, 3)
	})
}

func TestSet_Add(t *testing.T) {
	t.Run("add to empty set", func(t *testing.T) {
		set := NewSet[string]()
		set.Add("a")

		assert.Len(t, set, 1)
		assert.Contains(t, set, "a")
	})

	t.Run("add duplicate elements", func(t *testing.T) {
		set := NewSet(1, 2, 3)
		set.Add(2, 3, 4)

		assert.Len(t, set, 4)
		for i := 1; i <= 4; i++ {
			assert.Contains(t, set, i)
		}
	})
}

func TestSet_Contains(t *testing.T) {
	t.Run("existing element", func(t *testing.T) {
		set := NewSet("a", "b")
		assert.True(t, set.Contains("a"))
	})

	t.Run("missing element", func(t *testing.T) {
		set := NewSet("a", "b")
		assert.False(t, set.Contains("c"))
	})

	t.Run("empty set", func(t *testing.T) {
		set := NewSet[string]()
		assert.False(t, set.Contains("a"))
	})
}

func TestSet_Delete(t *testing.T) {
	t.Run("delete existing element", func(t *testing.T) {
		set := NewSet(1, 2, 3, 4, 5)
		set.Delete(3)

		assert.Len(t, set, 4)
		assert.NotContains(t, set, 3)
	})

	t.Run("delete non-existing element", func(t *testing.T) {
		set := NewSet(1, 2, 3)
		set.Delete(99)

		assert.Len(t, set, 3)
	})
}

func TestSet_ToIter(t *testing.T) {
	t.Run("non-empty set", func(t *testing.T) {
		expected := []int{1, 2, 3, 4, 5}
		set := NewSet(expected...)

		var collected []int
		for val := range set.ToIter() {
			collected = append(collected, val)
		}

		require.Len(t, collected, len(expected))

		// Sort both slices for comparison since set iteration order is not guaranteed
		slices.Sort(collected)
		assert.Equal(t, expected, collected)
	})
}

func TestSet_ToSlice(t *testing.T) {
	t.Run("non-empty set", func(t *testing.T) {
		expected := []string{"apple", "banana", "cherry"}
		set := NewSet(expected...)

		slice := set.ToSlice()
		require.Len(t, slice, len(expected))

		slices.Sort(slice)
		assert.Equal(t, expected, slice)
	})

	t.Run("slice independence", func(t *testing.T) {
		set := NewSet(1, 2, 3)
		slice := set.ToSlice()

		slice[0] = 999

		assert.NotContains(t, set, 999)
	})
}
