package subtour

import (
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(m int) []int {
	out := make([]int, m)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestExhaustiveCounts(t *testing.T) {
	for m := 0; m <= 10; m++ {
		sets, err := Exhaustive{}.Subsets(ids(m))
		require.NoError(t, err)
		assert.Equal(t, Count(m), uint64(len(sets)), "m=%d", m)

		seen := make(map[string]bool, len(sets))
		for _, s := range sets {
			assert.GreaterOrEqual(t, len(s), 2)
			cp := append([]int(nil), s...)
			sort.Ints(cp)
			key := fmt.Sprint(cp)
			assert.False(t, seen[key], "duplicate subset %v", s)
			seen[key] = true
		}
	}
}

func TestExhaustiveSmallInputsEmpty(t *testing.T) {
	for _, in := range [][]int{nil, {}, {4}} {
		sets, err := Exhaustive{}.Subsets(in)
		require.NoError(t, err)
		assert.Empty(t, sets)
	}
}

func TestExhaustiveOrder(t *testing.T) {
	sets, err := Exhaustive{}.Subsets([]int{7, 8, 9})
	require.NoError(t, err)
	// masks 011, 101, 110, 111 with the leftmost bit selecting 7
	want := [][]int{{8, 9}, {7, 9}, {7, 8}, {7, 8, 9}}
	assert.Equal(t, want, sets)
}

func TestExhaustiveTooMany(t *testing.T) {
	_, err := Exhaustive{}.Subsets(ids(MaxCustomers + 1))
	assert.True(t, errors.Is(err, ErrTooManyCustomers))
}

func TestGeneratorFunc(t *testing.T) {
	var g Generator = GeneratorFunc(func(in []int) ([][]int, error) {
		return [][]int{in}, nil
	})
	sets, err := g.Subsets([]int{1, 2})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}}, sets)
}

func TestCount(t *testing.T) {
	assert.Equal(t, uint64(0), Count(0))
	assert.Equal(t, uint64(0), Count(1))
	assert.Equal(t, uint64(1), Count(2))
	assert.Equal(t, uint64(4), Count(3))
	assert.Equal(t, uint64(1013), Count(10))
}
