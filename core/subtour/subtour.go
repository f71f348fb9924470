// Package subtour enumerates the customer subsets that a routing model must
// forbid as isolated loops.
//
// The default Exhaustive generator lists every subset of at least two
// customers. Its output grows as 2^m and is the dominant build cost for large
// instances; callers needing lazy or separation based cuts can plug their own
// Generator into the solver.
package subtour

import (
	"errors"
	"fmt"
)

// MaxCustomers is the largest customer count Exhaustive can encode in a mask.
const MaxCustomers = 62

// ErrTooManyCustomers is returned when the customer count exceeds MaxCustomers.
var ErrTooManyCustomers = errors.New("too many customers for subset enumeration")

// Generator produces the subsets to forbid. Each subset holds customer ids;
// the depot is never part of the input.
type Generator interface {
	Subsets(ids []int) ([][]int, error)
}

// GeneratorFunc adapts a function to the Generator interface.
type GeneratorFunc func(ids []int) ([][]int, error)

// Subsets calls f(ids).
func (f GeneratorFunc) Subsets(ids []int) ([][]int, error) { return f(ids) }

// Exhaustive enumerates every subset with two or more customers.
type Exhaustive struct{}

// Subsets walks the masks 1..2^m-1 in increasing order. The most significant
// bit of a mask selects ids[0], so each mask reads like a zero padded binary
// string over the ids. Singletons are dropped.
func (Exhaustive) Subsets(ids []int) ([][]int, error) {
	m := len(ids)
	if m > MaxCustomers {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyCustomers, m, MaxCustomers)
	}
	if m < 2 {
		return nil, nil
	}
	total := uint64(1) << uint(m)
	out := make([][]int, 0, Count(m))
	for mask := uint64(1); mask < total; mask++ {
		if mask&(mask-1) == 0 {
			continue
		}
		var set []int
		for j := 0; j < m; j++ {
			if mask&(uint64(1)<<uint(m-1-j)) != 0 {
				set = append(set, ids[j])
			}
		}
		out = append(out, set)
	}
	return out, nil
}

// Count returns the number of subsets Exhaustive yields for m customers,
// 2^m - 1 - m.
func Count(m int) uint64 {
	if m < 2 {
		return 0
	}
	return (uint64(1) << uint(m)) - 1 - uint64(m)
}
