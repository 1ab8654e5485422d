package assess

import "math/rand/v2"

// Rand is the random source used to permute answer options.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a uniform integer in [0, n).
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type inOrder struct{}

func (inOrder) IntN(n int) int { return n - 1 }

// InOrder is a source that leaves every sequence in its authored order.
var InOrder Rand = inOrder{}

// Shuffle returns a uniformly random permutation of items together with
// originalIndices, where shuffled[k] == items[originalIndices[k]].
// A nil src uses the global generator. items is never modified.
func Shuffle[T any](src Rand, items []T) ([]T, []int) {
	n := len(items)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}
	if n > 1 {
		if src == nil {
			src = globalRand{}
		}
		for i := n - 1; i > 0; i-- {
			j := src.IntN(i + 1)
			indices[i], indices[j] = indices[j], indices[i]
		}
	}

	shuffled := make([]T, n)
	for k, orig := range indices {
		shuffled[k] = items[orig]
	}
	return shuffled, indices
}
