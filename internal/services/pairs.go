package services

import "iter"

// Pair is an unordered pair of two distinct elements.
type Pair[T any] struct {
	A T
	B T
}

// Pairs yields every pair (xs[i], xs[j]) with i < j, ordered by i then j.
// The sequence can be ranged over any number of times.
func Pairs[T any](xs []T) iter.Seq[Pair[T]] {
	return func(yield func(Pair[T]) bool) {
		for i := 0; i < len(xs); i++ {
			for j := i + 1; j < len(xs); j++ {
				if !yield(Pair[T]{A: xs[i], B: xs[j]}) {
					return
				}
			}
		}
	}
}

// PairCount is the number of pairs Pairs yields for m elements.
func PairCount(m int) int {
	if m < 2 {
		return 0
	}
	return m * (m - 1) / 2
}
