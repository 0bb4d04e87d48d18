package services

import (
	"fmt"
	"slices"
	"testing"
)

func collect[T any](xs []T) []Pair[T] {
	var out []Pair[T]
	for p := range Pairs(xs) {
		out = append(out, p)
	}
	return out
}

func TestPairsCountAndUniqueness(t *testing.T) {
	for m := 0; m <= 8; m++ {
		xs := make([]int, m)
		for i := range xs {
			xs[i] = i
		}
		got := collect(xs)
		if len(got) != PairCount(m) || len(got) != m*(m-1)/2 {
			t.Fatalf("m=%d got %d pairs", m, len(got))
		}
		seen := map[string]bool{}
		for _, p := range got {
			if p.A == p.B {
				t.Fatalf("self pair %v", p)
			}
			lo, hi := min(p.A, p.B), max(p.A, p.B)
			k := fmt.Sprintf("%d-%d", lo, hi)
			if seen[k] {
				t.Fatalf("duplicate pair %s", k)
			}
			seen[k] = true
		}
	}
}

func TestPairsOrder(t *testing.T) {
	got := collect([]string{"a", "b", "c"})
	want := []Pair[string]{{"a", "b"}, {"a", "c"}, {"b", "c"}}
	if !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestPairsRestartableAndStops(t *testing.T) {
	xs := []int{1, 2, 3, 4}
	seq := Pairs(xs)
	n1, n2 := 0, 0
	for range seq {
		n1++
	}
	for range seq {
		n2++
	}
	if n1 != 6 || n2 != 6 {
		t.Fatalf("want 6 pairs on each pass, got %d and %d", n1, n2)
	}
	n := 0
	for range seq {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Fatalf("early break yielded %d", n)
	}
	if !slices.Equal(xs, []int{1, 2, 3, 4}) {
		t.Fatalf("input mutated: %v", xs)
	}
}
