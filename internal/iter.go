package internal

import (
	"cmp"
	"iter"
	"maps"
	"slices"
)

// Concat2 chains several key/value sequences into one.
func Concat2[K any, V any](seqs ...iter.Seq2[K, V]) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, seq := range seqs {
			for key, value := range seq {
				if !yield(key, value) {
					return
				}
			}
		}
	}
}

// ByValue iterates over a map in ascending value order; equal values are
// ordered by key.
func ByValue[K cmp.Ordered, V cmp.Ordered](m map[K]V) iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		keys := slices.SortedFunc(maps.Keys(m), func(a, b K) int {
			return cmp.Or(cmp.Compare(m[a], m[b]), cmp.Compare(a, b))
		})
		for _, key := range keys {
			if !yield(key, m[key]) {
				return
			}
		}
	}
}
