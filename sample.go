package hdc

import "math/rand"

// SampleDistinct draws exactly k distinct values from pool, in a uniformly
// random order, without replacement, using rng. It mirrors Python's
// random.sample(pool, k=k): pool is left untouched (a private copy is
// partially shuffled internally), and the result's order is the draw order,
// not pool's order.
//
// SampleDistinct panics if k is negative or larger than len(pool); callers
// that need PopulationTooSmall semantics must check pool size themselves
// first, since "too small" is a domain error, not a programming error.
func SampleDistinct(rng *rand.Rand, pool []int, k int) []int {
	if k < 0 || k > len(pool) {
		panic("hdc: SampleDistinct: k out of range")
	}
	scratch := make([]int, len(pool))
	copy(scratch, pool)
	// Partial Fisher–Yates: only shuffle the first k positions.
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(scratch)-i)
		scratch[i], scratch[j] = scratch[j], scratch[i]
	}
	out := make([]int, k)
	copy(out, scratch[:k])
	return out
}

// ChooseExcluding draws a single uniformly random value from pool that is
// not present in exclude, using rng. It returns (0, false) if every element
// of pool is excluded.
func ChooseExcluding(rng *rand.Rand, pool []int, exclude map[int]bool) (int, bool) {
	candidates := make([]int, 0, len(pool))
	for _, b := range pool {
		if !exclude[b] {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return 0, false
	}
	return candidates[rng.Intn(len(candidates))], true
}

// SortedKeys returns the integers 0..n-1, used as the default bit pool
// [0, dimension) when a caller supplies no explicit population.
func SortedKeys(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
