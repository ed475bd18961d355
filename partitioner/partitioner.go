// Package partitioner contains the functions which assign elements to Partitions
// during a shuffle: hash, range and round-robin partitioning, along with the
// sampling needed to estimate range boundaries.
package partitioner

import (
	"math/rand"
	"sort"
)

// CompareFunc orders two keys, returning a negative number, zero or a positive number
type CompareFunc func(a, b interface{}) (int, error)

// HashPartition assigns a hashed key to one of n Partitions
func HashPartition(hash uint64, n int) int {
	if n <= 1 {
		return 0
	}
	return int(hash % uint64(n))
}

// RoundRobin assigns the element at a position to one of n Partitions, cycling through them in order
func RoundRobin(pos int, n int) int {
	if n <= 1 {
		return 0
	}
	if pos < 0 {
		pos = -pos
	}
	return pos % n
}

// RangePartition assigns a key to the first Partition whose upper bound is greater than or
// equal to the key. Keys beyond the last bound are assigned to the final Partition, len(bounds).
func RangePartition(key interface{}, bounds []interface{}, cmp CompareFunc) (int, error) {
	// binary search for the first bound >= key
	lo, hi := 0, len(bounds)
	for lo < hi {
		mid := (lo + hi) / 2
		c, err := cmp(key, bounds[mid])
		if err != nil {
			return 0, err
		}
		if c <= 0 {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}

// EstimateBounds sorts a sample of keys, and picks n-1 boundaries which divide
// it into n ranges of (approximately) equal size. The boundary for range i is
// the sampled key of rank (i+1)*len(samples)/n.
func EstimateBounds(samples []interface{}, n int, cmp CompareFunc) ([]interface{}, error) {
	if n <= 1 || len(samples) == 0 {
		return nil, nil
	}
	sorted := make([]interface{}, len(samples))
	copy(sorted, samples)
	var sortErr error
	sort.SliceStable(sorted, func(i, j int) bool {
		c, err := cmp(sorted[i], sorted[j])
		if err != nil && sortErr == nil {
			sortErr = err
		}
		return c < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	bounds := make([]interface{}, n-1)
	for i := 1; i < n; i++ {
		rank := i * len(sorted) / n
		if rank >= len(sorted) {
			rank = len(sorted) - 1
		}
		bounds[i-1] = sorted[rank]
	}
	return bounds, nil
}

// SampleSize returns the number of keys to sample from each of numParents Partitions,
// in order to estimate the boundaries of n ranges
func SampleSize(n int, numParents int) int {
	if numParents <= 0 {
		return 0
	}
	size := 20 * n / numParents
	if size < 20 {
		size = 20
	}
	if limit := 1000000 / numParents; size > limit {
		size = limit
	}
	return size
}

// Reservoir draws a uniform sample of (at most) k elements, preserving their relative order
func Reservoir(elements []interface{}, k int, rng *rand.Rand) []interface{} {
	if k <= 0 {
		return []interface{}{}
	}
	if len(elements) <= k {
		result := make([]interface{}, len(elements))
		copy(result, elements)
		return result
	}
	picked := make([]int, k)
	for i := 0; i < k; i++ {
		picked[i] = i
	}
	for i := k; i < len(elements); i++ {
		if j := rng.Intn(i + 1); j < k {
			picked[j] = i
		}
	}
	sort.Ints(picked)
	result := make([]interface{}, k)
	for i, idx := range picked {
		result[i] = elements[idx]
	}
	return result
}
