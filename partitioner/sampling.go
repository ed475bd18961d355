package partitioner

import (
	"math"
	"math/rand"
	"sort"
)

// BernoulliSample retains each element independently with probability fraction
func BernoulliSample(elements []interface{}, fraction float64, rng *rand.Rand) []interface{} {
	result := make([]interface{}, 0, int(float64(len(elements))*fraction)+1)
	for _, e := range elements {
		if rng.Float64() < fraction {
			result = append(result, e)
		}
	}
	return result
}

// PoissonSample emits each element k times, where k is drawn from a Poisson distribution with mean fraction
func PoissonSample(elements []interface{}, fraction float64, rng *rand.Rand) []interface{} {
	result := make([]interface{}, 0, int(float64(len(elements))*fraction)+1)
	for _, e := range elements {
		for k := Poisson(fraction, rng); k > 0; k-- {
			result = append(result, e)
		}
	}
	return result
}

// Poisson draws from a Poisson distribution with mean lambda. Large means are
// split into chunks, since the sum of Poisson variables is itself Poisson.
func Poisson(lambda float64, rng *rand.Rand) int {
	const chunk = 30.0
	k := 0
	for lambda > chunk {
		k += knuthPoisson(chunk, rng)
		lambda -= chunk
	}
	return k + knuthPoisson(lambda, rng)
}

func knuthPoisson(lambda float64, rng *rand.Rand) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}

// CumulativeWeights normalizes weights so that they sum to 1, returning their running totals
func CumulativeWeights(weights []float64) []float64 {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	cumulative := make([]float64, len(weights))
	running := 0.0
	for i, w := range weights {
		running += w / total
		cumulative[i] = running
	}
	// guard against rounding error in the final bound
	if len(cumulative) > 0 {
		cumulative[len(cumulative)-1] = 1.0
	}
	return cumulative
}

// SplitIndex returns the index of the split which the draw u (in [0, 1)) falls into
func SplitIndex(u float64, cumulative []float64) int {
	i := sort.SearchFloat64s(cumulative, u)
	// SearchFloat64s finds the first bound >= u; a draw equal to a bound belongs to the next split
	for i < len(cumulative) && cumulative[i] <= u {
		i++
	}
	if i >= len(cumulative) {
		return len(cumulative) - 1
	}
	return i
}
