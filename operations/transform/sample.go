package transform

import (
	"math"
	"math/rand"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/partitioner"
)

// Sample retains a random sample of elements. Without replacement, each element is retained
// with probability fraction. With replacement, each element is emitted a Poisson-distributed
// number of times, with mean fraction. Each Partition draws from a generator seeded with
// seed plus its index, so the sample is reproducible.
func Sample(withReplacement bool, fraction float64, seed int64) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.SampleOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if fraction < 0 || math.IsNaN(fraction) {
				return nil, errors.Validationf(string(sparkling.SampleOperation), "fraction must be non-negative, got %g", fraction)
			}
			if !withReplacement && fraction > 1 {
				return nil, errors.Validationf(string(sparkling.SampleOperation), "fraction must be at most 1 when sampling without replacement, got %g", fraction)
			}
			return narrow(d, cloneSchema(d.Schema()), func(index int, elements []interface{}) ([]interface{}, error) {
				rng := rand.New(rand.NewSource(seed + int64(index)))
				if withReplacement {
					return partitioner.PoissonSample(elements, fraction, rng), nil
				}
				return partitioner.BernoulliSample(elements, fraction, rng), nil
			}), nil
		},
	}
}

// randomSplitTask retains the elements whose seeded draw falls within one split's range of cumulative weight
type randomSplitTask struct {
	cumulative []float64
	split      int
	seed       int64
}

func (s *randomSplitTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	elements, err := parentElements(tctx, index)
	if err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(s.seed + int64(index)))
	result := make([]interface{}, 0)
	for _, element := range elements {
		if partitioner.SplitIndex(rng.Float64(), s.cumulative) == s.split {
			result = append(result, element)
		}
	}
	return result, nil
}

// RandomSplit splits a Dataset into disjoint Datasets, one per weight, assigning each element
// to a split with probability proportional to its weight. Every split makes the same seeded
// draws, so together the splits contain every element exactly once.
func RandomSplit(d sparkling.Dataset, weights []float64, seed int64) ([]sparkling.Dataset, error) {
	if len(weights) == 0 {
		return nil, errors.Validationf(string(sparkling.RandomSplitOperation), "at least one weight is required")
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) {
			return nil, errors.Validationf(string(sparkling.RandomSplitOperation), "weights must be non-negative, got %g", w)
		}
		total += w
	}
	if total <= 0 {
		return nil, errors.Validationf(string(sparkling.RandomSplitOperation), "sum of weights must be positive")
	}
	cumulative := partitioner.CumulativeWeights(weights)
	splits := make([]sparkling.Dataset, len(weights))
	for i := range weights {
		split := i
		op := &sparkling.DatasetOperation{
			Kind: sparkling.RandomSplitOperation,
			Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
				return &sparkling.DatasetOperationResult{
					Task:          &randomSplitTask{cumulative: cumulative, split: split, seed: seed},
					NumPartitions: d.NumPartitions(),
					Schema:        cloneSchema(d.Schema()),
				}, nil
			},
		}
		next, err := d.To(op)
		if err != nil {
			return nil, err
		}
		splits[i] = next
	}
	return splits, nil
}
