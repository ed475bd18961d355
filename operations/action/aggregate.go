package action

import (
	"context"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/dataset"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// Aggregate siphons every element of a Dataset into Aggregators produced by factory, one per
// Partition, and merges them in Partition order into a final Aggregator
func Aggregate(ctx context.Context, d sparkling.Dataset, factory sparkling.AggregatorFactory) (sparkling.Aggregator, error) {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return nil, err
	}
	partials := make([]sparkling.Aggregator, d.NumPartitions())
	err = engine.Run(ctx, d, "aggregate", nil, func(part sparkling.Partition) error {
		var agg sparkling.Aggregator
		err := iutil.SafeCall("Aggregate", func() error {
			agg = factory()
			return part.ForEach(agg.Accumulate)
		})
		if err != nil {
			return err
		}
		partials[part.Index()] = agg
		return nil
	})
	if err != nil {
		return nil, err
	}
	var result sparkling.Aggregator
	err = iutil.SafeCall("Aggregate", func() error {
		result = factory()
		for _, p := range partials {
			if err := result.Merge(p); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Reduce combines the elements of a Dataset with an associative and commutative function,
// first within each Partition and then across Partitions in order. An empty Dataset produces
// an EmptyDatasetError.
func Reduce(ctx context.Context, d sparkling.Dataset, fn sparkling.ReductionOperation) (interface{}, error) {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return nil, err
	}
	safeFn := iutil.SafeReductionOperation(fn)
	type partial struct {
		value interface{}
		ok    bool
	}
	partials := make([]partial, d.NumPartitions())
	err = engine.Run(ctx, d, "reduce", nil, func(part sparkling.Partition) error {
		var acc partial
		err := part.ForEach(func(element interface{}) error {
			if !acc.ok {
				acc = partial{value: element, ok: true}
				return nil
			}
			reduced, err := safeFn(acc.value, element)
			acc.value = reduced
			return err
		})
		if err != nil {
			return err
		}
		partials[part.Index()] = acc
		return nil
	})
	if err != nil {
		return nil, err
	}
	var acc partial
	for _, p := range partials {
		if !p.ok {
			continue
		}
		if !acc.ok {
			acc = p
			continue
		}
		if acc.value, err = safeFn(acc.value, p.value); err != nil {
			return nil, err
		}
	}
	if !acc.ok {
		return nil, errors.EmptyDatasetError{Action: "reduce"}
	}
	return acc.value, nil
}
