package action

import (
	"context"
	"sync"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/dataset"
)

// localIterator materializes one Partition at a time, on demand
type localIterator struct {
	ctx    context.Context
	engine *dataset.Engine
	d      sparkling.Dataset
	lock   sync.Mutex
	next   int
}

// ToLocalIterator returns an iterator over the Partitions of a Dataset, in order. Each Partition
// is only computed when it is requested, so at most one Partition is held by the iterator at a time.
func ToLocalIterator(ctx context.Context, d sparkling.Dataset) (sparkling.PartitionIterator, error) {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return nil, err
	}
	return &localIterator{ctx: ctx, engine: engine, d: d}, nil
}

// HasNextPartition returns true iff there is another Partition to compute
func (it *localIterator) HasNextPartition() bool {
	it.lock.Lock()
	defer it.lock.Unlock()
	return it.next < it.d.NumPartitions()
}

// NextPartition computes and returns the next Partition
func (it *localIterator) NextPartition() (sparkling.Partition, error) {
	it.lock.Lock()
	defer it.lock.Unlock()
	if it.next >= it.d.NumPartitions() {
		return nil, errors.NoMorePartitionsError{}
	}
	var result sparkling.Partition
	err := it.engine.Run(it.ctx, it.d, "toLocalIterator", []int{it.next}, func(part sparkling.Partition) error {
		result = part
		return nil
	})
	if err != nil {
		return nil, err
	}
	it.next++
	return result, nil
}
