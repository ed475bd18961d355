package dataset

import (
	"context"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/partition"
	"github.com/go-sif/sparkling/internal/util"
)

// taskContext is the TaskContext passed to a Task computing a Partition of a Dataset
type taskContext struct {
	context.Context
	d       *datasetImpl
	attempt int
}

func (t *taskContext) Attempt() int {
	return t.attempt
}

func (t *taskContext) NumParents() int {
	return len(t.d.parents)
}

func (t *taskContext) Parent(parent int) sparkling.Dataset {
	return t.d.parents[parent]
}

func (t *taskContext) ParentPartition(parent int, index int) (sparkling.Partition, error) {
	if parent < 0 || parent >= len(t.d.parents) {
		return nil, errors.Validationf(string(t.d.kind), "dataset %d has no parent %d", t.d.id, parent)
	}
	return t.d.engine.Materialize(t, t.d.parents[parent], index)
}

// isParentFailure returns true iff err is a Partition computation failure which has already exhausted its own retries
func isParentFailure(err error) bool {
	cerr, ok := err.(*errors.ComputationError)
	return ok && cerr.Accumulator == 0
}

func isFatal(err error) bool {
	return errors.IsFatal(err) || isParentFailure(err) || errors.IsCancellation(err)
}

// Materialize returns a Partition of a Dataset, served from the cache if the Dataset is persisted
// and the Partition has been computed before. Otherwise, it is computed from the Partitions of
// the Dataset's parents, and retried up to the configured number of attempts. A failure which
// exhausts its attempts is returned as a ComputationError.
func (e *Engine) Materialize(ctx context.Context, d sparkling.Dataset, index int) (sparkling.Partition, error) {
	impl, ok := d.(*datasetImpl)
	if !ok || impl.engine != e {
		return nil, errors.Validationf("materialize", "dataset %d belongs to another session", d.ID())
	}
	if index < 0 || index >= impl.numPartitions {
		return nil, errors.Validationf("materialize", "partition %d out of range for dataset %d with %d partitions", index, impl.id, impl.numPartitions)
	}
	return e.cache.GetOrCompute(ctx, impl.id, index, func() (sparkling.Partition, error) {
		return e.compute(ctx, impl, index)
	})
}

func (e *Engine) compute(ctx context.Context, d *datasetImpl, index int) (sparkling.Partition, error) {
	var elements []interface{}
	start := e.conf.Stats.StartPartition()
	onRetry := func(attempt int, lastErr error) {
		e.conf.Stats.Retry()
		if e.conf.Metrics != nil {
			e.conf.Metrics.Retries.Inc()
		}
		e.conf.Logger.Warn("retrying partition", "dataset", d.id, "kind", string(d.kind), "partition", index, "attempt", attempt, "error", lastErr)
	}
	attempts, last, all := util.Retry(ctx, e.conf.MaxAttempts, isFatal, onRetry, func(attempt int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		tctx := &taskContext{Context: ctx, d: d, attempt: attempt}
		var err error
		elements, err = e.runTask(tctx, d, index)
		return err
	})
	if last != nil {
		// an attempt abandoned by cancellation is not a failure of the computation itself
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		// failures of parents already describe themselves
		if isParentFailure(last) || errors.IsCancellation(last) {
			return nil, last
		}
		cerr := &errors.ComputationError{
			Dataset:   d.id,
			Kind:      string(d.kind),
			Partition: index,
			Attempts:  attempts,
			Err:       last,
		}
		if attempts > 1 {
			cerr.All = all
		}
		return nil, cerr
	}
	e.conf.Stats.EndPartition(start, len(elements))
	if e.conf.Metrics != nil {
		e.conf.Metrics.PartitionsMaterialized.WithLabelValues(string(d.kind)).Inc()
		e.conf.Metrics.ElementsMaterialized.Add(float64(len(elements)))
	}
	return partition.CreatePartition(index, elements), nil
}

func (e *Engine) runTask(tctx *taskContext, d *datasetImpl, index int) ([]interface{}, error) {
	var elements []interface{}
	err := util.SafeCall(string(d.kind), func() error {
		shuffle, ok := d.task.(sparkling.ShuffleTask)
		if !ok {
			result, err := d.task.RunWorker(tctx, index)
			elements = result
			return err
		}
		buckets, err := e.shuffle(tctx, d, shuffle)
		if err != nil {
			return err
		}
		result, err := shuffle.Combine(index, buckets[index])
		elements = result
		return err
	})
	return elements, err
}
