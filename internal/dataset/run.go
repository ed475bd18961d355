package dataset

import (
	"context"
	"sync"
	"time"

	"github.com/go-sif/sparkling"
	"golang.org/x/sync/semaphore"
)

// PartitionHandler receives a materialized Partition during an action. It may be called
// concurrently for different Partitions.
type PartitionHandler func(part sparkling.Partition) error

// Run materializes the requested Partitions of a Dataset on the worker pool, passing
// each to handler. It blocks until every Partition has been handled, or one of them
// fails, in which case the remaining work is abandoned and the first error is returned.
// A nil indices slice requests every Partition.
func (e *Engine) Run(ctx context.Context, d sparkling.Dataset, action string, indices []int, handler PartitionHandler) (err error) {
	if indices == nil {
		indices = make([]int, d.NumPartitions())
		for i := range indices {
			indices[i] = i
		}
	}
	start := time.Now()
	e.conf.Stats.Start()
	e.conf.Logger.Debug("starting action", "action", action, "dataset", d.ID(), "partitions", len(indices))
	defer func() {
		e.conf.Stats.Finish()
		status := "success"
		if err != nil {
			status = "failure"
			e.conf.Logger.Error("action failed", "action", action, "dataset", d.ID(), "error", err)
		} else {
			e.conf.Logger.Debug("finished action", "action", action, "dataset", d.ID(), "duration", time.Since(start))
		}
		if e.conf.Metrics != nil {
			e.conf.Metrics.ActionDuration.WithLabelValues(action, status).Observe(time.Since(start).Seconds())
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var (
		wg       sync.WaitGroup
		errLock  sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		errLock.Lock()
		defer errLock.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}
	// bounds the Partitions in flight, so that submission stops as soon as one fails
	inFlight := semaphore.NewWeighted(int64(e.conf.Pool.Cap()))
	for _, index := range indices {
		if acquireErr := inFlight.Acquire(ctx, 1); acquireErr != nil {
			break
		}
		index := index
		wg.Add(1)
		submitErr := e.conf.Pool.Submit(func() {
			defer wg.Done()
			defer inFlight.Release(1)
			part, err := e.Materialize(ctx, d, index)
			if err == nil {
				err = handler(part)
			}
			if err != nil {
				fail(err)
			}
		})
		if submitErr != nil {
			wg.Done()
			inFlight.Release(1)
			fail(submitErr)
			break
		}
	}
	wg.Wait()
	errLock.Lock()
	defer errLock.Unlock()
	if firstErr == nil {
		// non-nil only if the caller's context was cancelled
		firstErr = ctx.Err()
	}
	return firstErr
}
