package dataset

import (
	"fmt"
	"strconv"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"golang.org/x/sync/errgroup"
)

// shuffle returns the bucketed output of a shuffle Dataset, running the shuffle if it
// has not completed before. Concurrent requests for the same Dataset share one run, and
// a completed run is retained until the Dataset or one of its ancestors is unpersisted,
// so every Partition of the Dataset observes the same redistribution. A run abandoned
// because the task which started it was cancelled is restarted by the remaining callers.
func (e *Engine) shuffle(tctx sparkling.TaskContext, d *datasetImpl, task sparkling.ShuffleTask) ([][]interface{}, error) {
	if buckets, ok := e.shuffleOutput(d.id); ok {
		return buckets, nil
	}
	for {
		led := false
		res, err, _ := e.shuffles.Do(strconv.Itoa(d.id), func() (interface{}, error) {
			led = true
			if buckets, ok := e.shuffleOutput(d.id); ok {
				return buckets, nil
			}
			buckets, err := e.runShuffle(tctx, d, task)
			if err != nil {
				return nil, err
			}
			e.shuffledLock.Lock()
			e.shuffled[d.id] = buckets
			e.shuffledLock.Unlock()
			return buckets, nil
		})
		if err != nil {
			if !led && errors.IsCancellation(err) && tctx.Err() == nil {
				continue
			}
			return nil, err
		}
		return res.([][]interface{}), nil
	}
}

func (e *Engine) shuffleOutput(id int) ([][]interface{}, bool) {
	e.shuffledLock.Lock()
	defer e.shuffledLock.Unlock()
	buckets, ok := e.shuffled[id]
	return buckets, ok
}

// dropShuffles releases the retained shuffle output of a Dataset and of every Dataset
// derived from it, so that they are recomputed from its parents
func (e *Engine) dropShuffles(id int) {
	e.nodesLock.RLock()
	affected := map[int]bool{id: true}
	for _, n := range e.nodes[id+1:] {
		for _, p := range n.parents {
			if affected[p.id] {
				affected[n.id] = true
				break
			}
		}
	}
	e.nodesLock.RUnlock()
	e.shuffledLock.Lock()
	defer e.shuffledLock.Unlock()
	for a := range affected {
		delete(e.shuffled, a)
	}
}

func (e *Engine) runShuffle(tctx sparkling.TaskContext, d *datasetImpl, task sparkling.ShuffleTask) ([][]interface{}, error) {
	if err := task.Prepare(tctx); err != nil {
		return nil, err
	}
	parent := d.parents[0]
	parts := make([]sparkling.Partition, parent.numPartitions)
	// parents are materialized outside of the worker pool, as the calling goroutine already occupies a pool slot
	g, gctx := errgroup.WithContext(tctx)
	g.SetLimit(e.conf.ShuffleParallelism)
	for i := range parts {
		i := i
		g.Go(func() error {
			part, err := e.Materialize(gctx, parent, i)
			if err != nil {
				return err
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	buckets := make([][]interface{}, d.numPartitions)
	for i, part := range parts {
		for pos, element := range part.Elements() {
			bucket, err := task.BucketOf(i, pos, element)
			if err != nil {
				return nil, err
			}
			if bucket < 0 || bucket >= len(buckets) {
				return nil, fmt.Errorf("element assigned to bucket %d, but there are only %d partitions", bucket, len(buckets))
			}
			buckets[bucket] = append(buckets[bucket], element)
		}
	}
	e.conf.Logger.Debug("shuffled dataset", "dataset", d.id, "kind", string(d.kind), "parentPartitions", len(parts), "partitions", len(buckets))
	return buckets, nil
}
