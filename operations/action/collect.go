// Package action contains the actions which may be run against a Dataset. Actions materialize
// the Partitions of a Dataset on the worker pool of its session, block until they have been
// processed, and return results to the caller.
package action

import (
	"context"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/internal/dataset"
)

// collectPartitions materializes the requested Partitions, returning their elements in the order requested
func collectPartitions(ctx context.Context, d sparkling.Dataset, action string, indices []int) ([][]interface{}, error) {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return nil, err
	}
	if indices == nil {
		indices = allPartitions(d)
	}
	slot := make(map[int]int, len(indices))
	for i, index := range indices {
		slot[index] = i
	}
	parts := make([][]interface{}, len(indices))
	err = engine.Run(ctx, d, action, indices, func(part sparkling.Partition) error {
		// slots are distinct per Partition, so no locking is required
		parts[slot[part.Index()]] = part.Elements()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return parts, nil
}

func allPartitions(d sparkling.Dataset) []int {
	indices := make([]int, d.NumPartitions())
	for i := range indices {
		indices[i] = i
	}
	return indices
}

// Collect returns every element of a Dataset, in Partition order
func Collect(ctx context.Context, d sparkling.Dataset) ([]interface{}, error) {
	parts, err := collectPartitions(ctx, d, "collect", nil)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, p := range parts {
		total += len(p)
	}
	result := make([]interface{}, 0, total)
	for _, p := range parts {
		result = append(result, p...)
	}
	return result, nil
}

// Glom returns the elements of each Partition of a Dataset, in Partition order
func Glom(ctx context.Context, d sparkling.Dataset) ([][]interface{}, error) {
	return collectPartitions(ctx, d, "glom", nil)
}

// Count returns the number of elements in a Dataset
func Count(ctx context.Context, d sparkling.Dataset) (int64, error) {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return 0, err
	}
	counts := make([]int64, d.NumPartitions())
	err = engine.Run(ctx, d, "count", nil, func(part sparkling.Partition) error {
		counts[part.Index()] = int64(part.GetNumRows())
		return nil
	})
	if err != nil {
		return 0, err
	}
	var total int64
	for _, c := range counts {
		total += c
	}
	return total, nil
}

// NumPartitions returns the number of Partitions of a Dataset, without computing any of them
func NumPartitions(d sparkling.Dataset) int {
	return d.NumPartitions()
}
