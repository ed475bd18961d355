// Package transform contains the transformations which may be chained onto a Dataset with Dataset.To.
// Transformations are lazy: they describe how each Partition of a new Dataset is computed from the
// Partitions of its parents, and nothing is computed until an action runs.
package transform

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// parentElements materializes the Partition of the first parent with the same index
func parentElements(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	part, err := tctx.ParentPartition(0, index)
	if err != nil {
		return nil, err
	}
	return part.Elements(), nil
}

// narrowTask computes each Partition from the Partition of its parent with the same index
type narrowTask struct {
	fn func(index int, elements []interface{}) ([]interface{}, error)
}

func (s *narrowTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	elements, err := parentElements(tctx, index)
	if err != nil {
		return nil, err
	}
	return s.fn(index, elements)
}

// narrow produces the result of an operation which preserves the partitioning of its parent
func narrow(d sparkling.Dataset, schema sparkling.Schema, fn func(index int, elements []interface{}) ([]interface{}, error)) *sparkling.DatasetOperationResult {
	return &sparkling.DatasetOperationResult{
		Task:          &narrowTask{fn: fn},
		NumPartitions: d.NumPartitions(),
		Schema:        schema,
	}
}

// cloneSchema clones a Schema, which may be nil
func cloneSchema(schema sparkling.Schema) sparkling.Schema {
	if schema == nil {
		return nil
	}
	return schema.Clone()
}

// shuffleTask provides the RunWorker method required of every Task. The engine
// computes the Partitions of shuffle Datasets via ShuffleTask instead.
type shuffleTask struct{}

func (shuffleTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	return nil, errors.Validationf("shuffle", "partition %d of a shuffle must be computed by the engine", index)
}

func (shuffleTask) Prepare(tctx sparkling.TaskContext) error {
	return nil
}

func (shuffleTask) Combine(bucket int, elements []interface{}) ([]interface{}, error) {
	return elements, nil
}
