package transform

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// unionTask concatenates the Partitions of its parents, in parent order
type unionTask struct {
	offsets []int // offsets[i] is the index of the first Partition of parent i
}

func (s *unionTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	parent := len(s.offsets) - 1
	for parent > 0 && s.offsets[parent] > index {
		parent--
	}
	part, err := tctx.ParentPartition(parent, index-s.offsets[parent])
	if err != nil {
		return nil, err
	}
	return part.Elements(), nil
}

// UnionDatasets produces the result of concatenating Datasets, used to implement Union
// and session-level unions of several Datasets.
func UnionDatasets(datasets []sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
	if len(datasets) == 0 {
		return nil, errors.Validationf(string(sparkling.UnionOperation), "at least one dataset is required")
	}
	schema := datasets[0].Schema()
	offsets := make([]int, len(datasets))
	total := 0
	for i, d := range datasets {
		if (schema == nil) != (d.Schema() == nil) {
			return nil, errors.Validationf(string(sparkling.UnionOperation), "cannot union rows with raw elements")
		}
		if schema != nil {
			if err := schema.Equals(d.Schema()); err != nil {
				return nil, errors.SchemaError{Message: "union requires identical schemas", Err: err}
			}
		}
		offsets[i] = total
		total += d.NumPartitions()
	}
	return &sparkling.DatasetOperationResult{
		Task:          &unionTask{offsets: offsets},
		NumPartitions: total,
		Schema:        cloneSchema(schema),
		Parents:       datasets[1:],
	}, nil
}

// Union concatenates the Partitions of other Datasets onto those of the current one.
// Partition order follows argument order.
func Union(others ...sparkling.Dataset) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.UnionOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			return UnionDatasets(append([]sparkling.Dataset{d}, others...))
		},
	}
}
