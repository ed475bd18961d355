// Package generator provides a DataSource whose Partitions are computed on demand by a function,
// rather than loaded from storage. Range is the canonical example.
package generator

import (
	"context"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/util"
)

// Generator computes the elements of one Partition. It must produce the same elements
// each time it is called with the same index.
type Generator func(ctx context.Context, index int) ([]interface{}, error)

// DataSource is a set of numPartitions Partitions, each computed by a Generator
type DataSource struct {
	numPartitions int
	generate      Generator
	schema        sparkling.Schema
}

// CreateDataSource is a factory for DataSources
func CreateDataSource(numPartitions int, generate Generator, schema sparkling.Schema) *DataSource {
	return &DataSource{numPartitions: numPartitions, generate: generate, schema: schema}
}

// RangeLength returns the number of int64 values in [start, end) when counting by step
func RangeLength(start, end, step int64) int64 {
	switch {
	case step > 0 && end > start:
		return (end - start + step - 1) / step
	case step < 0 && start > end:
		return (start - end - step - 1) / -step
	}
	return 0
}

// Range returns a DataSource of the int64 values in [start, end), counting by step,
// divided evenly and in order across numPartitions Partitions
func Range(start, end, step int64, numPartitions int) (*DataSource, error) {
	if step == 0 {
		return nil, errors.Validationf("range", "step must not be 0")
	}
	if numPartitions < 1 {
		return nil, errors.Validationf("range", "numPartitions must be positive, got %d", numPartitions)
	}
	length := int(RangeLength(start, end, step))
	return CreateDataSource(numPartitions, func(ctx context.Context, index int) ([]interface{}, error) {
		from, to := util.EvenSlice(length, index, numPartitions)
		result := make([]interface{}, 0, to-from)
		for k := from; k < to; k++ {
			result = append(result, start+int64(k)*step)
		}
		return result, nil
	}, nil), nil
}

// Analyze returns a PartitionMap, describing how the source data will be divided into Partitions
func (gs *DataSource) Analyze() (sparkling.PartitionMap, error) {
	return &PartitionMap{
		source: gs,
	}, nil
}

// Schema returns the Schema of the generated elements, or nil if they are not Rows
func (gs *DataSource) Schema() sparkling.Schema {
	return gs.schema
}
