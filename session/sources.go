package session

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/datasource/generator"
	"github.com/go-sif/sparkling/datasource/memory"
	"github.com/go-sif/sparkling/datasource/text"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/operations/transform"
	"github.com/go-sif/sparkling/partition"
)

// DefaultParallelism returns the number of Partitions used by source Datasets when none is requested
func (s *Session) DefaultParallelism() int {
	return s.opts.NumWorkers
}

func (s *Session) numSlices(n int) int {
	if n < 1 {
		return s.DefaultParallelism()
	}
	return n
}

// FromDataSource creates a Dataset from any DataSource
func (s *Session) FromDataSource(source sparkling.DataSource) (sparkling.Dataset, error) {
	return s.engine.FromDataSource(source)
}

// Parallelize distributes a slice of elements across numSlices Partitions, in order.
// Partition sizes differ by at most one. If numSlices < 1, DefaultParallelism is used.
func (s *Session) Parallelize(data []interface{}, numSlices int) (sparkling.Dataset, error) {
	elements := make([]interface{}, len(data))
	copy(elements, data)
	return s.FromDataSource(memory.CreateDataSource(memory.Slices(elements, s.numSlices(numSlices)), nil))
}

// CreateDataFrame builds a Row from each slice of values, and distributes the Rows across numSlices Partitions
func (s *Session) CreateDataFrame(values [][]interface{}, schema sparkling.Schema, numSlices int) (sparkling.Dataset, error) {
	if schema == nil {
		return nil, errors.Validationf("createDataFrame", "a schema is required")
	}
	rows := make([]interface{}, len(values))
	for i, v := range values {
		row, err := partition.CreateRow(v, schema)
		if err != nil {
			return nil, err
		}
		rows[i] = row
	}
	return s.FromDataSource(memory.CreateDataSource(memory.Slices(rows, s.numSlices(numSlices)), schema))
}

// Range creates a Dataset of the int64 values in [start, end), counting by step
func (s *Session) Range(start, end, step int64, numSlices int) (sparkling.Dataset, error) {
	source, err := generator.Range(start, end, step, s.numSlices(numSlices))
	if err != nil {
		return nil, err
	}
	return s.FromDataSource(source)
}

// TextFile creates a Dataset of the lines of the files matched by pattern (a file, directory or glob),
// in at least minPartitions Partitions
func (s *Session) TextFile(pattern string, minPartitions int) (sparkling.Dataset, error) {
	return s.ReadFile(pattern, minPartitions, nil)
}

// ReadFile creates a Dataset of the elements parsed from the lines of the files matched by pattern
func (s *Session) ReadFile(pattern string, minPartitions int, parser text.LineParser) (sparkling.Dataset, error) {
	return s.FromDataSource(text.CreateDataSource(s.fs, pattern, minPartitions, parser))
}

// Union concatenates the Partitions of several Datasets of this Session, in argument order
func (s *Session) Union(datasets ...sparkling.Dataset) (sparkling.Dataset, error) {
	result, err := transform.UnionDatasets(datasets)
	if err != nil {
		return nil, err
	}
	return s.engine.NewDataset(sparkling.UnionOperation, result.Task, result.NumPartitions, result.Schema, datasets...)
}
