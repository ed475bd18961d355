// Package memory provides a DataSource backed by in-memory slices of elements,
// one slice per Partition.
package memory

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/internal/util"
)

// DataSource is a buffer containing data which will be manipulated according to a Dataset
type DataSource struct {
	data   [][]interface{}
	schema sparkling.Schema
}

// CreateDataSource is a factory for DataSources. Each slice of data becomes one Partition.
// If schema is non-nil, every element must be a Row with that Schema.
func CreateDataSource(data [][]interface{}, schema sparkling.Schema) *DataSource {
	return &DataSource{data: data, schema: schema}
}

// Slices divides elements into n contiguous slices whose sizes differ by at most one, preserving order
func Slices(elements []interface{}, n int) [][]interface{} {
	if n < 1 {
		n = 1
	}
	slices := make([][]interface{}, n)
	for i := range slices {
		start, end := util.EvenSlice(len(elements), i, n)
		slices[i] = elements[start:end]
	}
	return slices
}

// Analyze returns a PartitionMap, describing how the source data will be divided into Partitions
func (fs *DataSource) Analyze() (sparkling.PartitionMap, error) {
	return &PartitionMap{
		source: fs,
	}, nil
}

// Schema returns the Schema of the elements of this DataSource, or nil if they are not Rows
func (fs *DataSource) Schema() sparkling.Schema {
	return fs.schema
}
