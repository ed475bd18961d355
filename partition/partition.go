// Package partition exposes constructors for Rows and Partitions, for use by
// DataSources, user-defined operations and tests.
package partition

import (
	"github.com/go-sif/sparkling"
	ipartition "github.com/go-sif/sparkling/internal/partition"
)

// CreateRow builds a new Row from an ordered set of values, one per column of schema
func CreateRow(values []interface{}, schema sparkling.Schema) (sparkling.Row, error) {
	return ipartition.CreateRow(values, schema)
}

// CreatePartition creates a new Partition holding the given elements
func CreatePartition(index int, elements []interface{}) sparkling.Partition {
	return ipartition.CreatePartition(index, elements)
}
