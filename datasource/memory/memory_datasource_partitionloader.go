package memory

import (
	"context"
	"fmt"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// PartitionLoader is capable of loading one slice of in-memory data as a Partition
type PartitionLoader struct {
	idx    int
	source *DataSource
}

// ToString returns a string representation of this PartitionLoader
func (pl *PartitionLoader) ToString() string {
	return fmt.Sprintf("Memory loader index: %d", pl.idx)
}

// Load copies one slice of data, so that the source cannot be mutated through the resulting Partition
func (pl *PartitionLoader) Load(ctx context.Context) ([]interface{}, error) {
	data := pl.source.data[pl.idx]
	result := make([]interface{}, len(data))
	for i, e := range data {
		if pl.source.schema != nil {
			row, ok := e.(sparkling.Row)
			if !ok {
				return nil, errors.Schemaf("element %d of partition %d is a %T, not a Row", i, pl.idx, e)
			}
			if err := row.Schema().Equals(pl.source.schema); err != nil {
				return nil, errors.SchemaError{Message: fmt.Sprintf("row %d of partition %d", i, pl.idx), Err: err}
			}
		}
		result[i] = e
	}
	return result, nil
}
