package generator

import (
	"context"
	"fmt"
)

// PartitionLoader is capable of generating one Partition of data
type PartitionLoader struct {
	idx    int
	source *DataSource
}

// ToString returns a string representation of this PartitionLoader
func (pl *PartitionLoader) ToString() string {
	return fmt.Sprintf("Generator loader index: %d", pl.idx)
}

// Load runs the generator for this loader's Partition
func (pl *PartitionLoader) Load(ctx context.Context) ([]interface{}, error) {
	return pl.source.generate(ctx, pl.idx)
}
