package sparkling

import "context"

// PartitionLoader is a description of how to load one specific Partition of data from a particular DataSource.
// DataSources implement this interface to implement data-loading logic. A PartitionLoader may be invoked
// more than once (e.g. when a materialization is retried), and must produce the same elements each time.
type PartitionLoader interface {
	ToString() string                                // for logging
	Load(ctx context.Context) ([]interface{}, error) // how to actually load data
}

// PartitionMap is an interface describing an iterator for PartitionLoaders.
// Returned by DataSource.Analyze(), each PartitionLoader becomes one source Partition.
type PartitionMap interface {
	HasNext() bool
	Next() PartitionLoader
}

// DataSource is a source of data which will be manipulated according to transformations and actions defined on a Dataset.
// It represents information about how to load data from the source as Partitions.
type DataSource interface {
	Analyze() (PartitionMap, error) // Analyze describes how the source data will be divided into Partitions
	Schema() Schema                 // Schema of the loaded elements, or nil if they are not Rows
}
