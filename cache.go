package sparkling

import "context"

// A PartitionCache stores materialized Partitions, keyed by Dataset ID and Partition index.
// Concurrent requests to compute the same key are collapsed into a single computation.
type PartitionCache interface {
	Get(datasetID int, index int) (Partition, bool)                                                                   // Get returns a cached Partition, if present and not expired
	Put(datasetID int, index int, part Partition) error                                                               // Put stores a Partition, if its Dataset is persisted
	Evict(datasetID int, index int)                                                                                   // Evict removes a single cached Partition
	Clear()                                                                                                           // Clear removes every cached Partition
	GetOrCompute(ctx context.Context, datasetID int, index int, compute func() (Partition, error)) (Partition, error) // GetOrCompute returns a cached Partition, computing and storing it at most once concurrently on a miss
	Persist(datasetID int, level StorageLevel, schema Schema)                                                         // Persist marks a Dataset for caching at a StorageLevel
	Unpersist(datasetID int)                                                                                          // Unpersist stops caching a Dataset and evicts all of its Partitions
	StorageLevel(datasetID int) StorageLevel                                                                          // StorageLevel returns the StorageLevel of a Dataset
	Size() int                                                                                                        // Size returns the number of cached Partitions
	Destroy()                                                                                                         // Destroy stops background work and empties the cache
}
