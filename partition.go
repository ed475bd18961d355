package sparkling

// A Partition is a contiguous, independently computable slice of a Dataset's elements.
// Elements are Rows for relational Datasets, or arbitrary values otherwise.
// Partitions are immutable once materialized, and may be shared between readers.
type Partition interface {
	ID() string                                       // ID retrieves the unique ID of this Partition
	Index() int                                       // Index retrieves the index of this Partition within its Dataset
	GetNumRows() int                                  // GetNumRows retrieves the number of elements in this Partition
	Get(pos int) interface{}                          // Get retrieves a specific element from this Partition
	Elements() []interface{}                          // Elements returns a copy of the elements of this Partition, in order
	ForEach(fn func(element interface{}) error) error // ForEach iterates over elements in order, stopping at the first error
}

// PartitionIterator is a generalized interface for iterating over Partitions, regardless of where they come from
type PartitionIterator interface {
	HasNextPartition() bool
	NextPartition() (part Partition, err error)
}
