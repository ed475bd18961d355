package sparkling

// MapOperation - A generic function for transforming one element into another
type MapOperation func(element interface{}) (interface{}, error)

// FilterOperation - A generic function for determining whether or not an element should be retained
type FilterOperation func(element interface{}) (bool, error)

// FlatMapOperation - A generic function for turning an element into zero or more elements
type FlatMapOperation func(element interface{}) ([]interface{}, error)

// MapPartitionsOperation - A generic function for transforming all the elements of a Partition at once
type MapPartitionsOperation func(index int, elements []interface{}) ([]interface{}, error)

// ForeachOperation - A generic function applied to every element for its side effects
type ForeachOperation func(element interface{}) error

// ForeachPartitionOperation - A generic function applied to every Partition for its side effects
type ForeachPartitionOperation func(index int, elements []interface{}) error

// KeyingOperation - A generic function for generating a key from an element
type KeyingOperation func(element interface{}) ([]byte, error)

// ReductionOperation - A generic function for combining two elements into one. Must be associative and commutative.
type ReductionOperation func(left interface{}, right interface{}) (interface{}, error)

// AggregatorFactory is a function that produces a fresh Aggregator
type AggregatorFactory func() Aggregator

// DatasetOperation - A generic Dataset transform, returning a Task that computes the Partitions
// of the new Dataset, along with the shape of that Dataset.
type DatasetOperation struct {
	Kind OperationKind
	Do   func(d Dataset) (*DatasetOperationResult, error)
}

// DatasetOperationResult describes the Dataset produced by a DatasetOperation
type DatasetOperationResult struct {
	Task          Task      // Task computes the Partitions of the new Dataset
	NumPartitions int       // NumPartitions of the new Dataset
	Schema        Schema    // Schema of the new Dataset, or nil if it doesn't contain Rows
	Parents       []Dataset // Parents of the new Dataset, after the Dataset the operation is applied to
	Unchanged     bool      // Unchanged indicates that the operation is a no-op, and the Dataset it is applied to should be returned as-is
}
