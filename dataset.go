package sparkling

// A Dataset is an immutable node in a lazy graph of transformations
// applied to partitioned data. Building a new Dataset never mutates
// an existing one, and no data is touched until an action is run.
type Dataset interface {
	ID() int                                         // ID returns the handle of this Dataset within its session
	Kind() OperationKind                             // Kind returns the kind of operation which produced this Dataset
	NumPartitions() int                              // NumPartitions returns the number of Partitions in this Dataset
	Schema() Schema                                  // Schema returns the Schema of the Rows in this Dataset, or nil if it holds raw elements
	Parents() []Dataset                              // Parents returns the Datasets this Dataset is computed from
	To(ops ...*DatasetOperation) (Dataset, error)    // To is a "functional operations" factory method for Datasets, chaining operations onto the current one.
	Cache() Dataset                                  // Cache marks this Dataset for in-memory caching, returning it
	Persist(level StorageLevel) (Dataset, error)     // Persist marks this Dataset for caching with the given StorageLevel, returning it
	Unpersist() Dataset                              // Unpersist removes all cached Partitions for this Dataset and stops caching it
	IsCached() bool                                  // IsCached returns true iff this Dataset is marked for caching
	StorageLevel() StorageLevel                      // StorageLevel returns the current StorageLevel of this Dataset
	ToString() string                                // ToString returns a description of this Dataset and its lineage
}

// StorageLevel describes how the Partitions of a cached Dataset are retained
type StorageLevel int

const (
	// StorageNone indicates that a Dataset is not cached
	StorageNone StorageLevel = iota
	// StorageMemoryOnly retains materialized Partitions in memory, by reference
	StorageMemoryOnly
	// StorageMemoryOnlySer retains materialized Partitions in memory, serialized and compressed
	StorageMemoryOnlySer
)

// String returns a string representation of a StorageLevel
func (l StorageLevel) String() string {
	switch l {
	case StorageMemoryOnly:
		return "MEMORY_ONLY"
	case StorageMemoryOnlySer:
		return "MEMORY_ONLY_SER"
	default:
		return "NONE"
	}
}

// OperationKind describes the kind of operation which produced a Dataset, used internally to control behaviour
type OperationKind string

const (
	// SourceOperation indicates that a Dataset sources data from a DataSource
	SourceOperation OperationKind = "source"
	// MapOperationKind indicates that a Dataset maps each element of its parent
	MapOperationKind OperationKind = "map"
	// FlatMapOperationKind indicates that a Dataset flat-maps each element of its parent
	FlatMapOperationKind OperationKind = "flatMap"
	// FilterOperationKind indicates that a Dataset filters the elements of its parent
	FilterOperationKind OperationKind = "filter"
	// MapPartitionsOperationKind indicates that a Dataset transforms whole Partitions of its parent
	MapPartitionsOperationKind OperationKind = "mapPartitions"
	// UnionOperation indicates that a Dataset concatenates the Partitions of its parents
	UnionOperation OperationKind = "union"
	// DistinctOperation indicates that a Dataset deduplicates its parent (via a shuffle)
	DistinctOperation OperationKind = "distinct"
	// SampleOperation indicates that a Dataset samples its parent
	SampleOperation OperationKind = "sample"
	// CoalesceOperation indicates that a Dataset merges contiguous Partitions of its parent
	CoalesceOperation OperationKind = "coalesce"
	// RepartitionOperation indicates that a Dataset redistributes its parent (via a shuffle)
	RepartitionOperation OperationKind = "repartition"
	// RepartitionByRangeOperation indicates that a Dataset range-partitions its parent (via a shuffle)
	RepartitionByRangeOperation OperationKind = "repartitionByRange"
	// LimitOperation indicates that a Dataset retains a prefix of its parent
	LimitOperation OperationKind = "limit"
	// ProjectOperation indicates that a Dataset evaluates expressions against the Rows of its parent
	ProjectOperation OperationKind = "project"
	// RandomSplitOperation indicates that a Dataset is one of several disjoint random splits of its parent
	RandomSplitOperation OperationKind = "randomSplit"
	// ReduceByKeyOperation indicates that a Dataset reduces the elements of its parent which share a key (via a shuffle)
	ReduceByKeyOperation OperationKind = "reduceByKey"
	// GroupByOperation indicates that a Dataset groups the elements of its parent which share a key (via a shuffle)
	GroupByOperation OperationKind = "groupBy"
)

// IsShuffle returns true iff Datasets of this kind redistribute elements across all Partitions of their parent
func (k OperationKind) IsShuffle() bool {
	switch k {
	case DistinctOperation, RepartitionOperation, RepartitionByRangeOperation, ReduceByKeyOperation, GroupByOperation:
		return true
	}
	return false
}
