package sparkling

import "context"

// A Task computes the elements of one Partition of a Dataset,
// pulling whatever it needs from the Partitions of its parents.
// Tasks may be run more than once for the same Partition, and
// concurrently for different Partitions.
type Task interface {
	RunWorker(tctx TaskContext, index int) ([]interface{}, error)
}

// A ShuffleTask redistributes the elements of every Partition of a Dataset's
// first parent across the Partitions of the Dataset. The engine runs the shuffle
// once per Dataset: Prepare is called first, then BucketOf for every element, in
// parent Partition order, then Combine for every bucket.
type ShuffleTask interface {
	Prepare(tctx TaskContext) error                                                      // Prepare runs once before elements are bucketed, e.g. to estimate range boundaries
	BucketOf(parentIndex int, position int, element interface{}) (bucket int, err error) // BucketOf assigns an element to an output Partition
	Combine(bucket int, elements []interface{}) ([]interface{}, error)                   // Combine post-processes the elements assigned to a bucket
}

// A TaskContext is a Context enhanced with access to the parents of the Dataset whose Partition is being computed
type TaskContext interface {
	context.Context
	Attempt() int                                             // Attempt returns the 1-based attempt number of the current materialization
	NumParents() int                                          // NumParents returns the number of parent Datasets
	Parent(parent int) Dataset                                // Parent returns a parent Dataset
	ParentPartition(parent int, index int) (Partition, error) // ParentPartition materializes a Partition of a parent Dataset
}
