package sparkling

// An Aggregator is a reduction technique which siphons elements from
// Partitions into a custom data structure. Each Partition is aggregated
// into a fresh Aggregator by a worker, and the per-Partition Aggregators
// are then merged, in Partition order, on the calling goroutine.
// Aggregators are best utilized for small results.
type Aggregator interface {
	Accumulate(element interface{}) error // Accumulate adds an element to this Aggregator
	Merge(o Aggregator) error             // Merge merges another Aggregator into this one
}
