// Package sparkling contains the core components of Sparkling, a single-machine engine for lazily
// evaluated, partitioned datasets. Transformations build an immutable graph of Datasets; actions
// materialize the Partitions of that graph on a bounded pool of workers, consulting a partition cache
// along the way. This root package defines the types which are employed during regular use of the
// engine, as well as in its extension, and is a good overview of its key concepts.
package sparkling
