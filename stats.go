package sparkling

import "time"

// RuntimeStatistics facilitates the retrieval of statistics about the actions run within a session
type RuntimeStatistics interface {
	// GetStartTime returns the start time of the most recent action
	GetStartTime() time.Time
	// GetRuntime returns the running time of the most recent action
	GetRuntime() time.Duration
	// GetNumRowsProcessed returns the number of elements which have been materialized so far, by the most recent action
	GetNumRowsProcessed() int64
	// GetNumPartitionsProcessed returns the number of Partitions which have been materialized so far, by the most recent action
	GetNumPartitionsProcessed() int64
	// GetNumRetries returns the number of materialization attempts which have been retried, by the most recent action
	GetNumRetries() int64
	// GetCurrentPartitionProcessingTime returns a rolling average of partition processing time
	GetCurrentPartitionProcessingTime() time.Duration
}
