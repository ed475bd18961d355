package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

const statisticRollingWindows = 5

// RunStatistics contains statistics about the most recent action run within a session.
// Partitions are materialized concurrently, so every method is safe for concurrent use.
type RunStatistics struct {
	lock                        sync.Mutex
	started                     bool
	finished                    bool
	startTime                   time.Time
	totalRuntime                time.Duration
	rowsProcessed               int64
	partitionsProcessed         int64
	retries                     int64
	recentPartitionRuntimes     []time.Duration // for rolling average of recent partition processing times
	recentPartitionRuntimesHead int
}

// Start resets and begins statistics tracking for a new action
func (rs *RunStatistics) Start() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	rs.started = true
	rs.finished = false
	rs.startTime = time.Now()
	rs.totalRuntime = 0
	atomic.StoreInt64(&rs.rowsProcessed, 0)
	atomic.StoreInt64(&rs.partitionsProcessed, 0)
	atomic.StoreInt64(&rs.retries, 0)
	rs.recentPartitionRuntimes = make([]time.Duration, statisticRollingWindows)
	rs.recentPartitionRuntimesHead = 0
}

// Finish completes statistics tracking for the current action
func (rs *RunStatistics) Finish() {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if rs.started && !rs.finished {
		rs.totalRuntime = time.Since(rs.startTime)
		rs.finished = true
	}
}

// StartPartition tracks the beginning of the processing of a partition, returning its start time
func (rs *RunStatistics) StartPartition() time.Time {
	return time.Now()
}

// EndPartition tracks the end of the processing of a partition which began at start
func (rs *RunStatistics) EndPartition(start time.Time, numRows int) {
	atomic.AddInt64(&rs.rowsProcessed, int64(numRows))
	atomic.AddInt64(&rs.partitionsProcessed, 1)
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if len(rs.recentPartitionRuntimes) == 0 {
		rs.recentPartitionRuntimes = make([]time.Duration, statisticRollingWindows)
	}
	rs.recentPartitionRuntimes[rs.recentPartitionRuntimesHead] = time.Since(start)
	rs.recentPartitionRuntimesHead = (rs.recentPartitionRuntimesHead + 1) % len(rs.recentPartitionRuntimes)
}

// Retry tracks a materialization attempt which failed and will be retried
func (rs *RunStatistics) Retry() {
	atomic.AddInt64(&rs.retries, 1)
}

// GetStartTime returns the start time of the most recent action
func (rs *RunStatistics) GetStartTime() time.Time {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	return rs.startTime
}

// GetRuntime returns the running time of the most recent action
func (rs *RunStatistics) GetRuntime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	if !rs.started {
		return 0
	}
	if rs.finished {
		return rs.totalRuntime
	}
	return time.Since(rs.startTime)
}

// GetNumRowsProcessed returns the number of elements which have been materialized so far
func (rs *RunStatistics) GetNumRowsProcessed() int64 {
	return atomic.LoadInt64(&rs.rowsProcessed)
}

// GetNumPartitionsProcessed returns the number of Partitions which have been materialized so far
func (rs *RunStatistics) GetNumPartitionsProcessed() int64 {
	return atomic.LoadInt64(&rs.partitionsProcessed)
}

// GetNumRetries returns the number of materialization attempts which have been retried
func (rs *RunStatistics) GetNumRetries() int64 {
	return atomic.LoadInt64(&rs.retries)
}

// GetCurrentPartitionProcessingTime returns a rolling average of partition processing time
func (rs *RunStatistics) GetCurrentPartitionProcessingTime() time.Duration {
	rs.lock.Lock()
	defer rs.lock.Unlock()
	var total time.Duration
	for _, d := range rs.recentPartitionRuntimes {
		total += d
	}
	return total / statisticRollingWindows
}
