package transform

import (
	"math/rand"
	"sync"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	iutil "github.com/go-sif/sparkling/internal/util"
	"github.com/go-sif/sparkling/partitioner"
)

// DefaultShufflePartitions is the number of Partitions produced by column-based repartitioning when no count is given
const DefaultShufflePartitions = 200

// roundRobinTask spreads elements across Partitions by their position
type roundRobinTask struct {
	shuffleTask
	n int
}

func (s *roundRobinTask) BucketOf(parentIndex int, position int, element interface{}) (int, error) {
	return partitioner.RoundRobin(parentIndex+position, s.n), nil
}

// Repartition redistributes elements evenly across n Partitions, via a shuffle. The element at
// position p of parent Partition i is assigned to Partition (i+p) mod n.
func Repartition(n int) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.RepartitionOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if n < 1 {
				return nil, errors.Validationf(string(sparkling.RepartitionOperation), "number of partitions must be positive, got %d", n)
			}
			return &sparkling.DatasetOperationResult{
				Task:          &roundRobinTask{n: n},
				NumPartitions: n,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}

// columnValues extracts the values of columns from a Row element
func columnValues(element interface{}, cols []string) ([]interface{}, error) {
	row, ok := element.(sparkling.Row)
	if !ok {
		return nil, errors.Schemaf("expected a Row, got %T", element)
	}
	values := make([]interface{}, len(cols))
	for i, col := range cols {
		v, err := row.Get(col)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func validateColumns(kind sparkling.OperationKind, d sparkling.Dataset, cols []string) error {
	if d.Schema() == nil {
		return errors.Validationf(string(kind), "columns can only be used with datasets of rows")
	}
	for _, col := range cols {
		if !d.Schema().HasColumn(col) {
			return errors.SchemaError{Message: "unknown column", Err: errors.MissingColumnError{Name: col}}
		}
	}
	return nil
}

// hashColumnsTask co-locates Rows with equal values in a set of columns
type hashColumnsTask struct {
	shuffleTask
	n    int
	cols []string
}

func (s *hashColumnsTask) BucketOf(parentIndex int, position int, element interface{}) (int, error) {
	values, err := columnValues(element, s.cols)
	if err != nil {
		return 0, err
	}
	h, err := iutil.HashValues(values...)
	if err != nil {
		return 0, err
	}
	return partitioner.HashPartition(h, s.n), nil
}

// RepartitionByColumns redistributes Rows across n Partitions by the hash of their values
// in the given columns, via a shuffle, so that Rows with equal values share a Partition.
// If n is not positive, DefaultShufflePartitions is used.
func RepartitionByColumns(n int, cols ...string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.RepartitionOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if len(cols) == 0 {
				return nil, errors.Validationf(string(sparkling.RepartitionOperation), "at least one column is required")
			}
			if err := validateColumns(sparkling.RepartitionOperation, d, cols); err != nil {
				return nil, err
			}
			target := n
			if target <= 0 {
				target = DefaultShufflePartitions
			}
			return &sparkling.DatasetOperationResult{
				Task:          &hashColumnsTask{n: target, cols: cols},
				NumPartitions: target,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}

// rangeTask assigns Rows to Partitions by comparing their sort keys against boundaries
// estimated from a sample of every parent Partition
type rangeTask struct {
	shuffleTask
	n          int
	cols       []string
	boundsLock sync.Mutex
	bounds     []interface{}
}

func compareKeys(a, b interface{}) (int, error) {
	return iutil.Compare(a, b)
}

func (s *rangeTask) Prepare(tctx sparkling.TaskContext) error {
	parent := tctx.Parent(0)
	size := partitioner.SampleSize(s.n, parent.NumPartitions())
	samples := make([]interface{}, 0)
	for i := 0; i < parent.NumPartitions(); i++ {
		part, err := tctx.ParentPartition(0, i)
		if err != nil {
			return err
		}
		rng := rand.New(rand.NewSource(int64(i)))
		for _, element := range partitioner.Reservoir(part.Elements(), size, rng) {
			key, err := columnValues(element, s.cols)
			if err != nil {
				return err
			}
			samples = append(samples, key)
		}
	}
	bounds, err := partitioner.EstimateBounds(samples, s.n, compareKeys)
	if err != nil {
		return err
	}
	s.boundsLock.Lock()
	defer s.boundsLock.Unlock()
	s.bounds = bounds
	return nil
}

func (s *rangeTask) BucketOf(parentIndex int, position int, element interface{}) (int, error) {
	key, err := columnValues(element, s.cols)
	if err != nil {
		return 0, err
	}
	s.boundsLock.Lock()
	bounds := s.bounds
	s.boundsLock.Unlock()
	return partitioner.RangePartition(key, bounds, compareKeys)
}

// RepartitionByRange redistributes Rows across n Partitions by ranges of their values in the
// given columns (ascending, nulls first), via a shuffle. Range boundaries are estimated by
// sampling, so Partitions are only approximately balanced. At least one column is required.
// If n is not positive, DefaultShufflePartitions is used.
func RepartitionByRange(n int, cols ...string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.RepartitionByRangeOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if len(cols) == 0 {
				return nil, errors.Validationf(string(sparkling.RepartitionByRangeOperation), "at least one partition-by column is required")
			}
			if err := validateColumns(sparkling.RepartitionByRangeOperation, d, cols); err != nil {
				return nil, err
			}
			target := n
			if target <= 0 {
				target = DefaultShufflePartitions
			}
			return &sparkling.DatasetOperationResult{
				Task:          &rangeTask{n: target, cols: cols},
				NumPartitions: target,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}
