package transform

import (
	"github.com/cespare/xxhash/v2"
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
	"github.com/go-sif/sparkling/partitioner"
)

// keyedShuffleTask co-locates elements which produce the same key
type keyedShuffleTask struct {
	shuffleTask
	n   int
	kfn sparkling.KeyingOperation
}

func (s *keyedShuffleTask) BucketOf(parentIndex int, position int, element interface{}) (int, error) {
	key, err := s.kfn(element)
	if err != nil {
		return 0, err
	}
	return partitioner.HashPartition(xxhash.Sum64(key), s.n), nil
}

// Group shuffles elements across n Partitions using a key, so that elements with the same key share a Partition.
// Within a Partition, elements with the same key are adjacent, in order of their first appearance.
// If n is not positive, the current number of Partitions is used.
func Group(n int, kfn sparkling.KeyingOperation) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.GroupByOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			target := n
			if target <= 0 {
				target = d.NumPartitions()
			}
			return &sparkling.DatasetOperationResult{
				Task:          &groupTask{keyedShuffleTask{n: target, kfn: iutil.SafeKeyingOperation(kfn)}},
				NumPartitions: target,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}

type groupTask struct {
	keyedShuffleTask
}

func (s *groupTask) Combine(bucket int, elements []interface{}) ([]interface{}, error) {
	order := make([]string, 0)
	groups := make(map[string][]interface{})
	for _, element := range elements {
		key, err := s.kfn(element)
		if err != nil {
			return nil, err
		}
		if _, ok := groups[string(key)]; !ok {
			order = append(order, string(key))
		}
		groups[string(key)] = append(groups[string(key)], element)
	}
	result := make([]interface{}, 0, len(elements))
	for _, key := range order {
		result = append(result, groups[key]...)
	}
	return result, nil
}
