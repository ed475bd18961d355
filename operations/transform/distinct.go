package transform

import (
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
	"github.com/go-sif/sparkling/partitioner"
)

// distinctTask co-locates equal elements by hash, then removes duplicates within each bucket
type distinctTask struct {
	shuffleTask
	n int
}

func (s *distinctTask) BucketOf(parentIndex int, position int, element interface{}) (int, error) {
	h, err := iutil.HashValue(element)
	if err != nil {
		return 0, err
	}
	return partitioner.HashPartition(h, s.n), nil
}

func (s *distinctTask) Combine(bucket int, elements []interface{}) ([]interface{}, error) {
	seen := make(map[string]struct{}, len(elements))
	result := make([]interface{}, 0, len(elements))
	for _, element := range elements {
		key, err := iutil.EncodeKey(element)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[string(key)]; ok {
			continue
		}
		seen[string(key)] = struct{}{}
		result = append(result, element)
	}
	return result, nil
}

// Distinct removes duplicate elements (or Rows), via a shuffle into n Partitions.
// If n is not positive, the current number of Partitions is used.
func Distinct(n int) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.DistinctOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			target := n
			if target <= 0 {
				target = d.NumPartitions()
			}
			return &sparkling.DatasetOperationResult{
				Task:          &distinctTask{n: target},
				NumPartitions: target,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}
