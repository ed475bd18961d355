package transform

import (
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// reduceTask co-locates elements with the same key, then combines them into a single element per key
type reduceTask struct {
	keyedShuffleTask
	fn sparkling.ReductionOperation
}

func (s *reduceTask) Combine(bucket int, elements []interface{}) ([]interface{}, error) {
	order := make([]string, 0)
	reduced := make(map[string]interface{})
	for _, element := range elements {
		key, err := s.kfn(element)
		if err != nil {
			return nil, err
		}
		current, ok := reduced[string(key)]
		if !ok {
			order = append(order, string(key))
			reduced[string(key)] = element
			continue
		}
		next, err := s.fn(current, element)
		if err != nil {
			return nil, err
		}
		reduced[string(key)] = next
	}
	result := make([]interface{}, len(order))
	for i, key := range order {
		result[i] = reduced[key]
	}
	return result, nil
}

// Reduce combines elements with the same key into a single element, via a shuffle into n Partitions.
// fn must be associative and commutative. If n is not positive, the current number of Partitions is used.
func Reduce(n int, kfn sparkling.KeyingOperation, fn sparkling.ReductionOperation) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ReduceByKeyOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			target := n
			if target <= 0 {
				target = d.NumPartitions()
			}
			return &sparkling.DatasetOperationResult{
				Task: &reduceTask{
					keyedShuffleTask: keyedShuffleTask{n: target, kfn: iutil.SafeKeyingOperation(kfn)},
					fn:               iutil.SafeReductionOperation(fn),
				},
				NumPartitions: target,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}
