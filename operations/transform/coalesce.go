package transform

import (
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// coalesceTask merges contiguous ranges of parent Partitions
type coalesceTask struct {
	numParents int
	n          int
}

func (s *coalesceTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	start, end := iutil.EvenSlice(s.numParents, index, s.n)
	result := make([]interface{}, 0)
	for i := start; i < end; i++ {
		part, err := tctx.ParentPartition(0, i)
		if err != nil {
			return nil, err
		}
		result = append(result, part.Elements()...)
	}
	return result, nil
}

// Coalesce reduces the number of Partitions to n without a shuffle, by merging contiguous,
// evenly sized ranges of Partitions. Element order is preserved. Values of n less than 1
// are treated as 1, and if n is not less than the current number of Partitions, the
// Dataset is returned as-is.
func Coalesce(n int) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.CoalesceOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			target := n
			if target < 1 {
				target = 1
			}
			if target >= d.NumPartitions() {
				return &sparkling.DatasetOperationResult{Unchanged: true}, nil
			}
			return &sparkling.DatasetOperationResult{
				Task:          &coalesceTask{numParents: d.NumPartitions(), n: target},
				NumPartitions: target,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}
