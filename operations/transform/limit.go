package transform

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// limitTask takes elements from parent Partitions in order, materializing only as many as it needs
type limitTask struct {
	n          int
	numParents int
}

func (s *limitTask) RunWorker(tctx sparkling.TaskContext, index int) ([]interface{}, error) {
	result := make([]interface{}, 0)
	for i := 0; i < s.numParents && len(result) < s.n; i++ {
		part, err := tctx.ParentPartition(0, i)
		if err != nil {
			return nil, err
		}
		elements := part.Elements()
		if remaining := s.n - len(result); len(elements) > remaining {
			elements = elements[:remaining]
		}
		result = append(result, elements...)
	}
	return result, nil
}

// Limit retains the first n elements, in Partition order, in a single Partition
func Limit(n int) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.LimitOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if n < 0 {
				return nil, errors.Validationf(string(sparkling.LimitOperation), "limit must not be negative, got %d", n)
			}
			return &sparkling.DatasetOperationResult{
				Task:          &limitTask{n: n, numParents: d.NumPartitions()},
				NumPartitions: 1,
				Schema:        cloneSchema(d.Schema()),
			}, nil
		},
	}
}
