package transform

import (
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// Map transforms each element into another. The result holds raw elements, even if the mapped elements are Rows.
func Map(fn sparkling.MapOperation) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.MapOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			safeFn := iutil.SafeMapOperation(fn)
			return narrow(d, nil, func(index int, elements []interface{}) ([]interface{}, error) {
				result := make([]interface{}, len(elements))
				for i, element := range elements {
					mapped, err := safeFn(element)
					if err != nil {
						return nil, err
					}
					result[i] = mapped
				}
				return result, nil
			}), nil
		},
	}
}

// MapPartitions transforms all the elements of each Partition at once
func MapPartitions(fn func(elements []interface{}) ([]interface{}, error)) *sparkling.DatasetOperation {
	return MapPartitionsWithIndex(func(index int, elements []interface{}) ([]interface{}, error) {
		return fn(elements)
	})
}

// MapPartitionsWithIndex transforms all the elements of each Partition at once, with knowledge of the Partition's index
func MapPartitionsWithIndex(fn sparkling.MapPartitionsOperation) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.MapPartitionsOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			return narrow(d, nil, iutil.SafeMapPartitionsOperation(fn)), nil
		},
	}
}
