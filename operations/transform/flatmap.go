package transform

import (
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// FlatMap transforms each element into zero or more elements
func FlatMap(fn sparkling.FlatMapOperation) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.FlatMapOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			safeFn := iutil.SafeFlatMapOperation(fn)
			return narrow(d, nil, func(index int, elements []interface{}) ([]interface{}, error) {
				result := make([]interface{}, 0, len(elements))
				for _, element := range elements {
					produced, err := safeFn(element)
					if err != nil {
						return nil, err
					}
					result = append(result, produced...)
				}
				return result, nil
			}), nil
		},
	}
}
