package transform

import (
	"github.com/go-sif/sparkling"
	iutil "github.com/go-sif/sparkling/internal/util"
)

func filterElements(fn sparkling.FilterOperation) func(index int, elements []interface{}) ([]interface{}, error) {
	return func(index int, elements []interface{}) ([]interface{}, error) {
		result := make([]interface{}, 0, len(elements))
		for _, element := range elements {
			keep, err := fn(element)
			if err != nil {
				return nil, err
			}
			if keep {
				result = append(result, element)
			}
		}
		return result, nil
	}
}

// Filter retains the elements for which fn returns true, preserving their order
func Filter(fn sparkling.FilterOperation) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.FilterOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			return narrow(d, cloneSchema(d.Schema()), filterElements(iutil.SafeFilterOperation(fn))), nil
		},
	}
}
