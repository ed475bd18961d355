package transform

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/expression"
	"github.com/go-sif/sparkling/expression/sqlast"
)

// Where retains the Rows for which a boolean Expression evaluates to true. Rows for which it
// evaluates to null are dropped.
func Where(condition expression.Expression) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.FilterOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if err := requireSchema(sparkling.FilterOperationKind, d); err != nil {
				return nil, err
			}
			if err := expression.Validate(condition, d.Schema()); err != nil {
				return nil, err
			}
			return narrow(d, cloneSchema(d.Schema()), filterElements(func(element interface{}) (bool, error) {
				row, err := asRow(element)
				if err != nil {
					return false, err
				}
				v, err := condition.Eval(row)
				if err != nil || v == nil {
					return false, err
				}
				keep, ok := v.(bool)
				if !ok {
					return false, errors.Schemaf("condition %s produced %T, not a boolean", condition.String(), v)
				}
				return keep, nil
			})), nil
		},
	}
}

// WhereSQL retains the Rows for which a boolean SQL expression, e.g. "age > 18 AND name IS NOT NULL", is true
func WhereSQL(text string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.FilterOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			condition, err := sqlast.Where(text)
			if err != nil {
				return nil, err
			}
			return Where(condition).Do(d)
		},
	}
}
