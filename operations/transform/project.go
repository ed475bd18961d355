package transform

import (
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/expression"
	"github.com/go-sif/sparkling/expression/sqlast"
	"github.com/go-sif/sparkling/internal/partition"
	"github.com/go-sif/sparkling/schema"
)

// asRow casts an element of a relational Dataset to a Row
func asRow(element interface{}) (sparkling.Row, error) {
	row, ok := element.(sparkling.Row)
	if !ok {
		return nil, errors.Schemaf("expected a Row, got %T", element)
	}
	return row, nil
}

func requireSchema(kind sparkling.OperationKind, d sparkling.Dataset) error {
	if d.Schema() == nil {
		return errors.Validationf(string(kind), "this operation requires a dataset of rows")
	}
	return nil
}

// mapRows produces a narrow operation which transforms each Row into a Row of a new Schema
func mapRows(d sparkling.Dataset, out sparkling.Schema, fn func(row sparkling.Row) ([]interface{}, error)) *sparkling.DatasetOperationResult {
	return narrow(d, out, func(index int, elements []interface{}) ([]interface{}, error) {
		result := make([]interface{}, len(elements))
		for i, element := range elements {
			row, err := asRow(element)
			if err != nil {
				return nil, err
			}
			values, err := fn(row)
			if err != nil {
				return nil, err
			}
			if result[i], err = partition.CreateRow(values, out); err != nil {
				return nil, err
			}
		}
		return result, nil
	})
}

// Select projects each Row onto a list of Expressions. Columns are named by their aliases, or
// by the column they reference, or otherwise by their textual representation.
func Select(exprs ...expression.Expression) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if err := requireSchema(sparkling.ProjectOperation, d); err != nil {
				return nil, err
			}
			if len(exprs) == 0 {
				return nil, errors.Validationf(string(sparkling.ProjectOperation), "at least one expression is required")
			}
			names := make([]string, len(exprs))
			types := make([]sparkling.ColumnType, len(exprs))
			for i, e := range exprs {
				if err := expression.Validate(e, d.Schema()); err != nil {
					return nil, err
				}
				names[i] = expression.Name(e)
				types[i] = e.DataType(d.Schema())
			}
			out, err := schema.CreateSchemaFromColumns(names, types)
			if err != nil {
				return nil, errors.SchemaError{Message: "invalid projection", Err: err}
			}
			return mapRows(d, out, func(row sparkling.Row) ([]interface{}, error) {
				values := make([]interface{}, len(exprs))
				for i, e := range exprs {
					v, err := e.Eval(row)
					if err != nil {
						return nil, err
					}
					values[i] = v
				}
				return values, nil
			}), nil
		},
	}
}

// SelectSQL projects each Row onto a comma-separated list of SQL expressions, e.g. "a, b * 2 AS c"
func SelectSQL(text string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			exprs, err := sqlast.Select(text)
			if err != nil {
				return nil, err
			}
			return Select(exprs...).Do(d)
		},
	}
}

// WithColumn adds a column computed by an Expression, replacing any existing column with the same name in place
func WithColumn(name string, e expression.Expression) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if err := requireSchema(sparkling.ProjectOperation, d); err != nil {
				return nil, err
			}
			if err := expression.Validate(e, d.Schema()); err != nil {
				return nil, err
			}
			names := d.Schema().ColumnNames()
			types := d.Schema().ColumnTypes()
			target := len(names)
			for i, n := range names {
				if n == name {
					target = i
				}
			}
			if target == len(names) {
				names = append(names, name)
				types = append(types, nil)
			}
			types[target] = e.DataType(d.Schema())
			out, err := schema.CreateSchemaFromColumns(names, types)
			if err != nil {
				return nil, errors.SchemaError{Message: "invalid column", Err: err}
			}
			return mapRows(d, out, func(row sparkling.Row) ([]interface{}, error) {
				v, err := e.Eval(row)
				if err != nil {
					return nil, err
				}
				values := row.Values()
				if target == len(values) {
					return append(values, v), nil
				}
				values[target] = v
				return values, nil
			}), nil
		},
	}
}

// RemoveColumn removes existing columns. Names which do not exist are ignored.
func RemoveColumn(oldNames ...string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if err := requireSchema(sparkling.ProjectOperation, d); err != nil {
				return nil, err
			}
			newSchema := d.Schema().Clone()
			for _, oldName := range oldNames {
				newSchema, _ = newSchema.RemoveColumn(oldName)
			}
			kept := newSchema.ColumnNames()
			return mapRows(d, newSchema, func(row sparkling.Row) ([]interface{}, error) {
				values := make([]interface{}, len(kept))
				for i, name := range kept {
					v, err := row.Get(name)
					if err != nil {
						return nil, err
					}
					values[i] = v
				}
				return values, nil
			}), nil
		},
	}
}

// RenameColumn renames an existing column
func RenameColumn(oldName string, newName string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			if err := requireSchema(sparkling.ProjectOperation, d); err != nil {
				return nil, err
			}
			newSchema, err := d.Schema().Clone().RenameColumn(oldName, newName)
			if err != nil {
				return nil, errors.SchemaError{Message: "unable to rename column", Err: err}
			}
			return mapRows(d, newSchema, func(row sparkling.Row) ([]interface{}, error) {
				return row.Values(), nil
			}), nil
		},
	}
}
