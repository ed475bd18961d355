// Package aggregators contains Aggregators, which reduce the elements of a Dataset into
// a small summary, one Partition at a time.
package aggregators

import (
	"fmt"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// numericValue extracts a number from an element: from a column, if colName is
// non-empty, or otherwise from the element itself. ok is false for null values.
func numericValue(element interface{}, colName string) (v float64, ok bool, err error) {
	raw := element
	if colName != "" {
		row, isRow := element.(sparkling.Row)
		if !isRow {
			return 0, false, errors.Schemaf("expected a Row, got %T", element)
		}
		raw, err = row.Get(colName)
		if err != nil {
			return 0, false, err
		}
	}
	if raw == nil {
		return 0, false, nil
	}
	v, ok = iutil.ToFloat64(raw)
	if !ok {
		return 0, false, errors.Schemaf("expected a numeric value, got %T", raw)
	}
	return v, true, nil
}

// Adder returns a factory for Sum Aggregators over a column, or over the elements
// themselves if colName is empty
func Adder(colName string) sparkling.AggregatorFactory {
	return func() sparkling.Aggregator {
		return &Sum{colName: colName}
	}
}

// Sum sums numeric values, ignoring nulls
type Sum struct {
	colName string
	sum     float64
}

// GetSum returns the sum from this Aggregator
func (a *Sum) GetSum() float64 {
	return a.sum
}

// Accumulate adds an element to this Aggregator
func (a *Sum) Accumulate(element interface{}) error {
	v, ok, err := numericValue(element, a.colName)
	if err != nil || !ok {
		return err
	}
	a.sum += v
	return nil
}

// Merge merges another Aggregator into this one
func (a *Sum) Merge(o sparkling.Aggregator) error {
	ca, ok := o.(*Sum)
	if !ok {
		return fmt.Errorf("Incoming aggregator is not a Sum Aggregator")
	}
	a.sum += ca.sum
	return nil
}
