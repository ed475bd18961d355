package aggregators

import (
	"fmt"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/stats"
)

// Statistics returns a factory for Stats Aggregators over a column, or over the
// elements themselves if colName is empty
func Statistics(colName string) sparkling.AggregatorFactory {
	return func() sparkling.Aggregator {
		return &Stats{colName: colName, counter: stats.NewStatCounter()}
	}
}

// Stats computes the count, mean, variance, min and max of numeric values, ignoring nulls
type Stats struct {
	colName string
	counter *stats.StatCounter
}

// GetStats returns the StatCounter of this Aggregator
func (a *Stats) GetStats() *stats.StatCounter {
	return a.counter
}

// Accumulate adds an element to this Aggregator
func (a *Stats) Accumulate(element interface{}) error {
	v, ok, err := numericValue(element, a.colName)
	if err != nil || !ok {
		return err
	}
	a.counter.Merge(v)
	return nil
}

// Merge merges another Aggregator into this one
func (a *Stats) Merge(o sparkling.Aggregator) error {
	sa, ok := o.(*Stats)
	if !ok {
		return fmt.Errorf("Incoming aggregator is not a Stats Aggregator")
	}
	a.counter.MergeStats(sa.counter)
	return nil
}

// Covariance returns a factory for Covariance Aggregators over a pair of columns
func Covariance(col1 string, col2 string) sparkling.AggregatorFactory {
	return func() sparkling.Aggregator {
		return &CoMoment{col1: col1, col2: col2, counter: stats.NewCovarianceCounter()}
	}
}

// CoMoment tracks the covariance of two numeric columns, ignoring Rows where either is null
type CoMoment struct {
	col1    string
	col2    string
	counter *stats.CovarianceCounter
}

// GetCovariance returns the CovarianceCounter of this Aggregator
func (a *CoMoment) GetCovariance() *stats.CovarianceCounter {
	return a.counter
}

// Accumulate adds an element to this Aggregator
func (a *CoMoment) Accumulate(element interface{}) error {
	x, xok, err := numericValue(element, a.col1)
	if err != nil {
		return err
	}
	y, yok, err := numericValue(element, a.col2)
	if err != nil {
		return err
	}
	if xok && yok {
		a.counter.Merge(x, y)
	}
	return nil
}

// Merge merges another Aggregator into this one
func (a *CoMoment) Merge(o sparkling.Aggregator) error {
	ca, ok := o.(*CoMoment)
	if !ok {
		return fmt.Errorf("Incoming aggregator is not a CoMoment Aggregator")
	}
	a.counter.MergeCovariance(ca.counter)
	return nil
}

// Quantiles returns a factory for Quantile Aggregators over a column, or over the elements
// themselves if colName is empty. relativeError must be in [0, 1].
func Quantiles(colName string, relativeError float64) sparkling.AggregatorFactory {
	return func() sparkling.Aggregator {
		sketch, err := stats.NewQuantileSketch(relativeError)
		return &Quantile{colName: colName, sketch: sketch, err: err}
	}
}

// Quantile estimates quantiles of numeric values with a QuantileSketch, ignoring nulls
type Quantile struct {
	colName string
	sketch  *stats.QuantileSketch
	err     error
}

// GetSketch returns the QuantileSketch of this Aggregator
func (a *Quantile) GetSketch() *stats.QuantileSketch {
	return a.sketch
}

// Accumulate adds an element to this Aggregator
func (a *Quantile) Accumulate(element interface{}) error {
	if a.err != nil {
		return a.err
	}
	v, ok, err := numericValue(element, a.colName)
	if err != nil || !ok {
		return err
	}
	a.sketch.Insert(v)
	return nil
}

// Merge merges another Aggregator into this one
func (a *Quantile) Merge(o sparkling.Aggregator) error {
	qa, ok := o.(*Quantile)
	if !ok {
		return fmt.Errorf("Incoming aggregator is not a Quantile Aggregator")
	}
	if a.err != nil {
		return a.err
	}
	return a.sketch.Merge(qa.sketch)
}
