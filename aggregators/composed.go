package aggregators

import (
	"fmt"

	"github.com/go-sif/sparkling"
)

// Compose returns a factory for Composed Aggregators, which feed every element to several Aggregators at once
func Compose(factories ...sparkling.AggregatorFactory) sparkling.AggregatorFactory {
	return func() sparkling.Aggregator {
		aggs := make([]sparkling.Aggregator, len(factories))
		for i, f := range factories {
			aggs[i] = f()
		}
		return &Composed{aggs: aggs}
	}
}

// Composed composes other Aggregators
type Composed struct {
	aggs []sparkling.Aggregator
}

// GetResults returns the contained Aggregators, so that their results may be accessed
func (c *Composed) GetResults() []sparkling.Aggregator {
	return c.aggs
}

// Accumulate adds an element to all contained Aggregators
func (c *Composed) Accumulate(element interface{}) error {
	for _, a := range c.aggs {
		err := a.Accumulate(element)
		if err != nil {
			return err
		}
	}
	return nil
}

// Merge merges another Composed Aggregator into this one, merging all contained Aggregators
func (c *Composed) Merge(o sparkling.Aggregator) error {
	compa, ok := o.(*Composed)
	if !ok {
		return fmt.Errorf("Incoming aggregator is not a Composed Aggregator")
	}
	if len(compa.aggs) != len(c.aggs) {
		return fmt.Errorf("Incoming Composed Aggregator has %d aggregators, expected %d", len(compa.aggs), len(c.aggs))
	}
	for i, a := range c.aggs {
		err := a.Merge(compa.aggs[i])
		if err != nil {
			return err
		}
	}
	return nil
}
