package aggregators

import (
	"fmt"

	"github.com/go-sif/sparkling"
)

// Counter returns a new Count Aggregator
func Counter() sparkling.Aggregator {
	return new(Count)
}

// Count counts elements
type Count struct {
	count int64
}

// GetCount returns the element count from this Aggregator
func (a *Count) GetCount() int64 {
	return a.count
}

// Accumulate adds an element to this Aggregator
func (a *Count) Accumulate(element interface{}) error {
	a.count++
	return nil
}

// Merge merges another Aggregator into this one
func (a *Count) Merge(o sparkling.Aggregator) error {
	ca, ok := o.(*Count)
	if !ok {
		return fmt.Errorf("Incoming aggregator is not a Count Aggregator")
	}
	a.count += ca.count
	return nil
}
