package shared

import (
	"fmt"

	"github.com/go-sif/sparkling/internal/util"
)

// Int64Accumulator registers an Accumulator which sums integers
func Int64Accumulator(r *Registry) (*Accumulator, error) {
	return r.NewAccumulator(int64(0), func(current interface{}, delta interface{}) (interface{}, error) {
		d, ok := util.Normalize(delta).(int64)
		if !ok {
			return nil, fmt.Errorf("cannot add %T to an integer accumulator", delta)
		}
		return current.(int64) + d, nil
	})
}

// Float64Accumulator registers an Accumulator which sums numbers as floats
func Float64Accumulator(r *Registry) (*Accumulator, error) {
	return r.NewAccumulator(float64(0), func(current interface{}, delta interface{}) (interface{}, error) {
		d, ok := util.ToFloat64(delta)
		if !ok {
			return nil, fmt.Errorf("cannot add %T to a float accumulator", delta)
		}
		return current.(float64) + d, nil
	})
}

// ListAccumulator registers an Accumulator which collects values into a list. Adding
// a []interface{} appends each of its elements.
func ListAccumulator(r *Registry) (*Accumulator, error) {
	return r.NewAccumulator([]interface{}{}, func(current interface{}, delta interface{}) (interface{}, error) {
		list := current.([]interface{})
		merged := make([]interface{}, len(list), len(list)+1)
		copy(merged, list)
		if more, ok := delta.([]interface{}); ok {
			return append(merged, more...), nil
		}
		return append(merged, delta), nil
	})
}
