package util

import (
	"fmt"

	"github.com/go-sif/sparkling"
)

func recovered(kind string, r interface{}, element interface{}) error {
	if anErr, ok := r.(error); ok {
		return fmt.Errorf("%s Panic: %w\nElement: %s\n%s", kind, anErr, Describe(element), GetTrace())
	}
	return fmt.Errorf("%s Panic: %v\nElement: %s\n%s", kind, r, Describe(element), GetTrace())
}

// SafeMapOperation wraps a MapOperation such that panics are recovered and nice error messages are constructed
func SafeMapOperation(mapOp sparkling.MapOperation) (safeMapOp sparkling.MapOperation) {
	return func(element interface{}) (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Map", r, element)
			} else if err != nil {
				err = fmt.Errorf("Map Error: %w\nElement: %s", err, Describe(element))
			}
		}()
		result, err = mapOp(element)
		return
	}
}

// SafeFilterOperation wraps a FilterOperation such that panics are recovered and nice error messages are constructed
func SafeFilterOperation(filterOp sparkling.FilterOperation) (safeFilterOp sparkling.FilterOperation) {
	return func(element interface{}) (keep bool, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Filter", r, element)
			} else if err != nil {
				err = fmt.Errorf("Filter Error: %w\nElement: %s", err, Describe(element))
			}
		}()
		keep, err = filterOp(element)
		return
	}
}

// SafeFlatMapOperation wraps a FlatMapOperation such that panics are recovered and nice error messages are constructed
func SafeFlatMapOperation(flatMapOp sparkling.FlatMapOperation) (safeFlatMapOp sparkling.FlatMapOperation) {
	return func(element interface{}) (result []interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("FlatMap", r, element)
			} else if err != nil {
				err = fmt.Errorf("FlatMap Error: %w\nElement: %s", err, Describe(element))
			}
		}()
		result, err = flatMapOp(element)
		return
	}
}

// SafeMapPartitionsOperation wraps a MapPartitionsOperation such that panics are recovered and nice error messages are constructed
func SafeMapPartitionsOperation(mapPartitionsOp sparkling.MapPartitionsOperation) (safeMapPartitionsOp sparkling.MapPartitionsOperation) {
	return func(index int, elements []interface{}) (result []interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("MapPartitions Panic: %w\nPartition: %d\n%s", anErr, index, GetTrace())
				} else {
					err = fmt.Errorf("MapPartitions Panic: %v\nPartition: %d\n%s", r, index, GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("MapPartitions Error: %w\nPartition: %d", err, index)
			}
		}()
		result, err = mapPartitionsOp(index, elements)
		return
	}
}

// SafeForeachOperation wraps a ForeachOperation such that panics are recovered and nice error messages are constructed
func SafeForeachOperation(foreachOp sparkling.ForeachOperation) (safeForeachOp sparkling.ForeachOperation) {
	return func(element interface{}) (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Foreach", r, element)
			} else if err != nil {
				err = fmt.Errorf("Foreach Error: %w\nElement: %s", err, Describe(element))
			}
		}()
		err = foreachOp(element)
		return
	}
}

// SafeForeachPartitionOperation wraps a ForeachPartitionOperation such that panics are recovered and nice error messages are constructed
func SafeForeachPartitionOperation(foreachOp sparkling.ForeachPartitionOperation) (safeForeachOp sparkling.ForeachPartitionOperation) {
	return func(index int, elements []interface{}) (err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("ForeachPartition Panic: %w\nPartition: %d\n%s", anErr, index, GetTrace())
				} else {
					err = fmt.Errorf("ForeachPartition Panic: %v\nPartition: %d\n%s", r, index, GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("ForeachPartition Error: %w\nPartition: %d", err, index)
			}
		}()
		err = foreachOp(index, elements)
		return
	}
}

// SafeKeyingOperation wraps a KeyingOperation such that panics are recovered and nice error messages are constructed
func SafeKeyingOperation(keyingOp sparkling.KeyingOperation) (safeKeyingOp sparkling.KeyingOperation) {
	return func(element interface{}) (key []byte, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = recovered("Keying", r, element)
			} else if err != nil {
				err = fmt.Errorf("Keying Error: %w\nElement: %s", err, Describe(element))
			}
		}()
		key, err = keyingOp(element)
		return
	}
}

// SafeReductionOperation wraps a ReductionOperation such that panics are recovered and nice error messages are constructed
func SafeReductionOperation(reductionOp sparkling.ReductionOperation) (safeReductionOp sparkling.ReductionOperation) {
	return func(left, right interface{}) (result interface{}, err error) {
		defer func() {
			if r := recover(); r != nil {
				if anErr, ok := r.(error); ok {
					err = fmt.Errorf("Reduction Panic: %w\nLeft: %s\nRight: %s\n%s", anErr, Describe(left), Describe(right), GetTrace())
				} else {
					err = fmt.Errorf("Reduction Panic: %v\nLeft: %s\nRight: %s\n%s", r, Describe(left), Describe(right), GetTrace())
				}
			} else if err != nil {
				err = fmt.Errorf("Reduction Error: %w\nLeft: %s\nRight: %s", err, Describe(left), Describe(right))
			}
		}()
		result, err = reductionOp(left, right)
		return
	}
}

// SafeCall runs fn, converting a panic into an error
func SafeCall(kind string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if anErr, ok := r.(error); ok {
				err = fmt.Errorf("%s Panic: %w\n%s", kind, anErr, GetTrace())
			} else {
				err = fmt.Errorf("%s Panic: %v\n%s", kind, r, GetTrace())
			}
		}
	}()
	return fn()
}
