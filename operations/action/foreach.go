package action

import (
	"context"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/internal/dataset"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// Foreach applies fn to every element of a Dataset. fn may be called concurrently for elements of different Partitions.
func Foreach(ctx context.Context, d sparkling.Dataset, fn sparkling.ForeachOperation) error {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return err
	}
	safeFn := iutil.SafeForeachOperation(fn)
	return engine.Run(ctx, d, "foreach", nil, func(part sparkling.Partition) error {
		return part.ForEach(func(element interface{}) error {
			return safeFn(element)
		})
	})
}

// ForeachPartition applies fn to the elements of every Partition of a Dataset. fn may be called concurrently.
func ForeachPartition(ctx context.Context, d sparkling.Dataset, fn sparkling.ForeachPartitionOperation) error {
	engine, err := dataset.EngineOf(d)
	if err != nil {
		return err
	}
	safeFn := iutil.SafeForeachPartitionOperation(fn)
	return engine.Run(ctx, d, "foreachPartition", nil, func(part sparkling.Partition) error {
		return safeFn(part.Index(), part.Elements())
	})
}
