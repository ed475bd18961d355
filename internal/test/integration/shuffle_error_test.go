package integration

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/operations/action"
	ops "github.com/go-sif/sparkling/operations/transform"
	"github.com/go-sif/sparkling/partition"
	"github.com/stretchr/testify/require"
)

func TestShuffleErrors(t *testing.T) {
	sess, mem := localSession(t, 2)
	// reduce all rows together, panicking once totals grow too large
	d, err := createTestJSONDataset(t, sess, mem, 10, 1).To(
		ops.Reduce(1, func(element interface{}) ([]byte, error) {
			return []byte{0}, nil
		}, func(left interface{}, right interface{}) (interface{}, error) {
			lcol1, err := left.(sparkling.Row).GetInt64("col1")
			if err != nil {
				return nil, err
			}
			rcol1, err := right.(sparkling.Row).GetInt64("col1")
			if err != nil {
				return nil, err
			}
			if lcol1+rcol1 > 15 {
				panic(fmt.Errorf("Prevent totals larger than 15"))
			}
			return partition.CreateRow([]interface{}{lcol1 + rcol1}, left.(sparkling.Row).Schema())
		}),
	)
	require.Nil(t, err)
	_, err = action.Collect(context.Background(), d)
	require.NotNil(t, err)
	cerr, ok := err.(*errors.ComputationError)
	require.True(t, ok)
	require.Equal(t, sparkling.ReduceByKeyOperation, sparkling.OperationKind(cerr.Kind))
	require.Contains(t, cerr.Error(), "Prevent totals larger than 15")
}

func TestKeyingErrors(t *testing.T) {
	sess, mem := localSession(t, 2)
	d, err := createTestJSONDataset(t, sess, mem, 10, 2).To(
		ops.Group(2, func(element interface{}) ([]byte, error) {
			col1, err := element.(sparkling.Row).GetInt64("col1")
			if err != nil {
				return nil, err
			} else if col1 < 2 {
				return nil, fmt.Errorf("Don't key numbers smaller than 2")
			}
			return []byte{byte(col1)}, nil
		}),
	)
	require.Nil(t, err)
	_, err = action.Count(context.Background(), d)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "Don't key numbers smaller than 2")
}
