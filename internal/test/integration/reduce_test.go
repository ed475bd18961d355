package integration

import (
	"context"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/operations/action"
	ops "github.com/go-sif/sparkling/operations/transform"
	"github.com/go-sif/sparkling/partition"
	"github.com/stretchr/testify/require"
)

func TestReduce(t *testing.T) {
	sess, mem := localSession(t, 4)
	// sum rows by the parity of col1
	d, err := createTestJSONDataset(t, sess, mem, 100, 3).To(
		ops.Reduce(2, func(element interface{}) ([]byte, error) {
			col1, err := element.(sparkling.Row).GetInt64("col1")
			if err != nil {
				return nil, err
			}
			return []byte{byte(col1 % 2)}, nil
		}, func(left interface{}, right interface{}) (interface{}, error) {
			lrow, rrow := left.(sparkling.Row), right.(sparkling.Row)
			lcol1, err := lrow.GetInt64("col1")
			if err != nil {
				return nil, err
			}
			rcol1, err := rrow.GetInt64("col1")
			if err != nil {
				return nil, err
			}
			sum := lcol1 + rcol1
			if lcol1%2 == 1 {
				// keep odd sums odd, so that their key is preserved
				sum = lcol1 + rcol1 - 1
			}
			return partition.CreateRow([]interface{}{sum}, lrow.Schema())
		}),
	)
	require.Nil(t, err)
	elements, err := action.Collect(context.Background(), d)
	require.Nil(t, err)
	require.Len(t, elements, 2)
	sums := make(map[int64]bool)
	for _, e := range elements {
		v, err := e.(sparkling.Row).GetInt64("col1")
		require.Nil(t, err)
		sums[v] = true
	}
	// 0+2+...+98 = 2450. 1+3+...+99 = 2500, less 49 for the 49 merges.
	require.Equal(t, map[int64]bool{2450: true, 2451: true}, sums)
}

func TestAccumulate(t *testing.T) {
	sess, mem := localSession(t, 4)
	d := createTestJSONDataset(t, sess, mem, 100, 2)
	s, err := action.Stats(context.Background(), d, "col1")
	require.Nil(t, err)
	require.Equal(t, int64(100), s.Count())
	require.Equal(t, 4950.0, s.Sum())
	require.Equal(t, 99.0, s.Max())
}
