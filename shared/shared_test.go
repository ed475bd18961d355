package shared

import (
	"fmt"
	"sync"
	"testing"

	"github.com/go-sif/sparkling/errors"
	"github.com/stretchr/testify/require"
)

func TestAccumulatorConcurrentAdds(t *testing.T) {
	r := NewRegistry()
	acc, err := Int64Accumulator(r)
	require.Nil(t, err)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				require.Nil(t, acc.Add(1))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, int64(5000), acc.Value())
}

func TestAccumulatorMergeFailure(t *testing.T) {
	r := NewRegistry()
	acc, err := r.NewAccumulator(0, func(current, delta interface{}) (interface{}, error) {
		if delta.(int) < 0 {
			return nil, fmt.Errorf("negative delta")
		}
		if delta.(int) == 0 {
			panic("zero delta")
		}
		return current.(int) + delta.(int), nil
	})
	require.Nil(t, err)
	require.Nil(t, acc.Add(2))
	err = acc.Add(-1)
	cerr, ok := err.(*errors.ComputationError)
	require.True(t, ok)
	require.Equal(t, acc.ID(), cerr.Accumulator)
	require.Contains(t, err.Error(), "negative delta")
	err = acc.Add(0)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "zero delta")
	require.Equal(t, 2, acc.Value())

	_, err = r.NewAccumulator(0, nil)
	require.IsType(t, errors.ValidationError{}, err)
}

func TestTypedAccumulators(t *testing.T) {
	r := NewRegistry()
	f, err := Float64Accumulator(r)
	require.Nil(t, err)
	require.Nil(t, f.Add(1.5))
	require.Nil(t, f.Add(2))
	require.Equal(t, 3.5, f.Value())
	require.NotNil(t, f.Add("x"))

	l, err := ListAccumulator(r)
	require.Nil(t, err)
	require.Nil(t, l.Add("a"))
	require.Nil(t, l.Add([]interface{}{"b", "c"}))
	require.Equal(t, []interface{}{"a", "b", "c"}, l.Value())

	i, err := Int64Accumulator(r)
	require.Nil(t, err)
	require.NotNil(t, i.Add(1.5))
}

func TestBroadcastIsSharedByReference(t *testing.T) {
	r := NewRegistry()
	table := map[string]int{"a": 1}
	b, err := r.NewBroadcast(table)
	require.Nil(t, err)
	found, ok := r.Broadcast(b.ID())
	require.True(t, ok)
	require.Equal(t, table, found.Value())
	table["b"] = 2
	require.Equal(t, 2, found.Value().(map[string]int)["b"])
}

func TestRegistryIDsAndDestroy(t *testing.T) {
	r := NewRegistry()
	a, _ := Int64Accumulator(r)
	b, _ := r.NewBroadcast(1)
	c, _ := Int64Accumulator(r)
	require.NotEqual(t, a.ID(), b.ID())
	require.True(t, c.ID() > a.ID())
	found, ok := r.Accumulator(c.ID())
	require.True(t, ok)
	require.Equal(t, c, found)
	r.Destroy()
	_, ok = r.Accumulator(a.ID())
	require.False(t, ok)
	_, err := r.NewBroadcast(2)
	require.NotNil(t, err)
	require.Nil(t, a.Add(1))
}
