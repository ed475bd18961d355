package util

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/go-sif/sparkling/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestCompareAcrossNumericTypes(t *testing.T) {
	c, err := Compare(1, 2.5)
	require.Nil(t, err)
	require.Equal(t, -1, c)
	c, err = Compare(int32(3), int64(3))
	require.Nil(t, err)
	require.Equal(t, 0, c)
	c, err = Compare(decimal.RequireFromString("1.10"), 1.05)
	require.Nil(t, err)
	require.Equal(t, 1, c)
	c, err = Compare(math.NaN(), math.Inf(1))
	require.Nil(t, err)
	require.Equal(t, 1, c)
}

func TestCompareNilsFirst(t *testing.T) {
	c, err := Compare(nil, 0)
	require.Nil(t, err)
	require.Equal(t, -1, c)
	c, err = Compare("a", nil)
	require.Nil(t, err)
	require.Equal(t, 1, c)
	c, err = Compare(nil, nil)
	require.Nil(t, err)
	require.Equal(t, 0, c)
}

func TestCompareSequences(t *testing.T) {
	c, err := Compare([]interface{}{1, "b"}, []interface{}{1, "c"})
	require.Nil(t, err)
	require.Equal(t, -1, c)
	c, err = Compare([]interface{}{1}, []interface{}{1, nil})
	require.Nil(t, err)
	require.Equal(t, -1, c)
}

func TestCompareIncompatible(t *testing.T) {
	_, err := Compare("a", 1)
	require.NotNil(t, err)
	require.IsType(t, errors.SchemaError{}, err)
}

func TestEncodeKeyEquivalence(t *testing.T) {
	a, err := EncodeKey(int32(7))
	require.Nil(t, err)
	b, err := EncodeKey(7.0)
	require.Nil(t, err)
	require.Equal(t, a, b)
	c, err := EncodeKey("7")
	require.Nil(t, err)
	require.NotEqual(t, a, c)
	m1, err := EncodeKey(map[string]interface{}{"x": 1, "y": "z"})
	require.Nil(t, err)
	m2, err := EncodeKey(map[string]interface{}{"y": "z", "x": 1})
	require.Nil(t, err)
	require.Equal(t, m1, m2)
	_, err = EncodeKey(func() {})
	require.NotNil(t, err)
}

func TestEvenSlice(t *testing.T) {
	total := 0
	for i := 0; i < 500; i++ {
		start, end := EvenSlice(3529, i, 500)
		require.True(t, end >= start)
		total += end - start
	}
	require.Equal(t, 3529, total)
	start, end := EvenSlice(1, 99, 100)
	require.Equal(t, 0, start)
	require.Equal(t, 1, end)
}

func TestSafeMapOperationRecovers(t *testing.T) {
	op := SafeMapOperation(func(e interface{}) (interface{}, error) {
		panic("boom")
	})
	_, err := op(1)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "Map Panic: boom")
}

func TestRetry(t *testing.T) {
	calls := 0
	attempts, last, all := Retry(context.Background(), 4, errors.IsFatal, nil, func(attempt int) error {
		calls++
		if attempt < 3 {
			return fmt.Errorf("transient %d", attempt)
		}
		return nil
	})
	require.Nil(t, last)
	require.Nil(t, all)
	require.Equal(t, 3, attempts)
	require.Equal(t, 3, calls)

	retries := 0
	attempts, last, all = Retry(context.Background(), 4, errors.IsFatal, func(int, error) { retries++ }, func(attempt int) error {
		return fmt.Errorf("always")
	})
	require.Equal(t, 4, attempts)
	require.Equal(t, 3, retries)
	require.NotNil(t, last)
	require.Contains(t, all.Error(), "4 errors occurred")

	attempts, last, _ = Retry(context.Background(), 4, errors.IsFatal, nil, func(attempt int) error {
		return errors.Schemaf("bad type")
	})
	require.Equal(t, 1, attempts)
	require.IsType(t, errors.SchemaError{}, last)
}
