package aggregators

import (
	"math"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/partition"
	"github.com/go-sif/sparkling/schema"
	"github.com/stretchr/testify/require"
)

func createTestRows(t *testing.T) []interface{} {
	s, err := schema.CreateSchemaFromColumns(
		[]string{"x", "y"},
		[]sparkling.ColumnType{&sparkling.Int64ColumnType{}, &sparkling.Float64ColumnType{}},
	)
	require.Nil(t, err)
	rows := make([]interface{}, 0, 11)
	for i := 1; i <= 10; i++ {
		row, err := partition.CreateRow([]interface{}{i, float64(i) * 2}, s)
		require.Nil(t, err)
		rows = append(rows, row)
	}
	row, err := partition.CreateRow([]interface{}{nil, nil}, s)
	require.Nil(t, err)
	return append(rows, row)
}

// accumulates the first half and second half of elements separately, and merges them
func aggregateInHalves(t *testing.T, factory sparkling.AggregatorFactory, elements []interface{}) sparkling.Aggregator {
	left, right := factory(), factory()
	for i, e := range elements {
		target := left
		if i >= len(elements)/2 {
			target = right
		}
		require.Nil(t, target.Accumulate(e))
	}
	require.Nil(t, left.Merge(right))
	return left
}

func TestCount(t *testing.T) {
	agg := aggregateInHalves(t, Counter, createTestRows(t))
	require.Equal(t, int64(11), agg.(*Count).GetCount())
	require.NotNil(t, agg.Merge(&Sum{}))
}

func TestSum(t *testing.T) {
	rows := createTestRows(t)
	require.Equal(t, 55.0, aggregateInHalves(t, Adder("x"), rows).(*Sum).GetSum())
	require.Equal(t, 110.0, aggregateInHalves(t, Adder("y"), rows).(*Sum).GetSum())
	raw := aggregateInHalves(t, Adder(""), []interface{}{1, int8(2), 3.5, nil})
	require.Equal(t, 6.5, raw.(*Sum).GetSum())

	err := Adder("missing")().Accumulate(rows[0])
	require.IsType(t, errors.MissingColumnError{}, err)
	err = Adder("")().Accumulate("text")
	require.IsType(t, errors.SchemaError{}, err)
}

func TestStats(t *testing.T) {
	agg := aggregateInHalves(t, Statistics("x"), createTestRows(t))
	sc := agg.(*Stats).GetStats()
	require.Equal(t, int64(10), sc.Count())
	require.InDelta(t, 5.5, sc.Mean(), 1e-12)
	require.Equal(t, 1.0, sc.Min())
	require.Equal(t, 10.0, sc.Max())
}

func TestCovariance(t *testing.T) {
	agg := aggregateInHalves(t, Covariance("x", "y"), createTestRows(t))
	cc := agg.(*CoMoment).GetCovariance()
	require.Equal(t, int64(10), cc.Count())
	require.InDelta(t, 1.0, cc.Correlation(), 1e-9)
	require.InDelta(t, 2*55.0/6, cc.SampleCovariance(), 1e-9)
}

func TestQuantile(t *testing.T) {
	agg := aggregateInHalves(t, Quantiles("x", 0), createTestRows(t))
	q := agg.(*Quantile).GetSketch().Query(0, 0.5, 1)
	require.Equal(t, []float64{1, 5, 10}, q)

	bad := Quantiles("x", -1)()
	require.NotNil(t, bad.Accumulate(createTestRows(t)[0]))
}

func TestCompose(t *testing.T) {
	agg := aggregateInHalves(t, Compose(
		Counter,
		Adder("x"),
		Statistics("y"),
	), createTestRows(t))
	results := agg.(*Composed).GetResults()
	require.Len(t, results, 3)
	require.Equal(t, int64(11), results[0].(*Count).GetCount())
	require.Equal(t, 55.0, results[1].(*Sum).GetSum())
	require.Equal(t, 20.0, results[2].(*Stats).GetStats().Max())
	require.True(t, math.Abs(results[2].(*Stats).GetStats().Mean()-11) < 1e-12)

	other := Compose(Adder("x"))()
	require.NotNil(t, agg.Merge(other))
}
