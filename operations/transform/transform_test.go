package transform_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/expression"
	"github.com/go-sif/sparkling/logging"
	"github.com/go-sif/sparkling/operations/action"
	"github.com/go-sif/sparkling/operations/transform"
	"github.com/go-sif/sparkling/schema"
	"github.com/go-sif/sparkling/session"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreCurrent())
}

func createTestSession(t *testing.T) *session.Session {
	sess, err := session.NewSession(&session.Options{NumWorkers: 4, Logger: logging.Discard()})
	require.Nil(t, err)
	t.Cleanup(func() {
		require.Nil(t, sess.Stop())
	})
	return sess
}

func ints(from, to int) []interface{} {
	result := make([]interface{}, 0, to-from)
	for i := from; i < to; i++ {
		result = append(result, i)
	}
	return result
}

func collect(t *testing.T, d sparkling.Dataset) []interface{} {
	elements, err := action.Collect(context.Background(), d)
	require.Nil(t, err)
	return elements
}

// people builds a DataFrame of (name, age, score) Rows
func people(t *testing.T, sess *session.Session) sparkling.Dataset {
	s, err := schema.CreateSchemaFromColumns(
		[]string{"name", "age", "score"},
		[]sparkling.ColumnType{&sparkling.StringColumnType{}, &sparkling.Int64ColumnType{}, &sparkling.Float64ColumnType{}},
	)
	require.Nil(t, err)
	df, err := sess.CreateDataFrame([][]interface{}{
		{"ann", 34, 1.5},
		{"bob", nil, 2.0},
		{"cat", 17, nil},
		{nil, nil, nil},
		{"dan", 52, 4.0},
	}, s, 2)
	require.Nil(t, err)
	return df
}

func rowValues(t *testing.T, elements []interface{}) [][]interface{} {
	result := make([][]interface{}, len(elements))
	for i, e := range elements {
		row, ok := e.(sparkling.Row)
		require.True(t, ok)
		result[i] = row.Values()
	}
	return result
}

func TestMapFilterFlatMap(t *testing.T) {
	sess := createTestSession(t)
	d, err := sess.Parallelize(ints(0, 10), 3)
	require.Nil(t, err)
	d, err = d.To(
		transform.Filter(func(e interface{}) (bool, error) { return e.(int)%2 == 0, nil }),
		transform.Map(func(e interface{}) (interface{}, error) { return e.(int) * 10, nil }),
		transform.FlatMap(func(e interface{}) ([]interface{}, error) {
			return []interface{}{e, fmt.Sprintf("%d!", e)}, nil
		}),
	)
	require.Nil(t, err)
	require.Equal(t, 3, d.NumPartitions())
	require.Equal(t, []interface{}{0, "0!", 20, "20!", 40, "40!", 60, "60!", 80, "80!"}, collect(t, d))
}

func TestMapPartitionsWithIndex(t *testing.T) {
	sess := createTestSession(t)
	d, err := sess.Parallelize(ints(0, 4), 2)
	require.Nil(t, err)
	d, err = d.To(transform.MapPartitionsWithIndex(func(index int, elements []interface{}) ([]interface{}, error) {
		return []interface{}{fmt.Sprintf("%d:%d", index, len(elements))}, nil
	}))
	require.Nil(t, err)
	require.Equal(t, []interface{}{"0:2", "1:2"}, collect(t, d))
}

func TestDistinct(t *testing.T) {
	sess := createTestSession(t)
	d, err := sess.Parallelize([]interface{}{3, 1, 3, "a", 2, 1, "a", 3.0}, 3)
	require.Nil(t, err)
	d, err = d.To(transform.Distinct(2))
	require.Nil(t, err)
	require.Equal(t, 2, d.NumPartitions())
	elements := collect(t, d)
	// 3 and 3.0 are equal values
	require.Len(t, elements, 4)
	seen := make(map[string]bool)
	for _, e := range elements {
		seen[fmt.Sprint(e)] = true
	}
	require.True(t, seen["1"] && seen["2"] && seen["a"])
}

func TestDistinctRows(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	doubled, err := df.To(transform.Union(df), transform.Distinct(0))
	require.Nil(t, err)
	require.Len(t, collect(t, doubled), 5)
}

func TestGroupKeepsKeysTogether(t *testing.T) {
	sess := createTestSession(t)
	words := []interface{}{"apple", "bee", "avocado", "cat", "banana", "corn", "axe"}
	d, err := sess.Parallelize(words, 3)
	require.Nil(t, err)
	grouped, err := d.To(transform.Group(2, func(e interface{}) ([]byte, error) {
		return []byte(e.(string)[:1]), nil
	}))
	require.Nil(t, err)
	parts, err := action.Glom(context.Background(), grouped)
	require.Nil(t, err)
	total := 0
	for _, p := range parts {
		total += len(p)
		// within a Partition, each first letter forms one contiguous run
		finished := make(map[byte]bool)
		for i, e := range p {
			letter := e.(string)[0]
			require.False(t, finished[letter])
			if i+1 == len(p) || p[i+1].(string)[0] != letter {
				finished[letter] = true
			}
		}
	}
	require.Equal(t, len(words), total)
}

func TestReduceByKey(t *testing.T) {
	sess := createTestSession(t)
	d, err := sess.Parallelize([]interface{}{"a", "b", "a", "c", "a", "b"}, 3)
	require.Nil(t, err)
	d, err = d.To(
		transform.Map(func(e interface{}) (interface{}, error) { return []interface{}{e, 1}, nil }),
		transform.Reduce(2, func(e interface{}) ([]byte, error) {
			return []byte(e.([]interface{})[0].(string)), nil
		}, func(left, right interface{}) (interface{}, error) {
			l, r := left.([]interface{}), right.([]interface{})
			return []interface{}{l[0], l[1].(int) + r[1].(int)}, nil
		}),
	)
	require.Nil(t, err)
	counts := make(map[string]int)
	for _, e := range collect(t, d) {
		pair := e.([]interface{})
		counts[pair[0].(string)] = pair[1].(int)
	}
	require.Equal(t, map[string]int{"a": 3, "b": 2, "c": 1}, counts)
}

func TestSample(t *testing.T) {
	sess := createTestSession(t)
	d, err := sess.Parallelize(ints(0, 2000), 4)
	require.Nil(t, err)
	sampled, err := d.To(transform.Sample(false, 0.25, 7))
	require.Nil(t, err)
	first := collect(t, sampled)
	require.InDelta(t, 500, len(first), 100)
	again, err := d.To(transform.Sample(false, 0.25, 7))
	require.Nil(t, err)
	require.Equal(t, first, collect(t, again))

	replaced, err := d.To(transform.Sample(true, 2, 7))
	require.Nil(t, err)
	require.InDelta(t, 4000, len(collect(t, replaced)), 400)

	_, err = d.To(transform.Sample(false, 1.5, 7))
	require.IsType(t, errors.ValidationError{}, err)
	_, err = d.To(transform.Sample(true, -1, 7))
	require.IsType(t, errors.ValidationError{}, err)
}

func TestLimit(t *testing.T) {
	sess := createTestSession(t)
	d, err := sess.Parallelize(ints(0, 10), 4)
	require.Nil(t, err)
	limited, err := d.To(transform.Limit(4))
	require.Nil(t, err)
	require.Equal(t, 1, limited.NumPartitions())
	require.Equal(t, ints(0, 4), collect(t, limited))
	none, err := d.To(transform.Limit(0))
	require.Nil(t, err)
	require.Empty(t, collect(t, none))
	_, err = d.To(transform.Limit(-1))
	require.IsType(t, errors.ValidationError{}, err)
}

func TestUnionSchemasMustMatch(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	raw, err := sess.Parallelize([]interface{}{1}, 1)
	require.Nil(t, err)
	_, err = df.To(transform.Union(raw))
	require.IsType(t, errors.ValidationError{}, err)
	renamed, err := df.To(transform.RenameColumn("age", "years"))
	require.Nil(t, err)
	_, err = df.To(transform.Union(renamed))
	require.IsType(t, errors.SchemaError{}, err)
}

func TestSelectAndWithColumn(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	projected, err := df.To(
		transform.Select(expression.Col("name"), expression.As(expression.Times(expression.Col("age"), expression.Lit(2)), "double")),
	)
	require.Nil(t, err)
	require.Equal(t, []string{"name", "double"}, projected.Schema().ColumnNames())
	require.Equal(t, [][]interface{}{
		{"ann", int64(68)}, {"bob", nil}, {"cat", int64(34)}, {nil, nil}, {"dan", int64(104)},
	}, rowValues(t, collect(t, projected)))

	withAdult, err := df.To(transform.WithColumn("adult", expression.Gte(expression.Col("age"), expression.Lit(18))))
	require.Nil(t, err)
	require.Equal(t, []string{"name", "age", "score", "adult"}, withAdult.Schema().ColumnNames())
	values := rowValues(t, collect(t, withAdult))
	require.Equal(t, true, values[0][3])
	require.Nil(t, values[1][3])
	require.Equal(t, false, values[2][3])

	_, err = df.To(transform.Select(expression.Col("missing")))
	require.NotNil(t, err)
	raw, err := sess.Parallelize([]interface{}{1}, 1)
	require.Nil(t, err)
	_, err = raw.To(transform.Select(expression.Lit(1)))
	require.IsType(t, errors.ValidationError{}, err)
}

func TestSQLOperations(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	adults, err := df.To(transform.WhereSQL("age >= 18 and score is not null"), transform.SelectSQL("name, score * 2 as s"))
	require.Nil(t, err)
	require.Equal(t, [][]interface{}{{"ann", 3.0}, {"dan", 8.0}}, rowValues(t, collect(t, adults)))

	_, err = df.To(transform.WhereSQL("age >"))
	require.IsType(t, errors.ParsingError{}, err)
}

func TestRemoveAndRenameColumn(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	trimmed, err := df.To(transform.RemoveColumn("score", "nope"), transform.RenameColumn("age", "years"))
	require.Nil(t, err)
	require.Equal(t, []string{"name", "years"}, trimmed.Schema().ColumnNames())
	values := rowValues(t, collect(t, trimmed))
	require.Equal(t, []interface{}{"ann", int64(34)}, values[0])
	row := collect(t, trimmed)[4].(sparkling.Row)
	years, err := row.GetInt64("years")
	require.Nil(t, err)
	require.Equal(t, int64(52), years)
}

func TestDropNA(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	names := func(d sparkling.Dataset) []string {
		result := make([]string, 0)
		for _, values := range rowValues(t, collect(t, d)) {
			result = append(result, fmt.Sprint(values[0]))
		}
		return result
	}
	anyNull, err := df.To(transform.DropNA("any", 0))
	require.Nil(t, err)
	require.Equal(t, []string{"ann", "dan"}, names(anyNull))
	allNull, err := df.To(transform.DropNA("all", 0))
	require.Nil(t, err)
	require.Equal(t, []string{"ann", "bob", "cat", "dan"}, names(allNull))
	subset, err := df.To(transform.DropNA("any", 0, "age"))
	require.Nil(t, err)
	require.Equal(t, []string{"ann", "cat", "dan"}, names(subset))
	thresh, err := df.To(transform.DropNA("any", 2))
	require.Nil(t, err)
	require.Equal(t, []string{"ann", "bob", "cat", "dan"}, names(thresh))

	_, err = df.To(transform.DropNA("some", 0))
	require.IsType(t, errors.ValidationError{}, err)
	_, err = df.To(transform.DropNA("any", 0, "missing"))
	require.IsType(t, errors.SchemaError{}, err)
}

func TestFillNA(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	filled, err := df.To(transform.FillNA(0))
	require.Nil(t, err)
	values := rowValues(t, collect(t, filled))
	// the string column is incompatible with a numeric fill
	require.Equal(t, []interface{}{nil, int64(0), 0.0}, values[3])
	require.Equal(t, []interface{}{"bob", int64(0), 2.0}, values[1])

	perColumn, err := df.To(transform.FillNA(map[string]interface{}{"name": "?", "score": 9.5}))
	require.Nil(t, err)
	values = rowValues(t, collect(t, perColumn))
	require.Equal(t, []interface{}{"?", nil, 9.5}, values[3])

	_, err = df.To(transform.FillNA(nil))
	require.IsType(t, errors.ValidationError{}, err)
}

func TestReplace(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	replaced, err := df.To(transform.Replace(map[interface{}]interface{}{"ann": "anne", 17: 18}))
	require.Nil(t, err)
	values := rowValues(t, collect(t, replaced))
	require.Equal(t, "anne", values[0][0])
	require.Equal(t, int64(18), values[2][1])
	require.Equal(t, []interface{}{nil, nil, nil}, values[3])

	onlyScore, err := df.To(transform.Replace(map[interface{}]interface{}{"ann": "anne"}, "score"))
	require.Nil(t, err)
	require.Equal(t, "ann", rowValues(t, collect(t, onlyScore))[0][0])
}

func TestRepartitionByColumnsDefaults(t *testing.T) {
	sess := createTestSession(t)
	df := people(t, sess)
	hashed, err := df.To(transform.RepartitionByColumns(0, "age"))
	require.Nil(t, err)
	require.Equal(t, transform.DefaultShufflePartitions, hashed.NumPartitions())
	elements := collect(t, hashed)
	require.Len(t, elements, 5)
	ages := make([]string, 0)
	for _, v := range rowValues(t, elements) {
		ages = append(ages, fmt.Sprint(v[1]))
	}
	sort.Strings(ages)
	require.Equal(t, []string{"17", "34", "52", "<nil>", "<nil>"}, ages)
}
