package expression

import (
	"fmt"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/partition"
	"github.com/go-sif/sparkling/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createTestRow(t *testing.T, values ...interface{}) sparkling.Row {
	s, err := schema.CreateSchemaFromColumns(
		[]string{"a", "b", "name"},
		[]sparkling.ColumnType{&sparkling.Int64ColumnType{}, &sparkling.Float64ColumnType{}, &sparkling.StringColumnType{}},
	)
	require.Nil(t, err)
	row, err := partition.CreateRow(values, s)
	require.Nil(t, err)
	return row
}

func TestLiteralAndColumn(t *testing.T) {
	row := createTestRow(t, 3, 1.5, "x")
	v, err := Evaluate(Lit(7), row)
	require.Nil(t, err)
	require.Equal(t, int64(7), v)
	v, err = Evaluate(Col("name"), row)
	require.Nil(t, err)
	require.Equal(t, "x", v)
	_, err = Evaluate(Col("missing"), row)
	require.IsType(t, errors.SchemaError{}, err)
	require.True(t, errors.IsFatal(err))
}

func TestArithmeticPromotion(t *testing.T) {
	row := createTestRow(t, 3, 1.5, "x")
	v, err := Evaluate(Plus(Col("a"), Lit(2)), row)
	require.Nil(t, err)
	require.Equal(t, int64(5), v)
	v, err = Evaluate(Plus(Col("a"), Col("b")), row)
	require.Nil(t, err)
	require.Equal(t, 4.5, v)
	v, err = Evaluate(Div(Col("a"), Lit(2)), row)
	require.Nil(t, err)
	require.Equal(t, 1.5, v)
	v, err = Evaluate(Times(Col("a"), Lit(decimal.RequireFromString("0.1"))), row)
	require.Nil(t, err)
	require.True(t, decimal.RequireFromString("0.3").Equal(v.(decimal.Decimal)))
	v, err = Evaluate(Mod(Lit(-7), Lit(3)), row)
	require.Nil(t, err)
	require.Equal(t, int64(-1), v)
}

func TestDivideByZeroIsNull(t *testing.T) {
	row := createTestRow(t, 0, 0.0, "x")
	v, err := Evaluate(Div(Lit(1), Col("a")), row)
	require.Nil(t, err)
	require.Nil(t, v)
	v, err = Evaluate(Mod(Lit(1), Col("a")), row)
	require.Nil(t, err)
	require.Nil(t, v)
}

func TestNullPropagation(t *testing.T) {
	row := createTestRow(t, nil, 2.0, nil)
	v, err := Evaluate(Plus(Col("a"), Col("b")), row)
	require.Nil(t, err)
	require.Nil(t, v)
	v, err = Evaluate(Eq(Col("a"), Lit(1)), row)
	require.Nil(t, err)
	require.Nil(t, v)
	v, err = Evaluate(Binary(EqualNullSafe, Col("a"), Col("name")), row)
	require.Nil(t, err)
	require.Equal(t, true, v)
	v, err = Evaluate(Binary(EqualNullSafe, Col("a"), Lit(1)), row)
	require.Nil(t, err)
	require.Equal(t, false, v)
	v, err = Evaluate(Unary(IsNull, Col("a")), row)
	require.Nil(t, err)
	require.Equal(t, true, v)
	v, err = Evaluate(Unary(IsNotNull, Col("b")), row)
	require.Nil(t, err)
	require.Equal(t, true, v)
}

func TestThreeValuedLogic(t *testing.T) {
	row := createTestRow(t, nil, 2.0, "x")
	null := Eq(Col("a"), Lit(1))
	cases := []struct {
		expr     Expression
		expected interface{}
	}{
		{AndAlso(Lit(false), null), false},
		{AndAlso(null, Lit(true)), nil},
		{AndAlso(Lit(true), Lit(true)), true},
		{OrElse(null, Lit(true)), true},
		{OrElse(Lit(false), null), nil},
		{OrElse(Lit(false), Lit(false)), false},
		{Unary(Not, null), nil},
		{Unary(Not, Lit(false)), true},
	}
	for _, c := range cases {
		v, err := Evaluate(c.expr, row)
		require.Nil(t, err, c.expr.String())
		require.Equal(t, c.expected, v, c.expr.String())
	}
	_, err := Evaluate(AndAlso(Lit(1), Lit(true)), row)
	require.IsType(t, errors.SchemaError{}, err)
}

func TestComparisons(t *testing.T) {
	row := createTestRow(t, 3, 3.0, "x")
	v, err := Evaluate(Eq(Col("a"), Col("b")), row)
	require.Nil(t, err)
	require.Equal(t, true, v)
	v, err = Evaluate(Lt(Col("name"), Lit("y")), row)
	require.Nil(t, err)
	require.Equal(t, true, v)
	v, err = Evaluate(Gte(Col("a"), Lit(4)), row)
	require.Nil(t, err)
	require.Equal(t, false, v)
	_, err = Evaluate(Eq(Col("name"), Col("a")), row)
	require.IsType(t, errors.SchemaError{}, err)
	_, err = Evaluate(Plus(Col("name"), Col("a")), row)
	require.IsType(t, errors.SchemaError{}, err)
}

func TestUserDefinedFunction(t *testing.T) {
	row := createTestRow(t, 3, 1.5, "x")
	var order []string
	record := func(name string) Expression {
		return UDF("record", nil, func(args ...interface{}) (interface{}, error) {
			order = append(order, name)
			return name, nil
		})
	}
	concat := UDF("concat", &sparkling.StringColumnType{}, func(args ...interface{}) (interface{}, error) {
		return fmt.Sprintf("%v%v", args[0], args[1]), nil
	}, record("first"), record("second"))
	v, err := Evaluate(concat, row)
	require.Nil(t, err)
	require.Equal(t, "firstsecond", v)
	require.Equal(t, []string{"first", "second"}, order)

	failing := UDF("fail", nil, func(args ...interface{}) (interface{}, error) {
		panic("kaboom")
	}, Col("a"))
	_, err = Evaluate(failing, row)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "kaboom")
	require.False(t, errors.IsFatal(err))
}

func TestDataTypeAndValidate(t *testing.T) {
	row := createTestRow(t, 3, 1.5, "x")
	s := row.Schema()
	require.IsType(t, &sparkling.Int64ColumnType{}, Plus(Col("a"), Lit(1)).DataType(s))
	require.IsType(t, &sparkling.Float64ColumnType{}, Plus(Col("a"), Col("b")).DataType(s))
	require.IsType(t, &sparkling.Float64ColumnType{}, Div(Col("a"), Lit(1)).DataType(s))
	require.IsType(t, &sparkling.BoolColumnType{}, Eq(Col("a"), Lit(1)).DataType(s))
	require.Nil(t, Validate(Plus(Col("a"), Col("b")), s))
	require.NotNil(t, Validate(Plus(Col("a"), Col("zzz")), s))
	require.Equal(t, "total", Name(As(Plus(Col("a"), Col("b")), "total")))
	require.Equal(t, "(a + b)", Name(Plus(Col("a"), Col("b"))))
}
