package ast

import (
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/expression"
	"github.com/go-sif/sparkling/partition"
	"github.com/go-sif/sparkling/schema"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func column(name string) *Node {
	return Tree(ValueExpressionDefault, Tree(ColumnReference, Tree(Identifier, Tree(UnquotedIdentifier, Leaf(name)))))
}

func number(kind string, text string) *Node {
	return Tree(ConstantDefault, Tree(NumericLiteral, Tree(kind, Leaf(text))))
}

func TestConvertComparison(t *testing.T) {
	// SELECT ... WHERE age = 1
	tree := Tree(SingleExpression,
		Tree(NamedExpression,
			Tree(Expression,
				Tree(Predicated,
					Tree(Comparison,
						column("age"),
						Tree(ComparisonOperator, Leaf("=")),
						number(IntegerLiteral, "1"),
					),
				),
			),
		),
		Leaf("<EOF>"),
	)
	e, err := ToExpression(tree)
	require.Nil(t, err)
	require.Equal(t, "(age = 1)", e.String())

	s := schema.CreateSchema()
	s.CreateColumn("age", &sparkling.Int64ColumnType{})
	row, err := partition.CreateRow([]interface{}{1}, s)
	require.Nil(t, err)
	v, err := e.Eval(row)
	require.Nil(t, err)
	require.Equal(t, true, v)
}

func TestConvertUnknownKind(t *testing.T) {
	tree := Tree(SingleExpression, Tree("WindowSpecification", Leaf("OVER")), Leaf("<EOF>"))
	_, err := ToExpression(tree)
	require.NotNil(t, err)
	perr, ok := err.(errors.ParsingError)
	require.True(t, ok)
	require.Equal(t, "WindowSpecification", perr.Kind)
	require.True(t, errors.IsFatal(err))
}

func TestConvertChildCountMismatch(t *testing.T) {
	tree := Tree(Comparison, column("a"), Tree(ComparisonOperator, Leaf("=")))
	_, err := ToExpression(tree)
	require.IsType(t, errors.ParsingError{}, err)
	_, err = ToExpression(Tree(SingleExpression, column("a")))
	require.IsType(t, errors.ParsingError{}, err)
}

func TestConvertLiterals(t *testing.T) {
	cases := []struct {
		kind     string
		text     string
		expected interface{}
	}{
		{IntegerLiteral, "42", int64(42)},
		{BigIntLiteral, "42L", int64(42)},
		{SmallIntLiteral, "7S", int64(7)},
		{TinyIntLiteral, "-3Y", int64(-3)},
		{DoubleLiteral, "1.5D", 1.5},
		{ExponentLiteral, "1e3", 1000.0},
	}
	for _, c := range cases {
		e, err := ToExpression(number(c.kind, c.text))
		require.Nil(t, err, c.text)
		require.Equal(t, c.expected, e.(*expression.Literal).Value, c.text)
	}
	e, err := ToExpression(number(BigDecimalLiteral, "1.25BD"))
	require.Nil(t, err)
	require.True(t, decimal.RequireFromString("1.25").Equal(e.(*expression.Literal).Value.(decimal.Decimal)))
	e, err = ToExpression(number(DecimalLiteral, "0.1"))
	require.Nil(t, err)
	require.IsType(t, decimal.Decimal{}, e.(*expression.Literal).Value)
	_, err = ToExpression(number(TinyIntLiteral, "300Y"))
	require.IsType(t, errors.ParsingError{}, err)
	_, err = ToExpression(number(IntegerLiteral, "abc"))
	require.IsType(t, errors.ParsingError{}, err)
}

func TestConvertStringsBooleansAndNull(t *testing.T) {
	e, err := ToExpression(Tree(StringLiteral, Leaf("'it\\'s'"), Leaf("\" here\"")))
	require.Nil(t, err)
	require.Equal(t, "it's here", e.(*expression.Literal).Value)
	e, err = ToExpression(Tree(BooleanLiteral, Leaf("TRUE")))
	require.Nil(t, err)
	require.Equal(t, true, e.(*expression.Literal).Value)
	e, err = ToExpression(Tree(NullLiteral, Leaf("NULL")))
	require.Nil(t, err)
	require.Nil(t, e.(*expression.Literal).Value)
}

func TestConvertCompound(t *testing.T) {
	// NOT (a + 2 > b) OR b IS NULL
	tree := Tree(LogicalBinary,
		Tree(LogicalNot,
			Leaf("NOT"),
			Tree(ParenthesizedExpression,
				Leaf("("),
				Tree(Comparison,
					Tree(ArithmeticBinary, column("a"), Tree(ArithmeticOperator, Leaf("+")), number(IntegerLiteral, "2")),
					Tree(ComparisonOperator, Leaf(">")),
					column("b"),
				),
				Leaf(")"),
			),
		),
		Leaf("or"),
		Tree(NullPredicate, column("b"), Leaf("IS"), Leaf("NULL")),
	)
	e, err := ToExpression(tree)
	require.Nil(t, err)
	require.Equal(t, "((NOT ((a + 2) > b)) OR (b IS NULL))", e.String())
}

func TestConvertNamedExpressions(t *testing.T) {
	tree := Tree(NamedExpressionSeq,
		Tree(NamedExpression, column("a")),
		Leaf(","),
		Tree(NamedExpression, Tree(ArithmeticUnary, Leaf("-"), column("b")), Leaf("AS"), Tree(Identifier, Tree(QuotedIdentifier, Leaf("`neg b`")))),
	)
	exprs, err := ToExpressions(tree)
	require.Nil(t, err)
	require.Len(t, exprs, 2)
	require.Equal(t, "a", expression.Name(exprs[0]))
	require.Equal(t, "neg b", expression.Name(exprs[1]))
}

func TestConvertLists(t *testing.T) {
	v, err := Convert(Tree(IdentifierList, Leaf("("), Tree(UnquotedIdentifier, Leaf("a")), Leaf(","), Tree(UnquotedIdentifier, Leaf("b")), Leaf(")")))
	require.Nil(t, err)
	require.Equal(t, []interface{}{identifier("a"), identifier("b")}, v)
}
