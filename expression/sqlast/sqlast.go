// Package sqlast builds parse trees for SQL expressions, using the xwb1989/sqlparser grammar.
// The resulting ast.Nodes are converted into Expressions by package ast.
package sqlast

import (
	"fmt"
	"strings"

	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/expression"
	"github.com/go-sif/sparkling/expression/ast"
	"github.com/xwb1989/sqlparser"
)

// ParsePredicate parses a boolean SQL expression, as it would appear in a WHERE clause
func ParsePredicate(text string) (*ast.Node, error) {
	sel, err := parseSelect(fmt.Sprintf("select 1 from dual where %s", text))
	if err != nil {
		return nil, err
	}
	return ast.Tree(ast.SingleExpression, convertExpr(sel.Where.Expr), ast.Leaf("<EOF>")), nil
}

// ParseSelectList parses a comma-separated list of (optionally aliased) SQL expressions
func ParseSelectList(text string) (*ast.Node, error) {
	sel, err := parseSelect(fmt.Sprintf("select %s from dual", text))
	if err != nil {
		return nil, err
	}
	children := make([]*ast.Node, 0, 2*len(sel.SelectExprs))
	for i, se := range sel.SelectExprs {
		if i > 0 {
			children = append(children, ast.Leaf(","))
		}
		children = append(children, convertSelectExpr(se))
	}
	return ast.Tree(ast.NamedExpressionSeq, children...), nil
}

// Where parses a boolean SQL expression into an Expression
func Where(text string) (expression.Expression, error) {
	tree, err := ParsePredicate(text)
	if err != nil {
		return nil, err
	}
	return ast.ToExpression(tree)
}

// Select parses a comma-separated list of SQL expressions into Expressions
func Select(text string) ([]expression.Expression, error) {
	tree, err := ParseSelectList(text)
	if err != nil {
		return nil, err
	}
	return ast.ToExpressions(tree)
}

func parseSelect(sql string) (*sqlparser.Select, error) {
	stmt, err := sqlparser.Parse(sql)
	if err != nil {
		return nil, errors.ParsingError{Message: err.Error()}
	}
	sel, ok := stmt.(*sqlparser.Select)
	if !ok {
		return nil, errors.ParsingError{Kind: fmt.Sprintf("%T", stmt), Message: "expected an expression"}
	}
	return sel, nil
}

// unsupported produces a node which no converter is registered for, named after the sqlparser type
func unsupported(node interface{}) *ast.Node {
	kind := strings.TrimPrefix(fmt.Sprintf("%T", node), "*sqlparser.")
	kind = strings.TrimPrefix(kind, "sqlparser.")
	return ast.Tree(kind)
}

func convertSelectExpr(se sqlparser.SelectExpr) *ast.Node {
	aliased, ok := se.(*sqlparser.AliasedExpr)
	if !ok {
		return unsupported(se)
	}
	e := convertExpr(aliased.Expr)
	if aliased.As.IsEmpty() {
		return ast.Tree(ast.NamedExpression, e)
	}
	return ast.Tree(ast.NamedExpression, e, ast.Leaf("AS"), identifier(aliased.As.String()))
}

func identifier(name string) *ast.Node {
	return ast.Tree(ast.Identifier, ast.Tree(ast.UnquotedIdentifier, ast.Leaf(name)))
}

func constant(kind string, text string) *ast.Node {
	return ast.Tree(ast.ConstantDefault, ast.Tree(kind, ast.Leaf(text)))
}

func number(kind string, text string) *ast.Node {
	return ast.Tree(ast.ConstantDefault, ast.Tree(ast.NumericLiteral, ast.Tree(kind, ast.Leaf(text))))
}

func quote(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", `\'`) + "'"
}

func convertExpr(expr sqlparser.Expr) *ast.Node {
	switch e := expr.(type) {
	case *sqlparser.ColName:
		return ast.Tree(ast.ValueExpressionDefault, ast.Tree(ast.ColumnReference, identifier(e.Name.String())))
	case *sqlparser.SQLVal:
		switch e.Type {
		case sqlparser.IntVal:
			return number(ast.IntegerLiteral, string(e.Val))
		case sqlparser.FloatVal:
			if strings.ContainsAny(string(e.Val), "eE") {
				return number(ast.ExponentLiteral, string(e.Val))
			}
			return number(ast.DecimalLiteral, string(e.Val))
		case sqlparser.StrVal:
			return constant(ast.StringLiteral, quote(string(e.Val)))
		}
		return unsupported(e)
	case *sqlparser.NullVal:
		return constant(ast.NullLiteral, "NULL")
	case sqlparser.BoolVal:
		return constant(ast.BooleanLiteral, fmt.Sprintf("%t", bool(e)))
	case *sqlparser.ComparisonExpr:
		return ast.Tree(ast.Comparison, convertExpr(e.Left), ast.Tree(ast.ComparisonOperator, ast.Leaf(e.Operator)), convertExpr(e.Right))
	case *sqlparser.BinaryExpr:
		return ast.Tree(ast.ArithmeticBinary, convertExpr(e.Left), ast.Tree(ast.ArithmeticOperator, ast.Leaf(e.Operator)), convertExpr(e.Right))
	case *sqlparser.AndExpr:
		return ast.Tree(ast.LogicalBinary, convertExpr(e.Left), ast.Leaf("AND"), convertExpr(e.Right))
	case *sqlparser.OrExpr:
		return ast.Tree(ast.LogicalBinary, convertExpr(e.Left), ast.Leaf("OR"), convertExpr(e.Right))
	case *sqlparser.NotExpr:
		return ast.Tree(ast.LogicalNot, ast.Leaf("NOT"), convertExpr(e.Expr))
	case *sqlparser.UnaryExpr:
		return ast.Tree(ast.ArithmeticUnary, ast.Leaf(e.Operator), convertExpr(e.Expr))
	case *sqlparser.ParenExpr:
		return ast.Tree(ast.ParenthesizedExpression, ast.Leaf("("), convertExpr(e.Expr), ast.Leaf(")"))
	case *sqlparser.IsExpr:
		switch strings.ToLower(e.Operator) {
		case sqlparser.IsNullStr:
			return ast.Tree(ast.NullPredicate, convertExpr(e.Expr), ast.Leaf("IS"), ast.Leaf("NULL"))
		case sqlparser.IsNotNullStr:
			return ast.Tree(ast.NullPredicate, convertExpr(e.Expr), ast.Leaf("IS"), ast.Leaf("NOT"), ast.Leaf("NULL"))
		}
		return unsupported(e)
	default:
		return unsupported(e)
	}
}
