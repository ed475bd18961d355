// Package ast converts parse trees into Expressions. A parse tree is made of Nodes, each of which
// has a kind and an ordered list of children; leaves are Terminal nodes which carry the text of a token.
// Conversion is driven entirely by a table of converters keyed by node kind: a node of an unknown kind
// is a ParsingError, never silently skipped.
package ast

import (
	"fmt"
	"strings"
)

// Node kinds understood by the converter table
const (
	Terminal                = "Terminal"
	SingleStatement         = "SingleStatement"
	SingleExpression        = "SingleExpression"
	Expression              = "Expression"
	NamedExpression         = "NamedExpression"
	NamedExpressionSeq      = "NamedExpressionSeq"
	Predicated              = "Predicated"
	ValueExpressionDefault  = "ValueExpressionDefault"
	ColumnReference         = "ColumnReference"
	Identifier              = "Identifier"
	UnquotedIdentifier      = "UnquotedIdentifier"
	QuotedIdentifier        = "QuotedIdentifier"
	ConstantDefault         = "ConstantDefault"
	NumericLiteral          = "NumericLiteral"
	IntegerLiteral          = "IntegerLiteral"
	BigIntLiteral           = "BigIntLiteral"
	SmallIntLiteral         = "SmallIntLiteral"
	TinyIntLiteral          = "TinyIntLiteral"
	DecimalLiteral          = "DecimalLiteral"
	DoubleLiteral           = "DoubleLiteral"
	ExponentLiteral         = "ExponentLiteral"
	BigDecimalLiteral       = "BigDecimalLiteral"
	StringLiteral           = "StringLiteral"
	BooleanLiteral          = "BooleanLiteral"
	NullLiteral             = "NullLiteral"
	Comparison              = "Comparison"
	ComparisonOperator      = "ComparisonOperator"
	ArithmeticBinary        = "ArithmeticBinary"
	ArithmeticOperator      = "ArithmeticOperator"
	ArithmeticUnary         = "ArithmeticUnary"
	LogicalBinary           = "LogicalBinary"
	LogicalNot              = "LogicalNot"
	NullPredicate           = "NullPredicate"
	ParenthesizedExpression = "ParenthesizedExpression"
	ConstantList            = "ConstantList"
	IdentifierList          = "IdentifierList"
)

// Node is a node of a parse tree
type Node struct {
	Kind     string
	Children []*Node
	Text     string // the token text of a Terminal node
}

// Leaf creates a Terminal node
func Leaf(text string) *Node {
	return &Node{Kind: Terminal, Text: text}
}

// Tree creates a non-terminal node
func Tree(kind string, children ...*Node) *Node {
	return &Node{Kind: kind, Children: children}
}

// IsTerminal returns true iff this Node is a leaf token
func (n *Node) IsTerminal() bool {
	return n.Kind == Terminal
}

// String returns an s-expression representation of a parse tree, for debugging
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.IsTerminal() {
		return fmt.Sprintf("%q", n.Text)
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		parts[i] = c.String()
	}
	return fmt.Sprintf("(%s %s)", n.Kind, strings.Join(parts, " "))
}
