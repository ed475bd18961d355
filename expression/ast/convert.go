package ast

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"

	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/expression"
	"github.com/shopspring/decimal"
)

// identifier is the intermediate result of converting an identifier node
type identifier string

type converter func(kind string, children []*Node) (interface{}, error)

var converters map[string]converter

func init() {
	converters = map[string]converter{
		SingleStatement:         firstChildOnly,
		SingleExpression:        childAndEOF,
		Expression:              unwrap,
		Predicated:              unwrap,
		ValueExpressionDefault:  unwrap,
		ConstantDefault:         unwrap,
		NumericLiteral:          unwrap,
		Identifier:              unwrap,
		NamedExpression:         namedExpression,
		NamedExpressionSeq:      implicitList,
		ColumnReference:         columnReference,
		UnquotedIdentifier:      identifierLeaf,
		QuotedIdentifier:        identifierLeaf,
		ComparisonOperator:      leafValue,
		ArithmeticOperator:      leafValue,
		IntegerLiteral:          concatToLiteral,
		BigIntLiteral:           concatToLiteral,
		SmallIntLiteral:         concatToLiteral,
		TinyIntLiteral:          concatToLiteral,
		DecimalLiteral:          concatToLiteral,
		DoubleLiteral:           concatToLiteral,
		ExponentLiteral:         concatToLiteral,
		BigDecimalLiteral:       concatToLiteral,
		StringLiteral:           stringLiteral,
		BooleanLiteral:          booleanLiteral,
		NullLiteral:             nullLiteral,
		Comparison:              binaryOperator,
		ArithmeticBinary:        binaryOperator,
		LogicalBinary:           binaryOperator,
		LogicalNot:              logicalNot,
		ArithmeticUnary:         arithmeticUnary,
		NullPredicate:           nullPredicate,
		ParenthesizedExpression: parenthesized,
		ConstantList:            explicitList,
		IdentifierList:          explicitList,
	}
}

func parsingErrorf(kind string, format string, args ...interface{}) error {
	return errors.ParsingError{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Convert converts a parse tree into an intermediate value: an Expression,
// a token string, or a list of such values
func Convert(tree *Node) (interface{}, error) {
	if tree == nil {
		return nil, parsingErrorf("", "cannot convert a nil node")
	}
	if tree.IsTerminal() {
		return tree.Text, nil
	}
	convert, ok := converters[tree.Kind]
	if !ok {
		return nil, parsingErrorf(tree.Kind, "no converter is registered for this kind of node")
	}
	return convert(tree.Kind, tree.Children)
}

// ToExpression converts a parse tree into an Expression
func ToExpression(tree *Node) (expression.Expression, error) {
	v, err := Convert(tree)
	if err != nil {
		return nil, err
	}
	return asExpression(tree.Kind, v)
}

// ToExpressions converts a parse tree describing a list of expressions into Expressions
func ToExpressions(tree *Node) ([]expression.Expression, error) {
	v, err := Convert(tree)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]interface{})
	if !ok {
		e, err := asExpression(tree.Kind, v)
		if err != nil {
			return nil, err
		}
		return []expression.Expression{e}, nil
	}
	exprs := make([]expression.Expression, len(list))
	for i, item := range list {
		e, err := asExpression(tree.Kind, item)
		if err != nil {
			return nil, err
		}
		exprs[i] = e
	}
	return exprs, nil
}

func asExpression(kind string, v interface{}) (expression.Expression, error) {
	switch t := v.(type) {
	case expression.Expression:
		return t, nil
	case identifier:
		return expression.Col(string(t)), nil
	default:
		return nil, parsingErrorf(kind, "expected an expression, got %v", v)
	}
}

func convertExpression(node *Node) (expression.Expression, error) {
	v, err := Convert(node)
	if err != nil {
		return nil, err
	}
	return asExpression(node.Kind, v)
}

func convertToken(node *Node) (string, error) {
	v, err := Convert(node)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", parsingErrorf(node.Kind, "expected a token, got %v", v)
	}
	return s, nil
}

func checkChildren(kind string, expected int, children []*Node) error {
	if len(children) != expected {
		return parsingErrorf(kind, "expecting %d children, got %d", expected, len(children))
	}
	return nil
}

func unwrap(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 1, children); err != nil {
		return nil, err
	}
	return Convert(children[0])
}

func firstChildOnly(kind string, children []*Node) (interface{}, error) {
	if len(children) == 0 {
		return nil, parsingErrorf(kind, "expecting at least one child")
	}
	return Convert(children[0])
}

func childAndEOF(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 2, children); err != nil {
		return nil, err
	}
	return Convert(children[0])
}

func leafValue(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 1, children); err != nil {
		return nil, err
	}
	if !children[0].IsTerminal() {
		return nil, parsingErrorf(kind, "expecting a %s, got %s", Terminal, children[0].Kind)
	}
	return children[0].Text, nil
}

func identifierLeaf(kind string, children []*Node) (interface{}, error) {
	v, err := leafValue(kind, children)
	if err != nil {
		return nil, err
	}
	name := v.(string)
	if kind == QuotedIdentifier {
		if len(name) < 2 || name[0] != '`' || name[len(name)-1] != '`' {
			return nil, parsingErrorf(kind, "malformed quoted identifier %s", name)
		}
		name = strings.ReplaceAll(name[1:len(name)-1], "``", "`")
	}
	return identifier(name), nil
}

func columnReference(kind string, children []*Node) (interface{}, error) {
	v, err := unwrap(kind, children)
	if err != nil {
		return nil, err
	}
	name, ok := v.(identifier)
	if !ok {
		return nil, parsingErrorf(kind, "expecting an identifier, got %v", v)
	}
	return expression.Col(string(name)), nil
}

func namedExpression(kind string, children []*Node) (interface{}, error) {
	switch len(children) {
	case 1:
		return Convert(children[0])
	case 2, 3:
		e, err := convertExpression(children[0])
		if err != nil {
			return nil, err
		}
		alias, err := Convert(children[len(children)-1])
		if err != nil {
			return nil, err
		}
		name, ok := alias.(identifier)
		if !ok {
			return nil, parsingErrorf(kind, "expecting an alias, got %v", alias)
		}
		return expression.As(e, string(name)), nil
	}
	return nil, parsingErrorf(kind, "expecting 1 to 3 children, got %d", len(children))
}

// explicitList converts a delimited list, such as "(a, b, c)", skipping the brackets and separators
func explicitList(kind string, children []*Node) (interface{}, error) {
	if len(children) < 2 {
		return nil, parsingErrorf(kind, "expecting opening and closing tokens")
	}
	result := make([]interface{}, 0, len(children)/2)
	for i := 1; i < len(children)-1; i += 2 {
		v, err := Convert(children[i])
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

// implicitList converts a separated list, such as "a, b, c", skipping the separators
func implicitList(kind string, children []*Node) (interface{}, error) {
	result := make([]interface{}, 0, (len(children)+1)/2)
	for i := 0; i < len(children); i += 2 {
		v, err := Convert(children[i])
		if err != nil {
			return nil, err
		}
		result = append(result, v)
	}
	return result, nil
}

func concatToLiteral(kind string, children []*Node) (interface{}, error) {
	var text strings.Builder
	for _, c := range children {
		tok, err := convertToken(c)
		if err != nil {
			return nil, err
		}
		text.WriteString(tok)
	}
	v, err := ParseNumber(text.String())
	if err != nil {
		return nil, parsingErrorf(kind, "%v", err)
	}
	return expression.Lit(v), nil
}

// ParseNumber parses the text of a numeric literal. Integer literals produce int64 values
// (or decimals, if they overflow), literals with a decimal point produce decimal.Decimal values,
// and literals with an exponent produce float64 values. The suffixes L, S and Y force an integer,
// D forces a double and BD forces a decimal.
func ParseNumber(text string) (interface{}, error) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	if len(upper) == 0 {
		return nil, fmt.Errorf("empty numeric literal")
	}
	switch {
	case strings.HasSuffix(upper, "BD"):
		d, err := decimal.NewFromString(upper[:len(upper)-2])
		if err != nil {
			return nil, fmt.Errorf("invalid decimal literal %s", text)
		}
		return d, nil
	case strings.HasSuffix(upper, "D"):
		f, err := strconv.ParseFloat(upper[:len(upper)-1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid double literal %s", text)
		}
		return f, nil
	case strings.HasSuffix(upper, "L"):
		return parseBoundedInt(text, upper[:len(upper)-1], math.MinInt64, math.MaxInt64)
	case strings.HasSuffix(upper, "S"):
		return parseBoundedInt(text, upper[:len(upper)-1], math.MinInt16, math.MaxInt16)
	case strings.HasSuffix(upper, "Y"):
		return parseBoundedInt(text, upper[:len(upper)-1], math.MinInt8, math.MaxInt8)
	case strings.ContainsAny(upper, "E"):
		f, err := strconv.ParseFloat(upper, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid exponent literal %s", text)
		}
		return f, nil
	case strings.Contains(upper, "."):
		d, err := decimal.NewFromString(upper)
		if err != nil {
			return nil, fmt.Errorf("invalid decimal literal %s", text)
		}
		return d, nil
	}
	i, err := strconv.ParseInt(upper, 10, 64)
	if err == nil {
		return i, nil
	}
	if b, ok := new(big.Int).SetString(upper, 10); ok {
		return decimal.NewFromBigInt(b, 0), nil
	}
	return nil, fmt.Errorf("invalid integer literal %s", text)
}

func parseBoundedInt(text string, digits string, min int64, max int64) (interface{}, error) {
	i, err := strconv.ParseInt(digits, 10, 64)
	if err != nil || i < min || i > max {
		return nil, fmt.Errorf("numeric literal %s is out of range [%d, %d]", text, min, max)
	}
	return i, nil
}

func stringLiteral(kind string, children []*Node) (interface{}, error) {
	if len(children) == 0 {
		return nil, parsingErrorf(kind, "expecting at least one child")
	}
	var res strings.Builder
	for _, c := range children {
		tok, err := convertToken(c)
		if err != nil {
			return nil, err
		}
		s, err := unquote(tok)
		if err != nil {
			return nil, parsingErrorf(kind, "%v", err)
		}
		res.WriteString(s)
	}
	return expression.Lit(res.String()), nil
}

func unquote(tok string) (string, error) {
	if len(tok) < 2 || (tok[0] != '\'' && tok[0] != '"') || tok[len(tok)-1] != tok[0] {
		return "", fmt.Errorf("malformed string literal %s", tok)
	}
	body := tok[1 : len(tok)-1]
	var res strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i == len(body)-1 {
			res.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			res.WriteByte('\n')
		case 't':
			res.WriteByte('\t')
		case 'r':
			res.WriteByte('\r')
		case '0':
			res.WriteByte(0)
		default:
			res.WriteByte(body[i])
		}
	}
	return res.String(), nil
}

func booleanLiteral(kind string, children []*Node) (interface{}, error) {
	v, err := leafValue(kind, children)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(v.(string)) {
	case "true":
		return expression.Lit(true), nil
	case "false":
		return expression.Lit(false), nil
	}
	return nil, parsingErrorf(kind, "invalid boolean literal %s", v)
}

func nullLiteral(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 1, children); err != nil {
		return nil, err
	}
	return expression.Lit(nil), nil
}

func binaryOperator(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 3, children); err != nil {
		return nil, err
	}
	left, err := convertExpression(children[0])
	if err != nil {
		return nil, err
	}
	symbol, err := convertToken(children[1])
	if err != nil {
		return nil, err
	}
	op, ok := expression.BinaryOperators[symbol]
	if !ok {
		op, ok = expression.BinaryOperators[strings.ToUpper(symbol)]
	}
	if !ok {
		return nil, parsingErrorf(kind, "unknown operator %s", symbol)
	}
	right, err := convertExpression(children[2])
	if err != nil {
		return nil, err
	}
	return expression.Binary(op, left, right), nil
}

func logicalNot(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 2, children); err != nil {
		return nil, err
	}
	child, err := convertExpression(children[1])
	if err != nil {
		return nil, err
	}
	return expression.Unary(expression.Not, child), nil
}

func arithmeticUnary(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 2, children); err != nil {
		return nil, err
	}
	symbol, err := convertToken(children[0])
	if err != nil {
		return nil, err
	}
	child, err := convertExpression(children[1])
	if err != nil {
		return nil, err
	}
	switch symbol {
	case "-":
		return expression.Unary(expression.Negate, child), nil
	case "+":
		return child, nil
	}
	return nil, parsingErrorf(kind, "unknown unary operator %s", symbol)
}

func nullPredicate(kind string, children []*Node) (interface{}, error) {
	if len(children) != 3 && len(children) != 4 {
		return nil, parsingErrorf(kind, "expecting 3 or 4 children, got %d", len(children))
	}
	child, err := convertExpression(children[0])
	if err != nil {
		return nil, err
	}
	if len(children) == 4 {
		return expression.Unary(expression.IsNotNull, child), nil
	}
	return expression.Unary(expression.IsNull, child), nil
}

func parenthesized(kind string, children []*Node) (interface{}, error) {
	if err := checkChildren(kind, 3, children); err != nil {
		return nil, err
	}
	return Convert(children[1])
}
