package expression

import (
	"fmt"
	"math"
	"reflect"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/util"
	"github.com/shopspring/decimal"
)

// Operator is a binary operation. Each Operator defines its own handling of null operands.
type Operator interface {
	Symbol() string                                                   // Symbol returns the SQL representation of this Operator
	Apply(left, right interface{}) (interface{}, error)               // Apply computes the result of this Operator for two (possibly nil) values
	ResultType(left, right sparkling.ColumnType) sparkling.ColumnType // ResultType returns the type of the result for operands of the given types
}

// UnaryOperation is an operation on a single value
type UnaryOperation interface {
	Format(child string) string                                 // Format returns the SQL representation of this operation applied to a child
	Apply(v interface{}) (interface{}, error)                   // Apply computes the result of this operation for a (possibly nil) value
	ResultType(child sparkling.ColumnType) sparkling.ColumnType // ResultType returns the type of the result for an operand of the given type
}

// comparison operators

type comparison struct {
	symbol string
	test   func(c int) bool
}

func (o *comparison) Symbol() string {
	return o.symbol
}

func (o *comparison) Apply(left, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}
	c, err := compare(left, right)
	if err != nil {
		return nil, err
	}
	return o.test(c), nil
}

func (o *comparison) ResultType(left, right sparkling.ColumnType) sparkling.ColumnType {
	return &sparkling.BoolColumnType{}
}

// compare orders two non-nil values, tolerating values of identical but unordered types for equality checks
func compare(left, right interface{}) (int, error) {
	c, err := util.Compare(left, right)
	if err != nil {
		if reflect.TypeOf(left) == reflect.TypeOf(right) {
			if reflect.DeepEqual(left, right) {
				return 0, nil
			}
			return 0, errors.Schemaf("values of type %T cannot be ordered", left)
		}
		return 0, errors.Schemaf("cannot compare %T with %T", left, right)
	}
	return c, nil
}

var (
	// Equal tests two values for equality. A null operand yields null.
	Equal Operator = &comparison{"=", func(c int) bool { return c == 0 }}
	// NotEqual tests two values for inequality. A null operand yields null.
	NotEqual Operator = &comparison{"!=", func(c int) bool { return c != 0 }}
	// LessThan is a null-propagating comparison
	LessThan Operator = &comparison{"<", func(c int) bool { return c < 0 }}
	// LessThanOrEqual is a null-propagating comparison
	LessThanOrEqual Operator = &comparison{"<=", func(c int) bool { return c <= 0 }}
	// GreaterThan is a null-propagating comparison
	GreaterThan Operator = &comparison{">", func(c int) bool { return c > 0 }}
	// GreaterThanOrEqual is a null-propagating comparison
	GreaterThanOrEqual Operator = &comparison{">=", func(c int) bool { return c >= 0 }}
	// EqualNullSafe tests two values for equality, treating two nulls as equal. It never yields null.
	EqualNullSafe Operator = &equalNullSafe{}
)

type equalNullSafe struct{}

func (o *equalNullSafe) Symbol() string {
	return "<=>"
}

func (o *equalNullSafe) Apply(left, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return left == nil && right == nil, nil
	}
	c, err := compare(left, right)
	if err != nil {
		return nil, err
	}
	return c == 0, nil
}

func (o *equalNullSafe) ResultType(left, right sparkling.ColumnType) sparkling.ColumnType {
	return &sparkling.BoolColumnType{}
}

// arithmetic operators

type arithmetic struct {
	symbol  string
	ints    func(l, r int64) (interface{}, bool)
	floats  func(l, r float64) (interface{}, bool)
	decs    func(l, r decimal.Decimal) (interface{}, bool)
	alwaysF bool // produce floating point results from integer operands
}

func (o *arithmetic) Symbol() string {
	return o.symbol
}

// Apply promotes both operands to a common numeric representation (int64, then float64,
// then decimal.Decimal) before computing the result. A null operand, or a zero divisor, yields null.
func (o *arithmetic) Apply(left, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}
	left, right = util.Normalize(left), util.Normalize(right)
	if !util.IsNumeric(left) || !util.IsNumeric(right) {
		return nil, errors.Schemaf("cannot apply %s to %T and %T", o.symbol, left, right)
	}
	_, lDec := left.(decimal.Decimal)
	_, rDec := right.(decimal.Decimal)
	if lDec || rDec {
		l, _ := util.ToDecimal(left)
		r, _ := util.ToDecimal(right)
		return nullIfNotOk(o.decs(l, r))
	}
	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt && !o.alwaysF {
		return nullIfNotOk(o.ints(li, ri))
	}
	l, _ := util.ToFloat64(left)
	r, _ := util.ToFloat64(right)
	return nullIfNotOk(o.floats(l, r))
}

func nullIfNotOk(v interface{}, ok bool) (interface{}, error) {
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (o *arithmetic) ResultType(left, right sparkling.ColumnType) sparkling.ColumnType {
	_, lDec := left.(*sparkling.DecimalColumnType)
	_, rDec := right.(*sparkling.DecimalColumnType)
	_, lInt := left.(*sparkling.Int64ColumnType)
	_, rInt := right.(*sparkling.Int64ColumnType)
	_, lFloat := left.(*sparkling.Float64ColumnType)
	_, rFloat := right.(*sparkling.Float64ColumnType)
	switch {
	case lDec || rDec:
		return &sparkling.DecimalColumnType{}
	case lInt && rInt && !o.alwaysF:
		return &sparkling.Int64ColumnType{}
	case (lInt || lFloat) && (rInt || rFloat):
		return &sparkling.Float64ColumnType{}
	}
	return &sparkling.AnyColumnType{}
}

var (
	// Add is null-propagating numeric addition
	Add Operator = &arithmetic{
		symbol: "+",
		ints:   func(l, r int64) (interface{}, bool) { return l + r, true },
		floats: func(l, r float64) (interface{}, bool) { return l + r, true },
		decs:   func(l, r decimal.Decimal) (interface{}, bool) { return l.Add(r), true },
	}
	// Subtract is null-propagating numeric subtraction
	Subtract Operator = &arithmetic{
		symbol: "-",
		ints:   func(l, r int64) (interface{}, bool) { return l - r, true },
		floats: func(l, r float64) (interface{}, bool) { return l - r, true },
		decs:   func(l, r decimal.Decimal) (interface{}, bool) { return l.Sub(r), true },
	}
	// Multiply is null-propagating numeric multiplication
	Multiply Operator = &arithmetic{
		symbol: "*",
		ints:   func(l, r int64) (interface{}, bool) { return l * r, true },
		floats: func(l, r float64) (interface{}, bool) { return l * r, true },
		decs:   func(l, r decimal.Decimal) (interface{}, bool) { return l.Mul(r), true },
	}
	// Divide is null-propagating numeric division, which always produces a floating point
	// (or decimal) result. Division by zero yields null.
	Divide Operator = &arithmetic{
		symbol:  "/",
		alwaysF: true,
		floats: func(l, r float64) (interface{}, bool) {
			if r == 0 {
				return nil, false
			}
			return l / r, true
		},
		decs: func(l, r decimal.Decimal) (interface{}, bool) {
			if r.IsZero() {
				return nil, false
			}
			return l.Div(r), true
		},
	}
	// Modulo is the null-propagating remainder of a division, taking the sign of the dividend.
	// A zero divisor yields null.
	Modulo Operator = &arithmetic{
		symbol: "%",
		ints: func(l, r int64) (interface{}, bool) {
			if r == 0 {
				return nil, false
			}
			return l % r, true
		},
		floats: func(l, r float64) (interface{}, bool) {
			if r == 0 {
				return nil, false
			}
			return math.Mod(l, r), true
		},
		decs: func(l, r decimal.Decimal) (interface{}, bool) {
			if r.IsZero() {
				return nil, false
			}
			return l.Mod(r), true
		},
	}
)

// logical operators

type logical struct {
	symbol string
	// dominant is the operand value which decides the result regardless of the other operand
	dominant bool
}

func asBool(symbol string, v interface{}) (b bool, isNull bool, err error) {
	if v == nil {
		return false, true, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, errors.Schemaf("%s requires boolean operands, got %T", symbol, v)
	}
	return b, false, nil
}

func (o *logical) Symbol() string {
	return o.symbol
}

// Apply implements three-valued logic: the dominant value wins even against null, otherwise a null operand yields null
func (o *logical) Apply(left, right interface{}) (interface{}, error) {
	l, lNull, err := asBool(o.symbol, left)
	if err != nil {
		return nil, err
	}
	r, rNull, err := asBool(o.symbol, right)
	if err != nil {
		return nil, err
	}
	if (!lNull && l == o.dominant) || (!rNull && r == o.dominant) {
		return o.dominant, nil
	}
	if lNull || rNull {
		return nil, nil
	}
	return !o.dominant, nil
}

func (o *logical) ResultType(left, right sparkling.ColumnType) sparkling.ColumnType {
	return &sparkling.BoolColumnType{}
}

var (
	// And is three-valued logical conjunction
	And Operator = &logical{symbol: "AND", dominant: false}
	// Or is three-valued logical disjunction
	Or Operator = &logical{symbol: "OR", dominant: true}
)

// unary operators

type not struct{}

func (o *not) Format(child string) string {
	return fmt.Sprintf("(NOT %s)", child)
}

func (o *not) Apply(v interface{}) (interface{}, error) {
	b, isNull, err := asBool("NOT", v)
	if err != nil || isNull {
		return nil, err
	}
	return !b, nil
}

func (o *not) ResultType(child sparkling.ColumnType) sparkling.ColumnType {
	return &sparkling.BoolColumnType{}
}

type nullTest struct {
	wantNull bool
}

func (o *nullTest) Format(child string) string {
	if o.wantNull {
		return fmt.Sprintf("(%s IS NULL)", child)
	}
	return fmt.Sprintf("(%s IS NOT NULL)", child)
}

func (o *nullTest) Apply(v interface{}) (interface{}, error) {
	return (v == nil) == o.wantNull, nil
}

func (o *nullTest) ResultType(child sparkling.ColumnType) sparkling.ColumnType {
	return &sparkling.BoolColumnType{}
}

type negate struct{}

func (o *negate) Format(child string) string {
	return fmt.Sprintf("(- %s)", child)
}

func (o *negate) Apply(v interface{}) (interface{}, error) {
	switch n := util.Normalize(v).(type) {
	case nil:
		return nil, nil
	case int64:
		return -n, nil
	case float64:
		return -n, nil
	case decimal.Decimal:
		return n.Neg(), nil
	default:
		return nil, errors.Schemaf("cannot negate %T", v)
	}
}

func (o *negate) ResultType(child sparkling.ColumnType) sparkling.ColumnType {
	return child
}

var (
	// Not is null-propagating logical negation
	Not UnaryOperation = &not{}
	// IsNull tests whether a value is null. It never yields null.
	IsNull UnaryOperation = &nullTest{wantNull: true}
	// IsNotNull tests whether a value is not null. It never yields null.
	IsNotNull UnaryOperation = &nullTest{wantNull: false}
	// Negate is null-propagating numeric negation
	Negate UnaryOperation = &negate{}
)

// BinaryOperators maps SQL operator symbols to Operators
var BinaryOperators = map[string]Operator{
	"=":   Equal,
	"==":  Equal,
	"<=>": EqualNullSafe,
	"!=":  NotEqual,
	"<>":  NotEqual,
	"<":   LessThan,
	"<=":  LessThanOrEqual,
	">":   GreaterThan,
	">=":  GreaterThanOrEqual,
	"+":   Add,
	"-":   Subtract,
	"*":   Multiply,
	"/":   Divide,
	"%":   Modulo,
	"and": And,
	"AND": And,
	"or":  Or,
	"OR":  Or,
}

// Eq builds an Equal expression
func Eq(left, right Expression) Expression { return Binary(Equal, left, right) }

// Neq builds a NotEqual expression
func Neq(left, right Expression) Expression { return Binary(NotEqual, left, right) }

// Lt builds a LessThan expression
func Lt(left, right Expression) Expression { return Binary(LessThan, left, right) }

// Lte builds a LessThanOrEqual expression
func Lte(left, right Expression) Expression { return Binary(LessThanOrEqual, left, right) }

// Gt builds a GreaterThan expression
func Gt(left, right Expression) Expression { return Binary(GreaterThan, left, right) }

// Gte builds a GreaterThanOrEqual expression
func Gte(left, right Expression) Expression { return Binary(GreaterThanOrEqual, left, right) }

// Plus builds an Add expression
func Plus(left, right Expression) Expression { return Binary(Add, left, right) }

// Minus builds a Subtract expression
func Minus(left, right Expression) Expression { return Binary(Subtract, left, right) }

// Times builds a Multiply expression
func Times(left, right Expression) Expression { return Binary(Multiply, left, right) }

// Div builds a Divide expression
func Div(left, right Expression) Expression { return Binary(Divide, left, right) }

// Mod builds a Modulo expression
func Mod(left, right Expression) Expression { return Binary(Modulo, left, right) }

// AndAlso builds an And expression
func AndAlso(left, right Expression) Expression { return Binary(And, left, right) }

// OrElse builds an Or expression
func OrElse(left, right Expression) Expression { return Binary(Or, left, right) }
