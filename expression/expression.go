// Package expression implements trees of typed expressions which are evaluated against Rows.
// Expressions are immutable once built, and may be evaluated concurrently.
package expression

import (
	"fmt"
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/util"
)

// Expression is a node in an expression tree
type Expression interface {
	Eval(row sparkling.Row) (interface{}, error)           // Eval computes the value of this Expression for a Row
	DataType(schema sparkling.Schema) sparkling.ColumnType // DataType returns the type of the values produced by this Expression
	Columns() []string                                     // Columns returns the names of all columns referenced by this Expression
	String() string                                        // String returns a SQL-like representation of this Expression
}

// Evaluate computes the value of an Expression against a Row
func Evaluate(e Expression, row sparkling.Row) (interface{}, error) {
	return e.Eval(row)
}

// Name returns the column name given to the result of an Expression when it is projected
func Name(e Expression) string {
	switch t := e.(type) {
	case *Alias:
		return t.Name
	case *ColumnReference:
		return t.Name
	default:
		return e.String()
	}
}

// Literal is a constant value
type Literal struct {
	Value interface{}
}

// Lit creates a Literal
func Lit(v interface{}) *Literal {
	return &Literal{Value: util.Normalize(v)}
}

// Eval returns the value of this Literal
func (e *Literal) Eval(row sparkling.Row) (interface{}, error) {
	return e.Value, nil
}

// DataType returns the inferred type of this Literal
func (e *Literal) DataType(schema sparkling.Schema) sparkling.ColumnType {
	return sparkling.InferColumnType(e.Value)
}

// Columns returns nothing, as Literals do not reference columns
func (e *Literal) Columns() []string {
	return nil
}

func (e *Literal) String() string {
	switch v := e.Value.(type) {
	case nil:
		return "NULL"
	case string:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(v, "'", "\\'"))
	case bool:
		if v {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}

// ColumnReference resolves a column of a Row by name
type ColumnReference struct {
	Name string
}

// Col creates a ColumnReference
func Col(name string) *ColumnReference {
	return &ColumnReference{Name: name}
}

// Eval returns the value of the referenced column, or a SchemaError if the Row has no such column
func (e *ColumnReference) Eval(row sparkling.Row) (interface{}, error) {
	v, err := row.Get(e.Name)
	if err != nil {
		return nil, errors.SchemaError{Message: fmt.Sprintf("cannot resolve column %s", e.Name), Err: err}
	}
	return v, nil
}

// DataType returns the type of the referenced column
func (e *ColumnReference) DataType(schema sparkling.Schema) sparkling.ColumnType {
	if schema != nil {
		if col, err := schema.GetOffset(e.Name); err == nil {
			return col.Type()
		}
	}
	return &sparkling.AnyColumnType{}
}

// Columns returns the name of the referenced column
func (e *ColumnReference) Columns() []string {
	return []string{e.Name}
}

func (e *ColumnReference) String() string {
	return e.Name
}

// BinaryOperator applies an Operator to the values of two child Expressions
type BinaryOperator struct {
	Op    Operator
	Left  Expression
	Right Expression
}

// Binary creates a BinaryOperator
func Binary(op Operator, left, right Expression) *BinaryOperator {
	return &BinaryOperator{Op: op, Left: left, Right: right}
}

// Eval evaluates both children, left first, then applies the Operator
func (e *BinaryOperator) Eval(row sparkling.Row) (interface{}, error) {
	l, err := e.Left.Eval(row)
	if err != nil {
		return nil, err
	}
	r, err := e.Right.Eval(row)
	if err != nil {
		return nil, err
	}
	return e.Op.Apply(l, r)
}

// DataType returns the type produced by the Operator for the types of the children
func (e *BinaryOperator) DataType(schema sparkling.Schema) sparkling.ColumnType {
	return e.Op.ResultType(e.Left.DataType(schema), e.Right.DataType(schema))
}

// Columns returns the columns referenced by both children
func (e *BinaryOperator) Columns() []string {
	return append(e.Left.Columns(), e.Right.Columns()...)
}

func (e *BinaryOperator) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Op.Symbol(), e.Right.String())
}

// UnaryOperator applies a UnaryOperation to the value of a child Expression
type UnaryOperator struct {
	Op    UnaryOperation
	Child Expression
}

// Unary creates a UnaryOperator
func Unary(op UnaryOperation, child Expression) *UnaryOperator {
	return &UnaryOperator{Op: op, Child: child}
}

// Eval evaluates the child, then applies the UnaryOperation
func (e *UnaryOperator) Eval(row sparkling.Row) (interface{}, error) {
	v, err := e.Child.Eval(row)
	if err != nil {
		return nil, err
	}
	return e.Op.Apply(v)
}

// DataType returns the type produced by the UnaryOperation for the type of the child
func (e *UnaryOperator) DataType(schema sparkling.Schema) sparkling.ColumnType {
	return e.Op.ResultType(e.Child.DataType(schema))
}

// Columns returns the columns referenced by the child
func (e *UnaryOperator) Columns() []string {
	return e.Child.Columns()
}

func (e *UnaryOperator) String() string {
	return e.Op.Format(e.Child.String())
}

// UserDefinedFunction invokes a Go function with the values of its argument Expressions
type UserDefinedFunction struct {
	Name       string
	Fn         func(args ...interface{}) (interface{}, error)
	ReturnType sparkling.ColumnType // may be nil, in which case results are typed as AnyColumnType
	Args       []Expression
}

// UDF creates a UserDefinedFunction
func UDF(name string, returnType sparkling.ColumnType, fn func(args ...interface{}) (interface{}, error), args ...Expression) *UserDefinedFunction {
	return &UserDefinedFunction{Name: name, Fn: fn, ReturnType: returnType, Args: args}
}

// Eval evaluates the arguments in declared order, then invokes the function. Panics are returned as errors.
func (e *UserDefinedFunction) Eval(row sparkling.Row) (interface{}, error) {
	args := make([]interface{}, len(e.Args))
	for i, arg := range e.Args {
		v, err := arg.Eval(row)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	var result interface{}
	err := util.SafeCall(fmt.Sprintf("UDF %s", e.Name), func() (err error) {
		result, err = e.Fn(args...)
		return
	})
	if err != nil {
		return nil, fmt.Errorf("Function %s failed: %w", e.Name, err)
	}
	return util.Normalize(result), nil
}

// DataType returns the declared return type of this function
func (e *UserDefinedFunction) DataType(schema sparkling.Schema) sparkling.ColumnType {
	if e.ReturnType == nil {
		return &sparkling.AnyColumnType{}
	}
	return e.ReturnType
}

// Columns returns the columns referenced by all arguments
func (e *UserDefinedFunction) Columns() []string {
	var cols []string
	for _, arg := range e.Args {
		cols = append(cols, arg.Columns()...)
	}
	return cols
}

func (e *UserDefinedFunction) String() string {
	args := make([]string, len(e.Args))
	for i, arg := range e.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

// Alias names the result of a child Expression
type Alias struct {
	Name  string
	Child Expression
}

// As creates an Alias
func As(child Expression, name string) *Alias {
	return &Alias{Name: name, Child: child}
}

// Eval evaluates the child
func (e *Alias) Eval(row sparkling.Row) (interface{}, error) {
	return e.Child.Eval(row)
}

// DataType returns the type of the child
func (e *Alias) DataType(schema sparkling.Schema) sparkling.ColumnType {
	return e.Child.DataType(schema)
}

// Columns returns the columns referenced by the child
func (e *Alias) Columns() []string {
	return e.Child.Columns()
}

func (e *Alias) String() string {
	return fmt.Sprintf("%s AS %s", e.Child.String(), e.Name)
}

// Validate checks that every column referenced by an Expression exists within a Schema
func Validate(e Expression, schema sparkling.Schema) error {
	for _, name := range e.Columns() {
		if !schema.HasColumn(name) {
			return errors.SchemaError{Message: fmt.Sprintf("cannot resolve column %s", name), Err: errors.MissingColumnError{Name: name}}
		}
	}
	return nil
}
