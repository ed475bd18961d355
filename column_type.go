package sparkling

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ColumnType is an interface which is implemented to define the type of the values stored in a Column.
// Sparkling provides a variety of built-in types.
type ColumnType interface {
	Name() string                  // Name returns a short, human-readable name for this type
	ToString(v interface{}) string // ToString produces a string representation of a value of this type
	Accepts(v interface{}) bool    // Accepts returns true iff v is a (non-nil) value of this type
}

// BoolColumnType is a column type which stores a boolean value
type BoolColumnType struct{}

// Name returns the name of a BoolColumnType
func (b *BoolColumnType) Name() string {
	return "boolean"
}

// ToString produces a string representation of a value of a BoolColumnType value
func (b *BoolColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%t", v.(bool))
}

// Accepts returns true iff v is a bool
func (b *BoolColumnType) Accepts(v interface{}) bool {
	_, ok := v.(bool)
	return ok
}

// Int64ColumnType is a column type which stores an int64 value
type Int64ColumnType struct{}

// Name returns the name of an Int64ColumnType
func (b *Int64ColumnType) Name() string {
	return "bigint"
}

// ToString produces a string representation of a value of an Int64ColumnType value
func (b *Int64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%d", v.(int64))
}

// Accepts returns true iff v is an int64
func (b *Int64ColumnType) Accepts(v interface{}) bool {
	_, ok := v.(int64)
	return ok
}

// Float64ColumnType is a column type which stores a float64 value
type Float64ColumnType struct{}

// Name returns the name of a Float64ColumnType
func (b *Float64ColumnType) Name() string {
	return "double"
}

// ToString produces a string representation of a value of a Float64ColumnType value
func (b *Float64ColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%g", v.(float64))
}

// Accepts returns true iff v is a float64
func (b *Float64ColumnType) Accepts(v interface{}) bool {
	_, ok := v.(float64)
	return ok
}

// StringColumnType is a column type which stores a string value
type StringColumnType struct{}

// Name returns the name of a StringColumnType
func (b *StringColumnType) Name() string {
	return "string"
}

// ToString produces a string representation of a value of a StringColumnType value
func (b *StringColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%q", v.(string))
}

// Accepts returns true iff v is a string
func (b *StringColumnType) Accepts(v interface{}) bool {
	_, ok := v.(string)
	return ok
}

// TimeColumnType is a column type which stores a timestamp
type TimeColumnType struct {
	Format string // the format used by ToString. Defaults to RFC3339
}

// Name returns the name of a TimeColumnType
func (b *TimeColumnType) Name() string {
	return "timestamp"
}

// ToString produces a string representation of a value of a TimeColumnType value
func (b *TimeColumnType) ToString(v interface{}) string {
	format := b.Format
	if len(format) == 0 {
		format = time.RFC3339
	}
	return v.(time.Time).Format(format)
}

// Accepts returns true iff v is a time.Time
func (b *TimeColumnType) Accepts(v interface{}) bool {
	_, ok := v.(time.Time)
	return ok
}

// DecimalColumnType is a column type which stores an arbitrary-precision decimal value
type DecimalColumnType struct{}

// Name returns the name of a DecimalColumnType
func (b *DecimalColumnType) Name() string {
	return "decimal"
}

// ToString produces a string representation of a value of a DecimalColumnType value
func (b *DecimalColumnType) ToString(v interface{}) string {
	return v.(decimal.Decimal).String()
}

// Accepts returns true iff v is a decimal.Decimal
func (b *DecimalColumnType) Accepts(v interface{}) bool {
	_, ok := v.(decimal.Decimal)
	return ok
}

// AnyColumnType is a column type which stores a value of any type.
// It is the type given to the results of user-defined functions which don't declare one.
type AnyColumnType struct{}

// Name returns the name of an AnyColumnType
func (b *AnyColumnType) Name() string {
	return "any"
}

// ToString produces a string representation of a value of an AnyColumnType value
func (b *AnyColumnType) ToString(v interface{}) string {
	return fmt.Sprintf("%v", v)
}

// Accepts returns true for any non-nil value
func (b *AnyColumnType) Accepts(v interface{}) bool {
	return v != nil
}

// InferColumnType returns the built-in ColumnType which accepts v, falling back to AnyColumnType
func InferColumnType(v interface{}) ColumnType {
	switch v.(type) {
	case bool:
		return &BoolColumnType{}
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		return &Int64ColumnType{}
	case float32, float64:
		return &Float64ColumnType{}
	case string:
		return &StringColumnType{}
	case time.Time:
		return &TimeColumnType{}
	case decimal.Decimal:
		return &DecimalColumnType{}
	default:
		return &AnyColumnType{}
	}
}
