package partition

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/go-sif/sparkling"
	errors "github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/internal/util"
)

// rowImpl is a representation of a single record of relational data,
// along with a reference to the Schema for that record.
type rowImpl struct {
	values []interface{}
	schema sparkling.Schema
}

// CreateRow builds a new Row from an ordered set of values. Go's assorted integer
// and float types are coerced into int64 and float64 respectively.
func CreateRow(values []interface{}, schema sparkling.Schema) (sparkling.Row, error) {
	if len(values) != schema.NumColumns() {
		return nil, errors.IncompatibleRowError{Expected: schema.NumColumns(), Actual: len(values)}
	}
	normalized := make([]interface{}, len(values))
	for i, v := range values {
		normalized[i] = util.Normalize(v)
	}
	return &rowImpl{values: normalized, schema: schema}, nil
}

// Schema returns the schema for a row
func (r *rowImpl) Schema() sparkling.Schema {
	return r.schema
}

// ToString returns a string representation of this row
func (r *rowImpl) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "Row(")
	i := 0
	r.schema.ForEachColumn(func(name string, col sparkling.Column) error {
		if i > 0 {
			fmt.Fprint(&res, ", ")
		}
		v := r.values[col.Index()]
		if v == nil {
			fmt.Fprintf(&res, "%s=None", name)
		} else if col.Type().Accepts(v) {
			fmt.Fprintf(&res, "%s=%s", name, col.Type().ToString(v))
		} else {
			fmt.Fprintf(&res, "%s=%v", name, v)
		}
		i++
		return nil
	})
	fmt.Fprint(&res, ")")
	return res.String()
}

// Values returns a copy of the values of this row, in schema order
func (r *rowImpl) Values() []interface{} {
	values := make([]interface{}, len(r.values))
	copy(values, r.values)
	return values
}

// Len returns the number of values in this row
func (r *rowImpl) Len() int {
	return len(r.values)
}

// IsNil returns true iff the given column value is nil in this row. If an error occurs, this function will return false.
func (r *rowImpl) IsNil(colName string) bool {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return false
	}
	return r.values[offset.Index()] == nil
}

// SetNil sets the given column value to nil within this row
func (r *rowImpl) SetNil(colName string) error {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return err
	}
	r.values[offset.Index()] = nil
	return nil
}

// Get returns the value of any column as an interface{}, if it exists
func (r *rowImpl) Get(colName string) (col interface{}, err error) {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return nil, err
	}
	return r.values[offset.Index()], nil
}

// GetAt returns the value at a position within this row
func (r *rowImpl) GetAt(idx int) interface{} {
	return r.values[idx]
}

func (r *rowImpl) getNonNil(colName string) (interface{}, error) {
	v, err := r.Get(colName)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, errors.NilValueError{Name: colName}
	}
	return v, nil
}

// GetBool retrieves a single bool from the column with the given name
func (r *rowImpl) GetBool(colName string) (col bool, err error) {
	v, err := r.getNonNil(colName)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Schemaf("column %s contains %T, not bool", colName, v)
	}
	return b, nil
}

// GetInt64 retrieves a single int64 from the column with the given name
func (r *rowImpl) GetInt64(colName string) (col int64, err error) {
	v, err := r.getNonNil(colName)
	if err != nil {
		return 0, err
	}
	i, ok := v.(int64)
	if !ok {
		return 0, errors.Schemaf("column %s contains %T, not int64", colName, v)
	}
	return i, nil
}

// GetFloat64 retrieves a single float64 from the column with the given name. Integer and decimal values are converted.
func (r *rowImpl) GetFloat64(colName string) (col float64, err error) {
	v, err := r.getNonNil(colName)
	if err != nil {
		return 0, err
	}
	f, ok := util.ToFloat64(v)
	if !ok {
		return 0, errors.Schemaf("column %s contains %T, not a number", colName, v)
	}
	return f, nil
}

// GetString retrieves a single string from the column with the given name
func (r *rowImpl) GetString(colName string) (col string, err error) {
	v, err := r.getNonNil(colName)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.Schemaf("column %s contains %T, not string", colName, v)
	}
	return s, nil
}

// GetTime retrieves a single Time from the column with the given name
func (r *rowImpl) GetTime(colName string) (col time.Time, err error) {
	v, err := r.getNonNil(colName)
	if err != nil {
		return time.Time{}, err
	}
	t, ok := v.(time.Time)
	if !ok {
		return time.Time{}, errors.Schemaf("column %s contains %T, not time.Time", colName, v)
	}
	return t, nil
}

// Set modifies the value of the column with the given name
func (r *rowImpl) Set(colName string, value interface{}) error {
	offset, err := r.schema.GetOffset(colName)
	if err != nil {
		return err
	}
	r.values[offset.Index()] = util.Normalize(value)
	return nil
}

// Equals returns true iff both rows have equal schemas and equal values
func (r *rowImpl) Equals(other sparkling.Row) bool {
	if other == nil || r.Len() != other.Len() {
		return false
	}
	if r.schema.Equals(other.Schema()) != nil {
		return false
	}
	ok, ek := r.HashKey()
	ko, eo := other.HashKey()
	if ek != nil || eo != nil {
		return false
	}
	return bytes.Equal(ok, ko)
}

// HashKey returns a byte encoding of the column names and values of this row
func (r *rowImpl) HashKey() ([]byte, error) {
	keyParts := make([]interface{}, 0, 2*len(r.values))
	names := r.schema.ColumnNames()
	for i, v := range r.values {
		keyParts = append(keyParts, names[i], v)
	}
	return util.EncodeKeys(keyParts...)
}

// Clone returns a copy of this row which shares its schema
func (r *rowImpl) Clone() sparkling.Row {
	return &rowImpl{values: r.Values(), schema: r.schema}
}
