package util

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"sort"
	"time"

	xxhash "github.com/cespare/xxhash/v2"
	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/shopspring/decimal"
)

// Normalize coerces Go's assorted numeric types into int64 or float64, leaving other values untouched
func Normalize(v interface{}) interface{} {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int8:
		return int64(n)
	case int16:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		if uint64(n) > math.MaxInt64 {
			return float64(n)
		}
		return int64(n)
	case uint8:
		return int64(n)
	case uint16:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return float64(n)
		}
		return int64(n)
	case float32:
		return float64(n)
	default:
		return v
	}
}

// IsNumeric returns true iff v is an integer, floating point or decimal value
func IsNumeric(v interface{}) bool {
	switch Normalize(v).(type) {
	case int64, float64, decimal.Decimal:
		return true
	}
	return false
}

// ToFloat64 converts a numeric value to a float64
func ToFloat64(v interface{}) (float64, bool) {
	switch n := Normalize(v).(type) {
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case decimal.Decimal:
		return n.InexactFloat64(), true
	}
	return 0, false
}

// ToDecimal converts a numeric value to a decimal.Decimal
func ToDecimal(v interface{}) (decimal.Decimal, bool) {
	switch n := Normalize(v).(type) {
	case int64:
		return decimal.NewFromInt(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case decimal.Decimal:
		return n, true
	}
	return decimal.Zero, false
}

func compareFloat64(a, b float64) int {
	// NaN sorts after every other value, and equals itself
	aNaN, bNaN := math.IsNaN(a), math.IsNaN(b)
	switch {
	case aNaN && bNaN:
		return 0
	case aNaN:
		return 1
	case bNaN:
		return -1
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareNumeric(a, b interface{}) int {
	_, aDec := a.(decimal.Decimal)
	_, bDec := b.(decimal.Decimal)
	if aDec || bDec {
		da, _ := ToDecimal(a)
		db, _ := ToDecimal(b)
		return da.Cmp(db)
	}
	ai, aInt := a.(int64)
	bi, bInt := b.(int64)
	if aInt && bInt {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	fa, _ := ToFloat64(a)
	fb, _ := ToFloat64(b)
	return compareFloat64(fa, fb)
}

// Compare orders two values. Nil sorts before everything else, numbers are compared
// across integer, floating point and decimal representations, and sequences (including Rows)
// are compared lexicographically. Values which cannot be ordered produce a SchemaError.
func Compare(a, b interface{}) (int, error) {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0, nil
		case a == nil:
			return -1, nil
		}
		return 1, nil
	}
	a, b = Normalize(a), Normalize(b)
	if IsNumeric(a) && IsNumeric(b) {
		return compareNumeric(a, b), nil
	}
	switch av := a.(type) {
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0, nil
			case !av:
				return -1, nil
			}
			return 1, nil
		}
	case string:
		if bv, ok := b.(string); ok {
			switch {
			case av < bv:
				return -1, nil
			case av > bv:
				return 1, nil
			}
			return 0, nil
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1, nil
			case av.After(bv):
				return 1, nil
			}
			return 0, nil
		}
	case []byte:
		if bv, ok := b.([]byte); ok {
			return bytes.Compare(av, bv), nil
		}
	case []interface{}:
		if bv, ok := b.([]interface{}); ok {
			return compareSequences(av, bv)
		}
	case sparkling.Row:
		if bv, ok := b.(sparkling.Row); ok {
			return compareSequences(av.Values(), bv.Values())
		}
	}
	return 0, errors.Schemaf("cannot compare %T with %T", a, b)
}

func compareSequences(a, b []interface{}) (int, error) {
	for i := 0; i < len(a) && i < len(b); i++ {
		c, err := Compare(a[i], b[i])
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return c, nil
		}
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	}
	return 0, nil
}

// Equal returns true iff two values are equal, according to Compare when they are comparable
// and reflect.DeepEqual otherwise
func Equal(a, b interface{}) bool {
	c, err := Compare(a, b)
	if err != nil {
		return reflect.DeepEqual(a, b)
	}
	return c == 0
}

// EncodeKey produces a deterministic byte encoding of a value, such that values which
// are Equal (for the supported types) produce identical encodings.
func EncodeKey(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := encodeKey(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeKeys produces a deterministic byte encoding of a sequence of values
func EncodeKeys(vs ...interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for _, v := range vs {
		if err := encodeKey(&buf, v); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// HashValue hashes a value using the xxhash of its EncodeKey encoding
func HashValue(v interface{}) (uint64, error) {
	k, err := EncodeKey(v)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(k), nil
}

// HashValues hashes a sequence of values using the xxhash of their EncodeKeys encoding
func HashValues(vs ...interface{}) (uint64, error) {
	k, err := EncodeKeys(vs...)
	if err != nil {
		return 0, err
	}
	return xxhash.Sum64(k), nil
}

func writeLen(buf *bytes.Buffer, n int) {
	var scratch [binary.MaxVarintLen64]byte
	l := binary.PutUvarint(scratch[:], uint64(n))
	buf.Write(scratch[:l])
}

func writeUint64(buf *bytes.Buffer, tag byte, u uint64) {
	var scratch [8]byte
	buf.WriteByte(tag)
	binary.BigEndian.PutUint64(scratch[:], u)
	buf.Write(scratch[:])
}

func encodeKey(buf *bytes.Buffer, v interface{}) error {
	v = Normalize(v)
	switch t := v.(type) {
	case nil:
		buf.WriteByte(nilKeyType)
	case bool:
		buf.WriteByte(boolKeyType)
		if t {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	case int64:
		writeUint64(buf, int64KeyType, uint64(t))
	case float64:
		// integral floats share the encoding of the equivalent integer
		if t == math.Trunc(t) && t >= math.MinInt64 && t < math.MaxInt64 {
			writeUint64(buf, int64KeyType, uint64(int64(t)))
		} else if math.IsNaN(t) {
			writeUint64(buf, float64KeyType, math.Float64bits(math.NaN()))
		} else {
			writeUint64(buf, float64KeyType, math.Float64bits(t))
		}
	case string:
		buf.WriteByte(stringKeyType)
		writeLen(buf, len(t))
		buf.WriteString(t)
	case time.Time:
		writeUint64(buf, timeKeyType, uint64(t.UnixNano()))
	case decimal.Decimal:
		s := t.String()
		buf.WriteByte(decimalKeyType)
		writeLen(buf, len(s))
		buf.WriteString(s)
	case []byte:
		buf.WriteByte(bytesKeyType)
		writeLen(buf, len(t))
		buf.Write(t)
	case []interface{}:
		buf.WriteByte(listKeyType)
		writeLen(buf, len(t))
		for _, e := range t {
			if err := encodeKey(buf, e); err != nil {
				return err
			}
		}
	case map[string]interface{}:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		buf.WriteByte(mapKeyType)
		writeLen(buf, len(keys))
		for _, k := range keys {
			writeLen(buf, len(k))
			buf.WriteString(k)
			if err := encodeKey(buf, t[k]); err != nil {
				return err
			}
		}
	case sparkling.Row:
		k, err := t.HashKey()
		if err != nil {
			return err
		}
		buf.WriteByte(rowKeyType)
		writeLen(buf, len(k))
		buf.Write(k)
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Func || rv.Kind() == reflect.Chan {
			return fmt.Errorf("values of type %T cannot be used as keys", v)
		}
		s := fmt.Sprintf("%T:%#v", v, v)
		buf.WriteByte(otherKeyType)
		writeLen(buf, len(s))
		buf.WriteString(s)
	}
	return nil
}

// Describe produces a short string representation of an element, for error messages
func Describe(element interface{}) string {
	if row, ok := element.(sparkling.Row); ok {
		return row.ToString()
	}
	s := fmt.Sprintf("%v", element)
	if len(s) > 256 {
		return s[:256] + "..."
	}
	return s
}
