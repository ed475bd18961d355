package transform

import (
	"sort"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	iutil "github.com/go-sif/sparkling/internal/util"
)

// resolveSubset returns the offsets of a subset of columns, or of every column if the subset is empty
func resolveSubset(kind sparkling.OperationKind, d sparkling.Dataset, subset []string) ([]int, error) {
	if err := requireSchema(kind, d); err != nil {
		return nil, err
	}
	if len(subset) == 0 {
		subset = d.Schema().ColumnNames()
	}
	offsets := make([]int, len(subset))
	for i, name := range subset {
		col, err := d.Schema().GetOffset(name)
		if err != nil {
			return nil, errors.SchemaError{Message: "unknown column", Err: err}
		}
		offsets[i] = col.Index()
	}
	return offsets, nil
}

// DropNA drops Rows containing null values in the subset of columns (or in any column, if the
// subset is empty). With how "any", a Row is dropped if any of the columns is null; with "all",
// only if every one of them is. A positive thresh overrides how, dropping Rows with fewer than
// thresh non-null values.
func DropNA(how string, thresh int, subset ...string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.FilterOperationKind,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			offsets, err := resolveSubset(sparkling.FilterOperationKind, d, subset)
			if err != nil {
				return nil, err
			}
			minNonNull := thresh
			if thresh <= 0 {
				switch how {
				case "any", "":
					minNonNull = len(offsets)
				case "all":
					minNonNull = 1
				default:
					return nil, errors.Validationf("dropna", "how must be 'any' or 'all', got %q", how)
				}
			}
			return narrow(d, cloneSchema(d.Schema()), filterElements(func(element interface{}) (bool, error) {
				row, err := asRow(element)
				if err != nil {
					return false, err
				}
				nonNull := 0
				for _, offset := range offsets {
					if row.GetAt(offset) != nil {
						nonNull++
					}
				}
				return nonNull >= minNonNull, nil
			})), nil
		},
	}
}

// coerce converts a replacement value to the type of a column, returning false if it is incompatible
func coerce(colType sparkling.ColumnType, v interface{}) (interface{}, bool) {
	v = iutil.Normalize(v)
	switch colType.(type) {
	case *sparkling.Int64ColumnType:
		if f, ok := v.(float64); ok {
			return int64(f), true
		}
	case *sparkling.Float64ColumnType:
		if f, ok := iutil.ToFloat64(v); ok {
			return f, true
		}
	case *sparkling.DecimalColumnType:
		if d, ok := iutil.ToDecimal(v); ok {
			return d, true
		}
	}
	return v, colType.Accepts(v)
}

// FillNA replaces null values in the subset of columns (or in every column, if the subset is
// empty) with a value. Columns whose type is incompatible with the value are left untouched.
// If value is a map[string]interface{}, it provides a replacement value per column, and the
// subset is ignored.
func FillNA(value interface{}, subset ...string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			columns := subset
			perColumn, isMap := value.(map[string]interface{})
			if isMap {
				columns = make([]string, 0, len(perColumn))
				for name := range perColumn {
					columns = append(columns, name)
				}
				sort.Strings(columns)
			} else if value == nil {
				return nil, errors.Validationf("fillna", "value must not be nil")
			}
			offsets, err := resolveSubset(sparkling.ProjectOperation, d, columns)
			if err != nil {
				return nil, err
			}
			types := d.Schema().ColumnTypes()
			fills := make(map[int]interface{})
			for i, offset := range offsets {
				replacement := value
				if isMap {
					replacement = perColumn[columns[i]]
				}
				if coerced, ok := coerce(types[offset], replacement); ok {
					fills[offset] = coerced
				}
			}
			out := cloneSchema(d.Schema())
			return mapRows(d, out, func(row sparkling.Row) ([]interface{}, error) {
				values := row.Values()
				for offset, fill := range fills {
					if values[offset] == nil {
						values[offset] = fill
					}
				}
				return values, nil
			}), nil
		},
	}
}

// Replace substitutes values in the subset of columns (or in every column, if the subset is
// empty). Each non-null value equal to a key of replacements is replaced with the corresponding
// value. Null values are never replaced.
func Replace(replacements map[interface{}]interface{}, subset ...string) *sparkling.DatasetOperation {
	return &sparkling.DatasetOperation{
		Kind: sparkling.ProjectOperation,
		Do: func(d sparkling.Dataset) (*sparkling.DatasetOperationResult, error) {
			offsets, err := resolveSubset(sparkling.ProjectOperation, d, subset)
			if err != nil {
				return nil, err
			}
			type pair struct {
				key  []byte
				from interface{}
				to   interface{}
			}
			pairs := make([]pair, 0, len(replacements))
			for from, to := range replacements {
				key, err := iutil.EncodeKey(from)
				if err != nil {
					return nil, errors.Validationf("replace", "unsupported replacement key %v: %v", from, err)
				}
				pairs = append(pairs, pair{key: key, from: iutil.Normalize(from), to: to})
			}
			// deterministic precedence between keys which compare equal, e.g. 1 and 1.0
			sort.Slice(pairs, func(i, j int) bool { return string(pairs[i].key) < string(pairs[j].key) })
			out := cloneSchema(d.Schema())
			return mapRows(d, out, func(row sparkling.Row) ([]interface{}, error) {
				values := row.Values()
				for _, offset := range offsets {
					if values[offset] == nil {
						continue
					}
					for _, p := range pairs {
						if p.from != nil && iutil.Equal(values[offset], p.from) {
							values[offset] = p.to
							break
						}
					}
				}
				return values, nil
			}), nil
		},
	}
}
