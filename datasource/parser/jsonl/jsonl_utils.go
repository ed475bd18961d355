package jsonl

import (
	"fmt"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

func parseValue(val gjson.Result, colName string, colType sparkling.ColumnType) (interface{}, error) {
	// parse type
	switch ct := colType.(type) {
	case *sparkling.BoolColumnType:
		if val.Type != gjson.True && val.Type != gjson.False {
			return nil, fmt.Errorf("Column %s was not a boolean. Was: %s", colName, val.Raw)
		}
		return val.Bool(), nil
	case *sparkling.Int64ColumnType:
		if val.Type != gjson.Number {
			return nil, fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
		}
		return val.Int(), nil
	case *sparkling.Float64ColumnType:
		if val.Type != gjson.Number {
			return nil, fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
		}
		return val.Float(), nil
	case *sparkling.DecimalColumnType:
		if val.Type != gjson.Number && val.Type != gjson.String {
			return nil, fmt.Errorf("Column %s was not a number. Was: %s", colName, val.Raw)
		}
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return nil, fmt.Errorf("Column %s: %w", colName, err)
		}
		return d, nil
	case *sparkling.StringColumnType:
		if val.Type != gjson.String {
			return nil, fmt.Errorf("Column %s was not a string. Was: %s", colName, val.Raw)
		}
		return val.String(), nil
	case *sparkling.TimeColumnType:
		format := ct.Format
		if len(format) == 0 {
			format = time.RFC3339
		}
		tval, err := time.Parse(format, val.String())
		if err != nil {
			return nil, fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %s", colName, format, val.Raw)
		}
		return tval, nil
	case *sparkling.AnyColumnType:
		return val.Value(), nil
	default:
		return nil, fmt.Errorf("JSONL parsing does not support column type %T", colType)
	}
}

// ParseJSONRow extracts the value of each column from a JSON object, treating
// column names as gjson paths. Missing keys and JSON nulls become nil values.
func ParseJSONRow(colNames []string, colTypes []sparkling.ColumnType, json gjson.Result) ([]interface{}, error) {
	values := make([]interface{}, len(colNames))
	for i, colName := range colNames {
		val := json.Get(colName)
		if !val.Exists() || val.Type == gjson.Null {
			continue
		}
		v, err := parseValue(val, colName, colTypes[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
