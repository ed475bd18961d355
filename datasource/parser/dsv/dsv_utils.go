package dsv

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/shopspring/decimal"
)

// Parses a slice of strings into Row values, according to a schema
func scanRow(conf *ParserConf, names []string, colTypes []sparkling.ColumnType, rowStrings []string) ([]interface{}, error) {
	values := make([]interface{}, len(rowStrings))
	for i, colVal := range rowStrings {
		// check for a nil value
		if len(colVal) == 0 || colVal == conf.NilValue {
			continue
		}
		// otherwise, parse type
		switch colType := colTypes[i].(type) {
		case *sparkling.BoolColumnType:
			bval, err := strconv.ParseBool(colVal)
			if err != nil {
				return nil, fmt.Errorf("Column %s: %w", names[i], err)
			}
			values[i] = bval
		case *sparkling.Int64ColumnType:
			ival, err := strconv.ParseInt(colVal, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("Column %s: %w", names[i], err)
			}
			values[i] = ival
		case *sparkling.Float64ColumnType:
			fval, err := strconv.ParseFloat(colVal, 64)
			if err != nil {
				return nil, fmt.Errorf("Column %s: %w", names[i], err)
			}
			values[i] = fval
		case *sparkling.DecimalColumnType:
			dval, err := decimal.NewFromString(colVal)
			if err != nil {
				return nil, fmt.Errorf("Column %s: %w", names[i], err)
			}
			values[i] = dval
		case *sparkling.TimeColumnType:
			format := colType.Format
			if len(format) == 0 {
				format = time.RFC3339
			}
			tval, err := time.Parse(format, colVal)
			if err != nil {
				return nil, fmt.Errorf("Column %s could not be parsed as datetime with format %s. Was: %#v", names[i], format, colVal)
			}
			values[i] = tval
		case *sparkling.StringColumnType, *sparkling.AnyColumnType:
			values[i] = colVal
		default:
			return nil, fmt.Errorf("DSV parsing does not support column type %T", colTypes[i])
		}
	}
	return values, nil
}
