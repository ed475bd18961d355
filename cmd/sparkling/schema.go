package main

import (
	"fmt"
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/schema"
)

// columnTypes maps the type names accepted by --schema to ColumnTypes
var columnTypes = map[string]func(arg string) sparkling.ColumnType{
	"bool":    func(string) sparkling.ColumnType { return &sparkling.BoolColumnType{} },
	"int64":   func(string) sparkling.ColumnType { return &sparkling.Int64ColumnType{} },
	"float64": func(string) sparkling.ColumnType { return &sparkling.Float64ColumnType{} },
	"string":  func(string) sparkling.ColumnType { return &sparkling.StringColumnType{} },
	"decimal": func(string) sparkling.ColumnType { return &sparkling.DecimalColumnType{} },
	"any":     func(string) sparkling.ColumnType { return &sparkling.AnyColumnType{} },
	"time":    func(format string) sparkling.ColumnType { return &sparkling.TimeColumnType{Format: format} },
}

// parseSchema parses a comma-separated list of name:type pairs. Time columns take
// a layout after a second colon, e.g. "at:time:2006-01-02".
func parseSchema(definition string) (sparkling.Schema, error) {
	fields := strings.Split(definition, ",")
	names := make([]string, 0, len(fields))
	types := make([]sparkling.ColumnType, 0, len(fields))
	for _, field := range fields {
		parts := strings.SplitN(strings.TrimSpace(field), ":", 3)
		if len(parts) < 2 || parts[0] == "" {
			return nil, fmt.Errorf("invalid column %q, expected name:type", field)
		}
		factory, ok := columnTypes[strings.ToLower(parts[1])]
		if !ok {
			return nil, fmt.Errorf("unknown type %q for column %s", parts[1], parts[0])
		}
		arg := ""
		if len(parts) == 3 {
			arg = parts[2]
		}
		names = append(names, parts[0])
		types = append(types, factory(arg))
	}
	return schema.CreateSchemaFromColumns(names, types)
}
