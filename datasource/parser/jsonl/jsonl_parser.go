package jsonl

import (
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/partition"
	"github.com/tidwall/gjson"
)

// ParserConf configures a JSONL Parser, suitable for JSON lines data
type ParserConf struct {
	Comment rune // Lines beginning with the comment character are ignored. Defaults to no comment character.
}

// Parser produces Rows from JSONL data
type Parser struct {
	conf   *ParserConf
	schema sparkling.Schema
}

// CreateParser returns a new JSONL Parser. Columns are parsed lazily from each row of JSON using their column name, which should be a gjson path. Values within the JSON which do not correspond to a Schema column are ignored.
func CreateParser(conf *ParserConf, schema sparkling.Schema) *Parser {
	if conf == nil {
		conf = &ParserConf{}
	}
	return &Parser{conf: conf, schema: schema}
}

// Schema returns the Schema of the Rows produced by this Parser
func (p *Parser) Schema() sparkling.Schema {
	return p.schema
}

// Parse parses one line of JSON into a Row. Blank and comment lines are skipped.
func (p *Parser) Parse(line string) (interface{}, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || (p.conf.Comment != 0 && strings.HasPrefix(trimmed, string(p.conf.Comment))) {
		return nil, true, nil
	}
	if !gjson.Valid(trimmed) {
		return nil, false, errors.ParsingError{Kind: "json", Message: trimmed}
	}
	values, err := ParseJSONRow(p.schema.ColumnNames(), p.schema.ColumnTypes(), gjson.Parse(trimmed))
	if err != nil {
		return nil, false, err
	}
	row, err := partition.CreateRow(values, p.schema)
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}
