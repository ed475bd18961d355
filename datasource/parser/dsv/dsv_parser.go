// Package dsv parses delimiter-separated values into Rows. A record is one line, unless
// a quoted field contains line breaks.
package dsv

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/partition"
)

// ParserConf configures a DSV Parser
type ParserConf struct {
	Delimiter rune   // The delimiter separating columns in the file. Defaults to ,
	Comment   rune   // Lines beginning with the comment character are ignored. Cannot be equal to the Delimiter. Defaults to no comment character.
	NilValue  string // A special string which represents nil values in the dataset. Defaults to "" (the empty string).
}

// Parser produces Rows from DSV lines
type Parser struct {
	conf   *ParserConf
	schema sparkling.Schema
}

// CreateParser returns a new DSV Parser, producing Rows with the given Schema
func CreateParser(conf *ParserConf, schema sparkling.Schema) (*Parser, error) {
	if conf.Delimiter == 0 {
		conf.Delimiter = ','
	}
	if conf.Comment != 0 && conf.Comment == conf.Delimiter {
		return nil, errors.Validationf("dsv", "comment character %q cannot equal the delimiter", conf.Comment)
	}
	return &Parser{conf: conf, schema: schema}, nil
}

// Schema returns the Schema of the Rows produced by this Parser
func (p *Parser) Schema() sparkling.Schema {
	return p.schema
}

// JoinRecords groups lines into records, joining the lines of quoted fields which contain line breaks
func (p *Parser) JoinRecords(lines []string) (records []string, starts []int) {
	records = make([]string, 0, len(lines))
	starts = make([]int, 0, len(lines))
	var pending []string
	open := false
	for i, line := range lines {
		if pending == nil {
			starts = append(starts, i)
			if p.conf.Comment != 0 && strings.HasPrefix(line, string(p.conf.Comment)) {
				records = append(records, line)
				continue
			}
		}
		pending = append(pending, line)
		// escaped quotes ("") toggle twice
		if strings.Count(line, `"`)%2 == 1 {
			open = !open
		}
		if !open {
			records = append(records, strings.Join(pending, "\n"))
			pending = nil
		}
	}
	// an unterminated quote is passed on as-is, for Parse to report
	if pending != nil {
		records = append(records, strings.Join(pending, "\n"))
	}
	return records, starts
}

// Parse parses one record of DSV data into a Row. Blank and comment lines are skipped.
func (p *Parser) Parse(line string) (interface{}, bool, error) {
	if strings.TrimSpace(line) == "" {
		return nil, true, nil
	}
	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = p.conf.Delimiter
	reader.Comment = p.conf.Comment
	reader.FieldsPerRecord = p.schema.NumColumns()
	record, err := reader.Read()
	if err == io.EOF {
		return nil, true, nil
	} else if err != nil {
		return nil, false, err
	}
	values, err := scanRow(p.conf, p.schema.ColumnNames(), p.schema.ColumnTypes(), record)
	if err != nil {
		return nil, false, err
	}
	row, err := partition.CreateRow(values, p.schema)
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}
