package text

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-sif/sparkling/internal/util"
)

// PartitionLoader is capable of loading one slice of the lines of a file
type PartitionLoader struct {
	path   string
	slice  int
	slices int
	source *DataSource
}

// ToString returns a string representation of this PartitionLoader
func (pl *PartitionLoader) ToString() string {
	return fmt.Sprintf("Text loader filename: %s (slice %d of %d)", pl.path, pl.slice+1, pl.slices)
}

// Load reads the file, and returns the records belonging to this loader's slice
func (pl *PartitionLoader) Load(ctx context.Context) ([]interface{}, error) {
	data, err := pl.source.fs.Load(pl.path)
	if err != nil {
		return nil, err
	}
	lines := SplitLines(string(data))
	if pl.source.headerLines > 0 {
		header := pl.source.headerLines
		if header > len(lines) {
			header = len(lines)
		}
		lines = lines[header:]
	}
	records, starts := lines, []int(nil)
	if joiner, ok := pl.source.parser.(RecordJoiner); ok {
		records, starts = joiner.JoinRecords(lines)
	}
	start, end := util.EvenSlice(len(records), pl.slice, pl.slices)
	result := make([]interface{}, 0, end-start)
	for i, record := range records[start:end] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if pl.source.parser == nil {
			result = append(result, record)
			continue
		}
		element, skip, err := pl.source.parser.Parse(record)
		if err != nil {
			line := start + i
			if starts != nil {
				line = starts[start+i]
			}
			return nil, fmt.Errorf("%s line %d: %w", pl.path, pl.source.headerLines+line+1, err)
		}
		if !skip {
			result = append(result, element)
		}
	}
	return result, nil
}

// SplitLines splits text on newlines, dropping the empty line after a trailing newline
// and any carriage returns which precede a newline
func SplitLines(text string) []string {
	if len(text) == 0 {
		return []string{}
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
