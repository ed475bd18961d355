package text

import (
	"fmt"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/fileio"
)

// LineParser turns a line of text into an element. Lines for which skip is true are discarded.
type LineParser interface {
	Parse(line string) (element interface{}, skip bool, err error) // Parse produces an element from a line
	Schema() sparkling.Schema                                      // Schema of the elements produced by Parse, or nil if they are not Rows
}

// A RecordJoiner is a LineParser whose records may span several lines. JoinRecords groups
// the lines of a file into records, returning the index of the first line of each record.
// Files are divided into Partitions by record rather than by line.
type RecordJoiner interface {
	JoinRecords(lines []string) (records []string, starts []int)
}

// DataSource is a set of text files containing data which will be manipulated according to a Dataset
type DataSource struct {
	fs            fileio.FileSystem
	pattern       string
	minPartitions int
	headerLines   int
	parser        LineParser
}

// CreateDataSource is a factory for DataSources. pattern may name a file, a directory or a glob.
// Each file is split into ceil(minPartitions / numFiles) Partitions. A nil parser produces raw lines.
func CreateDataSource(fs fileio.FileSystem, pattern string, minPartitions int, parser LineParser) *DataSource {
	return &DataSource{fs: fs, pattern: pattern, minPartitions: minPartitions, parser: parser}
}

// WithHeaderLines configures the number of lines to ignore from the beginning of each file
func (fs *DataSource) WithHeaderLines(n int) *DataSource {
	fs.headerLines = n
	return fs
}

// Analyze returns a PartitionMap, describing how the source files will be divided into Partitions
func (fs *DataSource) Analyze() (sparkling.PartitionMap, error) {
	files, err := fs.fs.Resolve(fs.pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("pattern %s produced 0 files", fs.pattern)
	}
	slicesPerFile := 1
	if fs.minPartitions > len(files) {
		slicesPerFile = (fs.minPartitions + len(files) - 1) / len(files)
	}
	return &PartitionMap{
		files:         files,
		slicesPerFile: slicesPerFile,
		source:        fs,
	}, nil
}

// Schema returns the Schema of the elements of this DataSource, or nil if they are not Rows
func (fs *DataSource) Schema() sparkling.Schema {
	if fs.parser == nil {
		return nil
	}
	return fs.parser.Schema()
}
