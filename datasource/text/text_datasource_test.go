package text

import (
	"context"
	"strings"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/fileio"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func loadAll(t *testing.T, source *DataSource) [][]interface{} {
	pm, err := source.Analyze()
	require.Nil(t, err)
	var parts [][]interface{}
	for pm.HasNext() {
		part, err := pm.Next().Load(context.Background())
		require.Nil(t, err)
		parts = append(parts, part)
	}
	return parts
}

func TestSplitLines(t *testing.T) {
	require.Equal(t, []string{}, SplitLines(""))
	require.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb\n"))
	require.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb"))
}

func TestTextDataSource(t *testing.T) {
	fs := fileio.NewLocalFs(afero.NewMemMapFs(), nil)
	require.Nil(t, fs.Dump("/in/part-00000", []byte("a\nb\nc\n")))
	require.Nil(t, fs.Dump("/in/part-00001.gz", []byte("d\ne\n")))

	parts := loadAll(t, CreateDataSource(fs, "/in", 0, nil))
	require.Equal(t, [][]interface{}{{"a", "b", "c"}, {"d", "e"}}, parts)

	parts = loadAll(t, CreateDataSource(fs, "/in", 3, nil))
	require.Len(t, parts, 4)
	var all []interface{}
	for _, p := range parts {
		all = append(all, p...)
	}
	require.Equal(t, []interface{}{"a", "b", "c", "d", "e"}, all)

	_, err := CreateDataSource(fs, "/nothing/*", 1, nil).Analyze()
	require.NotNil(t, err)
}

type upperParser struct{}

func (upperParser) Parse(line string) (interface{}, bool, error) {
	return strings.ToUpper(line), line == "b", nil
}

func (upperParser) Schema() sparkling.Schema {
	return nil
}

func TestTextDataSourceWithParser(t *testing.T) {
	fs := fileio.NewLocalFs(afero.NewMemMapFs(), nil)
	require.Nil(t, fs.Dump("/in.txt", []byte("a\nb\nc")))
	parts := loadAll(t, CreateDataSource(fs, "/in.txt", 1, upperParser{}))
	require.Equal(t, [][]interface{}{{"A", "C"}}, parts)

	parts = loadAll(t, CreateDataSource(fs, "/in.txt", 1, nil).WithHeaderLines(2))
	require.Equal(t, [][]interface{}{{"c"}}, parts)
}
