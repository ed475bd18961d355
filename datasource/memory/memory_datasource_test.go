package memory

import (
	"context"
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
	"github.com/go-sif/sparkling/partition"
	"github.com/go-sif/sparkling/schema"
	"github.com/stretchr/testify/require"
)

func TestSlices(t *testing.T) {
	elements := make([]interface{}, 3529)
	for i := range elements {
		elements[i] = i
	}
	slices := Slices(elements, 500)
	require.Len(t, slices, 500)
	next := 0
	for _, s := range slices {
		require.True(t, len(s) == 7 || len(s) == 8)
		for _, e := range s {
			require.Equal(t, next, e)
			next++
		}
	}
	require.Equal(t, 3529, next)

	slices = Slices([]interface{}{7}, 100)
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	require.Len(t, slices, 100)
	require.Equal(t, 1, total)
}

func TestMemoryDataSource(t *testing.T) {
	source := CreateDataSource(Slices([]interface{}{1, 2, 3, 4}, 2), nil)
	require.Nil(t, source.Schema())
	pm, err := source.Analyze()
	require.Nil(t, err)
	var loaded [][]interface{}
	for pm.HasNext() {
		part, err := pm.Next().Load(context.Background())
		require.Nil(t, err)
		loaded = append(loaded, part)
	}
	require.Equal(t, [][]interface{}{{1, 2}, {3, 4}}, loaded)
}

func TestMemoryDataSourceChecksRows(t *testing.T) {
	s, err := schema.CreateSchemaFromColumns([]string{"a"}, []sparkling.ColumnType{&sparkling.Int64ColumnType{}})
	require.Nil(t, err)
	row, err := partition.CreateRow([]interface{}{1}, s)
	require.Nil(t, err)
	pm, err := CreateDataSource([][]interface{}{{row, "not a row"}}, s).Analyze()
	require.Nil(t, err)
	_, err = pm.Next().Load(context.Background())
	require.IsType(t, errors.SchemaError{}, err)
}
