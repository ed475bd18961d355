package main

import (
	"testing"

	"github.com/go-sif/sparkling"
	"github.com/stretchr/testify/require"
)

func TestParseSchema(t *testing.T) {
	s, err := parseSchema("name:string, age:int64,score:FLOAT64,at:time:2006-01-02")
	require.Nil(t, err)
	require.Equal(t, []string{"name", "age", "score", "at"}, s.ColumnNames())
	types := s.ColumnTypes()
	require.IsType(t, &sparkling.Int64ColumnType{}, types[1])
	require.IsType(t, &sparkling.Float64ColumnType{}, types[2])
	require.Equal(t, "2006-01-02", types[3].(*sparkling.TimeColumnType).Format)

	_, err = parseSchema("name")
	require.NotNil(t, err)
	_, err = parseSchema("name:blob")
	require.NotNil(t, err)
	_, err = parseSchema("a:string,a:int64")
	require.NotNil(t, err)
}
