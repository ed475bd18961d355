package dsv

import (
	"context"
	"testing"
	"time"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/datasource/text"
	"github.com/go-sif/sparkling/fileio"
	"github.com/go-sif/sparkling/schema"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

func createTestSchema(t *testing.T) sparkling.Schema {
	s, err := schema.CreateSchemaFromColumns(
		[]string{"id", "name", "price", "active", "when", "amount"},
		[]sparkling.ColumnType{
			&sparkling.Int64ColumnType{},
			&sparkling.StringColumnType{},
			&sparkling.Float64ColumnType{},
			&sparkling.BoolColumnType{},
			&sparkling.TimeColumnType{Format: "2006-01-02"},
			&sparkling.DecimalColumnType{},
		},
	)
	require.Nil(t, err)
	return s
}

func TestDSVParser(t *testing.T) {
	parser, err := CreateParser(&ParserConf{Delimiter: '|', Comment: '#', NilValue: "null"}, createTestSchema(t))
	require.Nil(t, err)

	element, skip, err := parser.Parse(`7|"a|b"|2.5|true|2020-01-02|1.10`)
	require.Nil(t, err)
	require.False(t, skip)
	row := element.(sparkling.Row)
	id, err := row.GetInt64("id")
	require.Nil(t, err)
	require.Equal(t, int64(7), id)
	name, err := row.GetString("name")
	require.Nil(t, err)
	require.Equal(t, "a|b", name)
	when, err := row.GetTime("when")
	require.Nil(t, err)
	require.Equal(t, time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), when)
	amount, err := row.Get("amount")
	require.Nil(t, err)
	require.True(t, decimal.RequireFromString("1.1").Equal(amount.(decimal.Decimal)))

	element, skip, err = parser.Parse("8|null||false||")
	require.Nil(t, err)
	require.False(t, skip)
	require.True(t, element.(sparkling.Row).IsNil("name"))
	require.True(t, element.(sparkling.Row).IsNil("price"))

	_, skip, err = parser.Parse("# a comment")
	require.Nil(t, err)
	require.True(t, skip)
	_, skip, err = parser.Parse("   ")
	require.Nil(t, err)
	require.True(t, skip)

	_, _, err = parser.Parse("x|a|1|true|2020-01-02|1")
	require.NotNil(t, err)
	_, _, err = parser.Parse("1|a")
	require.NotNil(t, err)
}

func TestDSVParserRejectsCommentDelimiter(t *testing.T) {
	_, err := CreateParser(&ParserConf{Delimiter: ';', Comment: ';'}, createTestSchema(t))
	require.NotNil(t, err)
}

func createNotesParser(t *testing.T) *Parser {
	s, err := schema.CreateSchemaFromColumns([]string{"id", "note"}, []sparkling.ColumnType{&sparkling.Int64ColumnType{}, &sparkling.StringColumnType{}})
	require.Nil(t, err)
	parser, err := CreateParser(&ParserConf{Comment: '#'}, s)
	require.Nil(t, err)
	return parser
}

func TestJoinRecords(t *testing.T) {
	parser := createNotesParser(t)
	records, starts := parser.JoinRecords([]string{
		`1,"first`,
		`line"`,
		`# "unbalanced comment`,
		`2,plain`,
		`3,"a ""quoted""`,
		`word"`,
		`4,"never closed`,
	})
	require.Equal(t, []string{"1,\"first\nline\"", `# "unbalanced comment`, "2,plain", "3,\"a \"\"quoted\"\"\nword\"", `4,"never closed`}, records)
	require.Equal(t, []int{0, 2, 3, 4, 6}, starts)

	element, skip, err := parser.Parse(records[3])
	require.Nil(t, err)
	require.False(t, skip)
	note, err := element.(sparkling.Row).GetString("note")
	require.Nil(t, err)
	require.Equal(t, "a \"quoted\"\nword", note)
	_, _, err = parser.Parse(records[4])
	require.NotNil(t, err)
}

func TestMultilineFieldsThroughTextDataSource(t *testing.T) {
	fs := fileio.NewLocalFs(afero.NewMemMapFs(), nil)
	require.Nil(t, fs.Dump("/in/notes.csv", []byte("id,note\n1,\"first\nline\"\n2,plain\n3,\"x\ny\nz\"\n")))
	require.Nil(t, fs.Dump("/bad/notes.csv", []byte("id,note\n1,\"a\nb\"\nx,oops\n")))
	parser := createNotesParser(t)

	pm, err := text.CreateDataSource(fs, "/in/notes.csv", 2, parser).WithHeaderLines(1).Analyze()
	require.Nil(t, err)
	var notes []string
	for pm.HasNext() {
		part, err := pm.Next().Load(context.Background())
		require.Nil(t, err)
		for _, element := range part {
			note, err := element.(sparkling.Row).GetString("note")
			require.Nil(t, err)
			notes = append(notes, note)
		}
	}
	require.Equal(t, []string{"first\nline", "plain", "x\ny\nz"}, notes)

	pm, err = text.CreateDataSource(fs, "/bad/notes.csv", 1, parser).WithHeaderLines(1).Analyze()
	require.Nil(t, err)
	_, err = pm.Next().Load(context.Background())
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "notes.csv line 4")
}
