package sparkling

// Schema is an ordered mapping from column names to Columns.
// It allows one to obtain positions by name, define new columns,
// remove columns, etc.
type Schema interface {
	Equals(otherSchema Schema) error                                                  // Equals returns nil iff this and another Schema have the same columns, in the same order, with the same types
	Clone() Schema                                                                    // Clone returns a deep copy of this Schema
	NumColumns() int                                                                  // NumColumns returns the number of columns in this Schema
	GetOffset(colName string) (offset Column, err error)                              // GetOffset returns the Column with the given name, or a MissingColumnError
	HasColumn(colName string) bool                                                    // HasColumn returns true iff a column with the given name exists
	CreateColumn(colName string, columnType ColumnType) (newSchema Schema, err error) // CreateColumn appends a new column to this Schema
	RenameColumn(oldName string, newName string) (newSchema Schema, err error)        // RenameColumn renames an existing column
	RemoveColumn(colName string) (newSchema Schema, wasRemoved bool)                  // RemoveColumn removes a column, shifting the indices of the columns after it
	ColumnNames() []string                                                            // ColumnNames returns the names of all columns, in order
	ColumnTypes() []ColumnType                                                        // ColumnTypes returns the types of all columns, in order
	ForEachColumn(fn func(name string, col Column) error) error                       // ForEachColumn iterates over columns in order
	ToString() string                                                                 // ToString returns a string representation of this Schema
}
