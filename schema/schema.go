package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-sif/sparkling"
	"github.com/go-sif/sparkling/errors"
)

// column describes the position and type of a field in a Row.
type column struct {
	idx     int
	colType sparkling.ColumnType
}

// Clone returns a copy of this Column
func (c *column) Clone() sparkling.Column {
	return &column{c.idx, c.colType}
}

// Index returns the index of this Column within a Schema
func (c *column) Index() int {
	return c.idx
}

// SetIndex modifies the index of this Column within a Schema
func (c *column) SetIndex(newIndex int) {
	c.idx = newIndex
}

// Type returns the ColumnType of this Column
func (c *column) Type() sparkling.ColumnType {
	return c.colType
}

// Schema is an ordered mapping from column names to Columns.
type schema struct {
	schema map[string]sparkling.Column
	names  []string
}

// CreateSchema is a factory for Schemas
func CreateSchema() sparkling.Schema {
	return &schema{
		schema: make(map[string]sparkling.Column),
		names:  make([]string, 0),
	}
}

// CreateSchemaFromColumns is a convenience factory for Schemas, taking alternating names and ColumnTypes
func CreateSchemaFromColumns(names []string, types []sparkling.ColumnType) (sparkling.Schema, error) {
	if len(names) != len(types) {
		return nil, fmt.Errorf("%d column names supplied for %d column types", len(names), len(types))
	}
	s := CreateSchema()
	for i, name := range names {
		if _, err := s.CreateColumn(name, types[i]); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Equals returns nil iff this and another Schema are equivalent
func (s *schema) Equals(otherSchema sparkling.Schema) error {
	if otherSchema == nil {
		return fmt.Errorf("Schema is nil")
	}
	if s.NumColumns() != otherSchema.NumColumns() {
		return fmt.Errorf("Schemas have unequal numbers of columns")
	}
	return s.ForEachColumn(func(name string, offset sparkling.Column) error {
		otherOffset, err := otherSchema.GetOffset(name)
		if err != nil {
			return err
		}
		if offset.Index() != otherOffset.Index() {
			return fmt.Errorf("Column %s indices do not match", name)
		}
		if reflect.TypeOf(offset.Type()) != reflect.TypeOf(otherOffset.Type()) {
			return fmt.Errorf("Column %s types do not match", name)
		}
		return nil
	})
}

// Clone returns a copy of this Schema
func (s *schema) Clone() sparkling.Schema {
	newSchema := make(map[string]sparkling.Column, len(s.schema))
	for k, v := range s.schema {
		newSchema[k] = v.Clone()
	}
	newNames := make([]string, len(s.names))
	copy(newNames, s.names)
	return &schema{schema: newSchema, names: newNames}
}

// NumColumns returns the number of columns in this Schema
func (s *schema) NumColumns() int {
	return len(s.names)
}

// GetOffset returns the Column with the given name
func (s *schema) GetOffset(colName string) (offset sparkling.Column, err error) {
	offset, ok := s.schema[colName]
	if !ok {
		return nil, errors.MissingColumnError{Name: colName}
	}
	return offset, nil
}

// HasColumn returns true iff this Schema contains a column with the given name
func (s *schema) HasColumn(colName string) bool {
	_, ok := s.schema[colName]
	return ok
}

// CreateColumn defines a new column within the Schema, appending it to the end
func (s *schema) CreateColumn(colName string, columnType sparkling.ColumnType) (newSchema sparkling.Schema, err error) {
	if len(colName) == 0 {
		return nil, fmt.Errorf("Column name cannot be empty")
	}
	if columnType == nil {
		return nil, fmt.Errorf("Column %s must have a type", colName)
	}
	if _, ok := s.schema[colName]; ok {
		return nil, fmt.Errorf("Column %s already exists", colName)
	}
	s.schema[colName] = &column{idx: len(s.names), colType: columnType}
	s.names = append(s.names, colName)
	return s, nil
}

// RenameColumn renames an existing column
func (s *schema) RenameColumn(oldName string, newName string) (newSchema sparkling.Schema, err error) {
	offset, ok := s.schema[oldName]
	if !ok {
		return nil, errors.MissingColumnError{Name: oldName}
	}
	if _, exists := s.schema[newName]; exists {
		return nil, fmt.Errorf("Column %s already exists", newName)
	}
	delete(s.schema, oldName)
	s.schema[newName] = offset
	s.names[offset.Index()] = newName
	return s, nil
}

// RemoveColumn removes a column from this Schema. The indices of subsequent columns are shifted down by one.
func (s *schema) RemoveColumn(colName string) (newSchema sparkling.Schema, wasRemoved bool) {
	offset, ok := s.schema[colName]
	if !ok {
		return s, false
	}
	idx := offset.Index()
	delete(s.schema, colName)
	s.names = append(s.names[:idx], s.names[idx+1:]...)
	for i := idx; i < len(s.names); i++ {
		s.schema[s.names[i]].SetIndex(i)
	}
	return s, true
}

// ColumnNames returns the names in the schema, in index order
func (s *schema) ColumnNames() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// ColumnTypes returns the types in the schema, in index order
func (s *schema) ColumnTypes() []sparkling.ColumnType {
	types := make([]sparkling.ColumnType, len(s.names))
	for i, name := range s.names {
		types[i] = s.schema[name].Type()
	}
	return types
}

// ForEachColumn iterates over the columns of this Schema, in index order
func (s *schema) ForEachColumn(fn func(name string, col sparkling.Column) error) error {
	for _, name := range s.names {
		if err := fn(name, s.schema[name]); err != nil {
			return err
		}
	}
	return nil
}

// ToString returns a string representation of this Schema
func (s *schema) ToString() string {
	var res strings.Builder
	fmt.Fprint(&res, "struct<")
	for i, name := range s.names {
		if i > 0 {
			fmt.Fprint(&res, ",")
		}
		fmt.Fprintf(&res, "%s:%s", name, s.schema[name].Type().Name())
	}
	fmt.Fprint(&res, ">")
	return res.String()
}
