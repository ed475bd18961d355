package sparkling

import "time"

// Row is a representation of a single record of relational data:
// an ordered sequence of (nullable) values, along with a reference to the
// Schema for that record. In practice, users of Row will call its
// getter and setter methods to retrieve, manipulate and store data.
type Row interface {
	Schema() Schema                                          // Schema returns the schema for a row
	ToString() string                                        // ToString returns a string representation of this row
	Values() []interface{}                                   // Values returns a copy of the values of this row, in schema order
	Len() int                                                // Len returns the number of values in this row
	IsNil(colName string) bool                               // IsNil returns true iff the given column value is nil in this row. If an error occurs, this function will return false.
	SetNil(colName string) error                             // SetNil sets the given column value to nil within this row
	Get(colName string) (col interface{}, err error)         // Get returns the value of any column as an interface{}, if it exists. Nil values are returned as nil, without error.
	GetAt(idx int) interface{}                               // GetAt returns the value at a position within this row
	GetBool(colName string) (col bool, err error)            // GetBool retrieves a single bool from the column with the given name.
	GetInt64(colName string) (col int64, err error)          // GetInt64 retrieves a single int64 from the column with the given name
	GetFloat64(colName string) (col float64, err error)      // GetFloat64 retrieves a single float64 from the column with the given name
	GetString(colName string) (col string, err error)        // GetString retrieves a single string from the column with the given name
	GetTime(colName string) (col time.Time, err error)       // GetTime retrieves a single Time from the column with the given name
	Set(colName string, value interface{}) (err error)       // Set modifies the value of the column with the given name
	Equals(other Row) bool                                   // Equals returns true iff both rows have equal schemas and equal values
	HashKey() ([]byte, error)                                // HashKey returns a byte encoding of the schema and values of this row, suitable for hashing and equality
	Clone() Row                                              // Clone returns a copy of this row which shares its schema
}
