package errors

import (
	"context"
	stderrors "errors"
	"fmt"
)

// NilValueError occurs when a value in a Row is null
type NilValueError struct{ Name string }

// Error returns a textual representation of this NilValueError
func (e NilValueError) Error() string {
	return fmt.Sprintf("Value for column %s is nil", e.Name)
}

// MissingColumnError occurs when a column name does not resolve to any column of a Schema
type MissingColumnError struct{ Name string }

// Error returns a textual representation of this MissingColumnError
func (e MissingColumnError) Error() string {
	return fmt.Sprintf("Schema does not contain column %s", e.Name)
}

// IncompatibleRowError occurs when a Row's width does not match an expected Schema
type IncompatibleRowError struct {
	Expected int
	Actual   int
}

// Error returns a textual representation of this IncompatibleRowError
func (e IncompatibleRowError) Error() string {
	return fmt.Sprintf("Row width %d is not compatible with Schema width %d", e.Actual, e.Expected)
}

// NoMorePartitionsError occurs when there are no more partitions in a PartitionIterator
type NoMorePartitionsError struct{}

// Error returns a textual representation of this NoMorePartitionsError
func (e NoMorePartitionsError) Error() string {
	return "No more partitions"
}

// ValidationError occurs when an operation receives malformed arguments.
// It is always returned before any Dataset is built.
type ValidationError struct {
	Operation string
	Message   string
}

// Error returns a textual representation of this ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Operation, e.Message)
}

// Validationf builds a ValidationError for an operation
func Validationf(operation string, format string, args ...interface{}) error {
	return ValidationError{Operation: operation, Message: fmt.Sprintf(format, args...)}
}

// SchemaError occurs when an expression cannot be evaluated against a Row,
// because a column is missing or an operator is applied to values of incompatible types.
// SchemaErrors are never retried.
type SchemaError struct {
	Message string
	Err     error
}

// Error returns a textual representation of this SchemaError
func (e SchemaError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("Schema error: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("Schema error: %s", e.Message)
}

// Unwrap returns the underlying cause of this SchemaError, if any
func (e SchemaError) Unwrap() error {
	return e.Err
}

// Schemaf builds a SchemaError
func Schemaf(format string, args ...interface{}) error {
	return SchemaError{Message: fmt.Sprintf(format, args...)}
}

// ParsingError occurs when a parse tree contains a node which cannot be converted into an expression.
// ParsingErrors are fatal, and never retried.
type ParsingError struct {
	Kind    string
	Message string
}

// Error returns a textual representation of this ParsingError
func (e ParsingError) Error() string {
	if len(e.Kind) > 0 {
		return fmt.Sprintf("Unable to parse %s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("Unable to parse: %s", e.Message)
}

// ComputationError occurs when the materialization of a Partition fails,
// after exhausting all of its attempts.
type ComputationError struct {
	Dataset     int    // the ID of the Dataset whose Partition failed
	Kind        string // the kind of operation which produced that Dataset
	Partition   int    // the index of the Partition which failed
	Attempts    int    // the number of attempts which were made
	Err         error  // the error from the final attempt
	All         error  // the errors from all attempts, if there were several
	Accumulator uint64 // the ID of the Accumulator whose merge function failed, if any
}

// Error returns a textual representation of this ComputationError
func (e *ComputationError) Error() string {
	if e.Accumulator > 0 {
		return fmt.Sprintf("Failed to merge into accumulator %d: %v", e.Accumulator, e.Err)
	}
	return fmt.Sprintf("Failed to compute partition %d of dataset %d (%s) after %d attempt(s): %v", e.Partition, e.Dataset, e.Kind, e.Attempts, e.Err)
}

// Unwrap returns the error from the final attempt
func (e *ComputationError) Unwrap() error {
	return e.Err
}

// IsFatal returns true iff err must never be retried
func IsFatal(err error) bool {
	switch err.(type) {
	case SchemaError, *SchemaError, ParsingError, *ParsingError, ValidationError, *ValidationError, MissingColumnError:
		return true
	}
	if u, ok := err.(interface{ Unwrap() error }); ok && u.Unwrap() != nil {
		return IsFatal(u.Unwrap())
	}
	return false
}

// IsCancellation returns true iff err results from a cancelled or expired context
func IsCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

// EmptyDatasetError occurs when an action which requires at least one element is run against an empty Dataset
type EmptyDatasetError struct {
	Action string
}

// Error returns a textual representation of this EmptyDatasetError
func (e EmptyDatasetError) Error() string {
	return fmt.Sprintf("%s: Dataset is empty", e.Action)
}
