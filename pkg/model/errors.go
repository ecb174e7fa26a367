// pkg/model/errors.go
package model

import (
	"errors"
	"fmt"
)

// ErrNilTable is returned when a step receives a nil table
var ErrNilTable = errors.New("table cannot be nil")

// SchemaError reports a required column that is absent
type SchemaError struct {
	Column string
	Op     string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: required column %q is missing", e.Op, e.Column)
}

// TypeConversionError reports a value that cannot be coerced to the requested type
type TypeConversionError struct {
	Column string
	Row    int
	Value  interface{}
	Err    error
}

func (e *TypeConversionError) Error() string {
	return fmt.Sprintf("cannot convert column %q row %d value %v to float64: %v", e.Column, e.Row, e.Value, e.Err)
}

func (e *TypeConversionError) Unwrap() error { return e.Err }

// ParseError reports a serialized value that cannot be deserialized
type ParseError struct {
	Column string
	Row    int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Column == "" {
		return fmt.Sprintf("parse failed: %v", e.Err)
	}
	return fmt.Sprintf("cannot parse column %q row %d: %v", e.Column, e.Row, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// StorageError reports a cache directory or file failure other than "file absent"
type StorageError struct {
	Path string
	Op   string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// FetchError wraps any failure raised by a remote query
type FetchError struct {
	Dataset string
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Dataset, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
