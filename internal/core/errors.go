package core

import (
	"fmt"
	"strings"
)

// RequiredColumns lists the header names every input file must carry.
var RequiredColumns = []string{"ID", "Date", "Category", "Amount", "Description"}

// PathError reports a missing input file or a path that is not a regular file.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("'%s' does not exist or is not a file. Please provide a valid CSV path.", e.Path)
}

func (e *PathError) Unwrap() error { return e.Err }

// EmptyDataError reports an input file without data rows.
type EmptyDataError struct {
	Path string
}

func (e *EmptyDataError) Error() string {
	return "The CSV file is empty."
}

// SchemaError reports required columns missing from the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("CSV must have columns: %s (missing: %s).",
		strings.Join(RequiredColumns, ", "), strings.Join(e.Missing, ", "))
}

// ParseError reports malformed content. Line is 1-based and counts the
// header; zero when the failure is not tied to a row.
type ParseError struct {
	Line   int
	Column string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column != "":
		return fmt.Sprintf("Error reading CSV file: line %d, column %s: %v", e.Line, e.Column, e.Err)
	case e.Line > 0:
		return fmt.Sprintf("Error reading CSV file: line %d: %v", e.Line, e.Err)
	default:
		return fmt.Sprintf("Error reading CSV file: %v", e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

// DateFormatError reports a filter date that is not YYYY-MM-DD.
type DateFormatError struct {
	Value string
}

func (e *DateFormatError) Error() string {
	return fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD.", e.Value)
}
