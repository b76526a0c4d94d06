package graph

import (
	"fmt"
	"strings"
)

// EmptyInputError is returned when the input contains only whitespace.
type EmptyInputError struct{}

func (e *EmptyInputError) Error() string { return "input is empty" }

// Code returns the machine-readable error code.
func (e *EmptyInputError) Code() string { return "empty_input" }

// MalformedError is returned when the input is not a parseable document.
type MalformedError struct {
	Format Format
	Line   int // 1-based; zero when unknown
	Column int // 1-based; zero when unknown
	Err    error
}

func (e *MalformedError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed %s at line %d, column %d: %v", e.Format, e.Line, e.Column, e.Err)
	}
	return fmt.Sprintf("malformed %s: %v", e.Format, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *MalformedError) Code() string { return "malformed" }

// SchemaError is returned when the document parses but has the wrong shape,
// for example when "nodes" is missing or is not an array.
type SchemaError struct {
	// Problems lists "field: description" entries, sorted.
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid document: " + strings.Join(e.Problems, "; ")
}

// Code returns the machine-readable error code.
func (e *SchemaError) Code() string { return "schema" }

// AmbiguousSourceError is returned when an endpoint's source names an id
// shared by more than one node.
type AmbiguousSourceError struct {
	NodeID  string
	Source  string
	Matches int
}

func (e *AmbiguousSourceError) Error() string {
	return fmt.Sprintf("node %q: source %q matches %d nodes", e.NodeID, e.Source, e.Matches)
}

// Code returns the machine-readable error code.
func (e *AmbiguousSourceError) Code() string { return "ambiguous_source" }
