package compiler

import (
	"fmt"
	"strings"
)

// IncompleteEndpointError is returned for an endpoint node that lacks a
// path or a method.
type IncompleteEndpointError struct {
	NodeID  string
	Missing []string // property names, in declaration order
}

func (e *IncompleteEndpointError) Error() string {
	return fmt.Sprintf("node %q: endpoint is missing %s", e.NodeID, strings.Join(e.Missing, " and "))
}

// Code returns the machine-readable error code.
func (e *IncompleteEndpointError) Code() string { return "incomplete_endpoint" }

// InvalidEndpointError is returned for an endpoint whose method or path
// cannot be emitted safely.
type InvalidEndpointError struct {
	NodeID string
	Field  string
	Value  string
	Reason string
}

func (e *InvalidEndpointError) Error() string {
	return fmt.Sprintf("node %q: invalid %s %q: %s", e.NodeID, e.Field, e.Value, e.Reason)
}

// Code returns the machine-readable error code.
func (e *InvalidEndpointError) Code() string { return "invalid_endpoint" }

// DuplicateRouteError is returned in strict mode when two endpoints compile
// to the same method and path.
type DuplicateRouteError struct {
	NodeID      string
	FirstNodeID string
	Method      string
	Path        string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("node %q: route %s %s already declared by node %q",
		e.NodeID, strings.ToUpper(e.Method), e.Path, e.FirstNodeID)
}

// Code returns the machine-readable error code.
func (e *DuplicateRouteError) Code() string { return "duplicate_route" }
