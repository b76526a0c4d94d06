// Package ir defines the intermediate representation produced by the
// compiler and consumed by emitters. Emitters transform a Program into
// target language source code; nothing in this package knows about any
// particular target.
package ir

// Guard identifies a middleware check applied before a route handler runs.
type Guard int

const (
	GuardAuth  Guard = iota + 1 // credential header must be present
	GuardAdmin                  // credential header must equal the admin token
)

// String returns the guard name used in reports.
func (g Guard) String() string {
	switch g {
	case GuardAuth:
		return "auth"
	case GuardAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Symbol returns the identifier emitters use for the guard's function.
// The same symbol is used by every target so route tables stay comparable.
func (g Guard) Symbol() string {
	switch g {
	case GuardAuth:
		return "authMiddleware"
	case GuardAdmin:
		return "adminMiddleware"
	default:
		return ""
	}
}

// Warning represents a non-fatal issue encountered while building a Program.
type Warning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description.
	Message string

	// NodeID is the node that triggered the warning, if applicable.
	NodeID string
}

// Warning codes.
const (
	WarnUnknownKind            = "unknown_kind"
	WarnInvalidNode            = "invalid_node"
	WarnDanglingSource         = "dangling_source"
	WarnSourceNotMiddleware    = "source_not_middleware"
	WarnMiddlewareWithoutGuard = "middleware_without_guard"
	WarnIncompleteEndpoint     = "incomplete_endpoint"
	WarnInvalidEndpoint        = "invalid_endpoint"
	WarnDuplicateRoute         = "duplicate_route"
	WarnDuplicateID            = "duplicate_id"
)
