// Package graph loads route graph documents and resolves the middleware
// that guards each endpoint.
//
// A document is a list of nodes. Middleware nodes declare guards; endpoint
// nodes declare an HTTP method and path and may name a middleware node in
// their source field. The kind of every node is decided once, at load time.
package graph

import "github.com/broady/routegen/ir"

// Kind classifies a node.
type Kind int

const (
	KindUnknown Kind = iota
	KindMiddleware
	KindEndpoint

	// KindInvalid marks a document entry that could not be decoded.
	KindInvalid
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMiddleware:
		return "middleware"
	case KindEndpoint:
		return "endpoint"
	case KindInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// Properties is the discriminated record carried by every node.
// Middleware nodes set Type to "middleware"; endpoint nodes set Endpoint
// and Method.
type Properties struct {
	Type          string `json:"type,omitempty"`
	AuthRequired  bool   `json:"auth_required,omitempty"`
	AdminRequired bool   `json:"admin_required,omitempty"`
	Endpoint      string `json:"endpoint,omitempty"`
	Method        string `json:"method,omitempty"`
}

// Node is one entry of a graph document.
type Node struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Source     string      `json:"source,omitempty"`
	Properties *Properties `json:"properties,omitempty"`

	// Kind is computed by the loader and never read from the document.
	// Nodes built in code may leave it unset; compiler.Build classifies
	// them from Properties.
	Kind Kind `json:"-"`

	// Problem describes why a KindInvalid node could not be decoded.
	Problem string `json:"-"`
}

// IsMiddleware reports whether the node declares guards.
func (n Node) IsMiddleware() bool { return n.Kind == KindMiddleware }

// IsEndpoint reports whether the node declares a route.
func (n Node) IsEndpoint() bool { return n.Kind == KindEndpoint }

// Props returns the node's properties, or the zero value when absent.
func (n Node) Props() Properties {
	if n.Properties == nil {
		return Properties{}
	}
	return *n.Properties
}

// Guards returns the guards a middleware node provides under policy.
// Non-middleware nodes provide none.
func (n Node) Guards(policy GuardPolicy) []ir.Guard {
	if !n.IsMiddleware() {
		return nil
	}
	p := n.Props()
	var guards []ir.Guard
	if p.AuthRequired {
		guards = append(guards, ir.GuardAuth)
		if policy == PolicyExclusive {
			return guards
		}
	}
	if p.AdminRequired {
		guards = append(guards, ir.GuardAdmin)
	}
	return guards
}

// Classify determines the kind of a node from its properties.
// An explicit middleware type wins over endpoint fields.
func Classify(p *Properties) Kind {
	switch {
	case p == nil:
		return KindUnknown
	case p.Type == "middleware":
		return KindMiddleware
	case p.Endpoint != "" || p.Method != "":
		return KindEndpoint
	default:
		return KindUnknown
	}
}
