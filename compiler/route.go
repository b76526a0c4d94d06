// Package compiler turns a loaded graph into an ir.Program.
//
// CompileRoute compiles a single endpoint. Build runs the whole document in
// two passes: guard declarations first, in first-seen node order, then
// routes in document order. Per-node problems become warnings unless strict
// mode is on; structural problems (ambiguous sources) always fail.
package compiler

import (
	"path"
	"strings"
	"unicode"

	"github.com/broady/routegen/graph"
	"github.com/broady/routegen/ir"
)

// supportedMethods are the lowercased verbs every emitter can register.
// "all" matches any method.
var supportedMethods = map[string]bool{
	"get":     true,
	"post":    true,
	"put":     true,
	"patch":   true,
	"delete":  true,
	"head":    true,
	"options": true,
	"all":     true,
}

// CompileRoute compiles one endpoint node with its resolved guards.
// Guards are copied; the caller's slice is never retained.
func CompileRoute(endpoint graph.Node, guards []ir.Guard) (ir.RouteDecl, error) {
	p := endpoint.Props()

	var missing []string
	if p.Endpoint == "" {
		missing = append(missing, "endpoint")
	}
	if p.Method == "" {
		missing = append(missing, "method")
	}
	if len(missing) > 0 {
		return ir.RouteDecl{}, &IncompleteEndpointError{NodeID: endpoint.ID, Missing: missing}
	}

	method := strings.ToLower(p.Method)
	if !supportedMethods[method] {
		return ir.RouteDecl{}, &InvalidEndpointError{
			NodeID: endpoint.ID,
			Field:  "method",
			Value:  p.Method,
			Reason: "unsupported HTTP method",
		}
	}
	if reason := checkPath(p.Endpoint); reason != "" {
		return ir.RouteDecl{}, &InvalidEndpointError{
			NodeID: endpoint.ID,
			Field:  "endpoint",
			Value:  p.Endpoint,
			Reason: reason,
		}
	}

	var g []ir.Guard
	if len(guards) > 0 {
		g = make([]ir.Guard, len(guards))
		copy(g, guards)
	}

	return ir.RouteDecl{
		Method:  method,
		Path:    p.Endpoint,
		Guards:  g,
		Message: ResponseMessage(p.Endpoint, endpoint.Name),
		NodeID:  endpoint.ID,
	}, nil
}

// checkPath returns why p cannot be emitted, or "" when it can.
func checkPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "path must start with /"
	}
	for _, r := range p {
		switch {
		case unicode.IsSpace(r) || unicode.IsControl(r):
			return "path contains whitespace or control characters"
		case strings.ContainsRune("{}\"'`\\?#%", r):
			return "path contains reserved character " + string(r)
		}
	}
	if !isClean(p) {
		return "path must be clean (no empty, . or .. segments)"
	}

	params := make(map[string]bool)
	for _, seg := range strings.Split(p, "/") {
		if seg != "*" && strings.Contains(seg, "*") {
			return "wildcard * must be a whole segment"
		}
		name, ok := strings.CutPrefix(seg, ":")
		if !ok {
			continue
		}
		if !isIdentifier(name) {
			return "parameter " + seg + " is not a valid name"
		}
		if params[name] {
			return "parameter " + seg + " appears more than once"
		}
		params[name] = true
	}
	return ""
}

// isClean reports whether p is already in path.Clean form, ignoring a single
// trailing slash.
func isClean(p string) bool {
	clean := path.Clean(p)
	if clean != "/" && strings.HasSuffix(p, "/") {
		clean += "/"
	}
	return clean == p
}

// ParamName reports whether seg is a ":name" parameter segment and returns
// the name.
func ParamName(seg string) (string, bool) {
	name, ok := strings.CutPrefix(seg, ":")
	if !ok || !isIdentifier(name) {
		return "", false
	}
	return name, true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z'):
		case i > 0 && '0' <= r && r <= '9':
		default:
			return false
		}
	}
	return true
}
