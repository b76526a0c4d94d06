package ir

import "strings"

// MiddlewareDecl is one guard function definition in the emitted program.
type MiddlewareDecl struct {
	// Guard is the check this declaration implements.
	Guard Guard

	// NodeID is the middleware node that first introduced the guard.
	NodeID string
}

// Name returns the emitted function name.
func (d MiddlewareDecl) Name() string {
	return d.Guard.Symbol()
}

// RouteDecl is the compiled form of one endpoint node.
type RouteDecl struct {
	// Method is the lowercased HTTP verb ("get", "post", ... or "all").
	Method string

	// Path is the route path exactly as written in the source document.
	Path string

	// Guards run in order before the handler body.
	Guards []Guard

	// Message is the literal text returned as {"message": Message}.
	Message string

	// NodeID is the endpoint node this route was compiled from.
	NodeID string
}

// Key identifies the route for collision detection. Single-segment
// wildcards share one token: "/users/:id", "/users/:name" and "/users/*/x"
// style segments match the same requests. A trailing "*" stays distinct
// because it matches a whole subtree.
func (r RouteDecl) Key() string {
	return r.Method + " " + canonicalPath(r.Path)
}

func canonicalPath(path string) string {
	if !strings.ContainsAny(path, ":*") {
		return path
	}
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		switch {
		case strings.HasPrefix(seg, ":"):
			segs[i] = ":"
		case seg == "*" && i < len(segs)-1:
			segs[i] = ":"
		}
	}
	return strings.Join(segs, "/")
}

// GuardNames returns the guard names joined with commas, or "-" when the
// route is public.
func (r RouteDecl) GuardNames() string {
	if len(r.Guards) == 0 {
		return "-"
	}
	names := make([]string, len(r.Guards))
	for i, g := range r.Guards {
		names[i] = g.String()
	}
	return strings.Join(names, ",")
}

// Program is everything an emitter needs to produce one server.
type Program struct {
	// Middleware lists guard declarations in first-seen node order.
	Middleware []MiddlewareDecl

	// Routes lists route declarations in document order.
	Routes []RouteDecl

	// Port is the fixed listen port of the emitted server.
	Port int

	// AdminToken is the credential value admin-guarded routes require.
	AdminToken string

	// PackageName is the Go package clause for targets that need one.
	PackageName string

	// Warnings contains non-fatal issues encountered while building.
	Warnings []Warning
}

// AddWarning adds a warning to the program.
func (p *Program) AddWarning(w Warning) {
	p.Warnings = append(p.Warnings, w)
}

// HasMiddleware reports whether a declaration for g exists.
func (p *Program) HasMiddleware(g Guard) bool {
	for _, d := range p.Middleware {
		if d.Guard == g {
			return true
		}
	}
	return false
}

// FindRoute looks up a route by method and path. Returns nil if not found.
func (p *Program) FindRoute(method, path string) *RouteDecl {
	key := strings.ToLower(method) + " " + canonicalPath(path)
	for i := range p.Routes {
		if p.Routes[i].Key() == key {
			return &p.Routes[i]
		}
	}
	return nil
}

// Validate checks that every guard referenced by a route has a declaration
// and that no two routes share a key. Returns all problems found.
func (p *Program) Validate() []error {
	var errs []error
	seen := make(map[string]bool)
	for _, r := range p.Routes {
		if seen[r.Key()] {
			errs = append(errs, &ValidationError{
				Code:    "duplicate_route",
				Message: "duplicate route: " + r.Key(),
			})
		}
		seen[r.Key()] = true
		for _, g := range r.Guards {
			if !p.HasMiddleware(g) {
				errs = append(errs, &ValidationError{
					Code:    "undeclared_guard",
					Message: "route " + r.Key() + " references undeclared guard " + g.String(),
				})
			}
		}
	}
	return errs
}

// ValidationError describes a structural problem in a Program.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Code + ": " + e.Message
}
