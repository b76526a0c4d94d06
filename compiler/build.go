package compiler

import (
	"errors"
	"fmt"

	"github.com/broady/routegen/graph"
	"github.com/broady/routegen/ir"
)

// Options configures Build.
type Options struct {
	// Policy decides how many guards a middleware node contributes.
	Policy graph.GuardPolicy

	// Strict turns incomplete, invalid and duplicate endpoints into errors
	// instead of skipping them with a warning.
	Strict bool

	// Port, AdminToken and PackageName are copied into the Program.
	Port        int
	AdminToken  string
	PackageName string
}

// Build compiles a node list into a Program.
//
// The first pass declares every guard provided by a middleware node, in
// first-seen order. The second pass compiles endpoints in document order, so
// a route can only reference guards the first pass declared, wherever its
// middleware node appears in the document.
func Build(nodes []graph.Node, opts Options) (*ir.Program, error) {
	nodes = classify(nodes)
	idx := graph.NewIndex(nodes)
	prog := &ir.Program{
		Middleware:  []ir.MiddlewareDecl{},
		Routes:      []ir.RouteDecl{},
		Port:        opts.Port,
		AdminToken:  opts.AdminToken,
		PackageName: opts.PackageName,
	}

	for _, id := range idx.DuplicateIDs() {
		_, count := idx.Lookup(id)
		prog.AddWarning(ir.Warning{
			Code:    ir.WarnDuplicateID,
			Message: fmt.Sprintf("id %q is used by %d nodes", id, count),
			NodeID:  id,
		})
	}

	declareMiddleware(prog, nodes, opts.Policy)

	first := make(map[string]string) // route key -> node id
	for _, n := range nodes {
		if !n.IsEndpoint() {
			continue
		}

		guards, err := idx.ResolveGuards(n, opts.Policy)
		if err != nil {
			return nil, err
		}
		checkSource(prog, idx, n)

		route, err := CompileRoute(n, guards)
		if err != nil {
			if opts.Strict {
				return nil, err
			}
			prog.AddWarning(endpointWarning(n, err))
			continue
		}

		if firstID, dup := first[route.Key()]; dup {
			dupErr := &DuplicateRouteError{
				NodeID:      n.ID,
				FirstNodeID: firstID,
				Method:      route.Method,
				Path:        route.Path,
			}
			if opts.Strict {
				return nil, dupErr
			}
			prog.AddWarning(ir.Warning{
				Code:    ir.WarnDuplicateRoute,
				Message: dupErr.Error() + "; skipped",
				NodeID:  n.ID,
			})
			continue
		}
		first[route.Key()] = n.ID
		prog.Routes = append(prog.Routes, route)
	}

	return prog, nil
}

func declareMiddleware(prog *ir.Program, nodes []graph.Node, policy graph.GuardPolicy) {
	for _, n := range nodes {
		switch n.Kind {
		case graph.KindMiddleware:
			guards := n.Guards(policy)
			if len(guards) == 0 {
				prog.AddWarning(ir.Warning{
					Code:    ir.WarnMiddlewareWithoutGuard,
					Message: fmt.Sprintf("middleware node %q requires neither auth nor admin", n.ID),
					NodeID:  n.ID,
				})
			}
			for _, g := range guards {
				if !prog.HasMiddleware(g) {
					prog.Middleware = append(prog.Middleware, ir.MiddlewareDecl{Guard: g, NodeID: n.ID})
				}
			}
		case graph.KindUnknown:
			prog.AddWarning(ir.Warning{
				Code:    ir.WarnUnknownKind,
				Message: fmt.Sprintf("node %q is neither middleware nor endpoint; ignored", n.ID),
				NodeID:  n.ID,
			})
		case graph.KindInvalid:
			prog.AddWarning(ir.Warning{
				Code:    ir.WarnInvalidNode,
				Message: n.Problem + "; skipped",
				NodeID:  n.ID,
			})
		}
	}
}

// classify returns a copy of nodes with every unset kind computed from the
// node's properties, so nodes built in code compile like loaded ones.
func classify(nodes []graph.Node) []graph.Node {
	out := make([]graph.Node, len(nodes))
	copy(out, nodes)
	for i := range out {
		if out[i].Kind == graph.KindUnknown {
			out[i].Kind = graph.Classify(out[i].Properties)
		}
	}
	return out
}

// checkSource records why an endpoint's source edge contributes nothing.
func checkSource(prog *ir.Program, idx *graph.Index, n graph.Node) {
	if n.Source == "" {
		return
	}
	src, count := idx.Lookup(n.Source)
	switch {
	case count == 0:
		prog.AddWarning(ir.Warning{
			Code:    ir.WarnDanglingSource,
			Message: fmt.Sprintf("node %q: source %q matches no node; route is unguarded", n.ID, n.Source),
			NodeID:  n.ID,
		})
	case !src.IsMiddleware():
		prog.AddWarning(ir.Warning{
			Code:    ir.WarnSourceNotMiddleware,
			Message: fmt.Sprintf("node %q: source %q is a %s node; route is unguarded", n.ID, n.Source, src.Kind),
			NodeID:  n.ID,
		})
	}
}

func endpointWarning(n graph.Node, err error) ir.Warning {
	code := ir.WarnInvalidEndpoint
	var incomplete *IncompleteEndpointError
	if errors.As(err, &incomplete) {
		code = ir.WarnIncompleteEndpoint
	}
	return ir.Warning{
		Code:    code,
		Message: err.Error() + "; skipped",
		NodeID:  n.ID,
	}
}
