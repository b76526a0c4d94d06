package compiler

import (
	"errors"
	"testing"

	"github.com/broady/routegen/graph"
	"github.com/broady/routegen/ir"
	"github.com/google/go-cmp/cmp"
)

const fullDoc = `{
  "nodes": [
    {"id": "1", "name": "Auth Middleware", "properties": {"type": "middleware", "auth_required": true}},
    {"id": "2", "name": "Admin Middleware", "properties": {"type": "middleware", "admin_required": true}},
    {"id": "3", "name": "Login", "source": "1", "properties": {"endpoint": "/login", "method": "POST"}},
    {"id": "4", "name": "Signup", "source": "1", "properties": {"endpoint": "/signup", "method": "POST"}},
    {"id": "5", "name": "Signout", "source": "1", "properties": {"endpoint": "/signout", "method": "POST"}},
    {"id": "6", "name": "User", "properties": {"endpoint": "/user", "method": "GET"}},
    {"id": "7", "name": "Admin", "source": "2", "properties": {"endpoint": "/admin", "method": "GET"}},
    {"id": "8", "name": "Home", "properties": {"endpoint": "/home", "method": "GET"}},
    {"id": "9", "name": "About", "properties": {"endpoint": "/about", "method": "GET"}},
    {"id": "10", "name": "News", "properties": {"endpoint": "/news", "method": "GET"}},
    {"id": "11", "name": "Blogs", "properties": {"endpoint": "/blogs", "method": "GET"}}
  ]
}`

func load(t *testing.T, doc string) []graph.Node {
	t.Helper()
	nodes, err := graph.Load(doc)
	if err != nil {
		t.Fatalf("graph.Load() error = %v", err)
	}
	return nodes
}

func warningCodes(p *ir.Program) []string {
	var codes []string
	for _, w := range p.Warnings {
		codes = append(codes, w.Code)
	}
	return codes
}

func TestBuild_Full(t *testing.T) {
	prog, err := Build(load(t, fullDoc), Options{Port: 3000, AdminToken: "admin"})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	wantMiddleware := []ir.MiddlewareDecl{
		{Guard: ir.GuardAuth, NodeID: "1"},
		{Guard: ir.GuardAdmin, NodeID: "2"},
	}
	if diff := cmp.Diff(wantMiddleware, prog.Middleware); diff != "" {
		t.Errorf("Middleware mismatch (-want +got):\n%s", diff)
	}

	type row struct{ Key, Guards, Message string }
	var got []row
	for _, r := range prog.Routes {
		got = append(got, row{r.Key(), r.GuardNames(), r.Message})
	}
	want := []row{
		{"post /login", "auth", "Login successful"},
		{"post /signup", "auth", "Signup successful"},
		{"post /signout", "auth", "Signout successful"},
		{"get /user", "-", "User data"},
		{"get /admin", "admin", "Admin data"},
		{"get /home", "-", "Welcome to Home Page"},
		{"get /about", "-", "About us"},
		{"get /news", "-", "Latest news"},
		{"get /blogs", "-", "Blogs list"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Routes mismatch (-want +got):\n%s", diff)
	}
	if len(prog.Warnings) != 0 {
		t.Errorf("Warnings = %v, want none", prog.Warnings)
	}
	if errs := prog.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v", errs)
	}
}

func TestBuild_NoEndpoints(t *testing.T) {
	prog, err := Build(load(t, `{"nodes": [{"id": "1", "properties": {"type": "middleware", "auth_required": true}}]}`), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(prog.Routes) != 0 {
		t.Errorf("Routes = %v, want none", prog.Routes)
	}
	if len(prog.Middleware) != 1 {
		t.Errorf("Middleware = %v, want one declaration", prog.Middleware)
	}
}

func TestBuild_MiddlewareAfterEndpoint(t *testing.T) {
	doc := `{"nodes": [
		{"id": "e", "name": "E", "source": "m", "properties": {"endpoint": "/e", "method": "GET"}},
		{"id": "m", "properties": {"type": "middleware", "admin_required": true}}
	]}`
	prog, err := Build(load(t, doc), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(prog.Routes) != 1 || len(prog.Routes[0].Guards) != 1 || prog.Routes[0].Guards[0] != ir.GuardAdmin {
		t.Fatalf("Routes = %+v, want one admin-guarded route", prog.Routes)
	}
	if !prog.HasMiddleware(ir.GuardAdmin) {
		t.Error("admin guard not declared")
	}
}

func TestBuild_DedupesMiddleware(t *testing.T) {
	doc := `{"nodes": [
		{"id": "a1", "properties": {"type": "middleware", "auth_required": true}},
		{"id": "a2", "properties": {"type": "middleware", "auth_required": true}},
		{"id": "both", "properties": {"type": "middleware", "auth_required": true, "admin_required": true}}
	]}`

	prog, err := Build(load(t, doc), Options{Policy: graph.PolicyExclusive})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]ir.MiddlewareDecl{{Guard: ir.GuardAuth, NodeID: "a1"}}, prog.Middleware); diff != "" {
		t.Errorf("exclusive Middleware mismatch (-want +got):\n%s", diff)
	}

	prog, err = Build(load(t, doc), Options{Policy: graph.PolicyStacked})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	want := []ir.MiddlewareDecl{{Guard: ir.GuardAuth, NodeID: "a1"}, {Guard: ir.GuardAdmin, NodeID: "both"}}
	if diff := cmp.Diff(want, prog.Middleware); diff != "" {
		t.Errorf("stacked Middleware mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Warnings(t *testing.T) {
	doc := `{"nodes": [
		{"id": "m", "properties": {"type": "middleware"}},
		{"id": "note", "name": "Sticky note"},
		{"id": "d", "name": "D", "source": "ghost", "properties": {"endpoint": "/d", "method": "GET"}},
		{"id": "e", "name": "E", "source": "d", "properties": {"endpoint": "/e", "method": "GET"}},
		{"id": "i", "name": "I", "properties": {"endpoint": "/i"}},
		{"id": "v", "name": "V", "properties": {"endpoint": "/v", "method": "BREW"}},
		{"id": "dup", "name": "Dup", "properties": {"endpoint": "/d", "method": "get"}}
	]}`

	prog, err := Build(load(t, doc), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	want := []string{
		ir.WarnMiddlewareWithoutGuard,
		ir.WarnUnknownKind,
		ir.WarnDanglingSource,
		ir.WarnSourceNotMiddleware,
		ir.WarnIncompleteEndpoint,
		ir.WarnInvalidEndpoint,
		ir.WarnDuplicateRoute,
	}
	if diff := cmp.Diff(want, warningCodes(prog)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}

	var keys []string
	for _, r := range prog.Routes {
		keys = append(keys, r.Key()+"#"+r.NodeID)
		if len(r.Guards) != 0 {
			t.Errorf("route %s has guards %v, want none", r.Key(), r.Guards)
		}
	}
	if diff := cmp.Diff([]string{"get /d#d", "get /e#e"}, keys); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_Strict(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		check func(error) bool
	}{
		{
			name:  "incomplete",
			doc:   `{"nodes": [{"id": "i", "properties": {"method": "GET"}}]}`,
			check: func(err error) bool { var e *IncompleteEndpointError; return errors.As(err, &e) },
		},
		{
			name:  "invalid",
			doc:   `{"nodes": [{"id": "i", "properties": {"endpoint": "nope", "method": "GET"}}]}`,
			check: func(err error) bool { var e *InvalidEndpointError; return errors.As(err, &e) },
		},
		{
			name: "duplicate",
			doc: `{"nodes": [
				{"id": "a", "properties": {"endpoint": "/x", "method": "GET"}},
				{"id": "b", "properties": {"endpoint": "/x", "method": "get"}}
			]}`,
			check: func(err error) bool {
				var e *DuplicateRouteError
				return errors.As(err, &e) && e.FirstNodeID == "a" && e.NodeID == "b"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nodes := load(t, tt.doc)
			if _, err := Build(nodes, Options{}); err != nil {
				t.Fatalf("tolerant Build() error = %v", err)
			}
			_, err := Build(nodes, Options{Strict: true})
			if err == nil || !tt.check(err) {
				t.Errorf("strict Build() error = %v", err)
			}
		})
	}
}

func TestBuild_AmbiguousSource(t *testing.T) {
	doc := `{"nodes": [
		{"id": "m", "properties": {"type": "middleware", "auth_required": true}},
		{"id": "m", "properties": {"type": "middleware", "admin_required": true}},
		{"id": "e", "source": "m", "properties": {"endpoint": "/e", "method": "GET"}}
	]}`
	_, err := Build(load(t, doc), Options{})
	var ambiguous *graph.AmbiguousSourceError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Build() error = %v, want *graph.AmbiguousSourceError", err)
	}
}

func TestBuild_DuplicateIDUnreferenced(t *testing.T) {
	doc := `{"nodes": [
		{"id": "x", "name": "A", "properties": {"endpoint": "/a", "method": "GET"}},
		{"id": "x", "name": "B", "properties": {"endpoint": "/b", "method": "GET"}}
	]}`
	prog, err := Build(load(t, doc), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{ir.WarnDuplicateID}, warningCodes(prog)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if len(prog.Routes) != 2 {
		t.Errorf("len(Routes) = %d, want 2", len(prog.Routes))
	}
}

func TestBuild_InvalidNodesAreSkipped(t *testing.T) {
	tests := []struct {
		name string
		bad  string
	}{
		{"flag with wrong type", `{"id": "m", "properties": {"type": "middleware", "auth_required": 1}}`},
		{"numeric id", `{"id": 7, "properties": {"endpoint": "/seven", "method": "GET"}}`},
		{"null entry", `null`},
		{"string entry", `"node"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := `{"nodes": [` + tt.bad + `, {"id": "e", "name": "Home", "properties": {"endpoint": "/home", "method": "GET"}}]}`
			prog, err := Build(load(t, doc), Options{Strict: true})
			if err != nil {
				t.Fatalf("Build() error = %v", err)
			}
			if diff := cmp.Diff([]string{ir.WarnInvalidNode}, warningCodes(prog)); diff != "" {
				t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
			}
			if len(prog.Routes) != 1 || prog.Routes[0].Message != "Welcome to Home Page" {
				t.Errorf("Routes = %+v, want only /home", prog.Routes)
			}
		})
	}
}

func TestBuild_InvalidSourceIsDangling(t *testing.T) {
	doc := `{"nodes": [
		{"id": "m", "properties": {"type": "middleware", "auth_required": "yes"}},
		{"id": "e", "source": "m", "properties": {"endpoint": "/e", "method": "GET"}}
	]}`
	prog, err := Build(load(t, doc), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{ir.WarnInvalidNode, ir.WarnDanglingSource}, warningCodes(prog)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}
	if len(prog.Middleware) != 0 || len(prog.Routes) != 1 || len(prog.Routes[0].Guards) != 0 {
		t.Errorf("program = %+v, want one unguarded route", prog)
	}
}

func TestBuild_UnclassifiedNodes(t *testing.T) {
	nodes := []graph.Node{
		{ID: "m", Properties: &graph.Properties{Type: "middleware", AuthRequired: true}},
		{ID: "e", Source: "m", Properties: &graph.Properties{Endpoint: "/home", Method: "GET"}},
	}
	prog, err := Build(nodes, Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(prog.Warnings) != 0 {
		t.Errorf("Warnings = %+v, want none", prog.Warnings)
	}
	want := []ir.RouteDecl{{
		Method:  "get",
		Path:    "/home",
		Guards:  []ir.Guard{ir.GuardAuth},
		Message: "Welcome to Home Page",
		NodeID:  "e",
	}}
	if diff := cmp.Diff(want, prog.Routes); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
	if len(prog.Middleware) != 1 || prog.Middleware[0].Guard != ir.GuardAuth {
		t.Errorf("Middleware = %+v, want auth", prog.Middleware)
	}
	if nodes[0].Kind != graph.KindUnknown {
		t.Errorf("caller's node kind changed to %v", nodes[0].Kind)
	}
}

func TestBuild_WildcardSegmentsCollide(t *testing.T) {
	doc := `{"nodes": [
		{"id": "p", "name": "P", "properties": {"endpoint": "/a/:x/b", "method": "GET"}},
		{"id": "w", "name": "W", "properties": {"endpoint": "/a/*/b", "method": "GET"}},
		{"id": "r", "name": "R", "properties": {"endpoint": "/a/*", "method": "GET"}}
	]}`
	prog, err := Build(load(t, doc), Options{})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if diff := cmp.Diff([]string{ir.WarnDuplicateRoute}, warningCodes(prog)); diff != "" {
		t.Errorf("warning codes mismatch (-want +got):\n%s", diff)
	}
	var ids []string
	for _, r := range prog.Routes {
		ids = append(ids, r.NodeID)
	}
	if diff := cmp.Diff([]string{"p", "r"}, ids); diff != "" {
		t.Errorf("routes mismatch (-want +got):\n%s", diff)
	}
}
