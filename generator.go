// Package routegen compiles a graph document of middleware and endpoint
// nodes into the source of a runnable HTTP server.
//
// Compilation is a pure text-to-text transformation:
//
//	res, err := routegen.Compile(doc, &routegen.Config{Target: "go"})
//
// Writing the result is left to an output sink:
//
//	routegen.FromText(doc).Port(8080).ToFile("./server/server.go")
package routegen

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/broady/routegen/compiler"
	"github.com/broady/routegen/emit"
	"github.com/broady/routegen/emit/express"
	"github.com/broady/routegen/emit/golang"
	"github.com/broady/routegen/graph"
	"github.com/broady/routegen/ir"
	"github.com/broady/routegen/sink"
)

var targets = map[string]emit.Emitter{
	"go":      &golang.Emitter{},
	"express": &express.Emitter{},
}

// Targets returns the supported target names in sorted order.
func Targets() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EmitterFor returns the emitter registered for target.
func EmitterFor(target string) (emit.Emitter, error) {
	e, ok := targets[target]
	if !ok {
		return nil, fmt.Errorf("unknown target %q (expected one of %v)", target, Targets())
	}
	return e, nil
}

// Result is the outcome of one compilation.
type Result struct {
	// Source is the emitted program text.
	Source []byte

	// Filename is the target's conventional file name, e.g. "server.go".
	Filename string

	// Program is the compiled route table the source was emitted from.
	Program *ir.Program

	// Warnings contains non-fatal issues found while building.
	Warnings []ir.Warning
}

// Compile loads text and compiles it for cfg.Target. A nil cfg uses the
// defaults. Nothing is written anywhere.
func Compile(text string, cfg *Config) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	format, err := cfg.inputFormat()
	if err != nil {
		return nil, err
	}
	nodes, err := graph.LoadFormat(text, format)
	if err != nil {
		return nil, err
	}
	return compileNodes(nodes, cfg)
}

// CompileNodes compiles an already loaded node list.
func CompileNodes(nodes []graph.Node, cfg *Config) (*Result, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return compileNodes(nodes, cfg)
}

func compileNodes(nodes []graph.Node, cfg *Config) (*Result, error) {
	e, err := EmitterFor(cfg.Target)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.buildOptions()
	if err != nil {
		return nil, err
	}
	prog, err := compiler.Build(nodes, opts)
	if err != nil {
		return nil, err
	}
	src, err := e.Emit(prog)
	if err != nil {
		return nil, fmt.Errorf("emit %s: %w", e.Name(), err)
	}
	return &Result{
		Source:   src,
		Filename: e.Filename(),
		Program:  prog,
		Warnings: prog.Warnings,
	}, nil
}

// Emit renders already compiled declarations for cfg.Target.
func Emit(middleware []ir.MiddlewareDecl, routes []ir.RouteDecl, cfg *Config) (string, error) {
	cfg = applyConfigDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	e, err := EmitterFor(cfg.Target)
	if err != nil {
		return "", err
	}
	src, err := e.Emit(&ir.Program{
		Middleware:  middleware,
		Routes:      routes,
		Port:        cfg.Port,
		AdminToken:  cfg.AdminToken,
		PackageName: cfg.PackageName,
	})
	if err != nil {
		return "", err
	}
	return string(src), nil
}

// Generate compiles text and writes the result to out under name. An empty
// name uses the target's file name. Nothing is written when compilation
// fails.
func Generate(ctx context.Context, text string, cfg *Config, out sink.OutputSink, name string) (*Result, error) {
	g := FromText(text)
	if cfg != nil {
		g.cfg = *cfg
	}
	return g.To(ctx, out, name)
}

// Generator provides a fluent API for compilation.
// Create with FromText() or FromNodes() and configure with method chaining.
//
// Example:
//
//	routegen.FromText(doc).
//	    Target("express").
//	    Port(8080).
//	    ToFile("./server.js")
type Generator struct {
	text  string
	nodes []graph.Node
	cfg   Config
}

// FromText creates a Generator for a JSON or YAML document.
func FromText(text string) *Generator {
	return &Generator{text: text}
}

// FromNodes creates a Generator for nodes that were loaded or built
// elsewhere.
func FromNodes(nodes []graph.Node) *Generator {
	return &Generator{nodes: nodes}
}

// WithConfig replaces the whole configuration.
func (g *Generator) WithConfig(cfg Config) *Generator {
	g.cfg = cfg
	return g
}

// Target selects the emitter. Valid values: "go" (default), "express".
func (g *Generator) Target(t string) *Generator {
	g.cfg.Target = t
	return g
}

// Port sets the listen port of the generated server.
func (g *Generator) Port(p int) *Generator {
	g.cfg.Port = p
	return g
}

// AdminToken sets the credential admin-guarded routes require.
func (g *Generator) AdminToken(token string) *Generator {
	g.cfg.AdminToken = token
	return g
}

// Policy sets the guard policy. Valid values: "exclusive" (default), "stacked".
func (g *Generator) Policy(p string) *Generator {
	g.cfg.GuardPolicy = p
	return g
}

// Package sets the package clause of generated Go.
func (g *Generator) Package(name string) *Generator {
	g.cfg.PackageName = name
	return g
}

// Strict makes incomplete, invalid and duplicate endpoints fatal.
func (g *Generator) Strict() *Generator {
	g.cfg.Strict = true
	return g
}

// Format sets the input format of FromText documents.
func (g *Generator) Format(f string) *Generator {
	g.cfg.Format = f
	return g
}

// Compile returns the result in memory.
func (g *Generator) Compile() (*Result, error) {
	if g.nodes != nil {
		return CompileNodes(g.nodes, &g.cfg)
	}
	return Compile(g.text, &g.cfg)
}

// To compiles and writes the result to out under name.
func (g *Generator) To(ctx context.Context, out sink.OutputSink, name string) (*Result, error) {
	res, err := g.Compile()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = res.Filename
	}
	if err := out.WriteFile(ctx, name, res.Source); err != nil {
		return nil, fmt.Errorf("write %s: %w", name, err)
	}
	return res, nil
}

// ToFile compiles and atomically writes the result to path.
func (g *Generator) ToFile(path string) (*Result, error) {
	dir, name := filepath.Split(filepath.Clean(path))
	return g.To(context.Background(), sink.NewFilesystemSink(dir), name)
}
