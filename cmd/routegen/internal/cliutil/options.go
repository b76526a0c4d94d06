// Package cliutil holds the flags and helpers shared by routegen subcommands.
package cliutil

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/broady/routegen"
	"github.com/broady/routegen/graph"
)

// DefaultConfigFile is read when present and --config is not given.
const DefaultConfigFile = "routegen.yaml"

// Options are the compile flags every subcommand accepts.
type Options struct {
	Input       string `arg:"" help:"Graph document (JSON or YAML), or - for stdin."`
	Config      string `help:"YAML options file (default: ./routegen.yaml if present)." short:"c" env:"ROUTEGEN_CONFIG"`
	Target      string `help:"Output target: go or express." short:"t" env:"ROUTEGEN_TARGET"`
	Port        int    `help:"Listen port of the generated server." short:"p" env:"ROUTEGEN_PORT"`
	AdminToken  string `help:"Authorization value admin routes require." env:"ROUTEGEN_ADMIN_TOKEN"`
	GuardPolicy string `help:"Guard policy: exclusive or stacked." name:"guard-policy" env:"ROUTEGEN_GUARD_POLICY"`
	Package     string `help:"Package clause of generated Go." env:"ROUTEGEN_PACKAGE"`
	Strict      bool   `help:"Fail on incomplete, invalid or duplicate endpoints." env:"ROUTEGEN_STRICT"`
	Format      string `help:"Input format: json or yaml (default: from file extension)." short:"f" env:"ROUTEGEN_FORMAT"`

	stdin io.Reader
}

// CompileError is a failure attributed to an input file.
type CompileError struct {
	File string
	Err  error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("Error compiling %s: %v", e.File, e.Err)
}

func (e *CompileError) Unwrap() error { return e.Err }

// SetStdin overrides the reader used for input "-".
func (o *Options) SetStdin(r io.Reader) { o.stdin = r }

// Resolve merges the options file, defaults, and flags into one Config.
// Flags win over the file.
func (o *Options) Resolve() (*routegen.Config, error) {
	var cfg routegen.Config

	path := o.Config
	if path == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			path = DefaultConfigFile
		}
	}
	if path != "" {
		fileCfg, err := routegen.LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	cfg = cfg.Merge(routegen.Config{
		Target:      o.Target,
		Port:        o.Port,
		AdminToken:  o.AdminToken,
		GuardPolicy: o.GuardPolicy,
		PackageName: o.Package,
		Strict:      o.Strict,
		Format:      o.Format,
	})
	if cfg.Format == "" && o.Input != "-" {
		cfg.Format = graph.FormatForPath(o.Input).String()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Compile reads the input, compiles it, and logs any warnings. Failures
// are returned as *CompileError.
func (o *Options) Compile(logger zerolog.Logger) (*routegen.Result, error) {
	cfg, err := o.Resolve()
	if err != nil {
		return nil, &CompileError{File: o.displayName(), Err: err}
	}

	text, err := o.read()
	if err != nil {
		return nil, &CompileError{File: o.displayName(), Err: err}
	}

	logger.Debug().
		Str("input", o.displayName()).
		Str("target", cfg.Target).
		Str("policy", cfg.GuardPolicy).
		Bool("strict", cfg.Strict).
		Msg("compiling")

	res, err := routegen.Compile(text, cfg)
	if err != nil {
		return nil, &CompileError{File: o.displayName(), Err: err}
	}
	for _, w := range res.Warnings {
		logger.Warn().Str("code", w.Code).Str("node", w.NodeID).Msg(w.Message)
	}
	return res, nil
}

func (o *Options) read() (string, error) {
	if o.Input == "-" {
		r := o.stdin
		if r == nil {
			r = os.Stdin
		}
		b, err := io.ReadAll(r)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(o.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("file not found")
		}
		return "", err
	}
	return string(b), nil
}

func (o *Options) displayName() string {
	if o.Input == "-" {
		return "<stdin>"
	}
	return o.Input
}
