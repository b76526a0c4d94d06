// Package emit defines the contract between the compiler and the code
// generators for each target language.
package emit

import "github.com/broady/routegen/ir"

// Header is the first line of every generated file. It matches the
// convention recognized by Go tooling and linters for generated code.
const Header = "Code generated by routegen. DO NOT EDIT."

// Emitter transforms a Program into the source of one server program.
//
// Emit must be deterministic: the same Program always yields the same
// bytes. It must only reference guards declared in Program.Middleware.
type Emitter interface {
	// Name returns the target identifier (e.g., "go", "express").
	Name() string

	// Filename returns the default output file name for the target.
	Filename() string

	// Emit produces the program source.
	Emit(prog *ir.Program) ([]byte, error)
}

// Check verifies the invariants every emitter relies on and returns the
// first problem found.
func Check(prog *ir.Program) error {
	if prog == nil {
		return errNilProgram
	}
	if errs := prog.Validate(); len(errs) > 0 {
		return errs[0]
	}
	if prog.Port <= 0 || prog.Port > 65535 {
		return &PortError{Port: prog.Port}
	}
	return nil
}
