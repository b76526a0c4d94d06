// Package sink provides destinations for generated server files.
package sink

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// OutputSink receives a generated file. Implementations must be safe for
// concurrent calls.
type OutputSink interface {
	// WriteFile stores content under name. The name is a clean relative
	// slash-separated path; the sink decides where it ends up.
	WriteFile(ctx context.Context, name string, content []byte) error
}

// ValidatePath reports whether name is acceptable as a sink path: non-empty,
// relative, clean, and not escaping its root.
func ValidatePath(name string) error {
	if name == "" {
		return errors.New("path is empty")
	}
	if strings.HasPrefix(name, "/") || strings.Contains(name, `\`) {
		return errors.New("absolute paths not allowed")
	}
	if len(name) >= 2 && name[1] == ':' && isDriveLetter(name[0]) {
		return errors.New("absolute paths not allowed")
	}
	for _, elem := range strings.Split(name, "/") {
		if elem == ".." {
			return errors.New("path traversal not allowed")
		}
	}
	if cleaned := path.Clean(name); cleaned != name {
		return fmt.Errorf("path is not clean (expected %q, got %q)", cleaned, name)
	}
	return nil
}

func isDriveLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
