package sink

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilesystemSink writes files beneath a root directory. Each write goes to
// a temporary file first and is renamed into place, so a failed run never
// leaves a truncated server behind.
type FilesystemSink struct {
	// Root is the directory all names are resolved against.
	Root string

	// Mode is the permission of written files. Zero means 0644.
	Mode os.FileMode

	// Overwrite replaces existing files. When false, writing over an
	// existing file fails.
	Overwrite bool
}

// NewFilesystemSink returns a sink rooted at root that overwrites existing
// files with mode 0644.
func NewFilesystemSink(root string) *FilesystemSink {
	return &FilesystemSink{Root: root, Mode: 0644, Overwrite: true}
}

// WriteFile atomically writes content to name within Root, creating
// parent directories as needed.
func (s *FilesystemSink) WriteFile(ctx context.Context, name string, content []byte) error {
	if err := ValidatePath(name); err != nil {
		return fmt.Errorf("invalid path %q: %w", name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	root := s.Root
	if root == "" {
		root = "."
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve root directory: %w", err)
	}
	full := filepath.Join(absRoot, filepath.FromSlash(name))
	if !strings.HasPrefix(full, absRoot+string(filepath.Separator)) {
		return fmt.Errorf("path escapes root directory: %q", name)
	}

	dir := filepath.Dir(full)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create directories: %w", err)
	}

	mode := s.Mode
	if mode == 0 {
		mode = 0644
	}

	tmp, err := os.CreateTemp(dir, ".routegen-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	// Leftovers share the .routegen-*.tmp prefix, so a failed removal is ignored.
	discard := func() { _ = os.Remove(tmpPath) }

	_, writeErr := tmp.Write(content)
	closeErr := tmp.Close()
	switch {
	case writeErr != nil:
		discard()
		return fmt.Errorf("write temp file: %w", writeErr)
	case closeErr != nil:
		discard()
		return fmt.Errorf("close temp file: %w", closeErr)
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		discard()
		return fmt.Errorf("set file mode: %w", err)
	}
	if err := ctx.Err(); err != nil {
		discard()
		return err
	}

	if s.Overwrite {
		if err := os.Rename(tmpPath, full); err != nil {
			discard()
			return fmt.Errorf("rename temp file: %w", err)
		}
		return nil
	}

	// Link fails with EEXIST instead of racing a stat against the rename.
	err = os.Link(tmpPath, full)
	discard()
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("file already exists: %q", name)
		}
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}
