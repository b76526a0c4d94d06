package gen

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/broady/routegen/cmd/routegen/internal/cliutil"
	"github.com/broady/routegen/sink"
)

type Cmd struct {
	cliutil.Options `embed:""`

	Out string `help:"Output file, or - for stdout (default: server.go or server.js)." short:"o" env:"ROUTEGEN_OUT"`

	stdout io.Writer
}

func (c *Cmd) Run(logger zerolog.Logger) error {
	res, err := c.Compile(logger)
	if err != nil {
		return err
	}

	ctx := context.Background()
	out := c.Out
	if out == "" {
		out = res.Filename
	}

	if out == "-" {
		return sink.NewWriterSink(c.writer()).WriteFile(ctx, res.Filename, res.Source)
	}

	dir, name := filepath.Split(filepath.Clean(out))
	if err := sink.NewFilesystemSink(dir).WriteFile(ctx, name, res.Source); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}

	logger.Debug().
		Str("output", out).
		Int("routes", len(res.Program.Routes)).
		Int("middleware", len(res.Program.Middleware)).
		Int("warnings", len(res.Warnings)).
		Msg("generated")
	color.New(color.FgGreen).Fprintf(c.writer(), "Server generated at %s\n", out)
	return nil
}

// SetStdout overrides where generated source and status lines go.
func (c *Cmd) SetStdout(w io.Writer) { c.stdout = w }

func (c *Cmd) writer() io.Writer {
	if c.stdout != nil {
		return c.stdout
	}
	return os.Stdout
}
