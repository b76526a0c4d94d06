package preview

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/broady/routegen/cmd/routegen/internal/cliutil"
	"github.com/broady/routegen/internal/preview"
)

type Cmd struct {
	cliutil.Options `embed:""`

	Addr string `help:"Listen address (default: the configured port on all interfaces)." env:"ROUTEGEN_PREVIEW_ADDR"`
}

func (c *Cmd) Run(logger zerolog.Logger) error {
	res, err := c.Compile(logger)
	if err != nil {
		return err
	}
	srv, err := preview.New(res.Program, logger)
	if err != nil {
		return &cliutil.CompileError{File: c.Input, Err: err}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx, c.Addr); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}
