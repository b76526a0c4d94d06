package check

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/broady/routegen/cmd/routegen/internal/cliutil"
	"github.com/broady/routegen/ir"
)

type Cmd struct {
	cliutil.Options `embed:""`

	stdout io.Writer
}

func (c *Cmd) Run(logger zerolog.Logger) error {
	res, err := c.Compile(logger)
	if err != nil {
		return err
	}
	w := c.stdout
	if w == nil {
		w = os.Stdout
	}
	return PrintProgram(w, res.Program)
}

// SetStdout overrides where the route table is printed.
func (c *Cmd) SetStdout(w io.Writer) { c.stdout = w }

// PrintProgram writes the middleware list and the route table.
func PrintProgram(w io.Writer, prog *ir.Program) error {
	ok := color.New(color.FgGreen).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	fmt.Fprintf(w, "%s %d middleware, %d routes\n", ok("✓"), len(prog.Middleware), len(prog.Routes))
	for _, m := range prog.Middleware {
		fmt.Fprintf(w, "  %s (node %s)\n", m.Name(), m.NodeID)
	}

	if len(prog.Routes) > 0 {
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\nMETHOD\tPATH\tGUARDS\tMESSAGE")
		for _, r := range prog.Routes {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Method, r.Path, r.GuardNames(), r.Message)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if n := len(prog.Warnings); n > 0 {
		fmt.Fprintf(w, "\n%s %d warnings\n", warn("!"), n)
	}
	return nil
}
