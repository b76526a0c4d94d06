package main

import (
	"errors"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/broady/routegen/cmd/routegen/internal/check"
	"github.com/broady/routegen/cmd/routegen/internal/cliutil"
	"github.com/broady/routegen/cmd/routegen/internal/gen"
	"github.com/broady/routegen/cmd/routegen/internal/preview"
)

type CLI struct {
	LogLevel  string `help:"Log level." default:"info" enum:"debug,info,warn,error" env:"ROUTEGEN_LOG_LEVEL"`
	LogFormat string `help:"Log format." default:"console" enum:"console,json" env:"ROUTEGEN_LOG_FORMAT"`

	Version VersionCmd  `cmd:"" help:"Print version information."`
	Gen     gen.Cmd     `cmd:"" help:"Generate a server from a graph document."`
	Check   check.Cmd   `cmd:"" help:"Compile a graph document and print its route table without writing files."`
	Preview preview.Cmd `cmd:"" help:"Serve a graph document's routes in-process."`
}

func main() {
	cliutil.LoadEnv()

	cli := &CLI{}
	ctx := kong.Parse(cli,
		kong.Name("routegen"),
		kong.Description("Compile middleware/endpoint graphs into HTTP servers."),
		kong.UsageOnError(),
	)

	logger, err := cliutil.NewLogger(os.Stderr, cli.LogLevel, cli.LogFormat)
	ctx.FatalIfErrorf(err)

	if err := ctx.Run(logger); err != nil {
		var ce *cliutil.CompileError
		if errors.As(err, &ce) {
			color.New(color.FgRed).Fprintln(os.Stderr, ce.Error())
			os.Exit(1)
		}
		ctx.FatalIfErrorf(err)
	}
}
