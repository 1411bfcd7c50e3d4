// Command frontdoor serves a single-page application behind an optional
// password gate and session cookie.
//
// Every option can be given as a flag, as a FRONTDOOR_* environment variable
// or in a JSON file loaded with --config:
//
//	frontdoor --static=./dist --index=./dist/index.html --title="Ops Console" \
//	    --auth-user=admin --session-secret="$(cat secret)"
package main

import (
	"context"
	"os"

	"github.com/alecthomas/kong"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

func main() {
	var cli CLI
	kctx := kong.Parse(&cli, cliOptions()...)

	logger := newLogger(
		colorable.NewColorable(os.Stderr),
		isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()),
		cli.Log.Level,
	)
	kctx.FatalIfErrorf(cli.Run(context.Background(), logger))
}

func cliOptions() []kong.Option {
	return []kong.Option{
		kong.Name("frontdoor"),
		kong.Description("Serve a single-page application behind a configurable front controller."),
		kong.UsageOnError(),
		kong.DefaultEnvars("FRONTDOOR"),
		kong.Configuration(kong.JSON),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true, Summary: true}),
	}
}
