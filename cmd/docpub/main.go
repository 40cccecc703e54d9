package main

import (
	"fmt"

	"github.com/alecthomas/kong"

	"github.com/hypersql/docpub/cmd/docpub/commands"
	pkgerrors "github.com/hypersql/docpub/internal/errors"
	"github.com/hypersql/docpub/internal/version"
)

func main() {
	var cli commands.CLI
	ctx := kong.Parse(&cli,
		kong.Name("docpub"),
		kong.Description("Build and publish a documentation site from trigger events."),
		kong.UsageOnError(),
		kong.Vars{
			"version": fmt.Sprintf("docpub %s (built %s, commit %s)",
				version.Version, version.BuildTime, version.GitCommit),
		},
	)

	global := &commands.Global{}
	err := ctx.Run(global, &cli)
	if err != nil {
		adapter := pkgerrors.NewCLIErrorAdapter(cli.Verbose, nil)
		adapter.HandleError(err)
	}
}
