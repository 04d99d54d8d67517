package main

import (
	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/pointwatch/cmd/pointwatch/commands"
	"git.home.luguber.info/inful/pointwatch/internal/version"
)

func main() {
	cli := &commands.CLI{}
	ctx := kong.Parse(cli,
		kong.Name("pointwatch"),
		kong.Description("Continuous monitoring daemon that polls named data points and broadcasts value changes."),
		kong.UsageOnError(),
		kong.Vars{"version": version.Version},
	)
	err := ctx.Run(&commands.Global{}, cli)
	ctx.FatalIfErrorf(err)
}
