package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/imovia/imovia/cmd/cli/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		Whoami      commands.WhoamiCmd      `cmd:"" help:"Show the current session and publication capability"`
		Search      commands.SearchCmd      `cmd:"" help:"Search active listings"`
		RegisterOrg commands.RegisterOrgCmd `cmd:"" help:"Register a real-estate agency"`
		Publish     commands.PublishCmd     `cmd:"" help:"Publish a listing with images"`
		Signout     commands.SignoutCmd     `cmd:"" help:"Sign out of the current session"`
		Debug       bool                    `help:"Enable debug mode."`
		Version     kong.VersionFlag
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))
	err := cmd.Run(&commands.Globals{Debug: cli.Debug, Version: version})
	cmd.FatalIfErrorf(err)
}
