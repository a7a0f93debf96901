package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/wolfeidau/extbuild/cmd/extbuild/internal/commands"
	"github.com/wolfeidau/extbuild/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		Plan    commands.PlanCmd    `cmd:"" help:"Print the build spec of every target"`
		Build   commands.BuildCmd   `cmd:"" help:"Build the extension for every target"`
		Package commands.PackageCmd `cmd:"" help:"Package built targets for distribution"`
		Config  string              `help:"Project description file." default:"extbuild.yaml" env:"EXTBUILD_CONFIG" type:"path"`
		APIURL  string              `name:"api-url" help:"API base URL compiled into targets that accept it." env:"EXTBUILD_API_URL"`
		Tracing bool                `help:"Export traces and metrics over OTLP." env:"EXTBUILD_TRACING"`
		Debug   bool                `help:"Enable debug mode."`
		Version kong.VersionFlag
	}
)

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{
		Debug:   cli.Debug,
		Version: version,
		Config:  cli.Config,
		APIURL:  cli.APIURL,
		Tracing: cli.Tracing,
	})
	cmd.FatalIfErrorf(err)
}
