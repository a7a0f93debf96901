package commands

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/packager"
	"github.com/wolfeidau/extbuild/internal/telemetry"
)

// PackageCmd zips already built targets and writes a report next to them.
type PackageCmd struct {
	Targets []string `name:"target" short:"t" help:"only package these targets" enum:"chrome,opera,firefox"`
	Dir     string   `help:"directory for archives (default: <output>/packages)" env:"EXTBUILD_PACKAGE_DIR"`
}

func (c *PackageCmd) Run(ctx context.Context, globals *Globals) error {
	cfg, specs, err := assemble(globals)
	if err != nil {
		return err
	}

	specs, err = selectTargets(specs, c.Targets)
	if err != nil {
		return err
	}

	opts := packager.DefaultOptions(cfg.Output)
	if c.Dir != "" {
		opts.Dir = c.Dir
	}

	return withTelemetry(ctx, globals, func(ctx context.Context) error {
		artifacts := make([]packager.Artifact, 0, len(specs))
		for _, spec := range specs {
			ctx, span := telemetry.StartSpan(ctx, "package", spec.Target.String())
			artifact, err := packager.Package(ctx, spec, opts)
			telemetry.EndSpan(span, err)
			if err != nil {
				return err
			}
			artifacts = append(artifacts, artifact)
		}

		report, err := packager.NewReport(artifacts)
		if err != nil {
			return err
		}
		path, err := packager.WriteReport(opts.Dir, report)
		if err != nil {
			return err
		}

		log.Info().Str("run_id", report.RunID).Str("report", path).Msg("Packaging complete")
		for _, a := range report.Artifacts {
			fmt.Printf("%-8s %s  crc64nvme:%s\n", a.Target, a.Path, a.Checksum)
		}
		return nil
	})
}
