package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/assets"
	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/telemetry"
	"golang.org/x/sync/errgroup"
)

// BuildCmd bundles every selected target into its output directory.
type BuildCmd struct {
	Targets    []string `name:"target" short:"t" help:"only build these targets" enum:"chrome,opera,firefox"`
	Sequential bool     `help:"build targets one after another"`
	Minify     bool     `help:"minify bundles" env:"EXTBUILD_MINIFY"`
	SassBinary string   `help:"path to the dart-sass binary used for SCSS" env:"EXTBUILD_SASS_BINARY"`
}

func (c *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	_, specs, err := assemble(globals)
	if err != nil {
		return err
	}

	specs, err = selectTargets(specs, c.Targets)
	if err != nil {
		return err
	}

	runID, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("failed to generate run id: %w", err)
	}

	sass := assets.NewSassCompiler(c.SassBinary)
	defer func() {
		if err := sass.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to stop dart-sass")
		}
	}()

	opts := assets.DefaultOptions()
	opts.Minify = c.Minify
	opts.Sass = sass

	return withTelemetry(ctx, globals, func(ctx context.Context) error {
		started := time.Now()
		if err := c.buildAll(ctx, specs, opts); err != nil {
			return err
		}
		log.Info().
			Str("run_id", runID.String()).
			Int("targets", len(specs)).
			Dur("duration", time.Since(started)).
			Msg("Build complete")
		return nil
	})
}

// buildAll runs the specs in parallel unless sequential builds were asked
// for. Output directories never overlap so no locking is needed.
func (c *BuildCmd) buildAll(ctx context.Context, specs []compose.BuildSpec, opts assets.Options) error {
	g, gctx := errgroup.WithContext(ctx)
	if c.Sequential {
		g.SetLimit(1)
	}

	for _, spec := range specs {
		g.Go(func() error {
			return buildTarget(gctx, spec, opts)
		})
	}

	return g.Wait()
}

func buildTarget(ctx context.Context, spec compose.BuildSpec, opts assets.Options) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "build", spec.Target.String())
	started := time.Now()
	defer func() {
		telemetry.GetMetrics().RecordBuild(ctx, spec.Target.String(), started, err)
		telemetry.EndSpan(span, err)
	}()

	if err := assets.New(spec, opts).Build(ctx); err != nil {
		return fmt.Errorf("build %s: %w", spec.Target, err)
	}
	return nil
}
