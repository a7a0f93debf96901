package commands

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/project"
	"github.com/wolfeidau/extbuild/internal/target"
	"github.com/wolfeidau/extbuild/internal/telemetry"
)

type Globals struct {
	Debug   bool
	Version string
	// Path to the project description
	Config string
	// API base URL injected where allowed, empty for none
	APIURL  string
	Tracing bool
}

// assemble loads the project and composes every target's spec.
func assemble(globals *Globals) (*project.Config, []compose.BuildSpec, error) {
	cfg, err := project.Load(globals.Config)
	if err != nil {
		return nil, nil, err
	}

	specs, err := compose.Assemble(*cfg, compose.DefaultTransformRules(), globals.APIURL)
	if err != nil {
		return nil, nil, err
	}

	for _, spec := range specs {
		fingerprint, err := compose.Fingerprint(spec)
		if err != nil {
			return nil, nil, err
		}
		log.Debug().
			Str("target", spec.Target.String()).
			Str("dir", spec.Output.Directory).
			Str("fingerprint", fingerprint).
			Int("env", len(spec.Env)).
			Msg("composed build spec")
	}

	return cfg, specs, nil
}

// selectTargets keeps the specs named in names, all of them when names is empty.
func selectTargets(specs []compose.BuildSpec, names []string) ([]compose.BuildSpec, error) {
	if len(names) == 0 {
		return specs, nil
	}

	wanted := make([]target.Target, 0, len(names))
	for _, name := range names {
		t, err := target.Parse(name)
		if err != nil {
			return nil, err
		}
		wanted = append(wanted, t)
	}

	var out []compose.BuildSpec
	for _, spec := range specs {
		if slices.Contains(wanted, spec.Target) {
			out = append(out, spec)
		}
	}
	return out, nil
}

// withTelemetry runs fn with OpenTelemetry exporters when tracing is enabled.
func withTelemetry(ctx context.Context, globals *Globals, fn func(context.Context) error) error {
	if !globals.Tracing {
		return fn(ctx)
	}

	shutdown, err := telemetry.InitTelemetry(ctx, "extbuild", globals.Version)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}()

	return fn(ctx)
}
