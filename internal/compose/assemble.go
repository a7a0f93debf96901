// Package compose turns one project description into a complete, validated
// build specification per browser target.
//
// Composition is a pure function of its inputs apart from source directory
// existence checks: the same project and rules always produce structurally
// equal specs, and any failure aborts the whole assembly.
package compose

import (
	"slices"

	"github.com/wolfeidau/extbuild/internal/project"
	"github.com/wolfeidau/extbuild/internal/target"
)

// BuildSpec is everything the bundler needs to build one target.
type BuildSpec struct {
	Target  target.Target   `json:"target" yaml:"target"`
	Entries EntrySpec       `json:"entries" yaml:"entries"`
	Output  OutputSpec      `json:"output" yaml:"output"`
	Copies  []CopyOperation `json:"copies" yaml:"copies"`
	HTML    []HTMLOperation `json:"html" yaml:"html"`
	Env     []EnvConstant   `json:"env,omitempty" yaml:"env,omitempty"`
	Rules   TransformRules  `json:"rules" yaml:"rules"`
}

// Assemble composes one BuildSpec per target, in target.All order. The API
// base URL in runtimeValue is injected only where allowed; empty means absent.
func Assemble(cfg project.Config, rules TransformRules, runtimeValue string) ([]BuildSpec, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	specs := make([]BuildSpec, 0, len(target.All()))
	for _, t := range target.All() {
		spec, err := assembleTarget(cfg, t, rules, runtimeValue)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}

	if err := checkDistinctOutputs(specs); err != nil {
		return nil, err
	}

	return specs, nil
}

func assembleTarget(cfg project.Config, t target.Target, rules TransformRules, runtimeValue string) (BuildSpec, error) {
	sourceRoot, err := cfg.SourceRoot(t)
	if err != nil {
		return BuildSpec{}, err
	}

	entries, err := ResolveEntries(t, sourceRoot)
	if err != nil {
		return BuildSpec{}, err
	}

	plan, err := ComposeAssets(t, sourceRoot, cfg.Output, entries, PlanOptions{
		Templates: cfg.TemplatesDir(),
		GeckoID:   cfg.GeckoID,
	})
	if err != nil {
		return BuildSpec{}, err
	}

	return BuildSpec{
		Target:  t,
		Entries: entries,
		Output:  ResolveOutput(t, cfg.Output),
		Copies:  plan.Copies,
		HTML:    plan.HTML,
		Env:     ComposeEnvConstants(t, runtimeValue),
		Rules:   rules.Clone(),
	}, nil
}

// checkDistinctOutputs guards the lock free parallel builds: no two targets
// may write into the same directory tree.
func checkDistinctOutputs(specs []BuildSpec) error {
	for i := range specs {
		for j := i + 1; j < len(specs); j++ {
			a, b := specs[i].Output.Directory, specs[j].Output.Directory
			if overlaps(a, b) {
				return &CompositionError{Target: specs[j].Target, Paths: []string{a, b}, Msg: "shared output directory"}
			}
		}
	}
	return nil
}

// Plan returns the spec's asset plan.
func (s BuildSpec) Plan() AssetPlan {
	return AssetPlan{Copies: s.Copies, HTML: s.HTML}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
