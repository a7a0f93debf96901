package compose

import (
	"path/filepath"
	"slices"
	"strings"

	"github.com/wolfeidau/extbuild/internal/target"
)

const (
	// ManifestFile is the extension manifest at the root of every source tree.
	ManifestFile = "manifest.json"
	// StaticDir holds icons and images copied verbatim.
	StaticDir = "static"
)

// ManifestTransform asks the copy step to rewrite a manifest for a browser's
// packaging format before writing it.
type ManifestTransform struct {
	Format  target.Target `json:"format" yaml:"format"`
	GeckoID string        `json:"gecko_id,omitempty" yaml:"gecko_id,omitempty"`
}

// CopyOperation places a static or transformed file at Destination. When
// Source is a directory, files matching Pattern (relative to Source) are
// copied below Destination, skipping any that match Ignore.
type CopyOperation struct {
	Source      string             `json:"source" yaml:"source"`
	Pattern     string             `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Ignore      []string           `json:"ignore,omitempty" yaml:"ignore,omitempty"`
	Destination string             `json:"destination" yaml:"destination"`
	Transform   *ManifestTransform `json:"transform,omitempty" yaml:"transform,omitempty"`
}

// HTMLOperation renders one HTML shell that loads an entry's bundle.
type HTMLOperation struct {
	Entry       string `json:"entry" yaml:"entry"`
	Template    string `json:"template" yaml:"template"`
	Filename    string `json:"filename" yaml:"filename"`
	Destination string `json:"destination" yaml:"destination"`
	Title       string `json:"title" yaml:"title"`
}

// AssetPlan is the ordered copy and HTML generation work for one target.
type AssetPlan struct {
	Copies []CopyOperation `json:"copies" yaml:"copies"`
	HTML   []HTMLOperation `json:"html" yaml:"html"`
}

// PlanOptions carries the project settings the asset plan depends on.
type PlanOptions struct {
	Templates string
	GeckoID   string
}

// entries rendered into a page, with their page titles
var uiEntries = map[string]string{
	"popup":   "Popup",
	"options": "Options",
}

// ComposeAssets builds the copy and HTML plan for t. Firefox gets a manifest
// rewrite that runs before any other copy into its output directory; chrome
// and opera copy the manifest verbatim.
func ComposeAssets(t target.Target, sourceRoot, outputRoot string, entries EntrySpec, opts PlanOptions) (AssetPlan, error) {
	outDir := ResolveOutput(t, outputRoot).Directory

	var plan AssetPlan
	for _, name := range entries.Names() {
		title, ok := uiEntries[name]
		if !ok {
			continue
		}
		filename := name + ".html"
		plan.HTML = append(plan.HTML, HTMLOperation{
			Entry:       name,
			Template:    filepath.Join(sourceRoot, opts.Templates, filename),
			Filename:    filename,
			Destination: filepath.Join(outDir, filename),
			Title:       title,
		})
	}

	manifest := CopyOperation{
		Source:      filepath.Join(sourceRoot, ManifestFile),
		Destination: filepath.Join(outDir, ManifestFile),
	}
	static := CopyOperation{
		Source:      filepath.Join(sourceRoot, StaticDir),
		Pattern:     "**",
		Destination: filepath.Join(outDir, StaticDir),
	}

	if t == target.Firefox {
		manifest.Transform = &ManifestTransform{Format: t, GeckoID: opts.GeckoID}
		static.Ignore = []string{ManifestFile, "**/" + ManifestFile}
	}
	plan.Copies = []CopyOperation{manifest, static}

	if err := ValidatePlan(t, plan); err != nil {
		return AssetPlan{}, err
	}
	return plan, nil
}

// ValidatePlan fails when two operations of one plan write to the same path,
// or one writes inside a directory another one owns.
func ValidatePlan(t target.Target, plan AssetPlan) error {
	dests := make([]string, 0, len(plan.Copies)+len(plan.HTML))
	for _, c := range plan.Copies {
		dests = append(dests, filepath.Clean(c.Destination))
	}
	for _, h := range plan.HTML {
		dests = append(dests, filepath.Clean(h.Destination))
	}

	for i := range dests {
		for j := i + 1; j < len(dests); j++ {
			if overlaps(dests[i], dests[j]) {
				return &CompositionError{
					Target: t,
					Paths:  []string{dests[i], dests[j]},
					Msg:    "overlapping destinations",
				}
			}
		}
	}
	return nil
}

func overlaps(a, b string) bool {
	if a == b {
		return true
	}
	sep := string(filepath.Separator)
	return strings.HasPrefix(a, b+sep) || strings.HasPrefix(b, a+sep)
}

// Transformed reports whether any copy in the plan rewrites its source.
func (p AssetPlan) Transformed() bool {
	return slices.ContainsFunc(p.Copies, func(c CopyOperation) bool {
		return c.Transform != nil
	})
}
