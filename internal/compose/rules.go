package compose

import (
	"maps"
	"slices"
)

// Loader names how the bundler interprets files with a given extension.
type Loader string

const (
	LoaderJS   Loader = "js"
	LoaderJSX  Loader = "jsx"
	LoaderTS   Loader = "ts"
	LoaderTSX  Loader = "tsx"
	LoaderJSON Loader = "json"
	LoaderCSS  Loader = "css"
	LoaderText Loader = "text"
	LoaderFile Loader = "file"
	LoaderURL  Loader = "dataurl"
)

// JSXMode selects between classic createElement calls and the automatic runtime.
type JSXMode string

const (
	JSXTransform JSXMode = "transform"
	JSXAutomatic JSXMode = "automatic"
)

// StyleRules configure the style pipeline shared by every target.
type StyleRules struct {
	// Syntax is "scss" or "sass"
	Syntax       string   `json:"syntax" yaml:"syntax"`
	IncludePaths []string `json:"include_paths,omitempty" yaml:"include_paths,omitempty"`
	// OutputStyle is "expanded" or "compressed"
	OutputStyle string `json:"output_style" yaml:"output_style"`
}

// TransformRules is the target independent base of every BuildSpec: source
// transformation and the style pipeline. It is passed through to the bundler
// unchanged.
type TransformRules struct {
	Loaders   map[string]Loader `json:"loaders" yaml:"loaders"`
	JSX       JSXMode           `json:"jsx" yaml:"jsx"`
	Language  string            `json:"language" yaml:"language"`
	Sourcemap bool              `json:"sourcemap" yaml:"sourcemap"`
	Style     StyleRules        `json:"style" yaml:"style"`
}

// DefaultTransformRules returns the rules used by the extension project:
// React sources in .js and .jsx files and SCSS stylesheets.
func DefaultTransformRules() TransformRules {
	return TransformRules{
		Loaders: map[string]Loader{
			".js":    LoaderJSX,
			".jsx":   LoaderJSX,
			".json":  LoaderJSON,
			".css":   LoaderCSS,
			".png":   LoaderFile,
			".svg":   LoaderFile,
			".woff2": LoaderFile,
		},
		JSX:       JSXTransform,
		Language:  "es2017",
		Sourcemap: true,
		Style: StyleRules{
			Syntax:      "scss",
			OutputStyle: "expanded",
		},
	}
}

// Clone returns a deep copy so specs built from the same rules never share state.
func (r TransformRules) Clone() TransformRules {
	out := r
	out.Loaders = maps.Clone(r.Loaders)
	out.Style.IncludePaths = slices.Clone(r.Style.IncludePaths)
	return out
}
