package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"strings"
	"sync"

	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/target"
)

var (
	// ErrNotBuilt is returned when metadata is requested before Build.
	ErrNotBuilt = errors.New("assets not built yet, call Build() first")
	// ErrEntryNotFound indicates the metafile has no output for an entry.
	ErrEntryNotFound = errors.New("entrypoint not found in metadata")
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	CSSBundle  string       `json:"cssBundle"`
	Imports    []ImportInfo `json:"imports"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// BuildError carries the bundler messages for a failed target.
type BuildError struct {
	Target   target.Target
	Messages []string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("esbuild failed for %s: %s", e.Target, strings.Join(e.Messages, "; "))
}

// Pipeline builds one BuildSpec: copies, bundle and HTML shells
type Pipeline struct {
	spec     compose.BuildSpec
	opts     Options
	metadata *BuildMetadata
	funcs    template.FuncMap
	mu       sync.RWMutex
}

// New creates a new asset pipeline for the given spec
func New(spec compose.BuildSpec, opts Options) *Pipeline {
	return &Pipeline{
		spec: spec,
		opts: opts,
		funcs: template.FuncMap{
			"marshal": marshal,
			"safe": func(s string) template.HTML {
				return template.HTML(s) //nolint:gosec
			},
		},
	}
}

// Spec returns the spec this pipeline builds.
func (p *Pipeline) Spec() compose.BuildSpec {
	return p.spec
}

func marshal(value any) string {
	buf := new(bytes.Buffer)

	if err := json.NewEncoder(buf).Encode(value); err != nil {
		panic(errors.New("context can only be json serializable"))
	}

	return buf.String()
}
