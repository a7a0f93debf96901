package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/compose"
)

const processEnv = "process.env"

var loaders = map[compose.Loader]api.Loader{
	compose.LoaderJS:   api.LoaderJS,
	compose.LoaderJSX:  api.LoaderJSX,
	compose.LoaderTS:   api.LoaderTS,
	compose.LoaderTSX:  api.LoaderTSX,
	compose.LoaderJSON: api.LoaderJSON,
	compose.LoaderCSS:  api.LoaderCSS,
	compose.LoaderText: api.LoaderText,
	compose.LoaderFile: api.LoaderFile,
	compose.LoaderURL:  api.LoaderDataURL,
}

var languages = map[string]api.Target{
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
	"esnext": api.ESNext,
}

// Build copies static assets, bundles the entries with esbuild and renders
// the HTML shells. The output directory is recreated from scratch.
func (p *Pipeline) Build(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	outDir := p.spec.Output.Directory
	logger := log.With().Str("target", p.spec.Target.String()).Str("dir", outDir).Logger()

	if err := os.RemoveAll(outDir); err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	written := map[string]string{}
	for _, op := range p.spec.Copies {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := p.runCopy(op, written)
		if err != nil {
			return err
		}
		logger.Debug().Str("source", op.Source).Int("files", n).Msg("Copied assets")
	}

	options, err := p.buildOptions()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	logger.Info().Strs("entrypoints", p.spec.Entries.Names()).Msg("Building assets")

	result := api.Build(options)

	if len(result.Errors) > 0 {
		buildErr := &BuildError{Target: p.spec.Target}
		for _, msg := range result.Errors {
			logger.Error().Str("error", msg.Text).Msg("Build error")
			buildErr.Messages = append(buildErr.Messages, formatMessage(msg))
		}
		return buildErr
	}

	for _, msg := range result.Warnings {
		logger.Warn().Str("warning", msg.Text).Msg("Build warning")
	}

	for _, file := range result.OutputFiles {
		logger.Debug().Str("file", file.Path).Msg("Built file")
	}

	// Write metafile
	if err := os.WriteFile(filepath.Join(outDir, p.opts.MetafileName), []byte(result.Metafile), 0o600); err != nil {
		return err
	}

	// Parse and cache metadata
	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(result.Metafile), &metadata); err != nil {
		return err
	}
	p.metadata = &metadata

	for _, op := range p.spec.HTML {
		if err := p.renderHTML(op, written); err != nil {
			return err
		}
	}

	logger.Info().Int("files", len(written)+len(result.OutputFiles)).Msg("Built target")
	return nil
}

func (p *Pipeline) buildOptions() (api.BuildOptions, error) {
	rules := p.spec.Rules

	loader := make(map[string]api.Loader, len(rules.Loaders))
	for ext, name := range rules.Loaders {
		l, ok := loaders[name]
		if !ok {
			return api.BuildOptions{}, fmt.Errorf("unknown loader %q for %s", name, ext)
		}
		loader[ext] = l
	}

	language, ok := languages[strings.ToLower(rules.Language)]
	if !ok {
		return api.BuildOptions{}, fmt.Errorf("unknown language target %q", rules.Language)
	}

	entryPoints := make([]api.EntryPoint, 0, len(p.spec.Entries))
	for _, name := range p.spec.Entries.Names() {
		entryPoints = append(entryPoints, api.EntryPoint{
			InputPath:  p.spec.Entries[name],
			OutputPath: strings.TrimSuffix(p.spec.Output.Filename(name), ".js"),
		})
	}

	return api.BuildOptions{
		EntryPointsAdvanced: entryPoints,
		AbsWorkingDir:       p.spec.Output.Directory,
		Outdir:              p.spec.Output.Directory,
		Bundle:              true,
		Write:               true,
		Format:              api.FormatIIFE,
		Platform:            api.PlatformBrowser,
		Target:              language,
		JSX:                 cond(rules.JSX == compose.JSXAutomatic, api.JSXAutomatic, api.JSXTransform),
		Loader:              loader,
		Define:              defines(p.spec.Env),
		MinifyWhitespace:    p.opts.Minify,
		MinifyIdentifiers:   p.opts.Minify,
		MinifySyntax:        p.opts.Minify,
		Sourcemap:           cond(rules.Sourcemap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:            true,
		LogLevel:            api.LogLevelSilent,
		Plugins:             []api.Plugin{sassPlugin(p.opts.Sass, rules.Style)},
	}, nil
}

// LoadScripts returns the script and stylesheet paths, relative to the output
// directory, that the named entry needs, main bundle first.
func (p *Pipeline) LoadScripts(entry string) ([]string, []string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loadScripts(entry)
}

func (p *Pipeline) loadScripts(entry string) ([]string, []string, error) {
	if p.metadata == nil {
		return nil, nil, ErrNotBuilt
	}

	module, ok := p.spec.Entries[entry]
	if !ok {
		return nil, nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
	}
	rel, err := filepath.Rel(p.spec.Output.Directory, module)
	if err != nil {
		return nil, nil, err
	}
	entryPointPath := filepath.ToSlash(rel)

	scripts := []string{}
	styles := []string{}
	visited := make(map[string]bool)

	// Find the output file for this entrypoint
	for _, outputPath := range slices.Sorted(maps.Keys(p.metadata.Outputs)) {
		info := p.metadata.Outputs[outputPath]
		if info.EntryPoint != entryPointPath || !strings.HasSuffix(outputPath, ".js") {
			continue
		}
		scripts = append(scripts, outputPath)
		visited[outputPath] = true
		p.addDependencies(info, &scripts, visited)
		if info.CSSBundle != "" {
			styles = append(styles, info.CSSBundle)
		}
		return scripts, styles, nil
	}

	return nil, nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}

func (p *Pipeline) addDependencies(output OutputInfo, scripts *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if imp.Kind == "file-loader" || !strings.HasSuffix(imp.Path, ".js") {
			continue
		}
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*scripts = append(*scripts, imp.Path)

			if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
				p.addDependencies(chunkInfo, scripts, visited)
			}
		}
	}
}

// defines maps the injected constants and points any other process.env
// lookup at an empty object, so withheld constants read as undefined
// instead of failing on the missing process global.
func defines(env []compose.EnvConstant) map[string]string {
	define := compose.Defines(env)
	if define == nil {
		define = map[string]string{}
	}
	define[processEnv] = "{}"
	return define
}

func formatMessage(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}
	return fmt.Sprintf("%s:%d:%d: %s", msg.Location.File, msg.Location.Line, msg.Location.Column, msg.Text)
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
