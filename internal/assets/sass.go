package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bep/godartsass/v2"
	"github.com/evanw/esbuild/pkg/api"
	"github.com/wolfeidau/extbuild/internal/compose"
)

// ErrSassUnavailable is returned when a stylesheet needs compiling but no
// dart-sass binary was configured.
var ErrSassUnavailable = errors.New("no dart-sass binary configured, set --sass-binary")

// SassCompiler lazily starts one dart-sass process shared by every pipeline.
type SassCompiler struct {
	binary     string
	once       sync.Once
	transpiler *godartsass.Transpiler
	err        error
}

// NewSassCompiler returns a compiler that runs the given dart-sass binary on
// first use. An empty binary makes every compile fail with ErrSassUnavailable.
func NewSassCompiler(binary string) *SassCompiler {
	return &SassCompiler{binary: binary}
}

func (s *SassCompiler) start() (*godartsass.Transpiler, error) {
	if s == nil {
		return nil, ErrSassUnavailable
	}
	s.once.Do(func() {
		if s.binary == "" {
			s.err = ErrSassUnavailable
			return
		}
		s.transpiler, s.err = godartsass.Start(godartsass.Options{
			DartSassEmbeddedFilename: s.binary,
		})
	})
	return s.transpiler, s.err
}

// Compile turns a stylesheet into CSS.
func (s *SassCompiler) Compile(path string, rules compose.StyleRules) (string, error) {
	transpiler, err := s.start()
	if err != nil {
		return "", err
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	result, err := transpiler.Execute(godartsass.Args{
		Source:       string(source),
		IncludePaths: append([]string{filepath.Dir(path)}, rules.IncludePaths...),
		OutputStyle:  outputStyle(rules.OutputStyle),
		SourceSyntax: sourceSyntax(path, rules.Syntax),
	})
	if err != nil {
		return "", fmt.Errorf("sass %s: %w", path, err)
	}
	return result.CSS, nil
}

// Close stops the dart-sass process if it was started.
func (s *SassCompiler) Close() error {
	if s == nil || s.transpiler == nil {
		return nil
	}
	return s.transpiler.Close()
}

func outputStyle(style string) godartsass.OutputStyle {
	if strings.EqualFold(style, "compressed") {
		return godartsass.OutputStyleCompressed
	}
	return godartsass.OutputStyleExpanded
}

func sourceSyntax(path, syntax string) godartsass.SourceSyntax {
	switch {
	case strings.HasSuffix(path, ".sass"):
		return godartsass.SourceSyntaxSASS
	case strings.HasSuffix(path, ".scss"):
		return godartsass.SourceSyntaxSCSS
	case strings.EqualFold(syntax, "sass"):
		return godartsass.SourceSyntaxSASS
	default:
		return godartsass.SourceSyntaxSCSS
	}
}

func sassPlugin(compiler *SassCompiler, rules compose.StyleRules) api.Plugin {
	return api.Plugin{
		Name: "sass",
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: `\.s[ac]ss$`}, func(args api.OnLoadArgs) (api.OnLoadResult, error) {
				css, err := compiler.Compile(args.Path, rules)
				if err != nil {
					return api.OnLoadResult{}, err
				}
				return api.OnLoadResult{
					Contents:   &css,
					Loader:     api.LoaderCSS,
					ResolveDir: filepath.Dir(args.Path),
				}, nil
			})
		},
	}
}
