package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/target"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. The camel case keys are the legacy
// config.json layout, accepted so existing projects keep working.
type fileConfig struct {
	Sources   map[string]string `yaml:"sources"`
	Output    string            `yaml:"output"`
	GeckoID   string            `yaml:"gecko_id"`
	Templates string            `yaml:"templates"`

	ChromePath   string `yaml:"chromePath"`
	OperaPath    string `yaml:"operaPath"`
	FirefoxPath  string `yaml:"firefoxPath"`
	DevDirectory string `yaml:"devDirectory"`
}

// Load reads the project description at path, resolves relative paths against
// the file's directory and validates the result. Either every source root and
// the output root resolve, or an error is returned and no Config.
func Load(path string) (*Config, error) {
	if err := checkPath(path); err != nil {
		return nil, Errorf("", path, "invalid config path: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, Errorf("", path, "config file not found")
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var raw fileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, Errorf("", path, "failed to parse config: %v", err)
	}

	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}

	cfg, err := raw.resolve(base)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("config", path).
		Str("output", cfg.Output).
		Msg("loaded project config")

	return cfg, nil
}

func (f fileConfig) resolve(base string) (*Config, error) {
	cfg := &Config{
		Sources:   make(map[target.Target]string, len(target.All())),
		Output:    f.Output,
		GeckoID:   f.GeckoID,
		Templates: f.Templates,
	}

	for name, root := range f.Sources {
		t, err := target.Parse(name)
		if err != nil {
			return nil, Errorf("", name, "%v", err)
		}
		cfg.Sources[t] = root
	}

	legacy := map[target.Target]string{
		target.Chrome:  f.ChromePath,
		target.Opera:   f.OperaPath,
		target.Firefox: f.FirefoxPath,
	}
	for t, root := range legacy {
		if root == "" {
			continue
		}
		if existing, ok := cfg.Sources[t]; ok && existing != root {
			return nil, Errorf(t, root, "source root declared twice (%q)", existing)
		}
		cfg.Sources[t] = root
	}

	if cfg.Output == "" {
		cfg.Output = f.DevDirectory
	}

	for t, root := range cfg.Sources {
		cfg.Sources[t] = absolute(base, root)
	}
	cfg.Output = absolute(base, cfg.Output)

	return cfg, nil
}

// absolute joins relative paths onto base. Blank values are returned as is so
// validation can report them as missing.
func absolute(base, path string) string {
	if strings.TrimSpace(path) == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
