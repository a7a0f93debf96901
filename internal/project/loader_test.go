package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/extbuild/internal/target"
)

func writeProject(t *testing.T, dir string, sources ...string) {
	t.Helper()
	for _, src := range sources {
		require.NoError(t, os.MkdirAll(filepath.Join(dir, src), 0o755))
	}
}

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "src/chrome", "src/opera", "src/firefox")

	configPath := filepath.Join(dir, "extbuild.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
sources:
  chrome: src/chrome
  opera: src/opera
  firefox: src/firefox
output: dist
gecko_id: ext@example.com
`), 0o600))

	cfg, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "src/chrome"), cfg.Sources[target.Chrome])
	assert.Equal(t, filepath.Join(dir, "src/opera"), cfg.Sources[target.Opera])
	assert.Equal(t, filepath.Join(dir, "src/firefox"), cfg.Sources[target.Firefox])
	assert.Equal(t, filepath.Join(dir, "dist"), cfg.Output)
	assert.Equal(t, "ext@example.com", cfg.GeckoID)
	assert.Equal(t, DefaultTemplates, cfg.TemplatesDir())
}

func TestLoad_LegacyJSON(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "chrome", "opera", "firefox")

	configPath := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(configPath, []byte(`{
  "chromePath": "chrome",
  "operaPath": "opera",
  "firefoxPath": "firefox",
  "devDirectory": "dev"
}`), 0o600))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Len(t, cfg.Sources, 3)
	assert.Equal(t, filepath.Join(dir, "dev"), cfg.Output)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		dirs    []string
		files   map[string]string
		content string
		target  target.Target
	}{
		{
			name: "missing secondary source root",
			dirs: []string{"chrome", "firefox"},
			content: `
sources: {chrome: chrome, firefox: firefox}
output: dist
`,
			target: target.Opera,
		},
		{
			name: "source root does not exist",
			dirs: []string{"chrome", "opera"},
			content: `
sources: {chrome: chrome, opera: opera, firefox: nope}
output: dist
`,
			target: target.Firefox,
		},
		{
			name:  "source root is a file",
			dirs:  []string{"chrome", "opera"},
			files: map[string]string{"firefox": "not a dir"},
			content: `
sources: {chrome: chrome, opera: opera, firefox: firefox}
output: dist
`,
			target: target.Firefox,
		},
		{
			name: "missing output root",
			dirs: []string{"chrome", "opera", "firefox"},
			content: `
sources: {chrome: chrome, opera: opera, firefox: firefox}
`,
		},
		{
			name: "blank output root",
			dirs: []string{"chrome", "opera", "firefox"},
			content: `
sources: {chrome: chrome, opera: opera, firefox: firefox}
output: "   "
`,
		},
		{
			name: "unknown target",
			dirs: []string{"chrome", "opera", "firefox"},
			content: `
sources: {chrome: chrome, opera: opera, firefox: firefox, safari: safari}
output: dist
`,
		},
		{
			name: "conflicting legacy key",
			dirs: []string{"chrome", "opera", "firefox", "other"},
			content: `
sources: {chrome: chrome, opera: opera, firefox: firefox}
chromePath: other
output: dist
`,
			target: target.Chrome,
		},
		{
			name:    "malformed yaml",
			content: "sources: [",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeProject(t, dir, tt.dirs...)
			for name, body := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
			}
			configPath := filepath.Join(dir, "extbuild.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o600))

			cfg, err := Load(configPath)
			require.ErrorIs(t, err, ErrConfiguration)
			require.Nil(t, cfg)

			var cerr *ConfigurationError
			require.ErrorAs(t, err, &cerr)
			if tt.target != "" {
				assert.Equal(t, tt.target, cerr.Target)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestConfigurationError_Message(t *testing.T) {
	err := Errorf(target.Opera, "/src/opera", "missing source root")
	assert.Equal(t, `configuration error: target opera: path "/src/opera": missing source root`, err.Error())
}

func TestValidate_RelativeRoots(t *testing.T) {
	dir := t.TempDir()
	writeProject(t, dir, "chrome", "opera", "firefox")

	valid := func() Config {
		return Config{
			Sources: map[target.Target]string{
				target.Chrome:  filepath.Join(dir, "chrome"),
				target.Opera:   filepath.Join(dir, "opera"),
				target.Firefox: filepath.Join(dir, "firefox"),
			},
			Output: filepath.Join(dir, "dist"),
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		target target.Target
		path   string
	}{
		{
			name:   "relative output root",
			modify: func(c *Config) { c.Output = "dist" },
			path:   "dist",
		},
		{
			name:   "relative source root",
			modify: func(c *Config) { c.Sources[target.Opera] = "opera" },
			target: target.Opera,
			path:   "opera",
		},
		{
			name:   "blank output root",
			modify: func(c *Config) { c.Output = "   " },
			path:   "   ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(&cfg)

			err := cfg.Validate()
			var cerr *ConfigurationError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.target, cerr.Target)
			assert.Equal(t, tt.path, cerr.Path)
		})
	}
}
