package assets

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/target"
)

func TestRewriteManifest_Firefox(t *testing.T) {
	input := `{
  "manifest_version": 3,
  "name": "ext",
  "version": "1.0.0",
  "minimum_chrome_version": "100",
  "key": "abc",
  "background": {"service_worker": "background.bundle.js", "type": "module"}
}`

	out, err := RewriteManifest([]byte(input), compose.ManifestTransform{Format: target.Firefox, GeckoID: "ext@example.com"})
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, json.Unmarshal(out, &manifest))

	assert.NotContains(t, manifest, "minimum_chrome_version")
	assert.NotContains(t, manifest, "key")

	bg := manifest["background"].(map[string]any)
	assert.NotContains(t, bg, "service_worker")
	assert.Equal(t, []any{"background.bundle.js"}, bg["scripts"])
	assert.Equal(t, "module", bg["type"])

	gecko := manifest["browser_specific_settings"].(map[string]any)["gecko"].(map[string]any)
	assert.Equal(t, "ext@example.com", gecko["id"])
}

func TestRewriteManifest_KeepsExistingGeckoID(t *testing.T) {
	input := `{"manifest_version": 3, "name": "ext", "version": "1.0.0",
  "browser_specific_settings": {"gecko": {"id": "kept@example.com", "strict_min_version": "109.0"}}}`

	out, err := RewriteManifest([]byte(input), compose.ManifestTransform{Format: target.Firefox})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"id": "kept@example.com"`)
	assert.Contains(t, string(out), `"strict_min_version": "109.0"`)
}

func TestRewriteManifest_Errors(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		transform compose.ManifestTransform
	}{
		{
			name:      "not json",
			input:     `{`,
			transform: compose.ManifestTransform{Format: target.Firefox},
		},
		{
			name:      "unsupported manifest version",
			input:     `{"manifest_version": 1, "name": "ext", "version": "1"}`,
			transform: compose.ManifestTransform{Format: target.Firefox},
		},
		{
			name:      "missing name",
			input:     `{"manifest_version": 2, "version": "1"}`,
			transform: compose.ManifestTransform{Format: target.Firefox},
		},
		{
			name:      "missing version",
			input:     `{"manifest_version": 2, "name": "ext"}`,
			transform: compose.ManifestTransform{Format: target.Firefox},
		},
		{
			name:      "v3 without gecko id",
			input:     `{"manifest_version": 3, "name": "ext", "version": "1"}`,
			transform: compose.ManifestTransform{Format: target.Firefox},
		},
		{
			name:      "no rewrite for chrome",
			input:     `{"manifest_version": 3, "name": "ext", "version": "1"}`,
			transform: compose.ManifestTransform{Format: target.Chrome},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RewriteManifest([]byte(tt.input), tt.transform)
			require.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestRewriteManifest_V2WithoutGeckoID(t *testing.T) {
	out, err := RewriteManifest([]byte(`{"manifest_version": 2, "name": "ext", "version": "1"}`),
		compose.ManifestTransform{Format: target.Firefox})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "browser_specific_settings")
}
