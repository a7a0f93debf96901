package assets

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/target"
)

// ErrInvalidManifest indicates a manifest that cannot be packaged for the requested browser
var ErrInvalidManifest = errors.New("invalid manifest")

// keys only chromium based browsers understand
var chromeOnlyKeys = []string{"minimum_chrome_version", "update_url", "key"}

// RewriteManifest validates a manifest.json and rewrites it for the
// packaging format named by the transform.
func RewriteManifest(data []byte, transform compose.ManifestTransform) ([]byte, error) {
	var manifest map[string]any
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}

	version, err := validateManifest(manifest)
	if err != nil {
		return nil, err
	}

	switch transform.Format {
	case target.Firefox:
		if err := rewriteForFirefox(manifest, version, transform.GeckoID); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: no rewrite for %q", ErrInvalidManifest, transform.Format)
	}

	out, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

func validateManifest(manifest map[string]any) (int, error) {
	mv, ok := manifest["manifest_version"].(float64)
	if !ok || (mv != 2 && mv != 3) {
		return 0, fmt.Errorf("%w: manifest_version must be 2 or 3", ErrInvalidManifest)
	}
	for _, key := range []string{"name", "version"} {
		if s, ok := manifest[key].(string); !ok || s == "" {
			return 0, fmt.Errorf("%w: missing %s", ErrInvalidManifest, key)
		}
	}
	return int(mv), nil
}

func rewriteForFirefox(manifest map[string]any, version int, geckoID string) error {
	for _, key := range chromeOnlyKeys {
		delete(manifest, key)
	}

	// firefox runs background scripts, not service workers
	if bg, ok := manifest["background"].(map[string]any); ok {
		if sw, ok := bg["service_worker"].(string); ok {
			delete(bg, "service_worker")
			bg["scripts"] = []any{sw}
		}
	}

	settings, _ := manifest["browser_specific_settings"].(map[string]any)
	if settings == nil {
		settings = map[string]any{}
	}
	gecko, _ := settings["gecko"].(map[string]any)
	if gecko == nil {
		gecko = map[string]any{}
	}
	if geckoID != "" {
		gecko["id"] = geckoID
	}

	if id, _ := gecko["id"].(string); id == "" {
		if version == 3 {
			return fmt.Errorf("%w: manifest v3 requires browser_specific_settings.gecko.id", ErrInvalidManifest)
		}
		return nil
	}

	settings["gecko"] = gecko
	manifest["browser_specific_settings"] = settings
	return nil
}
