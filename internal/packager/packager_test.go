package packager

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/target"
)

func builtSpec(t *testing.T, tgt target.Target) compose.BuildSpec {
	t.Helper()
	root := t.TempDir()
	spec := compose.BuildSpec{
		Target: tgt,
		Output: compose.ResolveOutput(tgt, root),
		Rules:  compose.DefaultTransformRules(),
	}

	files := map[string]string{
		"manifest.json":          `{"manifest_version": 3, "name": "ext", "version": "1.2.3"}`,
		"popup.bundle.js":        `console.log("popup")`,
		"popup.bundle.js.map":    `{}`,
		"popup.html":             `<html></html>`,
		"meta.json":              `{"outputs": {}}`,
		"static/icons/icon.png":  "png",
		"static/icons/icon.svg":  "<svg/>",
		"static/nested/file.map": "{}",
	}
	for name, body := range files {
		path := filepath.Join(spec.Output.Directory, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return spec
}

func TestPackage(t *testing.T) {
	spec := builtSpec(t, target.Chrome)
	opts := DefaultOptions(filepath.Dir(spec.Output.Directory))

	artifact, err := Package(context.Background(), spec, opts)
	require.NoError(t, err)

	assert.Equal(t, target.Chrome, artifact.Target)
	assert.Equal(t, "1.2.3", artifact.Version)
	assert.Equal(t, filepath.Join(opts.Dir, "chrome-1.2.3.zip"), artifact.Path)
	assert.Len(t, artifact.Checksum, 16)
	assert.NotEmpty(t, artifact.Fingerprint)

	info, err := os.Stat(artifact.Path)
	require.NoError(t, err)
	assert.Equal(t, info.Size(), artifact.Size)

	sum, err := os.ReadFile(artifact.Path + ".crc64")
	require.NoError(t, err)
	assert.Equal(t, artifact.Checksum+"\n", string(sum))

	r, err := zip.OpenReader(artifact.Path)
	require.NoError(t, err)
	defer r.Close()

	var names []string
	for _, f := range r.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{
		"manifest.json",
		"popup.bundle.js",
		"popup.html",
		"static/icons/icon.png",
		"static/icons/icon.svg",
	}, names)
	assert.Equal(t, 5, artifact.Files)
}

func TestPackage_Reproducible(t *testing.T) {
	spec := builtSpec(t, target.Firefox)
	root := filepath.Dir(spec.Output.Directory)

	first, err := Package(context.Background(), spec, Options{Dir: filepath.Join(root, "a")})
	require.NoError(t, err)
	second, err := Package(context.Background(), spec, Options{Dir: filepath.Join(root, "b")})
	require.NoError(t, err)

	assert.Equal(t, "xpi", filepath.Ext(first.Path)[1:])
	assert.Equal(t, first.Checksum, second.Checksum)
	assert.Equal(t, first.Size, second.Size)
}

func TestPackage_NotBuilt(t *testing.T) {
	spec := compose.BuildSpec{
		Target: target.Opera,
		Output: compose.ResolveOutput(target.Opera, t.TempDir()),
	}

	_, err := Package(context.Background(), spec, DefaultOptions(t.TempDir()))
	require.ErrorIs(t, err, ErrNotBuilt)
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	report, err := NewReport([]Artifact{{Target: target.Chrome, Version: "1.0.0"}})
	require.NoError(t, err)
	assert.NotEmpty(t, report.RunID)

	path, err := WriteReport(dir, report)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ReportFile), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), report.RunID)
	assert.Contains(t, string(data), `"target": "chrome"`)
}
