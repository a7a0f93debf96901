// Package packager turns a built target directory into the archive a browser
// store accepts.
package packager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/gobwas/glob"
	"github.com/klauspost/compress/zip"
	"github.com/minio/crc64nvme"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/target"
	"github.com/wolfeidau/extbuild/internal/telemetry"
)

// ErrNotBuilt indicates the target output directory has no manifest to package.
var ErrNotBuilt = errors.New("target output not built")

// zip timestamps are fixed so the same output always yields the same archive
var epoch = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

type Options struct {
	// Directory archives are written to
	Dir string
	// Globs, relative to the output directory, left out of the archive
	Exclude []string
}

// DefaultOptions writes archives to outputRoot/packages and leaves out the
// esbuild metafile and source maps.
func DefaultOptions(outputRoot string) Options {
	return Options{
		Dir:     filepath.Join(outputRoot, "packages"),
		Exclude: []string{"meta.json", "**.map"},
	}
}

// Artifact describes one written archive.
type Artifact struct {
	Target      target.Target `json:"target"`
	Path        string        `json:"path"`
	Version     string        `json:"version"`
	Size        int64         `json:"size"`
	Checksum    string        `json:"crc64nvme"`
	Fingerprint string        `json:"fingerprint"`
	Files       int           `json:"files"`
}

// Package zips spec's output directory into opts.Dir and writes a CRC64-NVME
// checksum file next to it.
func Package(ctx context.Context, spec compose.BuildSpec, opts Options) (Artifact, error) {
	outDir := spec.Output.Directory

	version, err := manifestVersion(filepath.Join(outDir, compose.ManifestFile))
	if err != nil {
		return Artifact{}, fmt.Errorf("package %s: %w", spec.Target, err)
	}

	files, err := collect(outDir, opts.Exclude)
	if err != nil {
		return Artifact{}, fmt.Errorf("package %s: %w", spec.Target, err)
	}

	fingerprint, err := compose.Fingerprint(spec)
	if err != nil {
		return Artifact{}, err
	}

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return Artifact{}, fmt.Errorf("failed to create package directory: %w", err)
	}

	archivePath := filepath.Join(opts.Dir, fmt.Sprintf("%s-%s.%s", spec.Target, version, extension(spec.Target)))
	size, sum, err := writeArchive(archivePath, outDir, files)
	if err != nil {
		os.Remove(archivePath) // Clean up partial file
		return Artifact{}, err
	}

	checksum := fmt.Sprintf("%016x", sum)
	// #nosec G306 - checksums are published alongside the archive
	if err := os.WriteFile(archivePath+".crc64", []byte(checksum+"\n"), 0o644); err != nil {
		return Artifact{}, fmt.Errorf("failed to write checksum: %w", err)
	}

	telemetry.GetMetrics().RecordPackage(ctx, spec.Target.String(), size)

	log.Info().
		Str("target", spec.Target.String()).
		Str("archive", archivePath).
		Str("crc64nvme", checksum).
		Int("files", len(files)).
		Msg("Packaged extension")

	return Artifact{
		Target:      spec.Target,
		Path:        archivePath,
		Version:     version,
		Size:        size,
		Checksum:    checksum,
		Fingerprint: fingerprint,
		Files:       len(files),
	}, nil
}

func extension(t target.Target) string {
	if t == target.Firefox {
		return "xpi"
	}
	return "zip"
}

func manifestVersion(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s missing", ErrNotBuilt, compose.ManifestFile)
		}
		return "", err
	}

	var manifest struct {
		Version string `json:"version"`
	}
	if err := json.Unmarshal(data, &manifest); err != nil {
		return "", fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Version == "" {
		return "", errors.New("manifest has no version")
	}
	return manifest.Version, nil
}

// collect returns the slash separated paths under dir, sorted.
func collect(dir string, exclude []string) ([]string, error) {
	ignores := make([]glob.Glob, 0, len(exclude))
	for _, pattern := range exclude {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		ignores = append(ignores, g)
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, g := range ignores {
			if g.Match(rel) {
				return nil
			}
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}

func writeArchive(archivePath, dir string, files []string) (int64, uint64, error) {
	dst, err := os.Create(archivePath)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to create archive: %w", err)
	}
	defer dst.Close()

	h := crc64nvme.New()
	counter := &countingWriter{}
	zw := zip.NewWriter(io.MultiWriter(dst, h, counter))

	for _, rel := range files {
		header := &zip.FileHeader{
			Name:     rel,
			Method:   zip.Deflate,
			Modified: epoch,
		}
		header.SetMode(0o644)

		w, err := zw.CreateHeader(header)
		if err != nil {
			return 0, 0, fmt.Errorf("failed to add %s: %w", rel, err)
		}
		if err := copyInto(w, filepath.Join(dir, filepath.FromSlash(rel))); err != nil {
			return 0, 0, fmt.Errorf("failed to add %s: %w", rel, err)
		}
	}

	// Close writer to flush the central directory
	if err := zw.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to finish archive: %w", err)
	}
	if err := dst.Close(); err != nil {
		return 0, 0, fmt.Errorf("failed to close archive: %w", err)
	}

	return counter.n, h.Sum64(), nil
}

func copyInto(w io.Writer, path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()
	_, err = io.Copy(w, src)
	return err
}

type countingWriter struct {
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	c.n += int64(len(p))
	return len(p), nil
}
