package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog/log"
	"github.com/wolfeidau/extbuild/internal/compose"
	"github.com/wolfeidau/extbuild/internal/telemetry"
)

// runCopy executes one copy operation and returns the number of files
// written. written maps every destination already produced in this build to
// its source so a later operation can never overwrite an earlier one.
func (p *Pipeline) runCopy(op compose.CopyOperation, written map[string]string) (int, error) {
	info, err := os.Stat(op.Source)
	if err != nil {
		// a directory copy with nothing to copy is not an error
		if errors.Is(err, os.ErrNotExist) && op.Pattern != "" {
			log.Warn().Str("target", p.spec.Target.String()).Str("source", op.Source).Msg("Copy source missing, skipping")
			return 0, nil
		}
		return 0, fmt.Errorf("copy %s: %w", op.Source, err)
	}

	if !info.IsDir() {
		if err := p.copyFile(op.Source, op.Destination, op.Transform, written); err != nil {
			return 0, err
		}
		telemetry.GetMetrics().RecordCopies(p.spec.Target.String(), 1)
		return 1, nil
	}

	pattern := op.Pattern
	if pattern == "" {
		pattern = "**"
	}
	match, err := glob.Compile(pattern, '/')
	if err != nil {
		return 0, fmt.Errorf("invalid copy pattern %q: %w", pattern, err)
	}
	ignores := make([]glob.Glob, 0, len(op.Ignore))
	for _, ig := range op.Ignore {
		g, err := glob.Compile(ig, '/')
		if err != nil {
			return 0, fmt.Errorf("invalid ignore pattern %q: %w", ig, err)
		}
		ignores = append(ignores, g)
	}

	count := 0
	err = filepath.WalkDir(op.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(op.Source, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if !match.Match(rel) || matchAny(ignores, rel) {
			return nil
		}
		count++
		return p.copyFile(path, filepath.Join(op.Destination, filepath.FromSlash(rel)), nil, written)
	})
	if err != nil {
		return 0, err
	}

	telemetry.GetMetrics().RecordCopies(p.spec.Target.String(), count)
	return count, nil
}

func (p *Pipeline) copyFile(src, dst string, transform *compose.ManifestTransform, written map[string]string) error {
	if prev, ok := written[dst]; ok {
		return &compose.CompositionError{
			Target: p.spec.Target,
			Paths:  []string{prev, src},
			Msg:    "both copy to " + dst,
		}
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	if transform != nil {
		data, err = RewriteManifest(data, *transform)
		if err != nil {
			return fmt.Errorf("rewrite %s: %w", src, err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	// #nosec G306 - extension files are packaged and world readable
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}

	written[dst] = src
	return nil
}

func matchAny(globs []glob.Glob, path string) bool {
	for _, g := range globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}
