package compose

import (
	"path/filepath"
	"strings"

	"github.com/wolfeidau/extbuild/internal/target"
)

// FilenamePattern is the bundle naming convention shared by every target.
const FilenamePattern = "[name].bundle.js"

// OutputSpec is where a target's bundle is written.
type OutputSpec struct {
	Directory       string `json:"directory" yaml:"directory"`
	FilenamePattern string `json:"filename_pattern" yaml:"filename_pattern"`
}

// ResolveOutput places t's bundle in outputRoot/<target>.
func ResolveOutput(t target.Target, outputRoot string) OutputSpec {
	return OutputSpec{
		Directory:       filepath.Join(outputRoot, strings.ToLower(t.String())),
		FilenamePattern: FilenamePattern,
	}
}

// Filename expands the pattern for the named entry.
func (o OutputSpec) Filename(entry string) string {
	return strings.ReplaceAll(o.FilenamePattern, "[name]", entry)
}
