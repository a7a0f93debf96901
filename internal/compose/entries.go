package compose

import (
	"path/filepath"

	"github.com/wolfeidau/extbuild/internal/project"
	"github.com/wolfeidau/extbuild/internal/target"
)

// EntrySpec maps entry names to absolute module paths. Each entry is an
// independent compilation root.
type EntrySpec map[string]string

// Names returns the entry names in sorted order.
func (e EntrySpec) Names() []string {
	return sortedKeys(e)
}

type entry struct {
	name   string
	module string
}

var primaryEntrySet = []entry{
	{name: "background", module: "background/index.js"},
	{name: "content", module: "content/index.js"},
	{name: "popup", module: "popup/index.jsx"},
	{name: "options", module: "options/index.jsx"},
}

// the shared extension bootstrap
var genericEntrySet = []entry{
	{name: "popup", module: "index.jsx"},
}

// ResolveEntries returns the named entry modules for t under sourceRoot. The
// primary target gets background, content, popup and options entries, every
// other target the single generic bootstrap entry.
func ResolveEntries(t target.Target, sourceRoot string) (EntrySpec, error) {
	if !t.Valid() {
		return nil, project.Errorf(t, sourceRoot, "unknown target")
	}
	if err := project.CheckDir(sourceRoot); err != nil {
		return nil, &project.ConfigurationError{Target: t, Path: sourceRoot, Msg: err.Error()}
	}

	if t.Primary() {
		return resolve(sourceRoot, primaryEntrySet), nil
	}
	return genericEntries(sourceRoot), nil
}

func genericEntries(sourceRoot string) EntrySpec {
	return resolve(sourceRoot, genericEntrySet)
}

func resolve(sourceRoot string, set []entry) EntrySpec {
	spec := make(EntrySpec, len(set))
	for _, e := range set {
		spec[e.name] = filepath.Join(sourceRoot, filepath.FromSlash(e.module))
	}
	return spec
}
