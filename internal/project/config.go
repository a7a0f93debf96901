// Package project loads and validates the static description of an extension project.
package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/wolfeidau/extbuild/internal/target"
)

// DefaultTemplates is the directory, relative to a source root, holding HTML shells.
const DefaultTemplates = "templates"

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config is the static project description: one source root per target and a
// shared output root. All paths are absolute once returned by Load.
type Config struct {
	Sources map[target.Target]string `yaml:"sources" json:"sources" validate:"required,min=1"`
	Output  string                   `yaml:"output" json:"output" validate:"required"`
	// Add-on id written into the firefox manifest
	GeckoID string `yaml:"gecko_id,omitempty" json:"gecko_id,omitempty" validate:"omitempty,max=255"`
	// Directory of HTML templates relative to each source root
	Templates string `yaml:"templates,omitempty" json:"templates,omitempty"`
}

// SourceRoot returns the source root declared for t.
func (c Config) SourceRoot(t target.Target) (string, error) {
	root, ok := c.Sources[t]
	if !ok || root == "" {
		return "", Errorf(t, "", "missing source root")
	}
	return root, nil
}

// TemplatesDir returns the configured template directory or DefaultTemplates.
func (c Config) TemplatesDir() string {
	if c.Templates == "" {
		return DefaultTemplates
	}
	return c.Templates
}

// Validate checks that every target has an existing absolute source directory
// and that the output root is a usable absolute path. It fails on the first problem found.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return Errorf("", "", "field %s failed %q validation", verrs[0].Namespace(), verrs[0].Tag())
		}
		return Errorf("", "", "%v", err)
	}

	for t := range c.Sources {
		if !t.Valid() {
			return Errorf(t, "", "undeclared target")
		}
	}

	for _, t := range target.All() {
		root, err := c.SourceRoot(t)
		if err != nil {
			return err
		}
		if err := checkPath(root); err != nil {
			return Errorf(t, root, "invalid source root: %v", err)
		}
		if !filepath.IsAbs(root) {
			return Errorf(t, root, "source root must be absolute")
		}
		if err := CheckDir(root); err != nil {
			return &ConfigurationError{Target: t, Path: root, Msg: err.Error()}
		}
	}

	if err := checkPath(c.Output); err != nil {
		return Errorf("", c.Output, "invalid output root: %v", err)
	}
	if !filepath.IsAbs(c.Output) {
		return Errorf("", c.Output, "output root must be absolute")
	}

	if strings.ContainsAny(c.TemplatesDir(), "\x00") || filepath.IsAbs(c.TemplatesDir()) {
		return Errorf("", c.Templates, "templates must be a relative directory")
	}

	return nil
}

// CheckDir reports why path is not an existing directory, or nil.
func CheckDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errors.New("source root does not exist")
		}
		return fmt.Errorf("failed to stat source root: %w", err)
	}
	if !info.IsDir() {
		return errors.New("source root is not a directory")
	}
	return nil
}

func checkPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("empty path")
	}
	if strings.ContainsRune(path, 0) {
		return errors.New("path contains NUL byte")
	}
	return nil
}
