package project

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wolfeidau/extbuild/internal/target"
)

// ErrConfiguration is the kind of every error caused by a bad project description.
var ErrConfiguration = errors.New("configuration error")

// ConfigurationError reports a missing or invalid source root, output root or
// target identifier. It is fatal: no BuildSpec is produced when one occurs.
type ConfigurationError struct {
	Target target.Target
	Path   string
	Msg    string
}

func (e *ConfigurationError) Error() string {
	if e == nil {
		return ""
	}

	parts := []string{ErrConfiguration.Error()}
	if e.Target != "" {
		parts = append(parts, "target "+e.Target.String())
	}
	if e.Path != "" {
		parts = append(parts, fmt.Sprintf("path %q", e.Path))
	}
	if e.Msg != "" {
		parts = append(parts, e.Msg)
	}
	return strings.Join(parts, ": ")
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

// Errorf builds a ConfigurationError for the given target and path.
func Errorf(t target.Target, path, format string, args ...any) error {
	return &ConfigurationError{Target: t, Path: path, Msg: fmt.Sprintf(format, args...)}
}
