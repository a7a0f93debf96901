// Package target defines the closed set of browser families extbuild produces builds for.
package target

import (
	"errors"
	"fmt"
	"strings"
)

// Target identifies one browser family build.
type Target string

const (
	// Chrome is the primary target, it gets the extended entry set.
	Chrome Target = "chrome"
	// Opera is the secondary target.
	Opera Target = "opera"
	// Firefox is the tertiary target, it gets the rewritten manifest.
	Firefox Target = "firefox"
)

// ErrUnknownTarget is returned by Parse for names outside the closed set.
var ErrUnknownTarget = errors.New("unknown target")

// All returns every target in build order.
func All() []Target {
	return []Target{Chrome, Opera, Firefox}
}

// Parse converts a case-insensitive name into a Target.
func Parse(name string) (Target, error) {
	t := Target(strings.ToLower(strings.TrimSpace(name)))
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, name)
	}
	return t, nil
}

func (t Target) String() string {
	return string(t)
}

// Valid reports whether t is one of the declared targets.
func (t Target) Valid() bool {
	switch t {
	case Chrome, Opera, Firefox:
		return true
	default:
		return false
	}
}

// Primary reports whether t is the target with the extended entry set.
func (t Target) Primary() bool {
	return t == Chrome
}

// Title is the human readable browser name.
func (t Target) Title() string {
	switch t {
	case Chrome:
		return "Chrome"
	case Opera:
		return "Opera"
	case Firefox:
		return "Firefox"
	default:
		return "Unknown"
	}
}

// UnmarshalText lets targets be used as YAML and JSON map keys.
func (t *Target) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// MarshalText is the inverse of UnmarshalText.
func (t Target) MarshalText() ([]byte, error) {
	return []byte(t), nil
}
