package compose

import (
	"errors"
	"fmt"
	"strings"

	"github.com/wolfeidau/extbuild/internal/target"
)

// ErrCompositionInvariant is the kind of errors raised when a composed plan
// would let one operation silently overwrite another.
var ErrCompositionInvariant = errors.New("composition invariant violation")

// CompositionError names the target and the conflicting paths.
type CompositionError struct {
	Target target.Target
	Paths  []string
	Msg    string
}

func (e *CompositionError) Error() string {
	if e == nil {
		return ""
	}
	msg := fmt.Sprintf("%s: target %s", ErrCompositionInvariant.Error(), e.Target)
	if e.Msg != "" {
		msg += ": " + e.Msg
	}
	if len(e.Paths) > 0 {
		msg += ": " + strings.Join(e.Paths, ", ")
	}
	return msg
}

func (e *CompositionError) Unwrap() error { return ErrCompositionInvariant }
