package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_InfoLevel(t *testing.T) {
	buf := new(bytes.Buffer)
	l := New(buf, false)

	l.Debug().Msg("hidden")
	l.Info().Str("target", "chrome").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"target":"chrome"`)
	assert.Contains(t, out, `"level":"info"`)
}

func TestNew_Dev(t *testing.T) {
	buf := new(bytes.Buffer)
	l := New(buf, true)

	l.Debug().Msg("visible")
	assert.Contains(t, buf.String(), "visible")
	assert.NotContains(t, buf.String(), `"level"`)
}
