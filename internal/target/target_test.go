package target

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Target
		wantErr bool
	}{
		{name: "chrome", input: "chrome", want: Chrome},
		{name: "mixed case opera", input: "Opera", want: Opera},
		{name: "padded firefox", input: " firefox ", want: Firefox},
		{name: "unknown", input: "safari", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownTarget)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAll_Order(t *testing.T) {
	require.Equal(t, []Target{Chrome, Opera, Firefox}, All())
	require.True(t, Chrome.Primary())
	require.False(t, Opera.Primary())
	require.False(t, Firefox.Primary())
}

func TestUnmarshalText(t *testing.T) {
	var tgt Target
	require.NoError(t, tgt.UnmarshalText([]byte("FIREFOX")))
	require.Equal(t, Firefox, tgt)
	require.Error(t, tgt.UnmarshalText([]byte("edge")))
}
