package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommandRegistersSubcommands(t *testing.T) {
	cmd := NewRootCommand()

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["generate"])
	assert.True(t, names["version"])
}

func TestVersionCommandOutput(t *testing.T) {
	cmd := newVersionCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)

	assert.Contains(t, out.String(), "matgen")
	assert.Contains(t, out.String(), "commit:")
	assert.Contains(t, out.String(), "go version:")
}

func TestParseRange(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		min     float64
		max     float64
		wantErr bool
	}{
		{name: "simple", in: "1.0:2.5", min: 1.0, max: 2.5},
		{name: "negative min", in: "-3:-1", min: -3, max: -1},
		{name: "whitespace", in: " 0.5 : 1.5 ", min: 0.5, max: 1.5},
		{name: "degenerate", in: "2:2", min: 2, max: 2},
		{name: "missing separator", in: "1.0", wantErr: true},
		{name: "non numeric min", in: "a:2", wantErr: true},
		{name: "non numeric max", in: "1:b", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := parseRange(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.min, r.Min)
			assert.Equal(t, tt.max, r.Max)
		})
	}
}

func TestGenerateCommandFlagDefaults(t *testing.T) {
	cmd := newGenerateCommand(&RootOptions{})

	n, err := cmd.Flags().GetInt("samples")
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	temp, err := cmd.Flags().GetFloat64("temperature")
	require.NoError(t, err)
	assert.Equal(t, 1.0, temp)
}
