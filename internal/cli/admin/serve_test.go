package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePort(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		envPort string
		want    string
	}{
		{
			name:    "env value used when flag not set",
			args:    []string{},
			envPort: "9090",
			want:    "9090",
		},
		{
			name:    "explicit flag overrides env",
			args:    []string{"--port", "3000"},
			envPort: "9090",
			want:    "3000",
		},
		{
			name:    "flag set to default value still overrides env",
			args:    []string{"--port", "8080"},
			envPort: "9090",
			want:    "8080",
		},
		{
			name:    "shorthand flag overrides env",
			args:    []string{"-p", "4000"},
			envPort: "9090",
			want:    "4000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ServeCmd()
			require.NoError(t, cmd.Flags().Parse(tt.args))

			assert.Equal(t, tt.want, resolvePort(cmd, tt.envPort))
		})
	}
}
