package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, 10*time.Second, c.RequestTimeout)
	assert.Equal(t, ".credauth_token", c.TokenFile)
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cli.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server_endpoint_addr":"json:1","request_timeout":"3s"}`), 0o600))

	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name:     "defaults",
			args:     nil,
			expected: &Config{ServerEndpointAddr: "127.0.0.1:50051", RequestTimeout: 10 * time.Second, TokenFile: ".credauth_token"},
		},
		{
			name:     "json overlay",
			args:     []string{"-c", path, "login"},
			expected: &Config{ServerEndpointAddr: "json:1", RequestTimeout: 3 * time.Second, TokenFile: ".credauth_token"},
		},
		{
			name:     "flags win over json",
			args:     []string{"-config", path, "whoami", "-a", "flag:2", "-f", "/tmp/tok"},
			expected: &Config{ServerEndpointAddr: "flag:2", RequestTimeout: 3 * time.Second, TokenFile: "/tmp/tok"},
		},
		{name: "missing file", args: []string{"-c", filepath.Join(dir, "nope.json")}, wantErr: true},
		{name: "bad duration", args: []string{"-r", "later"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
