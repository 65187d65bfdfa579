package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {

	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{name: "Test1 OK", args: []string{
			"-a", "127.0.0.1:9090", "-k", "postgres", "-d", "db", "-s", "secret", "-t", "30m", "-bc", "12",
			"-n", "5", "-w", "10m", "-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1",
			"-e", "http://endpoint", "-l", "debug",
		},
			expected: &Config{
				EndpointAddrGRPC: "127.0.0.1:9090",
				StoreKind:        "postgres",
				DatabaseDSN:      "db",
				SecretKey:        "secret",
				TokenTTL:         30 * time.Minute,
				BcryptCost:       12,
				LockoutThreshold: 5,
				LockoutWindow:    10 * time.Minute,
				S3RootUser:       "user",
				S3RootPassword:   "password",
				S3Bucket:         "bucket",
				S3Region:         "us-west-1",
				S3BaseEndpoint:   "http://endpoint",
				LogLevel:         "debug",
			}},
		{name: "foreign flags ignored", args: []string{"-c", "cfg.json", "-x", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"}},
		{name: "bad duration", args: []string{"-t", "soon"}, expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}

			err := parseFlags(config, tt.args)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}
