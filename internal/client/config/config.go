// Package config handles configuration for the credauth CLI: defaults, an
// optional JSON file and command-line flags, in increasing precedence.
package config

import "time"

// Config holds runtime settings for the credauth CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the backend gRPC endpoint.
//   - RequestTimeout: deadline applied to each RPC.
//   - TokenFile: where `login` stores the access token for later commands.
type Config struct {
	ServerEndpointAddr string
	RequestTimeout     time.Duration
	TokenFile          string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.TokenFile = ".credauth_token"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones. args excludes the program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
