package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credauth/internal/flagx"
	"github.com/dmitrijs2005/credauth/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	RequestTimeout     timex.Duration `json:"request_timeout"`
	TokenFile          string         `json:"token_file"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields missing from the file are left unchanged.
func parseJson(cfg *Config, args []string) error {
	jsonConfigFile := flagx.JsonConfigPath(args)
	if jsonConfigFile == "" {
		return nil
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.TokenFile != "" {
		cfg.TokenFile = jc.TokenFile
	}
	return nil
}
