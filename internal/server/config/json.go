package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/credauth/internal/flagx"
	"github.com/dmitrijs2005/credauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "5m" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Fields left out of the file keep their current value in Config.
type JsonConfig struct {
	EndpointAddrGRPC string         `json:"endpoint_addr_grpc"`
	StoreKind        string         `json:"store_kind"`
	DatabaseDSN      string         `json:"database_dsn"`
	SecretKey        string         `json:"secret_key"`
	TokenTTL         timex.Duration `json:"token_ttl"`
	BcryptCost       int            `json:"bcrypt_cost"`
	LockoutThreshold int            `json:"lockout_threshold"`
	LockoutWindow    timex.Duration `json:"lockout_window"`
	S3RootUser       string         `json:"s3_root_user"`
	S3RootPassword   string         `json:"s3_root_password"`
	S3Bucket         string         `json:"s3_bucket"`
	S3Region         string         `json:"s3_region"`
	S3BaseEndpoint   string         `json:"s3_base_endpoint"`
	LogLevel         string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by -c or
// -config in args. Without either flag nothing is loaded.
func parseJson(config *Config, args []string) error {

	jsonConfigFile := flagx.JsonConfigPath(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.StoreKind, c.StoreKind)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenTTL.Duration != 0 {
		config.TokenTTL = c.TokenTTL.Duration
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.LockoutThreshold != 0 {
		config.LockoutThreshold = c.LockoutThreshold
	}
	if c.LockoutWindow.Duration != 0 {
		config.LockoutWindow = c.LockoutWindow.Duration
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogLevel, c.LogLevel)

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
