package config

import (
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.EndpointAddrGRPC, validation.Required),
		validation.Field(&c.StoreKind, validation.Required, validation.In(StorePostgres, StoreMemory)),
		validation.Field(&c.SecretKey, validation.Required),
		validation.Field(&c.LockoutThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.S3BaseEndpoint, is.URL),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
	)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch {
	case c.StoreKind == StorePostgres && c.DatabaseDSN == "":
		return errors.New("invalid config: database DSN is required for the postgres store")
	case c.TokenTTL <= 0:
		return errors.New("invalid config: token TTL must be positive")
	case c.LockoutWindow <= 0:
		return errors.New("invalid config: lockout window must be positive")
	}
	return nil
}
