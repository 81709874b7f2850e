package config

import (
	"fmt"
	"net/url"
	"time"
)

// Validate checks configuration needed by every command.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("configuration is nil")
	}

	switch c.Provider {
	case ProviderGemini, ProviderOpenAI:
	default:
		return fmt.Errorf("%w: %q (supported: %s, %s)",
			ErrInvalidProvider, c.Provider, ProviderGemini, ProviderOpenAI)
	}

	if c.ModelName == "" {
		return fmt.Errorf("%w: model name is empty", ErrInvalidModelName)
	}

	if c.MaxToolRounds < 1 || c.MaxToolRounds > 20 {
		return fmt.Errorf("%w: %d (must be 1-20)", ErrInvalidMaxToolRounds, c.MaxToolRounds)
	}

	if c.RequestTimeout < 10*time.Second || c.RequestTimeout > 30*time.Minute {
		return fmt.Errorf("%w: %s (must be 10s-30m)", ErrInvalidRequestTimeout, c.RequestTimeout)
	}

	return c.validatePostgres()
}

// ValidateServe checks configuration needed by the serve command, on top
// of Validate.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if c.AuthSecret == "" {
		return fmt.Errorf("%w: set STRIDE_AUTH_SECRET", ErrMissingAuthSecret)
	}
	if len(c.AuthSecret) < MinAuthSecretLength {
		return fmt.Errorf("%w: need at least %d characters", ErrInvalidAuthSecret, MinAuthSecretLength)
	}

	if c.GatewayURL != "" {
		u, err := url.Parse(c.GatewayURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: %q", ErrInvalidGatewayURL, c.GatewayURL)
		}
	}

	return nil
}

func (c *Config) validatePostgres() error {
	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host is empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name is empty", ErrInvalidPostgresDBName)
	}
	return nil
}
