package config

import (
	"fmt"

	"github.com/inkpad/inkpad/internal/session"
	"github.com/inkpad/inkpad/pkg/store"
)

// Validate checks the configuration for invalid or inconsistent values.
//
// Validation assumes defaults have already been applied, so empty required
// fields are reported rather than silently filled.
func Validate(cfg *Config) error {
	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}
	if err := validateDatabase(&cfg.Database); err != nil {
		return err
	}
	if err := validateServer(cfg); err != nil {
		return err
	}
	if err := validateSession(&cfg.Session); err != nil {
		return err
	}
	return validateGoogle(cfg)
}

func validateLogging(cfg *LoggingConfig) error {
	switch cfg.Level {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("invalid log level %q (valid: DEBUG, INFO, WARN, ERROR)", cfg.Level)
	}

	switch cfg.Format {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (valid: text, json)", cfg.Format)
	}

	if cfg.Output == "" {
		return fmt.Errorf("log output must not be empty")
	}
	return nil
}

func validateDatabase(cfg *store.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

func validateServer(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port %d out of range (1-65535)", cfg.Server.Port)
	}
	if cfg.Server.ClientOrigin == "" {
		return fmt.Errorf("server.client_origin must not be empty")
	}
	return nil
}

func validateSession(cfg *session.Config) error {
	switch cfg.Store {
	case session.StoreMemory:
	case session.StoreRedis:
		if cfg.Redis.Addr == "" {
			return fmt.Errorf("session.redis.addr must not be empty")
		}
	default:
		return fmt.Errorf("invalid session store %q (valid: memory, redis)", cfg.Store)
	}

	if cfg.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}

// validateGoogle checks federated login configuration. The secret check goes
// through the env-aware accessor so INKPAD_GOOGLE_CLIENT_SECRET satisfies it.
func validateGoogle(cfg *Config) error {
	if cfg.Google.ClientID == "" {
		// Federated login disabled
		return nil
	}
	if cfg.GoogleClientSecret() == "" {
		return fmt.Errorf("google.client_secret must be set when google.client_id is configured "+
			"(or set %s)", EnvGoogleClientSecret)
	}
	if cfg.Google.RedirectURL == "" {
		return fmt.Errorf("google.redirect_url must be set when google.client_id is configured")
	}
	return nil
}
