package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is safe to interpolate into SQL as
// a schema qualifier.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.TLS.Enabled() && c.Server.TLS.Key == "" {
		return errors.New("server.tls.key is required when server.tls.cert is set")
	}

	if err := c.Database.validate("database"); err != nil {
		return err
	}

	for _, s := range []struct{ field, name string }{
		{"schemas.bronze", c.Schemas.Bronze},
		{"schemas.silver", c.Schemas.Silver},
		{"schemas.gold", c.Schemas.Gold},
	} {
		if !ValidIdentifier(s.name) {
			return fmt.Errorf("%s %q is not a valid identifier", s.field, s.name)
		}
	}

	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be >= 1")
	}
	if c.Retry.MaxBackoff < c.Retry.InitialBackoff {
		return errors.New("retry.max_backoff must be >= retry.initial_backoff")
	}

	if c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt.qos must be 0, 1 or 2, got %d", c.MQTT.QoS)
	}

	switch strings.ToLower(c.Log.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}

	return nil
}

func (db *DatabaseConfig) validate(prefix string) error {
	switch db.Driver {
	case DriverPostgres:
		if db.Host == "" {
			return fmt.Errorf("%s.host is required", prefix)
		}
		if db.Name == "" {
			return fmt.Errorf("%s.name is required", prefix)
		}
		if db.User == "" {
			return fmt.Errorf("%s.user is required", prefix)
		}
	case DriverSQLite:
		if db.SQLiteDir == "" {
			return fmt.Errorf("%s.sqlite_dir is required", prefix)
		}
	case DriverMemory:
		return nil
	default:
		return fmt.Errorf("%s.driver must be postgres, sqlite or memory, got %q", prefix, db.Driver)
	}

	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) must be <= max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
