package config

import (
	"fmt"
	"strconv"
)

// lookupFunc matches os.LookupEnv so tests can supply their own environment.
type lookupFunc func(key string) (string, bool)

// applyEnv overlays environment variables on top of the file values.
// Variable names follow the deployment's .env conventions.
func (c *Config) applyEnv(lookup lookupFunc) error {
	strs := []struct {
		key string
		dst *string
	}{
		{"API_HOST", &c.Server.Host},
		{"GRPC_ADDR", &c.Server.GRPCAddr},
		{"DB_DRIVER", &c.Database.Driver},
		{"POSTGRES_HOST", &c.Database.Host},
		{"POSTGRES_DB", &c.Database.Name},
		{"POSTGRES_USER", &c.Database.User},
		{"POSTGRES_PASSWORD", &c.Database.Password},
		{"POSTGRES_SSLMODE", &c.Database.SSLMode},
		{"SQLITE_DIR", &c.Database.SQLiteDir},
		{"BRONZE_SCHEMA", &c.Schemas.Bronze},
		{"SILVER_SCHEMA", &c.Schemas.Silver},
		{"GOLD_SCHEMA", &c.Schemas.Gold},
		{"REDIS_ADDR", &c.Cache.RedisAddr},
		{"REDIS_PASSWORD", &c.Cache.RedisPassword},
		{"MQTT_BROKER", &c.MQTT.Broker},
		{"MQTT_TOPIC", &c.MQTT.Topic},
		{"LOG_LEVEL", &c.Log.Level},
		{"LOG_FORMAT", &c.Log.Format},
		{"TLS_CERT", &c.Server.TLS.Cert},
		{"TLS_KEY", &c.Server.TLS.Key},
		{"TLS_CA", &c.Server.TLS.CA},
	}
	for _, s := range strs {
		if v, ok := lookup(s.key); ok && v != "" {
			*s.dst = v
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"API_PORT", &c.Server.Port},
		{"POSTGRES_PORT", &c.Database.Port},
		{"DB_POOL_MIN", &c.Database.MinConns},
		{"DB_POOL_MAX", &c.Database.MaxConns},
	}
	for _, i := range ints {
		v, ok := lookup(i.key)
		if !ok || v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: %q is not an integer", i.key, v)
		}
		*i.dst = n
	}

	return nil
}
