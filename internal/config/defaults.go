package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultHTTPHost        = "0.0.0.0"
	DefaultHTTPPort        = 5001
	DefaultGRPCAddr        = ":50051"
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultShutdownTimeout = 10 * time.Second
	DefaultDriver          = DriverPostgres
	DefaultDBHost          = "localhost"
	DefaultDBPort          = 5432
	DefaultDBName          = "sensor_data"
	DefaultDBUser          = "postgres"
	DefaultDBPassword      = "postgres"
	DefaultDBSSLMode       = "prefer"
	DefaultMinConns        = 2
	DefaultMaxConns        = 10
	DefaultConnectTimeout  = 5 * time.Second
	DefaultSQLiteDir       = "./data"
	DefaultBronzeSchema    = "bronze"
	DefaultSilverSchema    = "silver"
	DefaultGoldSchema      = "gold"
	DefaultMaxAttempts     = 3
	DefaultInitialBackoff  = 1 * time.Second
	DefaultMaxBackoff      = 10 * time.Second
	DefaultHealthInterval  = 30 * time.Second
	DefaultHealthTimeout   = 2 * time.Second
	DefaultCacheTTL        = 60 * time.Second
	DefaultMQTTClientID    = "reading-service"
	DefaultMQTTTopic       = "sensors/readings"
	DefaultMQTTTimeout     = 10 * time.Second
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Host == "" {
		c.Server.Host = DefaultHTTPHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultHTTPPort
	}
	if c.Server.GRPCAddr == "" {
		c.Server.GRPCAddr = DefaultGRPCAddr
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = DefaultReadTimeout
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Database defaults
	db := &c.Database
	if db.Driver == "" {
		db.Driver = DefaultDriver
	}
	if db.Host == "" {
		db.Host = DefaultDBHost
	}
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.Name == "" {
		db.Name = DefaultDBName
	}
	if db.User == "" {
		db.User = DefaultDBUser
	}
	if db.Password == "" {
		db.Password = DefaultDBPassword
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = min(DefaultMinConns, db.MaxConns)
	}
	if db.ConnectTimeout == 0 {
		db.ConnectTimeout = DefaultConnectTimeout
	}
	if db.SQLiteDir == "" {
		db.SQLiteDir = DefaultSQLiteDir
	}

	// Schema defaults
	if c.Schemas.Bronze == "" {
		c.Schemas.Bronze = DefaultBronzeSchema
	}
	if c.Schemas.Silver == "" {
		c.Schemas.Silver = DefaultSilverSchema
	}
	if c.Schemas.Gold == "" {
		c.Schemas.Gold = DefaultGoldSchema
	}

	// Retry defaults
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = DefaultMaxAttempts
	}
	if c.Retry.InitialBackoff == 0 {
		c.Retry.InitialBackoff = DefaultInitialBackoff
	}
	if c.Retry.MaxBackoff == 0 {
		c.Retry.MaxBackoff = DefaultMaxBackoff
	}

	// Health defaults
	if c.Health.Interval == 0 {
		c.Health.Interval = DefaultHealthInterval
	}
	if c.Health.Timeout == 0 {
		c.Health.Timeout = DefaultHealthTimeout
	}

	// Cache defaults
	if c.Cache.TTL == 0 {
		c.Cache.TTL = DefaultCacheTTL
	}

	// MQTT defaults
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = DefaultMQTTClientID
	}
	if c.MQTT.Topic == "" {
		c.MQTT.Topic = DefaultMQTTTopic
	}
	if c.MQTT.MessageTimeout == 0 {
		c.MQTT.MessageTimeout = DefaultMQTTTimeout
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
