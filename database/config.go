package database

import (
	"fmt"
	"time"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds connection and pool settings for one store.
type Config struct {
	// Name identifies the store in logs and health output.
	Name string `mapstructure:"name"`
	// Driver is DriverSQLite or DriverPostgres.
	Driver string `mapstructure:"driver"`
	// DSN is a file path for SQLite or a connection string for Postgres.
	DSN string `mapstructure:"dsn"`

	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime string `mapstructure:"conn_max_idle_time"`

	// MaxRetries is the number of connection attempts for transient errors.
	MaxRetries int `mapstructure:"max_retries"`
	// SlowQueryThreshold is the duration above which queries are logged as slow.
	SlowQueryThreshold string `mapstructure:"slow_query_threshold"`
	// LogLevel is the GORM log level: silent, error, warn or info.
	LogLevel string `mapstructure:"log_level"`
}

// ApplyDefaults sets defaults for zero-valued fields.
func (c *Config) ApplyDefaults() {
	if c.Driver == "" {
		c.Driver = DriverSQLite
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 25
		if c.Driver == DriverSQLite {
			c.MaxOpenConns = 1
		}
	}
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 1
	}
	if c.ConnMaxLifetime == "" {
		c.ConnMaxLifetime = "1h"
	}
	if c.ConnMaxIdleTime == "" {
		c.ConnMaxIdleTime = "5m"
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.SlowQueryThreshold == "" {
		c.SlowQueryThreshold = "200ms"
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// Validate checks that required fields are present and parseable.
func (c *Config) Validate() error {
	if c.Driver != DriverSQLite && c.Driver != DriverPostgres {
		return fmt.Errorf("database driver must be %s or %s (got: %s)", DriverSQLite, DriverPostgres, c.Driver)
	}
	if c.DSN == "" {
		return fmt.Errorf("database %s: dsn is required", c.Name)
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return fmt.Errorf("max_idle_conns (%d) must be <= max_open_conns (%d)", c.MaxIdleConns, c.MaxOpenConns)
	}
	for key, v := range map[string]string{
		"conn_max_lifetime":    c.ConnMaxLifetime,
		"conn_max_idle_time":   c.ConnMaxIdleTime,
		"slow_query_threshold": c.SlowQueryThreshold,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, v, err)
		}
	}
	return nil
}

// PostgresOptions selects Postgres for both stores when Host is set.
type PostgresOptions struct {
	Host     string `yaml:"host" mapstructure:"host"`
	Port     int    `yaml:"port" mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	User     string `yaml:"user" mapstructure:"user"`
	Password string `yaml:"password" mapstructure:"password"`
	MainDB   string `yaml:"main_db" mapstructure:"main_db"`
	LogDB    string `yaml:"log_db" mapstructure:"log_db"`
	SSLMode  string `yaml:"ssl_mode" mapstructure:"ssl_mode" validate:"omitempty,oneof=disable allow prefer require verify-ca verify-full"`
}

// Enabled reports whether Postgres is configured.
func (o PostgresOptions) Enabled() bool {
	return o.Host != ""
}

// String never includes the password.
func (o PostgresOptions) String() string {
	if !o.Enabled() {
		return "postgres(disabled)"
	}
	return fmt.Sprintf("postgres(%s@%s:%d main=%s log=%s)", o.User, o.Host, o.Port, o.MainDB, o.LogDB)
}

func (o PostgresOptions) dsn(dbName string) string {
	sslMode := o.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		o.Host, o.Port, o.User, o.Password, dbName, sslMode)
}

// StoreConfigs returns the main and log store configurations. Postgres wins
// when enabled; otherwise both stores are SQLite files at the given paths.
func StoreConfigs(pg PostgresOptions, mainPath, logPath string) (mainCfg, logCfg Config) {
	mainCfg = Config{Name: "main-store"}
	logCfg = Config{Name: "log-store"}

	if pg.Enabled() {
		mainCfg.Driver, mainCfg.DSN = DriverPostgres, pg.dsn(pg.MainDB)
		logCfg.Driver, logCfg.DSN = DriverPostgres, pg.dsn(pg.LogDB)
	} else {
		mainCfg.Driver, mainCfg.DSN = DriverSQLite, mainPath
		logCfg.Driver, logCfg.DSN = DriverSQLite, logPath
	}

	mainCfg.ApplyDefaults()
	logCfg.ApplyDefaults()
	return mainCfg, logCfg
}
