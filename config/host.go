package config

import (
	"fmt"

	"github.com/kbukum/apphost/database"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/observability"
	"github.com/kbukum/apphost/validation"
)

// Defaults for the listener settings.
const (
	DefaultBindAddress = "*"
	DefaultPort        = 8787
	DefaultSSLPort     = 6868
)

// HostConfig is the resolved configuration for a run. It is read-only once
// composition begins.
type HostConfig struct {
	BindAddress     string `yaml:"bind_address" mapstructure:"bind_address" validate:"required"`
	Port            int    `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	SSLPort         int    `yaml:"ssl_port" mapstructure:"ssl_port" validate:"min=1,max=65535"`
	EnableSSL       bool   `yaml:"enable_ssl" mapstructure:"enable_ssl"`
	SSLCertPath     string `yaml:"ssl_cert_path" mapstructure:"ssl_cert_path"`
	SSLCertPassword string `yaml:"ssl_cert_password" mapstructure:"ssl_cert_password"`
	LaunchBrowser   bool   `yaml:"launch_browser" mapstructure:"launch_browser"`

	Postgres database.PostgresOptions `yaml:"postgres" mapstructure:"postgres"`

	// DataProtectionFolder is derived from the app data folder.
	DataProtectionFolder string `yaml:"data_protection_folder" mapstructure:"data_protection_folder"`

	Logging logger.Config              `yaml:"logging" mapstructure:"logging"`
	Tracing observability.TracerConfig `yaml:"tracing" mapstructure:"tracing"`
}

// ApplyDefaults fills nested sections whose defaults depend on code.
func (c *HostConfig) ApplyDefaults() {
	if c.BindAddress == "" {
		c.BindAddress = DefaultBindAddress
	}
	c.Logging.ApplyDefaults()
	c.Tracing.ApplyDefaults()
}

// Validate checks tags and cross-field rules. Failures are INVALID_CONFIG.
func (c *HostConfig) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	v.Custom(!c.EnableSSL || c.SSLPort != c.Port, "ssl_port", fmt.Sprintf("must differ from port %d", c.Port))
	if c.Postgres.Enabled() {
		v.Port("postgres.port", c.Postgres.Port).
			Required("postgres.main_db", c.Postgres.MainDB).
			Required("postgres.log_db", c.Postgres.LogDB)
	}
	if err := c.Logging.Validate(); err != nil {
		v.AddError("logging", err.Error())
	}
	return v.Validate()
}

// SSLRequested reports whether an HTTPS listener should be built.
func (c *HostConfig) SSLRequested() bool {
	return c.EnableSSL && c.SSLCertPath != ""
}

// defaults is the lowest configuration layer. Every key that can come from
// the environment must be listed so that viper binds it.
func defaults() map[string]interface{} {
	return map[string]interface{}{
		"bind_address":           DefaultBindAddress,
		"port":                   DefaultPort,
		"ssl_port":               DefaultSSLPort,
		"enable_ssl":             false,
		"ssl_cert_path":          "",
		"ssl_cert_password":      "",
		"launch_browser":         true,
		"postgres.host":          "",
		"postgres.port":          5432,
		"postgres.user":          "",
		"postgres.password":      "",
		"postgres.main_db":       "apphost-main",
		"postgres.log_db":        "apphost-log",
		"postgres.ssl_mode":      "",
		"data_protection_folder": "",
		"logging.level":          "info",
		"logging.format":         "console",
		"logging.output":         logger.OutputStdout,
		"logging.no_color":       false,
		"logging.timestamp":      true,
		"logging.caller":         false,
		"tracing.enabled":        false,
		"tracing.endpoint":       "localhost:4318",
		"tracing.insecure":       true,
		"tracing.sample_rate":    1.0,
	}
}
