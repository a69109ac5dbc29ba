package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "github.com/kbukum/apphost/errors"
)

// LoaderConfig holds optional file overrides.
type LoaderConfig struct {
	Folders    *Folders
	ConfigFile string
	EnvFile    string
}

// LoaderOption is a functional option for Load.
type LoaderOption func(*LoaderConfig)

// WithFolders sets the app data folders.
func WithFolders(f Folders) LoaderOption {
	return func(lc *LoaderConfig) { lc.Folders = &f }
}

// WithConfigFile overrides the config.yml location.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile overrides the .env location.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// Load builds the HostConfig from defaults, the config file, derived values
// and the environment. A missing file is not an error. Errors are tagged
// INVALID_CONFIG or ACCESS_DENIED.
func Load(folders Folders, opts ...LoaderOption) (*HostConfig, error) {
	lc := LoaderConfig{Folders: &folders}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.ConfigFile == "" {
		lc.ConfigFile = lc.Folders.ConfigPath()
	}
	if lc.EnvFile == "" {
		lc.EnvFile = lc.Folders.EnvPath()
	}

	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}

	if err := loadEnvFile(lc.EnvFile); err != nil {
		return nil, err
	}
	if err := readConfigFile(v, lc.ConfigFile); err != nil {
		return nil, err
	}

	if err := v.MergeConfigMap(map[string]interface{}{
		"data_protection_folder": lc.Folders.DataProtectionPath(),
	}); err != nil {
		return nil, apperrors.InvalidConfig("derived values", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg HostConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.InvalidConfig("values", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// readConfigFile reads the optional YAML layer.
func readConfigFile(v *viper.Viper, path string) error {
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case errors.Is(err, fs.ErrPermission):
		return apperrors.AccessDenied(path, err)
	case err != nil:
		return apperrors.AccessDenied(path, err)
	}
	defer f.Close()

	v.SetConfigType("yaml")
	if err := v.ReadConfig(f); err != nil {
		return apperrors.InvalidConfig("file "+path, err).WithDetail("path", path)
	}
	return nil
}

// loadEnvFile loads KEY=VALUE pairs without overriding the environment.
func loadEnvFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return apperrors.AccessDenied(path, err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return apperrors.AccessDenied(path, err)
		}
		return apperrors.InvalidConfig("file "+path, err)
	}
	return nil
}
