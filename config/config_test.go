package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/kbukum/apphost/errors"
	"github.com/kbukum/apphost/startup"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	folders := NewFolders(t.TempDir())

	cfg, err := Load(folders)
	require.NoError(t, err)

	assert.Equal(t, DefaultBindAddress, cfg.BindAddress)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultSSLPort, cfg.SSLPort)
	assert.False(t, cfg.EnableSSL)
	assert.False(t, cfg.Postgres.Enabled())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, folders.DataProtectionPath(), cfg.DataProtectionFolder)
}

func TestLoad_FileValues(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), `
port: 9000
enable_ssl: true
ssl_port: 9443
ssl_cert_path: /certs/server.pfx
unknown_key: ignored
postgres:
  host: db.local
  user: app
logging:
  level: debug
  format: json
`)

	cfg, err := Load(folders)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.True(t, cfg.SSLRequested())
	assert.Equal(t, 9443, cfg.SSLPort)
	assert.Equal(t, "db.local", cfg.Postgres.Host)
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), "port: 9000\npostgres:\n  host: file-host\n")
	t.Setenv("PORT", "9100")
	t.Setenv("POSTGRES_HOST", "env-host")
	t.Setenv("LOGGING_LEVEL", "warn")

	cfg, err := Load(folders)
	require.NoError(t, err)

	assert.Equal(t, 9100, cfg.Port)
	assert.Equal(t, "env-host", cfg.Postgres.Host)
	assert.Equal(t, "warn", cfg.Logging.Level)
}

func TestLoad_DerivedValueAboveFile(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), "data_protection_folder: /elsewhere\n")

	cfg, err := Load(folders)
	require.NoError(t, err)
	assert.Equal(t, folders.DataProtectionPath(), cfg.DataProtectionFolder)
}

func TestLoad_EnvFileDoesNotOverrideEnvironment(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.EnvPath(), "SSL_PORT=7443\nBIND_ADDRESS=127.0.0.1\n")
	t.Setenv("BIND_ADDRESS", "0.0.0.0")
	t.Cleanup(func() { _ = os.Unsetenv("SSL_PORT") })

	cfg, err := Load(folders)
	require.NoError(t, err)

	assert.Equal(t, 7443, cfg.SSLPort)
	assert.Equal(t, "0.0.0.0", cfg.BindAddress)
}

func TestLoad_MalformedFile(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), "port: [9000\n")

	_, err := Load(folders)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidConfig, apperrors.KindOf(err))
}

func TestLoad_BadEnvironmentValue(t *testing.T) {
	t.Setenv("PORT", "abc")

	_, err := Load(NewFolders(t.TempDir()))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidConfig, apperrors.KindOf(err))
}

func TestLoad_OutOfRangePort(t *testing.T) {
	t.Setenv("PORT", "70000")

	_, err := Load(NewFolders(t.TempDir()))
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidConfig, apperrors.KindOf(err))
	assert.Contains(t, err.Error(), "port")
}

func TestLoad_SSLPortCollision(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), "enable_ssl: true\nport: 9000\nssl_port: 9000\n")

	_, err := Load(folders)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindInvalidConfig))
}

func TestLoad_PostgresNeedsDatabaseNames(t *testing.T) {
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), "postgres:\n  host: db.internal\n  main_db: \"\"\n")

	_, err := Load(folders)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres.main_db: is required")
}

func TestLoad_UnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	folders := NewFolders(t.TempDir())
	writeFile(t, folders.ConfigPath(), "port: 9000\n")
	require.NoError(t, os.Chmod(folders.ConfigPath(), 0o000))

	_, err := Load(folders)
	require.Error(t, err)
	assert.Equal(t, apperrors.KindAccessDenied, apperrors.KindOf(err))
}

func TestLoad_ConfigFileOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yml")
	writeFile(t, path, "port: 9200\n")

	cfg, err := Load(NewFolders(t.TempDir()), WithConfigFile(path))
	require.NoError(t, err)
	assert.Equal(t, 9200, cfg.Port)
}

func TestResolveFolders_DataArgument(t *testing.T) {
	dir := t.TempDir()
	f, err := ResolveFolders(startup.MustParse("--data", dir), startup.ModeInteractive)
	require.NoError(t, err)

	assert.Equal(t, dir, f.AppDataPath())
	assert.Equal(t, filepath.Join(dir, ConfigFileName), f.ConfigPath())
	assert.Equal(t, filepath.Join(dir, "asp"), f.DataProtectionPath())
	assert.Equal(t, filepath.Join(dir, PIDFileName), f.PIDFilePath())
}

func TestResolveFolders_UserConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))

	f, err := ResolveFolders(startup.MustParse(), startup.ModeInteractive)
	require.NoError(t, err)
	assert.Equal(t, "AppHost", filepath.Base(f.AppDataPath()))
}
