package database

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DialectorFunc builds a GORM dialector from a DSN.
type DialectorFunc func(dsn string) gorm.Dialector

const sqliteParams = "_busy_timeout=5000&_journal_mode=WAL"

// Dialector returns the dialector for cfg.Driver. For file-backed SQLite the
// parent directory is created.
func Dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverPostgres:
		return postgres.Open(cfg.DSN), nil
	case DriverSQLite, "":
		if isFileDSN(cfg.DSN) {
			if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
				return nil, fmt.Errorf("database %s: create directory: %w", cfg.Name, err)
			}
			return sqlite.Open(cfg.DSN + "?" + sqliteParams), nil
		}
		return sqlite.Open(cfg.DSN), nil
	default:
		return nil, fmt.Errorf("database %s: unsupported driver %q", cfg.Name, cfg.Driver)
	}
}

func isFileDSN(dsn string) bool {
	return dsn != "" && !strings.HasPrefix(dsn, ":memory:") && !strings.HasPrefix(dsn, "file:") && !strings.Contains(dsn, "?")
}
