package database

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/kbukum/apphost/logger"
)

// DB wraps a GORM connection pool.
type DB struct {
	GormDB *gorm.DB
	log    *logger.Logger
	cfg    Config
	closed bool
	mu     sync.Mutex
}

// Open connects using the dialector for cfg.Driver.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	d, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	return OpenWithDialector(ctx, d, cfg, log)
}

// OpenWithDialector pings the store until it answers, waiting one more
// second after each transient failure, and tracks the pool for ReleaseAll.
func OpenWithDialector(ctx context.Context, d gorm.Dialector, cfg Config, log *logger.Logger) (*DB, error) {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithFields(logger.Fields("store", cfg.Name))

	slow, _ := time.ParseDuration(cfg.SlowQueryThreshold)
	gormCfg := &gorm.Config{Logger: newGormLogger(log, slow, parseLogLevel(cfg.LogLevel))}

	var lastErr error
	for attempt := 1; ; attempt++ {
		db, err := connect(ctx, d, gormCfg, cfg)
		if err == nil {
			db.log = log
			track(db)
			log.Debug("Store opened", logger.Fields("attempt", attempt))
			return db, nil
		}
		lastErr = err
		if attempt >= cfg.MaxRetries || !IsConnectionError(err) {
			break
		}

		wait := time.Duration(attempt) * time.Second
		log.Warn("Store not reachable, retrying", logger.MergeWithError(
			logger.Fields("attempt", attempt, "backoff", wait.String()), err))

		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, fmt.Errorf("open %s: %w", cfg.Name, ctx.Err())
		case <-t.C:
		}
	}
	return nil, fmt.Errorf("open %s: %w", cfg.Name, lastErr)
}

func connect(ctx context.Context, d gorm.Dialector, gormCfg *gorm.Config, cfg Config) (*DB, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(d, gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	configurePool(sqlDB, cfg)
	return &DB{GormDB: gdb, cfg: cfg}, nil
}

func configurePool(sqlDB *sql.DB, cfg Config) {
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if d, err := time.ParseDuration(cfg.ConnMaxLifetime); err == nil {
		sqlDB.SetConnMaxLifetime(d)
	}
	if d, err := time.ParseDuration(cfg.ConnMaxIdleTime); err == nil {
		sqlDB.SetConnMaxIdleTime(d)
	}
}

// Name returns the store name.
func (d *DB) Name() string { return d.cfg.Name }

// Close releases the pool. Later calls are no-ops.
func (d *DB) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return nil
	}
	d.closed = true
	untrack(d)

	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	d.log.Debug("Store closed")
	return sqlDB.Close()
}

// Closed reports whether Close has run.
func (d *DB) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// PingContext verifies the connection is alive.
func (d *DB) PingContext(ctx context.Context) error {
	sqlDB, err := d.GormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// WithContext returns a GORM session scoped to ctx.
func (d *DB) WithContext(ctx context.Context) *gorm.DB {
	return d.GormDB.WithContext(ctx)
}
