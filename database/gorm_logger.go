package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/kbukum/apphost/logger"
)

// statements longer than this are cut in query logs
const maxLoggedSQL = 512

var gormLevels = map[string]gormlogger.LogLevel{
	"silent": gormlogger.Silent,
	"error":  gormlogger.Error,
	"warn":   gormlogger.Warn,
	"info":   gormlogger.Info,
}

// parseLogLevel maps a level name to GORM's; unknown names mean warn.
func parseLogLevel(level string) gormlogger.LogLevel {
	if l, ok := gormLevels[strings.ToLower(level)]; ok {
		return l
	}
	return gormlogger.Warn
}

// storeLog sends GORM output to the store's logger.
type storeLog struct {
	log   *logger.Logger
	level gormlogger.LogLevel
	slow  time.Duration
}

func newGormLogger(log *logger.Logger, slow time.Duration, level gormlogger.LogLevel) gormlogger.Interface {
	return storeLog{log: log, level: level, slow: slow}
}

func (s storeLog) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	s.level = level
	return s
}

func (s storeLog) Info(_ context.Context, msg string, data ...interface{}) {
	if s.level >= gormlogger.Info {
		s.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (s storeLog) Warn(_ context.Context, msg string, data ...interface{}) {
	if s.level >= gormlogger.Warn {
		s.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (s storeLog) Error(_ context.Context, msg string, data ...interface{}) {
	if s.level >= gormlogger.Error {
		s.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs failed statements, slow statements, and everything else at
// debug when the level is info.
func (s storeLog) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if s.level == gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := s.slow > 0 && elapsed > s.slow
	if !failed && !slow && s.level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	if len(sql) > maxLoggedSQL {
		sql = sql[:maxLoggedSQL] + "..."
	}
	fields := logger.Fields("sql", sql, "rows", rows, logger.FieldDuration, elapsed.Milliseconds())

	switch {
	case failed:
		s.log.Error("Query failed", logger.MergeWithError(fields, err))
	case slow:
		s.log.Warn("Slow query", fields)
	default:
		s.log.Debug("Query", fields)
	}
}
