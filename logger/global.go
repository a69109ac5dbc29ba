package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

var (
	mu       sync.RWMutex
	global   *Logger
	sinks    []io.Closer
	tornDown bool
)

// Init replaces the process logger and re-arms it after a Teardown.
func Init(cfg Config, serviceName string) *Logger {
	cfg.ApplyDefaults()
	l := New(&cfg, serviceName)

	mu.Lock()
	global, tornDown = l, false
	mu.Unlock()

	zlog.Logger = l.zl
	return l
}

// SetGlobalLogger replaces the process logger without touching sinks.
func SetGlobalLogger(l *Logger) {
	mu.Lock()
	global = l
	mu.Unlock()
}

// GetGlobalLogger returns the process logger, creating a console logger
// on first use.
func GetGlobalLogger() *Logger {
	mu.RLock()
	l := global
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if global == nil {
		global = NewDefault("")
	}
	return global
}

// Teardown closes file sinks and silences every logger, including ones
// handed out earlier. Repeated calls do nothing.
func Teardown() {
	mu.Lock()
	defer mu.Unlock()
	if tornDown {
		return
	}
	tornDown = true
	for _, c := range sinks {
		_ = c.Close()
	}
	sinks = nil
	global = Nop()
	zlog.Logger = zerolog.Nop()
}

// IsTornDown reports whether Teardown has run since the last Init.
func IsTornDown() bool {
	mu.RLock()
	defer mu.RUnlock()
	return tornDown
}

func Debug(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Debug(msg, fields...) }
func Info(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Info(msg, fields...) }
func Warn(msg string, fields ...map[string]interface{})  { GetGlobalLogger().Warn(msg, fields...) }
func Error(msg string, fields ...map[string]interface{}) { GetGlobalLogger().Error(msg, fields...) }

// WithComponent tags the process logger.
func WithComponent(name string) *Logger {
	return GetGlobalLogger().WithComponent(name)
}

// openSink maps an output name to a writer. Files are tracked so Teardown
// can close them.
func openSink(output string) io.Writer {
	switch strings.ToLower(output) {
	case "", OutputStdout:
		return os.Stdout
	case OutputStderr:
		return os.Stderr
	}
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return os.Stdout
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return os.Stdout
	}
	mu.Lock()
	sinks = append(sinks, f)
	mu.Unlock()
	return f
}
