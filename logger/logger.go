package logger

import (
	"io"
	"strings"

	"github.com/rs/zerolog"
)

const (
	FormatPretty = "pretty"
	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// Logger is a zerolog logger tagged with the service name. Every write
// checks the process teardown flag first.
type Logger struct {
	zl      zerolog.Logger
	service string
}

// New opens cfg.Output and builds a logger on it. A file that cannot be
// opened falls back to stdout.
func New(cfg *Config, serviceName string) *Logger {
	return NewWithWriter(cfg, serviceName, openSink(cfg.Output))
}

// NewWithWriter builds a logger on w and ignores cfg.Output.
func NewWithWriter(cfg *Config, serviceName string, w io.Writer) *Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	if f := strings.ToLower(cfg.Format); f == "console" || f == FormatPretty {
		w = consoleWriter(w, cfg.NoColor)
	}
	ctx := zerolog.New(w).Level(level).With()
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	if cfg.Caller {
		ctx = ctx.Caller()
	}
	if serviceName != "" {
		ctx = ctx.Str("service", serviceName)
	}
	return &Logger{zl: ctx.Logger(), service: serviceName}
}

// NewDefault is an info-level console logger on stdout.
func NewDefault(serviceName string) *Logger {
	return New(&Config{Level: "info", Format: "console", Output: OutputStdout, Timestamp: true}, serviceName)
}

// Nop discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func (l *Logger) derive(zl zerolog.Logger) *Logger {
	return &Logger{zl: zl, service: l.service}
}

func (l *Logger) WithComponent(name string) *Logger {
	return l.derive(l.zl.With().Str(FieldComponent, name).Logger())
}

func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	return l.derive(l.zl.With().Fields(fields).Logger())
}

func (l *Logger) WithError(err error) *Logger {
	return l.derive(l.zl.With().Err(err).Logger())
}

// GetLogger exposes the zerolog logger, e.g. to read its level.
func (l *Logger) GetLogger() zerolog.Logger {
	return l.zl
}

func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Debug(), msg, fields)
}

func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Info(), msg, fields)
}

func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Warn(), msg, fields)
}

func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.emit(l.zl.Error(), msg, fields)
}

func (l *Logger) emit(e *zerolog.Event, msg string, fields []map[string]interface{}) {
	if e == nil || IsTornDown() {
		return
	}
	for _, f := range fields {
		e.Fields(f)
	}
	e.Msg(msg)
}
