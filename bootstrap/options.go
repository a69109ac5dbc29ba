package bootstrap

import (
	"context"
	"io"
	"time"

	"github.com/kbukum/apphost/host"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/platform"
)

// Option configures an App.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	platform        platform.Platform
	ctx             context.Context
	out             io.Writer
	hostOpts        []host.Option
	gracefulTimeout time.Duration
	noSignals       bool
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{gracefulTimeout: 5 * time.Second}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the bootstrap logger. The logging step of a host
// composition replaces it for the rest of the run.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithPlatform replaces the detected platform.
func WithPlatform(p platform.Platform) Option {
	return func(o *appOptions) { o.platform = p }
}

// WithContext sets the parent context of the run. Canceling it stops a
// running host like a termination signal would.
func WithContext(ctx context.Context) Option {
	return func(o *appOptions) { o.ctx = ctx }
}

// WithoutSignals disables SIGINT/SIGTERM handling.
func WithoutSignals() Option {
	return func(o *appOptions) { o.noSignals = true }
}

// WithOutput sets where the banner, the summary and utility output go.
func WithOutput(w io.Writer) Option {
	return func(o *appOptions) { o.out = w }
}

// WithHostOptions passes options to the host composer.
func WithHostOptions(opts ...host.Option) Option {
	return func(o *appOptions) { o.hostOpts = append(o.hostOpts, opts...) }
}

// WithGracefulTimeout bounds the trace flush during shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) { o.gracefulTimeout = d }
}
