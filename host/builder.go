package host

import (
	"context"

	"github.com/kbukum/apphost/config"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/server"
	"github.com/kbukum/apphost/startup"
)

// ReadyFunc runs once every listener is bound.
type ReadyFunc func(ctx context.Context, bindings []server.Binding)

// ForegroundHook customizes an Interactive composition. It may add routes
// and ready callbacks; it cannot change bindings or the step order.
type ForegroundHook func(b *Builder)

// Builder is the view of a composition handed to a ForegroundHook.
type Builder struct {
	mode     startup.Mode
	cfg      config.HostConfig
	startCtx *startup.Context
	bindings []server.Binding
	log      *logger.Logger

	routes  []server.RouteRegistrar
	onReady []ReadyFunc
}

func (b *Builder) Mode() startup.Mode { return b.mode }

// Config returns a copy of the resolved configuration.
func (b *Builder) Config() config.HostConfig { return b.cfg }

func (b *Builder) StartupContext() *startup.Context { return b.startCtx }

// Bindings returns a copy of the bindings.
func (b *Builder) Bindings() []server.Binding {
	return append([]server.Binding(nil), b.bindings...)
}

func (b *Builder) Logger() *logger.Logger { return b.log }

// AddRoutes registers extra route registrars.
func (b *Builder) AddRoutes(r ...server.RouteRegistrar) {
	b.routes = append(b.routes, r...)
}

// OnReady adds a callback run after the listeners are bound.
func (b *Builder) OnReady(fn ReadyFunc) {
	b.onReady = append(b.onReady, fn)
}
