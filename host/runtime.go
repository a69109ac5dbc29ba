package host

import (
	"context"

	"github.com/kbukum/apphost/component"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/platform"
	"github.com/kbukum/apphost/server"
	"github.com/kbukum/apphost/startup"
	"github.com/kbukum/apphost/utility"
	"github.com/kbukum/apphost/version"
)

// Composition steps, in the order they run.
const (
	StepLogging             = "logging"
	StepPersistence         = "persistence"
	StepStartupContext      = "startup-context"
	StepApplicationStarting = "application-starting"
	StepUtilityRouter       = "utility-router"
)

// Runtime is a composed run, ready to execute.
type Runtime interface {
	// Run blocks until ctx is canceled (hosts) or the route completes
	// (utilities).
	Run(ctx context.Context) error
	Mode() startup.Mode
	// Bindings is empty for utility modes.
	Bindings() []server.Binding
	// Steps lists the composition steps taken, in order.
	Steps() []string
}

type hostRuntime struct {
	mode     startup.Mode
	bindings []server.Binding
	steps    []string
	registry *component.Registry
	server   *server.Server
	platform platform.ServiceHost
	onReady  []ReadyFunc
	log      *logger.Logger
}

func (r *hostRuntime) Mode() startup.Mode { return r.mode }
func (r *hostRuntime) Bindings() []server.Binding {
	return append([]server.Binding(nil), r.bindings...)
}
func (r *hostRuntime) Steps() []string { return append([]string(nil), r.steps...) }

// Run starts every component, signals readiness and waits for ctx. Service
// mode runs the same body under the platform service host.
func (r *hostRuntime) Run(ctx context.Context) error {
	if r.mode == startup.ModeService {
		return r.platform.RunService(ctx, version.ServiceName, r.serve)
	}
	return r.serve(ctx, func() {})
}

func (r *hostRuntime) serve(ctx context.Context, ready func()) error {
	if err := r.registry.StartAll(ctx); err != nil {
		_ = r.registry.StopAll(context.Background())
		return err
	}
	ready()

	urls := make([]string, 0, len(r.bindings))
	for _, b := range r.bindings {
		urls = append(urls, b.URL())
	}
	r.log.Info("Application started", logger.Fields(logger.FieldMode, r.mode.String(), "bindings", urls))

	for _, fn := range r.onReady {
		fn(ctx, r.Bindings())
	}

	<-ctx.Done()
	r.log.Info("Application stopping", logger.Fields(logger.FieldMode, r.mode.String()))
	return r.registry.StopAll(context.Background())
}

type utilityRuntime struct {
	mode   startup.Mode
	steps  []string
	router *utility.Router
}

func (r *utilityRuntime) Mode() startup.Mode         { return r.mode }
func (r *utilityRuntime) Bindings() []server.Binding { return nil }
func (r *utilityRuntime) Steps() []string            { return append([]string(nil), r.steps...) }

func (r *utilityRuntime) Run(ctx context.Context) error {
	return r.router.Route(ctx, r.mode)
}
