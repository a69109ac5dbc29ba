package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"sync"
	"syscall"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/apphost/config"
	apperrors "github.com/kbukum/apphost/errors"
	"github.com/kbukum/apphost/host"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/observability"
	"github.com/kbukum/apphost/platform"
	"github.com/kbukum/apphost/process"
	"github.com/kbukum/apphost/startup"
	"github.com/kbukum/apphost/version"
)

// App runs one process lifetime.
type App struct {
	opts     *appOptions
	platform platform.Platform
	out      io.Writer
	seq      *Sequencer
	state    *stateMachine

	mu      sync.Mutex
	runtime host.Runtime
	err     error
}

// New creates an App.
func New(opts ...Option) *App {
	o := resolveOptions(opts)
	a := &App{opts: o, platform: o.platform, out: o.out}
	if a.platform == nil {
		a.platform = platform.Current()
	}
	if a.out == nil {
		a.out = os.Stdout
	}
	a.seq = NewSequencer(a.logger, o.gracefulTimeout)
	a.state = newStateMachine(a.logger)
	return a
}

// Start runs the process lifetime for args and returns the exit code.
func Start(args []string, opts ...Option) int {
	return New(opts...).Start(args)
}

// Start runs the lifetime and returns the exit code: 0 for a normal run, a
// utility route or a terminate request, 1 for a fatal startup error.
func (a *App) Start(args []string) int {
	err := a.run(args)
	a.mu.Lock()
	a.err = err
	a.mu.Unlock()
	return apperrors.ExitCode(err)
}

// Err returns the error the last Start ended with.
func (a *App) Err() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

// Runtime returns the composed runtime, or nil when composition did not
// complete.
func (a *App) Runtime() host.Runtime {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.runtime
}

// Sequencer returns the shutdown sequencer.
func (a *App) Sequencer() *Sequencer { return a.seq }

// Phases returns the phases the run went through.
func (a *App) Phases() []Phase { return a.state.phases() }

// logger returns the configured logger, or the global one. The global
// logger is replaced by the logging step, so it is looked up on each call.
func (a *App) logger() *logger.Logger {
	if a.opts.logger != nil {
		return a.opts.logger
	}
	return logger.GetGlobalLogger().WithComponent("bootstrap")
}

func (a *App) run(args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.Unhandled(fmt.Errorf("panic: %v", r)).WithDetail("stack", string(debug.Stack()))
			a.state.fail()
		}
		err = a.report(err)
		a.state.to(PhaseCleanup)
		a.seq.RunOnExit()
		a.state.to(PhaseExit)
	}()

	ctx := a.opts.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	if !a.opts.noSignals {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	startCtx, err := startup.Parse(args)
	if err != nil {
		a.state.fail()
		return apperrors.InvalidConfig("arguments", err)
	}

	_, span := observability.StartSpan(ctx, observability.SpanResolveMode)
	mode := startup.ResolveMode(startCtx, a.platform, a.logger())
	span.SetAttributes(attribute.String(observability.AttrMode, mode.String()))
	span.End()
	a.state.to(PhaseModeResolved)

	folders, err := config.ResolveFolders(startCtx, mode)
	if err != nil {
		a.state.fail()
		return apperrors.InvalidConfig("data folder", err)
	}

	if !mode.IsUtility() {
		a.logger().Info(version.Banner(), logger.Fields(logger.FieldMode, mode.String(), logger.FieldPath, folders.AppDataPath()))
		if err := folders.Ensure(); err != nil {
			a.state.fail()
			return apperrors.AccessDenied(folders.AppDataPath(), err)
		}
		release, err := acquireInstance(folders.PIDFilePath())
		if err != nil {
			a.state.fail()
			return err
		}
		defer release()
	}

	runner := process.NewExec(process.Config{Timeout: 30 * time.Second}, a.logger())
	hostOpts := append([]host.Option{
		host.WithOutput(a.out),
		host.WithRunner(runner),
		host.WithForegroundHook(host.BrowserHook(runner)),
	}, a.opts.hostOpts...)

	composer := host.NewComposer(startCtx, a.platform, folders, a.logger(), hostOpts...)
	a.seq.Attach(composer.Container())

	start := time.Now()
	rt, err := composer.Compose(ctx, mode)
	if err != nil {
		a.state.fail()
		return err
	}
	a.mu.Lock()
	a.runtime = rt
	a.mu.Unlock()

	if !mode.IsUtility() {
		summary := NewSummary(version.ServiceName, version.Version)
		summary.SetComposeDuration(time.Since(start))
		summary.Collect(rt, composer.Container())
		summary.Display(a.out)
	}

	a.state.to(runningPhase(mode))
	return rt.Run(ctx)
}

// report logs err once and arms the sequencer for a terminate request.
func (a *App) report(err error) error {
	if err == nil {
		return nil
	}
	log := a.logger()
	if apperrors.Is(err, apperrors.KindTerminateRequested) {
		se, _ := apperrors.AsStartupError(err)
		log.Info(se.Message, se.Details)
		a.seq.RequestTerminate()
		return err
	}

	se := apperrors.Wrap(err)
	fields := logger.Fields(logger.FieldKind, string(se.Kind))
	for k, v := range se.Details {
		if k != "stack" {
			fields[k] = v
		}
	}
	if se.Cause != nil {
		fields[logger.FieldError] = se.Cause.Error()
	}
	log.Error(se.Message, fields)
	if stack, ok := se.Details["stack"].(string); ok {
		log.Debug("Panic stack", logger.Fields("stack", stack))
	}
	return se
}
