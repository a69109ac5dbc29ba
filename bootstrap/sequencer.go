package bootstrap

import (
	"context"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"github.com/kbukum/apphost/database"
	"github.com/kbukum/apphost/di"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/observability"
)

// Shutdown step names, in the order they run.
const (
	StepCloseContainer  = "close-container"
	StepCollect         = "collect"
	StepFinalizers      = "finalizers"
	StepReleasePools    = "release-pools"
	StepFlushTraces     = "flush-traces"
	StepTeardownLogging = "teardown-logging"
)

// Sequencer releases process resources once, on every exit path.
type Sequencer struct {
	once    sync.Once
	mu      sync.Mutex
	log     func() *logger.Logger
	timeout time.Duration

	container di.Container
	terminate bool
	ran       []string
}

// NewSequencer creates a Sequencer. timeout bounds the trace flush.
func NewSequencer(log func() *logger.Logger, timeout time.Duration) *Sequencer {
	if log == nil {
		log = logger.Nop
	}
	return &Sequencer{log: log, timeout: timeout}
}

// Attach sets the composition root to close.
func (s *Sequencer) Attach(c di.Container) {
	s.mu.Lock()
	s.container = c
	s.mu.Unlock()
}

// RequestTerminate makes RunOnExit tear down logging as its last step.
func (s *Sequencer) RequestTerminate() {
	s.mu.Lock()
	s.terminate = true
	s.mu.Unlock()
}

// RunOnExit runs the shutdown steps. Only the first call does anything.
func (s *Sequencer) RunOnExit() {
	s.once.Do(s.run)
}

// Steps returns the steps RunOnExit ran.
func (s *Sequencer) Steps() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.ran...)
}

func (s *Sequencer) run() {
	s.mu.Lock()
	container, terminate := s.container, s.terminate
	s.mu.Unlock()

	log := s.log().WithComponent("shutdown")
	ctx, span := observability.StartSpan(context.Background(), observability.SpanShutdown)

	hooks := []namedHook{
		{StepCloseContainer, func(context.Context) error {
			if container == nil {
				return nil
			}
			return container.Close()
		}},
		{StepCollect, func(context.Context) error {
			runtime.GC()
			debug.FreeOSMemory()
			return nil
		}},
		// a second cycle collects what finalizers of the first one released
		{StepFinalizers, func(context.Context) error {
			runtime.GC()
			return nil
		}},
		{StepReleasePools, func(context.Context) error {
			n, err := database.ReleaseAll()
			if n > 0 {
				log.Debug("Released database pools", logger.Fields("count", n))
			}
			return err
		}},
		{StepFlushTraces, func(ctx context.Context) error {
			span.End()
			fctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			return observability.Shutdown(fctx)
		}},
	}
	if terminate {
		hooks = append(hooks, namedHook{StepTeardownLogging, func(context.Context) error {
			log.Info("Logging shut down")
			logger.Teardown()
			return nil
		}})
	}

	runHooks(ctx, log, hooks)

	names := make([]string, len(hooks))
	for i, h := range hooks {
		names[i] = h.name
	}
	s.mu.Lock()
	s.ran = names
	s.mu.Unlock()
}
