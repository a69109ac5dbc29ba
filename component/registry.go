package component

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/kbukum/apphost/logger"
)

// StopTimeout bounds each component's Stop call.
const StopTimeout = 10 * time.Second

type slot struct {
	c       Component
	running bool
}

// Registry owns the host's components: started in registration order,
// stopped in reverse.
type Registry struct {
	mu    sync.RWMutex
	slots []*slot
	log   *logger.Logger
}

// NewRegistry creates an empty registry. A nil logger disables logging.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &Registry{log: log.WithComponent("registry")}
}

func (r *Registry) find(name string) *slot {
	i := slices.IndexFunc(r.slots, func(s *slot) bool { return s.c.Name() == name })
	if i < 0 {
		return nil
	}
	return r.slots[i]
}

// Register appends c. Names must be unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.find(c.Name()) != nil {
		return fmt.Errorf("component %s already registered", c.Name())
	}
	r.slots = append(r.slots, &slot{c: c})
	r.log.Debug("Component registered", logger.Fields(logger.FieldComponent, c.Name()))
	return nil
}

// StartAll starts what is not running yet and stops at the first failure.
// Components started before the failure keep running until StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.running {
			continue
		}
		began := time.Now()
		if err := s.c.Start(ctx); err != nil {
			r.log.Error("Component failed to start", logger.MergeWithError(
				logger.Fields(logger.FieldComponent, s.c.Name()), err))
			return fmt.Errorf("start %s: %w", s.c.Name(), err)
		}
		s.running = true
		fields := logger.DurationFields("start", time.Since(began))
		fields[logger.FieldComponent] = s.c.Name()
		r.log.Debug("Component started", fields)
	}
	return nil
}

// StopAll stops running components in reverse order. Every component gets
// its own StopTimeout; failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, s := range slices.Backward(r.slots) {
		if !s.running {
			continue
		}
		s.running = false
		if err := stopOne(ctx, s.c); err != nil {
			r.log.Error("Component failed to stop", logger.MergeWithError(
				logger.Fields(logger.FieldComponent, s.c.Name()), err))
			errs = append(errs, fmt.Errorf("stop %s: %w", s.c.Name(), err))
			continue
		}
		r.log.Debug("Component stopped", logger.Fields(logger.FieldComponent, s.c.Name()))
	}
	return errors.Join(errs...)
}

func stopOne(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, StopTimeout)
	defer cancel()
	return c.Stop(ctx)
}

// Close stops everything so the container can own the registry.
func (r *Registry) Close() error {
	return r.StopAll(context.Background())
}

// HealthAll checks every component in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.c.Health(ctx)
	}
	return out
}

// Get returns the component registered as name, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s := r.find(name); s != nil {
		return s.c
	}
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.c.Name()
	}
	return out
}

// Describe collects the summary lines of Describable components.
func (r *Registry) Describe() []Description {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Description
	for _, s := range r.slots {
		d, ok := s.c.(Describable)
		if !ok {
			continue
		}
		desc := d.Describe()
		if desc.Name == "" {
			desc.Name = s.c.Name()
		}
		out = append(out, desc)
	}
	return out
}
