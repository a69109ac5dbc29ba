package di

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/apphost/logger"
)

// RegistrationMode determines how a component is resolved.
type RegistrationMode int

const (
	Eager     RegistrationMode = iota // constructed on registration
	Lazy                              // constructed on first resolve
	Singleton                         // pre-created instance
)

func (m RegistrationMode) String() string {
	switch m {
	case Eager:
		return "eager"
	case Lazy:
		return "lazy"
	case Singleton:
		return "singleton"
	}
	return "unknown"
}

// ErrClosed is returned by Resolve and Register* after Close.
var ErrClosed = errors.New("di: container closed")

// Container defines the composition root.
type Container interface {
	RegisterSingleton(key string, instance interface{}) error
	RegisterLazy(key string, constructor interface{}) error
	RegisterEager(key string, constructor interface{}) error
	Resolve(key string) (interface{}, error)
	Has(key string) bool
	Registrations() []RegistrationInfo
	Close() error
	Closed() bool
}

// RegistrationInfo describes a registered component.
type RegistrationInfo struct {
	Key         string
	Mode        RegistrationMode
	Initialized bool
}

type registration struct {
	key         string
	constructor interface{}
	mode        RegistrationMode

	once     sync.Once
	instance interface{}
	err      error
	done     bool
}

type container struct {
	mu     sync.Mutex
	regs   map[string]*registration
	order  []string // registration order
	inits  []string // initialization order, for Close
	closed bool
	log    *logger.Logger
}

// Option configures a container.
type Option func(*container)

// WithLogger sets the logger used for lazy initialization and close.
func WithLogger(l *logger.Logger) Option {
	return func(c *container) {
		if l != nil {
			c.log = l.WithComponent("di")
		}
	}
}

// NewContainer returns an empty container.
func NewContainer(opts ...Option) Container {
	c := &container{
		regs: make(map[string]*registration),
		log:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *container) add(r *registration) error {
	if r.key == "" {
		return fmt.Errorf("di: empty key")
	}
	if c.closed {
		return ErrClosed
	}
	if _, exists := c.regs[r.key]; exists {
		return fmt.Errorf("di: %s already registered", r.key)
	}
	c.regs[r.key] = r
	c.order = append(c.order, r.key)
	return nil
}

// RegisterSingleton registers a pre-created instance.
func (c *container) RegisterSingleton(key string, instance interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	r := &registration{key: key, mode: Singleton, instance: instance, done: true}
	r.once.Do(func() {})
	if err := c.add(r); err != nil {
		return err
	}
	c.inits = append(c.inits, key)
	return nil
}

// RegisterLazy registers a constructor run on first Resolve.
func (c *container) RegisterLazy(key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("di: %s: %w", key, err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.add(&registration{key: key, constructor: constructor, mode: Lazy})
}

// RegisterEager runs the constructor now and fails if it fails.
func (c *container) RegisterEager(key string, constructor interface{}) error {
	if err := checkConstructor(constructor); err != nil {
		return fmt.Errorf("di: %s: %w", key, err)
	}
	c.mu.Lock()
	r := &registration{key: key, constructor: constructor, mode: Eager}
	err := c.add(r)
	c.mu.Unlock()
	if err != nil {
		return err
	}

	if _, err := c.initialize(r); err != nil {
		return fmt.Errorf("di: failed to initialize eager component %s: %w", key, err)
	}
	return nil
}

// Resolve returns the instance for key, constructing it if lazy.
func (c *container) Resolve(key string) (interface{}, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	r, ok := c.regs[key]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("di: component not registered: %s", key)
	}
	return c.initialize(r)
}

// Has reports whether key is registered.
func (c *container) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.regs[key]
	return ok
}

func (c *container) initialize(r *registration) (interface{}, error) {
	r.once.Do(func() {
		r.instance, r.err = c.callConstructor(r.constructor)

		c.mu.Lock()
		r.done = true
		if r.err == nil {
			c.inits = append(c.inits, r.key)
		}
		c.mu.Unlock()

		if r.err != nil {
			c.log.Debug("Component initialization failed", logger.Fields("key", r.key, logger.FieldError, r.err.Error()))
			return
		}
		c.log.Debug("Component initialized", logger.Fields("key", r.key, "mode", r.mode.String()))
	})
	return r.instance, r.err
}

func checkConstructor(constructor interface{}) error {
	t := reflect.TypeOf(constructor)
	if t == nil || t.Kind() != reflect.Func {
		return fmt.Errorf("constructor must be a function")
	}
	if t.NumOut() < 1 || t.NumOut() > 2 {
		return fmt.Errorf("constructor must return (instance) or (instance, error)")
	}
	if t.NumOut() == 2 && !t.Out(1).Implements(errorType) {
		return fmt.Errorf("second constructor result must be an error")
	}
	if t.NumIn() > 1 {
		return fmt.Errorf("constructor takes at most one argument")
	}
	return nil
}

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	containerType = reflect.TypeOf((*Container)(nil)).Elem()
	errorType     = reflect.TypeOf((*error)(nil)).Elem()
)

func (c *container) callConstructor(constructor interface{}) (interface{}, error) {
	fn := reflect.ValueOf(constructor)
	fnType := fn.Type()

	var in []reflect.Value
	if fnType.NumIn() == 1 {
		switch fnType.In(0) {
		case contextType:
			in = []reflect.Value{reflect.ValueOf(context.Background())}
		case containerType:
			in = []reflect.Value{reflect.ValueOf(Container(c))}
		default:
			return nil, fmt.Errorf("unsupported constructor argument %s", fnType.In(0))
		}
	}

	results := fn.Call(in)
	if len(results) == 2 && !results[1].IsNil() {
		return nil, results[1].Interface().(error)
	}
	return results[0].Interface(), nil
}

// Registrations lists components in registration order.
func (c *container) Registrations() []RegistrationInfo {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]RegistrationInfo, 0, len(c.order))
	for _, key := range c.order {
		r := c.regs[key]
		out = append(out, RegistrationInfo{Key: key, Mode: r.mode, Initialized: r.done && r.err == nil})
	}
	return out
}

// Close releases initialized instances in reverse order of initialization.
// Later calls return nil.
func (c *container) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	inits := append([]string(nil), c.inits...)
	c.mu.Unlock()

	var errs []error
	for i := len(inits) - 1; i >= 0; i-- {
		r := c.regs[inits[i]]
		closer, ok := r.instance.(interface{ Close() error })
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			c.log.Warn("Component close failed", logger.Fields("key", r.key, logger.FieldError, err.Error()))
			errs = append(errs, fmt.Errorf("%s: %w", r.key, err))
		}
	}
	c.log.Debug("Container closed", logger.Fields("components", len(inits)))
	return errors.Join(errs...)
}

// Closed reports whether Close has run.
func (c *container) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
