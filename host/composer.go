package host

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/apphost/component"
	"github.com/kbukum/apphost/config"
	"github.com/kbukum/apphost/database"
	"github.com/kbukum/apphost/di"
	apperrors "github.com/kbukum/apphost/errors"
	"github.com/kbukum/apphost/events"
	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/observability"
	"github.com/kbukum/apphost/platform"
	"github.com/kbukum/apphost/process"
	"github.com/kbukum/apphost/security"
	"github.com/kbukum/apphost/server"
	"github.com/kbukum/apphost/startup"
	"github.com/kbukum/apphost/utility"
	"github.com/kbukum/apphost/version"
)

// Option configures a Composer.
type Option func(*Composer)

// WithForegroundHook sets the hook applied to Interactive compositions.
func WithForegroundHook(h ForegroundHook) Option {
	return func(c *Composer) { c.foreground = h }
}

// WithRoutes adds application routes to every host composition.
func WithRoutes(r ...server.RouteRegistrar) Option {
	return func(c *Composer) { c.routes = append(c.routes, r...) }
}

// WithSubscribers declares lifecycle event handlers. They are attached
// before ApplicationStarting is published, so they observe it first.
func WithSubscribers(subs ...events.Subscription) Option {
	return func(c *Composer) { c.subscribers = append(c.subscribers, subs...) }
}

// WithRunner sets the process runner used by utility routes.
func WithRunner(r process.Runner) Option {
	return func(c *Composer) { c.runner = r }
}

// WithOutput sets where utility routes print.
func WithOutput(w io.Writer) Option {
	return func(c *Composer) { c.out = w }
}

// WithDialector overrides the driver of both stores.
func WithDialector(fn database.DialectorFunc) Option {
	return func(c *Composer) { c.dialector = fn }
}

// WithLoaderOptions passes options to config.Load.
func WithLoaderOptions(opts ...config.LoaderOption) Option {
	return func(c *Composer) { c.loaderOpts = append(c.loaderOpts, opts...) }
}

// WithServerConfig sets listener timeouts.
func WithServerConfig(cfg server.Config) Option {
	return func(c *Composer) { c.serverCfg = cfg }
}

// WithLoggerFactory replaces how the logging step builds the run logger.
// The default installs a global logger from the logging section.
func WithLoggerFactory(fn func(logger.Config) *logger.Logger) Option {
	return func(c *Composer) { c.newLogger = fn }
}

// Composer builds the Runtime for a mode.
type Composer struct {
	startCtx  *startup.Context
	platform  platform.Platform
	folders   config.Folders
	log       *logger.Logger
	container di.Container

	foreground  ForegroundHook
	routes      []server.RouteRegistrar
	subscribers []events.Subscription
	runner      process.Runner
	out         io.Writer
	dialector   database.DialectorFunc
	loaderOpts  []config.LoaderOption
	serverCfg   server.Config
	newLogger   func(logger.Config) *logger.Logger
}

// NewComposer creates a Composer. The container exists from this point so
// shutdown can release it even when composition fails.
func NewComposer(startCtx *startup.Context, plat platform.Platform, folders config.Folders, log *logger.Logger, opts ...Option) *Composer {
	if log == nil {
		log = logger.Nop()
	}
	c := &Composer{
		startCtx: startCtx,
		platform: plat,
		folders:  folders,
		log:      log.WithComponent("host"),
		newLogger: func(cfg logger.Config) *logger.Logger {
			return logger.Init(cfg, version.AppName)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		c.runner = process.NewExec(process.Config{}, log)
	}
	c.container = di.NewContainer(di.WithLogger(log))
	return c
}

// Container returns the composition container.
func (c *Composer) Container() di.Container { return c.container }

// Compose builds the runtime for mode.
func (c *Composer) Compose(ctx context.Context, mode startup.Mode) (rt Runtime, err error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanCompose,
		trace.WithAttributes(attribute.String(observability.AttrMode, mode.String())))
	defer func() { observability.EndSpan(span, err) }()

	if mode.IsUtility() {
		return c.composeUtility(mode)
	}
	return c.composeHost(ctx, mode)
}

// registerRoot registers what every mode needs before configuration is
// read. Host compositions register the startup context later, as a step.
func (c *Composer) registerRoot(mode startup.Mode) error {
	root := []struct {
		key string
		v   interface{}
	}{
		{di.Keys.Mode, mode},
		{di.Keys.Folders, c.folders},
		{di.Keys.Platform, c.platform},
	}
	for _, r := range root {
		if err := c.container.RegisterSingleton(r.key, r.v); err != nil {
			return err
		}
	}
	return c.container.RegisterLazy(di.Keys.Config, func() (*config.HostConfig, error) {
		return config.Load(c.folders, c.loaderOpts...)
	})
}

func (c *Composer) composeUtility(mode startup.Mode) (Runtime, error) {
	if err := c.registerRoot(mode); err != nil {
		return nil, err
	}
	if err := c.container.RegisterSingleton(di.Keys.StartupContext, c.startCtx); err != nil {
		return nil, err
	}
	if err := c.container.RegisterSingleton(di.Keys.Logger, c.log); err != nil {
		return nil, err
	}
	err := c.container.RegisterLazy(di.Keys.UtilityRouter, func(ct di.Container) *utility.Router {
		return utility.NewRouter(utility.Options{
			StartupContext: c.startCtx,
			Platform:       c.platform,
			Runner:         c.runner,
			Out:            c.out,
			Logger:         c.log,
			Config: func() (*config.HostConfig, error) {
				return di.Resolve[*config.HostConfig](ct, di.Keys.Config)
			},
		})
	})
	if err != nil {
		return nil, err
	}
	router, err := di.Resolve[*utility.Router](c.container, di.Keys.UtilityRouter)
	if err != nil {
		return nil, err
	}
	return &utilityRuntime{
		mode:   mode,
		steps:  []string{StepStartupContext, StepUtilityRouter},
		router: router,
	}, nil
}

func (c *Composer) composeHost(ctx context.Context, mode startup.Mode) (Runtime, error) {
	if err := c.registerRoot(mode); err != nil {
		return nil, err
	}

	cfg, err := c.loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	bindings := []server.Binding{server.HTTPBinding(cfg.BindAddress, cfg.Port)}
	var cert *security.Certificate
	if cfg.SSLRequested() {
		bindings = append(bindings, server.HTTPSBinding(cfg.BindAddress, cfg.SSLPort))
		if cert, err = c.validateCertificate(ctx, cfg); err != nil {
			return nil, err
		}
	}

	var steps []string
	step := func(name string) {
		steps = append(steps, name)
		c.log.Debug("Composition step", logger.Fields(logger.FieldStep, name, logger.FieldMode, mode.String()))
	}

	// logging
	log := c.newLogger(cfg.Logging)
	c.log = log.WithComponent("host")
	if err := c.container.RegisterSingleton(di.Keys.Logger, log); err != nil {
		return nil, err
	}
	c.initTracing(ctx, cfg)
	step(StepLogging)

	registry := component.NewRegistry(log)
	if err := c.container.RegisterSingleton(di.Keys.Components, registry); err != nil {
		return nil, err
	}

	// persistence
	if err := c.folders.Ensure(); err != nil {
		return nil, apperrors.AccessDenied(c.folders.AppDataPath(), err)
	}
	mainCfg, logCfg := database.StoreConfigs(cfg.Postgres, c.folders.MainDBPath(), c.folders.LogDBPath())
	for _, s := range []struct {
		key string
		cfg database.Config
	}{{di.Keys.MainStore, mainCfg}, {di.Keys.LogStore, logCfg}} {
		store := database.NewComponent(s.cfg, log).WithDriver(c.dialector)
		if err := registry.Register(store); err != nil {
			return nil, err
		}
		if err := c.container.RegisterSingleton(s.key, store); err != nil {
			return nil, err
		}
	}
	step(StepPersistence)

	if err := c.container.RegisterSingleton(di.Keys.StartupContext, c.startCtx); err != nil {
		return nil, err
	}
	step(StepStartupContext)

	aggregator := events.NewAggregator(log)
	aggregator.Attach(c.subscribers...)
	if err := c.container.RegisterSingleton(di.Keys.Events, aggregator); err != nil {
		return nil, err
	}
	aggregator.Publish(ctx, events.NewApplicationStarting())
	step(StepApplicationStarting)

	b := &Builder{
		mode:     mode,
		cfg:      *cfg,
		startCtx: c.startCtx,
		bindings: bindings,
		log:      log,
	}
	if mode == startup.ModeInteractive && c.foreground != nil {
		c.foreground(b)
	}

	srv, err := c.buildServer(bindings, cert, registry, append(append([]server.RouteRegistrar(nil), c.routes...), b.routes...))
	if err != nil {
		return nil, err
	}
	if err := registry.Register(server.NewComponent(srv)); err != nil {
		return nil, err
	}
	if err := c.container.RegisterSingleton(di.Keys.HTTPServer, srv); err != nil {
		return nil, err
	}

	for _, d := range registry.Describe() {
		c.log.Info("Component", logger.Fields("name", d.Name, logger.FieldKind, d.Type, "details", d.Details))
	}

	return &hostRuntime{
		mode:     mode,
		bindings: bindings,
		steps:    steps,
		registry: registry,
		server:   srv,
		platform: c.platform,
		onReady:  b.onReady,
		log:      c.log,
	}, nil
}

func (c *Composer) loadConfig(ctx context.Context) (cfg *config.HostConfig, err error) {
	_, span := observability.StartSpan(ctx, observability.SpanLoadConfig)
	defer func() { observability.EndSpan(span, err) }()

	cfg, err = di.Resolve[*config.HostConfig](c.container, di.Keys.Config)
	if err != nil {
		return nil, err
	}
	c.log.Debug("Configuration loaded", logger.Fields(
		logger.FieldPath, c.folders.ConfigPath(),
		"port", cfg.Port,
		"ssl", cfg.SSLRequested(),
	))
	return cfg, nil
}

func (c *Composer) validateCertificate(ctx context.Context, cfg *config.HostConfig) (cert *security.Certificate, err error) {
	_, span := observability.StartSpan(ctx, observability.SpanValidateCertificate)
	defer func() { observability.EndSpan(span, err) }()

	cert, err = security.ValidateCertificate(cfg.SSLCertPath, cfg.SSLCertPassword)
	if err != nil {
		return nil, err
	}
	if err := c.container.RegisterSingleton(di.Keys.Certificate, cert); err != nil {
		return nil, err
	}
	c.log.Info("Certificate loaded", logger.Fields(logger.FieldPath, cert.Path(), "certificate", cert.String()))
	return cert, nil
}

func (c *Composer) initTracing(ctx context.Context, cfg *config.HostConfig) {
	tc := cfg.Tracing
	tc.ServiceName = version.ServiceName
	tc.ServiceVersion = version.Version
	if _, err := observability.InitTracer(ctx, tc, c.log); err != nil {
		c.log.Warn("Tracing disabled", logger.Fields(logger.FieldError, err.Error()))
	}
}

func (c *Composer) buildServer(bindings []server.Binding, cert *security.Certificate, src observability.HealthSource, routes []server.RouteRegistrar) (*server.Server, error) {
	scfg := c.serverCfg
	scfg.ServiceName = version.ServiceName
	scfg.Version = version.Version

	srv := server.New(scfg, c.log)
	for _, b := range bindings {
		var tlsCfg *tls.Config
		if b.Secure() {
			tlsCfg = security.ServerTLSConfig(cert, 0)
		}
		if err := srv.AddBinding(b, tlsCfg); err != nil {
			return nil, fmt.Errorf("binding %s: %w", b, err)
		}
	}
	srv.RegisterSystemRoutes(src)
	srv.RegisterRoutes(routes...)
	return srv, nil
}
