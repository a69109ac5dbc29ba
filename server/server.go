package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/apphost/logger"
	"github.com/kbukum/apphost/server/middleware"
)

type listener struct {
	binding Binding
	srv     *http.Server
	ln      net.Listener
}

// Server serves one gin engine on every binding.
type Server struct {
	engine   *gin.Engine
	mux      *http.ServeMux
	config   Config
	bindings []Binding
	tlsCfg   *tls.Config
	log      *logger.Logger

	mu        sync.Mutex
	listeners []*listener
	running   bool
}

// New creates a Server with no bindings.
func New(cfg Config, log *logger.Logger) *Server {
	cfg.ApplyDefaults()
	if log == nil {
		log = logger.Nop()
	}

	zl := log.GetLogger()
	if zl.GetLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	return &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// AddBinding adds a listen endpoint. HTTPS bindings need tlsCfg.
func (s *Server) AddBinding(b Binding, tlsCfg *tls.Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("server: cannot add %s after start", b)
	}
	switch b.Scheme {
	case SchemeHTTP:
	case SchemeHTTPS:
		if tlsCfg == nil {
			return fmt.Errorf("server: %s needs a TLS config", b)
		}
		s.tlsCfg = tlsCfg
	default:
		return fmt.Errorf("server: unknown scheme %q", b.Scheme)
	}
	s.bindings = append(s.bindings, b)
	return nil
}

// GinEngine returns the engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handle mounts an http.Handler beside the engine.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{"pattern": pattern})
}

// Bindings returns the configured bindings in order.
func (s *Server) Bindings() []Binding {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Binding(nil), s.bindings...)
}

// Handler is the middleware-wrapped mux shared by every binding.
func (s *Server) Handler() http.Handler {
	return middleware.Default(s.log)(s.mux)
}

// Start binds every listener, then serves each in its own goroutine. If any
// bind fails, listeners already bound are closed and nothing is served.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}
	if len(s.bindings) == 0 {
		return errors.New("server: no bindings")
	}

	handler := s.Handler()
	bound := make([]*listener, 0, len(s.bindings))
	for _, b := range s.bindings {
		l, err := s.bind(ctx, b, handler)
		if err != nil {
			for _, prev := range bound {
				_ = prev.ln.Close()
			}
			return err
		}
		bound = append(bound, l)
	}

	for _, l := range bound {
		go s.serve(l)
		s.log.Info("Listening", map[string]interface{}{
			logger.FieldBinding: l.binding.URL(),
			"addr":              l.ln.Addr().String(),
		})
	}
	s.listeners = bound
	s.running = true
	return nil
}

func (s *Server) bind(ctx context.Context, b Binding, handler http.Handler) (*listener, error) {
	srv := &http.Server{
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}
	h2s := &http2.Server{
		MaxConcurrentStreams: s.config.MaxConcurrentStreams,
		IdleTimeout:          s.config.IdleTimeout,
	}

	if b.Secure() {
		srv.Handler = handler
		srv.TLSConfig = s.tlsCfg.Clone()
		if err := http2.ConfigureServer(srv, h2s); err != nil {
			return nil, fmt.Errorf("server: configure http2 for %s: %w", b, err)
		}
	} else {
		srv.Handler = h2c.NewHandler(handler, h2s)
	}

	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", b.ListenAddr())
	if err != nil {
		return nil, fmt.Errorf("server failed to bind %s: %w", b, err)
	}
	srv.Addr = ln.Addr().String()
	return &listener{binding: b, srv: srv, ln: ln}, nil
}

func (s *Server) serve(l *listener) {
	var err error
	if l.binding.Secure() {
		err = l.srv.ServeTLS(l.ln, "", "")
	} else {
		err = l.srv.Serve(l.ln)
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("Server error", map[string]interface{}{
			logger.FieldBinding: l.binding.URL(),
			logger.FieldError:   err.Error(),
		})
	}
}

// Stop shuts every listener down within the configured deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	var errs []error
	for _, l := range s.listeners {
		if err := l.srv.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", l.binding, err))
		}
	}
	s.listeners = nil
	s.running = false

	if err := errors.Join(errs...); err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{logger.FieldError: err.Error()})
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Running reports whether listeners are bound.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Addrs returns the bound addresses in binding order, or nil when stopped.
func (s *Server) Addrs() []net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]net.Addr, 0, len(s.listeners))
	for _, l := range s.listeners {
		out = append(out, l.ln.Addr())
	}
	return out
}
