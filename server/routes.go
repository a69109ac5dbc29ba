package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/apphost/observability"
	"github.com/kbukum/apphost/server/endpoint"
)

// RouteRegistrar adds the hosted application's routes.
type RouteRegistrar interface {
	RegisterRoutes(r gin.IRouter)
}

// RouteRegistrarFunc adapts a function to RouteRegistrar.
type RouteRegistrarFunc func(r gin.IRouter)

func (f RouteRegistrarFunc) RegisterRoutes(r gin.IRouter) { f(r) }

// RegisterSystemRoutes adds /ping, /health and /version.
func (s *Server) RegisterSystemRoutes(src observability.HealthSource) {
	s.engine.GET("/ping", endpoint.Ping())
	s.engine.GET("/health", endpoint.Health(s.config.ServiceName, s.config.Version, src))
	s.engine.GET("/version", endpoint.Version(time.Now()))
}

// RegisterRoutes hands the engine to every registrar in order.
func (s *Server) RegisterRoutes(registrars ...RouteRegistrar) {
	for _, r := range registrars {
		if r != nil {
			r.RegisterRoutes(s.engine)
		}
	}
}
