package server

import (
	"context"
	"strings"

	"github.com/kbukum/apphost/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component adapts Server to the component registry.
type Component struct {
	server *Server
}

// NewComponent wraps s.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

func (c *Component) Name() string { return componentName }

func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

// Health is healthy while listeners are bound.
func (c *Component) Health(_ context.Context) component.Health {
	if c.server.Running() {
		return component.Healthy(componentName)
	}
	return component.Unhealthy(componentName, "not listening")
}

// Describe lists the binding URLs.
func (c *Component) Describe() component.Description {
	bindings := c.server.Bindings()
	urls := make([]string, 0, len(bindings))
	for _, b := range bindings {
		urls = append(urls, b.URL())
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "listener",
		Details: strings.Join(urls, ", "),
	}
}
