package observability

import (
	"context"

	"github.com/kbukum/apphost/component"
)

// ServiceHealth is the /health response body.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// HealthSource reports component health; component.Registry satisfies it.
type HealthSource interface {
	HealthAll(ctx context.Context) []component.Health
}

// NewServiceHealth creates a healthy ServiceHealth.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{Service: service, Status: component.StatusHealthy, Version: version}
}

// Collect builds a ServiceHealth from every component in src.
func Collect(ctx context.Context, service, version string, src HealthSource) *ServiceHealth {
	sh := NewServiceHealth(service, version)
	if src == nil {
		return sh
	}
	for _, h := range src.HealthAll(ctx) {
		sh.AddComponent(h)
	}
	return sh
}

// AddComponent adds a result. Unhealthy wins over degraded, degraded over healthy.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)

	switch h.Status {
	case component.StatusUnhealthy:
		sh.Status = component.StatusUnhealthy
	case component.StatusDegraded:
		if sh.Status != component.StatusUnhealthy {
			sh.Status = component.StatusDegraded
		}
	}
}

// Healthy reports whether no component is unhealthy.
func (sh *ServiceHealth) Healthy() bool {
	return sh.Status != component.StatusUnhealthy
}
