package component

import "context"

// HealthStatus is reported on /health per component.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy returns a healthy entry for name.
func Healthy(name string) Health {
	return Health{Name: name, Status: StatusHealthy}
}

// Unhealthy returns an unhealthy entry for name with a reason.
func Unhealthy(name, reason string) Health {
	return Health{Name: name, Status: StatusUnhealthy, Message: reason}
}

// Component is something the host starts before serving and stops on
// the way out: a store, a listener.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description feeds the composition summary.
type Description struct {
	Name    string
	Type    string // "database", "listener"
	Details string
}

// Describable components show up in the composition summary.
type Describable interface {
	Describe() Description
}
