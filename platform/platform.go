package platform

import (
	"context"
	"errors"
)

// ErrUnsupported is returned by service-manager operations on platforms
// without service registration.
var ErrUnsupported = errors.New("platform: service registration is not supported on this platform")

// Capabilities answers the questions asked during mode resolution.
type Capabilities interface {
	// Name identifies the platform in logs.
	Name() string
	// SupportsServiceRegistration reports whether install, uninstall and
	// URL reservation are available.
	SupportsServiceRegistration() bool
	// IsServiceHost reports whether the process was started by the
	// service manager. The probe may fail.
	IsServiceHost() (bool, error)
}

// ServiceFunc is the body of a service run. It must call ready once the
// runtime accepts traffic and return when ctx is canceled.
type ServiceFunc func(ctx context.Context, ready func()) error

// ServiceHost runs a runtime under the platform service manager.
type ServiceHost interface {
	RunService(ctx context.Context, name string, fn ServiceFunc) error
}

// ServiceSpec describes a service to register.
type ServiceSpec struct {
	Name        string
	DisplayName string
	Description string
	Executable  string
	Args        []string
}

// ServiceManager installs and removes the service registration.
type ServiceManager interface {
	Install(spec ServiceSpec) error
	Start(name string) error
	Stop(name string) error
	Uninstall(name string) error
}

// Platform bundles everything the bootstrap needs from the OS.
type Platform interface {
	Capabilities
	ServiceHost
	ServiceManager
}

// Current returns the platform for the running OS.
func Current() Platform {
	return current()
}

// unsupportedManager rejects every registration call.
type unsupportedManager struct{}

func (unsupportedManager) Install(ServiceSpec) error { return ErrUnsupported }
func (unsupportedManager) Start(string) error        { return ErrUnsupported }
func (unsupportedManager) Stop(string) error         { return ErrUnsupported }
func (unsupportedManager) Uninstall(string) error    { return ErrUnsupported }

// runForeground runs fn directly, signalling readiness through notify.
func runForeground(ctx context.Context, fn ServiceFunc, notify func()) error {
	if notify == nil {
		notify = func() {}
	}
	return fn(ctx, notify)
}
