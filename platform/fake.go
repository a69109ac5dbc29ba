package platform

import (
	"context"
	"sync"
)

// Fake is a deterministic Platform for tests.
type Fake struct {
	// Registration is returned by SupportsServiceRegistration.
	Registration bool
	// ServiceHost and ProbeErr are returned by IsServiceHost.
	ServiceHost bool
	ProbeErr    error
	// ManagerErr is returned by every ServiceManager call when set.
	ManagerErr error
	// OnReady runs after RunService records "ready".
	OnReady func()

	mu         sync.Mutex
	probeCalls int
	calls      []string
}

var _ Platform = (*Fake)(nil)

func (f *Fake) Name() string { return "fake" }

func (f *Fake) SupportsServiceRegistration() bool { return f.Registration }

func (f *Fake) IsServiceHost() (bool, error) {
	f.mu.Lock()
	f.probeCalls++
	f.mu.Unlock()
	return f.ServiceHost, f.ProbeErr
}

func (f *Fake) RunService(ctx context.Context, name string, fn ServiceFunc) error {
	f.record("run-service:" + name)
	return fn(ctx, func() {
		f.record("ready")
		if f.OnReady != nil {
			f.OnReady()
		}
	})
}

func (f *Fake) Install(spec ServiceSpec) error { return f.manage("install:" + spec.Name) }
func (f *Fake) Start(name string) error        { return f.manage("start:" + name) }
func (f *Fake) Stop(name string) error         { return f.manage("stop:" + name) }
func (f *Fake) Uninstall(name string) error    { return f.manage("uninstall:" + name) }

// ProbeCalls returns how many times IsServiceHost was called.
func (f *Fake) ProbeCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probeCalls
}

// Calls returns the recorded service host and manager calls in order.
func (f *Fake) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *Fake) manage(call string) error {
	f.record(call)
	return f.ManagerErr
}

func (f *Fake) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}
