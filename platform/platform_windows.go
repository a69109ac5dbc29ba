//go:build windows

package platform

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

type windowsPlatform struct{}

func current() Platform {
	return windowsPlatform{}
}

func (windowsPlatform) Name() string { return "windows" }

func (windowsPlatform) SupportsServiceRegistration() bool { return true }

func (windowsPlatform) IsServiceHost() (bool, error) {
	return svc.IsWindowsService()
}

// RunService hands control to the service control manager until it asks the
// service to stop.
func (windowsPlatform) RunService(ctx context.Context, name string, fn ServiceFunc) error {
	h := &handler{ctx: ctx, fn: fn}
	if err := svc.Run(name, h); err != nil {
		return fmt.Errorf("platform: run service %s: %w", name, err)
	}
	return h.err
}

type handler struct {
	ctx context.Context
	fn  ServiceFunc
	err error
}

func (h *handler) Execute(_ []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const accepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(h.ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- h.fn(ctx, func() {
			changes <- svc.Status{State: svc.Running, Accepts: accepted}
		})
	}()

	for {
		select {
		case err := <-done:
			h.err = err
			changes <- svc.Status{State: svc.StopPending}
			if err != nil {
				return false, 1
			}
			return false, 0
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				changes <- svc.Status{State: svc.StopPending}
				cancel()
			}
		}
	}
}

func (windowsPlatform) Install(spec ServiceSpec) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("platform: connect service manager: %w", err)
	}
	defer func() { _ = m.Disconnect() }()

	if s, err := m.OpenService(spec.Name); err == nil {
		_ = s.Close()
		return fmt.Errorf("platform: service %s already exists", spec.Name)
	}

	s, err := m.CreateService(spec.Name, spec.Executable, mgr.Config{
		DisplayName: spec.DisplayName,
		Description: spec.Description,
		StartType:   mgr.StartAutomatic,
	}, spec.Args...)
	if err != nil {
		return fmt.Errorf("platform: create service %s: %w", spec.Name, err)
	}
	return s.Close()
}

func (windowsPlatform) Start(name string) error {
	return withService(name, func(s *mgr.Service) error {
		return s.Start()
	})
}

// Stop requests a stop and waits up to 30 seconds for the service to report
// Stopped.
func (windowsPlatform) Stop(name string) error {
	return withService(name, func(s *mgr.Service) error {
		status, err := s.Control(svc.Stop)
		if err != nil {
			return err
		}
		deadline := time.Now().Add(30 * time.Second)
		for status.State != svc.Stopped {
			if time.Now().After(deadline) {
				return fmt.Errorf("timed out waiting for %s to stop", name)
			}
			time.Sleep(300 * time.Millisecond)
			if status, err = s.Query(); err != nil {
				return err
			}
		}
		return nil
	})
}

func (windowsPlatform) Uninstall(name string) error {
	return withService(name, func(s *mgr.Service) error {
		return s.Delete()
	})
}

func withService(name string, fn func(*mgr.Service) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("platform: connect service manager: %w", err)
	}
	defer func() { _ = m.Disconnect() }()

	s, err := m.OpenService(name)
	if err != nil {
		return fmt.Errorf("platform: open service %s: %w", name, err)
	}
	defer func() { _ = s.Close() }()

	if err := fn(s); err != nil {
		return fmt.Errorf("platform: service %s: %w", name, err)
	}
	return nil
}
