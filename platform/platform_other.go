//go:build !linux && !windows

package platform

import (
	"context"
	"runtime"
)

type generic struct {
	unsupportedManager
}

func current() Platform {
	return generic{}
}

func (generic) Name() string { return runtime.GOOS }

func (generic) SupportsServiceRegistration() bool { return false }

func (generic) IsServiceHost() (bool, error) { return false, nil }

func (generic) RunService(ctx context.Context, _ string, fn ServiceFunc) error {
	return runForeground(ctx, fn, nil)
}
