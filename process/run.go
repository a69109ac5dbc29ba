package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Run starts cmd and waits for it. When ctx ends first the process group
// gets a stop signal, then a kill once the grace period has passed.
func Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, errors.New("process: empty binary")
	}

	var stdout, stderr bytes.Buffer
	c := prepare(ctx, cmd, &stdout, &stderr)

	start := time.Now()
	runErr := c.Run()
	res := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: c.ProcessState.ExitCode(),
		Duration: time.Since(start),
	}

	var exitErr *exec.ExitError
	switch {
	case runErr == nil:
		return res, nil
	case ctx.Err() != nil:
		return res, fmt.Errorf("process: %s stopped: %w", cmd.Binary, ctx.Err())
	case errors.As(runErr, &exitErr):
		return res, &ExitError{Command: cmd.String(), Code: res.ExitCode, Err: runErr}
	default:
		return res, fmt.Errorf("process: start %s: %w", cmd.Binary, runErr)
	}
}

func prepare(ctx context.Context, cmd Command, stdout, stderr *bytes.Buffer) *exec.Cmd {
	c := exec.CommandContext(ctx, cmd.Binary, cmd.Args...) //nolint:gosec // callers choose fixed OS tools
	c.Dir = cmd.Dir
	if len(cmd.Env) > 0 {
		c.Env = append(os.Environ(), cmd.Env...)
	}
	c.Stdout, c.Stderr = stdout, stderr

	setProcessGroup(c)
	c.Cancel = func() error { return interruptGroup(c) }
	c.WaitDelay = cmd.GracePeriod
	if c.WaitDelay <= 0 {
		c.WaitDelay = DefaultGracePeriod
	}
	return c
}
