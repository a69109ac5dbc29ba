//go:build unix

package process_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbukum/apphost/process"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name     string
		cmd      process.Command
		output   string
		exitCode int
		wantErr  bool
	}{
		{"stdout", process.Command{Binary: "echo", Args: []string{"URL", "reserved"}}, "URL reserved", 0, false},
		{"stderr fallback", process.Command{Binary: "sh", Args: []string{"-c", "echo denied >&2"}}, "denied", 0, false},
		{"env appended", process.Command{Binary: "sh", Args: []string{"-c", "echo $APPHOST_PORT"}, Env: []string{"APPHOST_PORT=8787"}}, "8787", 0, false},
		{"working dir", process.Command{Binary: "pwd", Dir: "/"}, "/", 0, false},
		{"non-zero exit", process.Command{Binary: "sh", Args: []string{"-c", "echo Error: 5 >&2; exit 5"}}, "Error: 5", 5, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := process.Run(context.Background(), tt.cmd)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.output, res.Output())
			assert.Equal(t, tt.exitCode, res.ExitCode)
		})
	}
}

func TestRun_ExitErrorCarriesCommand(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{Binary: "sh", Args: []string{"-c", "exit 3"}})

	var exitErr *process.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Equal(t, "sh -c exit 3", exitErr.Command)
}

func TestRun_MissingBinary(t *testing.T) {
	res, err := process.Run(context.Background(), process.Command{Binary: "apphost-no-such-binary"})
	require.Error(t, err)
	assert.Equal(t, -1, res.ExitCode)

	var exitErr *process.ExitError
	assert.False(t, errors.As(err, &exitErr), "a command that never started has no exit code")
}

func TestRun_EmptyBinary(t *testing.T) {
	_, err := process.Run(context.Background(), process.Command{})
	assert.Error(t, err)
}

func TestRun_ContextStopsProcess(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	res, err := process.Run(ctx, process.Command{Binary: "sleep", Args: []string{"10"}, GracePeriod: 500 * time.Millisecond})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, res.Duration, 5*time.Second)
}

func TestExec_Timeout(t *testing.T) {
	runner := process.NewExec(process.Config{Timeout: 100 * time.Millisecond, GracePeriod: 200 * time.Millisecond}, nil)

	start := time.Now()
	_, err := runner.Run(context.Background(), process.Command{Binary: "sleep", Args: []string{"10"}})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRecorder(t *testing.T) {
	rec := &process.Recorder{Respond: func(process.Command) (*process.Result, error) {
		return &process.Result{Stdout: []byte(" URL reservation successfully added \n")}, nil
	}}

	res, err := rec.Run(context.Background(), process.Command{Binary: "netsh", Args: []string{"http", "add", "urlacl"}})
	require.NoError(t, err)
	assert.Equal(t, "URL reservation successfully added", res.Output())

	cmds := rec.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "netsh http add urlacl", cmds[0].String())
}

func TestResult_Output(t *testing.T) {
	assert.Equal(t, "access denied", (&process.Result{Stderr: []byte("access denied\n")}).Output())

	var nilResult *process.Result
	assert.Empty(t, nilResult.Output())
	assert.Equal(t, "xdg-open", process.Command{Binary: "xdg-open"}.String())
}
