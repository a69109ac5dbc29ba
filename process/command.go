package process

import (
	"fmt"
	"strings"
	"time"
)

// Command is a helper program to run: an OS tool such as netsh or
// xdg-open.
type Command struct {
	Binary string
	Args   []string
	// Dir is the working directory; empty means the current one.
	Dir string
	// Env entries are appended to the inherited environment.
	Env []string
	// GracePeriod is the wait between the stop signal and a kill when the
	// context ends first. Zero means DefaultGracePeriod.
	GracePeriod time.Duration
}

// DefaultGracePeriod applies when Command.GracePeriod is zero.
const DefaultGracePeriod = 5 * time.Second

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Binary
	}
	return c.Binary + " " + strings.Join(c.Args, " ")
}

// Result is what a finished command left behind.
type Result struct {
	Stdout []byte
	Stderr []byte
	// ExitCode is -1 when the command never started or was killed.
	ExitCode int
	Duration time.Duration
}

// Output is the trimmed stdout, or the trimmed stderr when stdout is empty.
func (r *Result) Output() string {
	if r == nil {
		return ""
	}
	if out := strings.TrimSpace(string(r.Stdout)); out != "" {
		return out
	}
	return strings.TrimSpace(string(r.Stderr))
}

// ExitError reports a command that ran and exited non-zero.
type ExitError struct {
	Command string
	Code    int
	Err     error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("process: %s exited with code %d", e.Command, e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }
