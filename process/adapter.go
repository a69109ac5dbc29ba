package process

import (
	"context"
	"sync"
	"time"

	"github.com/kbukum/apphost/logger"
)

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// Config holds defaults applied by Exec.
type Config struct {
	// GracePeriod is the default grace period before kill.
	GracePeriod time.Duration `yaml:"grace_period,omitempty" mapstructure:"grace_period"`
	// Timeout is the default execution timeout. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout,omitempty" mapstructure:"timeout"`
}

// Exec runs commands for real, applying Config defaults and logging each
// command at debug level.
type Exec struct {
	config Config
	log    *logger.Logger
}

var _ Runner = (*Exec)(nil)

// NewExec creates an Exec runner. A nil logger discards.
func NewExec(cfg Config, log *logger.Logger) *Exec {
	if log == nil {
		log = logger.Nop()
	}
	return &Exec{config: cfg, log: log.WithComponent("process")}
}

// Run executes cmd with the configured defaults.
func (e *Exec) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.GracePeriod == 0 && e.config.GracePeriod > 0 {
		cmd.GracePeriod = e.config.GracePeriod
	}
	if e.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()
	}

	res, err := Run(ctx, cmd)
	fields := map[string]interface{}{"command": cmd.String()}
	if res != nil {
		fields["exit_code"] = res.ExitCode
		fields[logger.FieldDuration] = res.Duration.Milliseconds()
	}
	if err != nil {
		fields = logger.MergeWithError(fields, err)
	}
	e.log.Debug("Command finished", fields)
	return res, err
}

// Recorder is a Runner that records commands and returns canned results.
type Recorder struct {
	mu       sync.Mutex
	commands []Command
	// Respond, when set, produces the result for each command.
	Respond func(cmd Command) (*Result, error)
}

var _ Runner = (*Recorder)(nil)

// Run records cmd.
func (r *Recorder) Run(_ context.Context, cmd Command) (*Result, error) {
	r.mu.Lock()
	r.commands = append(r.commands, cmd)
	respond := r.Respond
	r.mu.Unlock()

	if respond != nil {
		return respond(cmd)
	}
	return &Result{}, nil
}

// Commands returns the recorded commands in order.
func (r *Recorder) Commands() []Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Command(nil), r.commands...)
}
