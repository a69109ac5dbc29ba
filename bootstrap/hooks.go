package bootstrap

import (
	"context"
	"time"

	"github.com/kbukum/apphost/logger"
)

// Hook is one shutdown step.
type Hook func(ctx context.Context) error

type namedHook struct {
	name string
	fn   Hook
}

// runHooks runs every hook in order. A failing hook is logged and does not
// stop the ones after it; the errors are returned in order.
func runHooks(ctx context.Context, log *logger.Logger, hooks []namedHook) []error {
	var errs []error
	for _, h := range hooks {
		start := time.Now()
		err := h.fn(ctx)
		fields := logger.DurationFields(h.name, time.Since(start))
		fields[logger.FieldStep] = h.name
		if err != nil {
			log.Warn("Shutdown step failed", logger.MergeWithError(fields, err))
			errs = append(errs, err)
			continue
		}
		log.Debug("Shutdown step done", fields)
	}
	return errs
}
