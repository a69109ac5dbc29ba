// Package middleware wraps the host's handler below the h2c and TLS layers,
// so every binding sees the same request pipeline.
package middleware

import (
	"net/http"
	"slices"

	"github.com/kbukum/apphost/logger"
)

// Middleware decorates an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain applies mws so that mws[0] sees the request first.
func Chain(mws ...Middleware) Middleware {
	return func(h http.Handler) http.Handler {
		for _, mw := range slices.Backward(mws) {
			h = mw(h)
		}
		return h
	}
}

// Default is the pipeline every host listener serves through.
func Default(log *logger.Logger) Middleware {
	return Chain(Recovery(log), RequestID(), RequestLogger(log))
}
