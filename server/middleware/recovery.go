package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/kbukum/apphost/logger"
)

const internalErrorBody = `{"error":"Internal server error"}`

// Recovery answers 500 when a handler panics. http.ErrAbortHandler is
// re-raised so net/http can drop the connection.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				log.Error("Handler panicked", logger.Fields(
					logger.FieldError, fmt.Sprint(rec),
					logger.FieldPath, r.URL.Path,
					"method", r.Method,
					"stack", string(debug.Stack()),
				))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(internalErrorBody))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
