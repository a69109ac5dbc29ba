// Package server is the HTTP host: one gin engine served on every binding.
//
// The HTTP binding speaks HTTP/1.1 and cleartext HTTP/2 (h2c). The HTTPS
// binding uses the validated certificate and negotiates h2 over TLS. No
// request body limit and no read or write timeout is applied, so uploads and
// long polls are bounded only by the client.
//
// Every server answers /ping and /health. Application routes come from a
// RouteRegistrar.
//
// Handler-level middleware (server/middleware) wraps the whole mux:
// recovery, request ID and request logging.
package server
