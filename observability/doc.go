// Package observability traces the bootstrap phases with OpenTelemetry and
// shapes component health for the /health endpoint.
//
// Tracing is off unless configured; spans then go to the global no-op
// provider. When enabled, spans are exported over OTLP/HTTP and flushed by
// Shutdown during the exit sequence.
//
//	tr, err := observability.InitTracer(ctx, cfg.Tracing, log)
//	ctx, span := observability.StartSpan(ctx, observability.SpanCompose)
//	defer span.End()
package observability
