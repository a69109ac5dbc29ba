// Package host composes the runtime for a resolved mode.
//
// Service and Interactive share one composition: configuration, bindings
// (HTTP always, HTTPS when enabled with a certificate path), then the fixed
// steps logging, persistence, startup-context and application-starting. The
// certificate is validated before any listener exists, so a bad certificate
// aborts the run without binding a port. Service runs under the platform
// service manager; Interactive runs directly and may carry a foreground
// hook.
//
// Utility modes get a minimal composition root with no listener and no
// lifecycle event; their runtime hands the mode to the utility router.
package host
