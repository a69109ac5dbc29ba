package errors

import (
	stderrors "errors"
	"fmt"
)

// StartupError is a failure tagged with the Kind that decides how the run
// ends. Message names the probable cause for the operator.
type StartupError struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *StartupError) Error() string {
	if e.Cause == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (cause: %v)", e.Kind, e.Message, e.Cause)
}

func (e *StartupError) Unwrap() error { return e.Cause }

// Fatal reports whether the run exits non-zero.
func (e *StartupError) Fatal() bool { return IsFatalKind(e.Kind) }

func (e *StartupError) WithCause(cause error) *StartupError {
	e.Cause = cause
	return e
}

// WithDetails merges details over the existing ones.
func (e *StartupError) WithDetails(details map[string]any) *StartupError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

func (e *StartupError) WithDetail(key string, value any) *StartupError {
	if e.Details == nil {
		e.Details = map[string]any{}
	}
	e.Details[key] = value
	return e
}

func New(kind Kind, message string) *StartupError {
	return &StartupError{Kind: kind, Message: message}
}

func tagged(kind Kind, cause error, format string, args ...any) *StartupError {
	return &StartupError{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// InvalidConfig: a configuration source could not be parsed or validated.
func InvalidConfig(source string, cause error) *StartupError {
	return tagged(KindInvalidConfig, cause, "Configuration %s is invalid", source).
		WithDetail("source", source)
}

// AccessDenied: the configuration file or a data folder is not accessible.
func AccessDenied(path string, cause error) *StartupError {
	return tagged(KindAccessDenied, cause, "Unable to read configuration file %s: access denied", path).
		WithDetail("path", path)
}

func CertificateNotFound(path string, cause error) *StartupError {
	return tagged(KindCertificateNotFound, cause, "The SSL certificate file %s does not exist", path).
		WithDetail("path", path)
}

// Cryptographic: the certificate exists but cannot be decoded with the
// configured password.
func Cryptographic(path string, cause error) *StartupError {
	return tagged(KindCryptographic, cause,
		"The SSL certificate file %s could not be loaded. Check the file format and password", path).
		WithDetail("path", path)
}

// TerminateRequested stops a run without an error exit.
func TerminateRequested(reason string) *StartupError {
	return New(KindTerminateRequested, reason)
}

func PlatformProbeFailure(cause error) *StartupError {
	return tagged(KindPlatformProbeFailure, cause, "Unable to determine whether the process runs as a service")
}

// Unhandled tags anything nobody classified.
func Unhandled(cause error) *StartupError {
	return tagged(KindUnhandled, cause, "An unexpected error occurred during startup")
}

// --- Classification ---

// Wrap returns err as a *StartupError. Untagged errors become KindUnhandled.
func Wrap(err error) *StartupError {
	if err == nil {
		return nil
	}
	if se, ok := AsStartupError(err); ok {
		return se
	}
	return Unhandled(err)
}

// AsStartupError extracts a *StartupError from the chain if present.
func AsStartupError(err error) (*StartupError, bool) {
	var se *StartupError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// KindOf returns the kind of err. It returns "" for nil and KindUnhandled for
// errors without a tag.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	if se, ok := AsStartupError(err); ok {
		return se.Kind
	}
	return KindUnhandled
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsFatal reports whether err ends the run with a non-zero exit.
func IsFatal(err error) bool {
	return err != nil && IsFatalKind(KindOf(err))
}

// ExitCode maps a run result to the process exit code.
func ExitCode(err error) int {
	if IsFatal(err) {
		return 1
	}
	return 0
}
