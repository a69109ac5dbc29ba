package errors

// Kind is a machine-readable startup failure category.
type Kind string

// Configuration errors
const (
	// KindInvalidConfig indicates a malformed configuration file or value.
	KindInvalidConfig Kind = "INVALID_CONFIG"
	// KindAccessDenied indicates a configuration source exists but cannot be read.
	KindAccessDenied Kind = "ACCESS_DENIED"
)

// Certificate errors
const (
	// KindCertificateNotFound indicates the certificate file is missing or inaccessible.
	KindCertificateNotFound Kind = "CERTIFICATE_NOT_FOUND"
	// KindCryptographic indicates the certificate exists but its content or password is invalid.
	KindCryptographic Kind = "CRYPTOGRAPHIC"
)

// Lifecycle errors
const (
	// KindTerminateRequested indicates a graceful stop requested during startup.
	KindTerminateRequested Kind = "TERMINATE_REQUESTED"
	// KindPlatformProbeFailure indicates the service-host probe failed.
	KindPlatformProbeFailure Kind = "PLATFORM_PROBE_FAILURE"
	// KindUnhandled indicates any other failure during composition.
	KindUnhandled Kind = "UNHANDLED"
)

var fatalKinds = map[Kind]bool{
	KindInvalidConfig:        true,
	KindAccessDenied:         true,
	KindCertificateNotFound:  true,
	KindCryptographic:        true,
	KindUnhandled:            true,
	KindTerminateRequested:   false,
	KindPlatformProbeFailure: false,
}

// IsFatalKind returns true if a failure of this kind ends the run with a non-zero exit.
func IsFatalKind(k Kind) bool {
	return fatalKinds[k]
}

// IsCryptographicKind returns true for both certificate failure kinds.
func IsCryptographicKind(k Kind) bool {
	return k == KindCertificateNotFound || k == KindCryptographic
}
