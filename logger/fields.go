package logger

import "time"

// Field keys shared by every package that logs during startup.
const (
	FieldComponent = "component"
	FieldMode      = "mode"
	FieldPhase     = "phase"
	FieldStep      = "step"
	FieldBinding   = "binding"
	FieldPath      = "path"
	FieldKind      = "kind"
	FieldPlatform  = "platform"
	FieldVersion   = "version"
	FieldOperation = "operation"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
)

// Fields pairs up alternating keys and values. Non-string keys and a
// trailing key without a value are dropped.
//
//	log.Info("Composition step", logger.Fields(logger.FieldStep, "logging"))
func Fields(kvs ...interface{}) map[string]interface{} {
	m := make(map[string]interface{}, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// DurationFields tags op with its duration in milliseconds.
func DurationFields(op string, d time.Duration) map[string]interface{} {
	return Fields(FieldOperation, op, FieldDuration, d.Milliseconds())
}

// MergeWithError sets the error field on fields, allocating when nil. A nil
// err leaves fields unchanged.
func MergeWithError(fields map[string]interface{}, err error) map[string]interface{} {
	if fields == nil {
		fields = make(map[string]interface{}, 1)
	}
	if err != nil {
		fields[FieldError] = err.Error()
	}
	return fields
}
