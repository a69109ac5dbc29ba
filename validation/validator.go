package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/kbukum/apphost/errors"
)

// FieldError is one failed rule, keyed by configuration key.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string { return e.Field + ": " + e.Message }

// Validator collects failures from cross-field rules. Rules chain:
//
//	err := validation.New().
//	    Port("port", cfg.Port).
//	    Custom(cfg.SSLPort != cfg.Port, "ssl_port", "must differ from port").
//	    Validate()
type Validator struct {
	failures []FieldError
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{}
}

// AddError records a failure for field.
func (v *Validator) AddError(field, message string) *Validator {
	v.failures = append(v.failures, FieldError{Field: field, Message: message})
	return v
}

// Failed reports whether any rule failed.
func (v *Validator) Failed() bool { return len(v.failures) > 0 }

// Errors returns the recorded failures in order.
func (v *Validator) Errors() []FieldError {
	return slices.Clone(v.failures)
}

// Required fails on an empty or blank value.
func (v *Validator) Required(field, value string) *Validator {
	return v.Custom(strings.TrimSpace(value) != "", field, "is required")
}

// Port fails unless value is in 1..65535.
func (v *Validator) Port(field string, value int) *Validator {
	return v.Custom(value >= 1 && value <= 65535, field, "must be between 1 and 65535")
}

// OneOf fails when a non-empty value is not in allowed.
func (v *Validator) OneOf(field, value string, allowed ...string) *Validator {
	return v.Custom(value == "" || slices.Contains(allowed, value), field,
		"must be one of: "+strings.Join(allowed, ", "))
}

// Custom fails with message when ok is false.
func (v *Validator) Custom(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Validate returns nil, or one INVALID_CONFIG error naming every failure.
func (v *Validator) Validate() error {
	if !v.Failed() {
		return nil
	}
	parts := make([]string, 0, len(v.failures))
	for _, f := range v.failures {
		parts = append(parts, f.String())
	}
	se := errors.InvalidConfig("values", nil)
	se.Message = fmt.Sprintf("Invalid configuration: %s", strings.Join(parts, "; "))
	return se.WithDetail("fields", v.Errors())
}
