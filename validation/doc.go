// Package validation checks decoded configuration.
//
// Struct tags are checked with go-playground/validator; cross-field rules use
// the collecting Validator. Both report a single INVALID_CONFIG startup error
// whose details list every failing field by its configuration key.
//
//	type Options struct {
//	    Port int `mapstructure:"port" validate:"min=1,max=65535"`
//	}
//	err := validation.Validate(opts)
package validation
