package validation

import (
	stderrors "errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/kbukum/apphost/errors"
)

var structValidator = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// failures name configuration keys, not Go fields
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		key, _, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if key == "" || key == "-" {
			return toSnakeCase(f.Name)
		}
		return key
	})
	return v
})

var tagMessages = map[string]string{
	"required":      "is required",
	"min":           "must be at least %s",
	"max":           "must be at most %s",
	"oneof":         "must be one of: %s",
	"hostname_port": "must be a valid address",
	"hostname":      "must be a valid address",
	"ip":            "must be a valid address",
}

// Validate checks `validate` tags on s. Failures come back as one
// INVALID_CONFIG error keyed by dotted configuration path.
func Validate(s any) error {
	err := structValidator().Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.InvalidConfig("values", err)
	}

	v := New()
	for _, fe := range fieldErrs {
		_, key, found := strings.Cut(fe.Namespace(), ".")
		if !found {
			key = fe.Namespace()
		}
		v.AddError(key, describe(fe))
	}
	return v.Validate()
}

func describe(fe validator.FieldError) string {
	msg, ok := tagMessages[fe.Tag()]
	if !ok {
		return "is invalid"
	}
	if strings.Contains(msg, "%s") {
		return fmt.Sprintf(msg, fe.Param())
	}
	return msg
}

// toSnakeCase turns a Go field name into a configuration key, keeping
// acronyms together: SSLCertPath becomes ssl_cert_path.
func toSnakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		upper := unicode.IsUpper(r)
		if upper && i > 0 {
			prevLower := !unicode.IsUpper(runes[i-1])
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prevLower || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
