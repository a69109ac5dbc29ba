package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/apphost/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("bind_address", "*")
	if v.Failed() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("bind_address", "   ")
	if !v2.Failed() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorPort(t *testing.T) {
	tests := []struct {
		port    int
		wantErr bool
	}{
		{8787, false},
		{1, false},
		{65535, false},
		{0, true},
		{70000, true},
		{-1, true},
	}
	for _, tt := range tests {
		v := New().Port("port", tt.port)
		if v.Failed() != tt.wantErr {
			t.Errorf("Port(%d) errors = %v, wantErr %v", tt.port, v.Errors(), tt.wantErr)
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("sslmode", "disable", "disable", "require")
	v.OneOf("sslmode", "", "disable")
	if v.Failed() {
		t.Error("expected no errors")
	}

	v.OneOf("sslmode", "maybe", "disable", "require")
	if !v.Failed() {
		t.Error("expected error for value not in list")
	}
}

func TestValidatorValidate(t *testing.T) {
	if err := New().Validate(); err != nil {
		t.Errorf("expected nil for no errors, got %v", err)
	}

	v := New()
	v.Custom(false, "ssl_port", "must differ from port")
	v.Port("port", 0)
	err := v.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, errors.KindInvalidConfig) {
		t.Errorf("expected INVALID_CONFIG, got %s", errors.KindOf(err))
	}
	if !strings.Contains(err.Error(), "ssl_port: must differ from port") {
		t.Errorf("message should list fields, got %q", err.Error())
	}
	se, _ := errors.AsStartupError(err)
	fields, ok := se.Details["fields"].([]FieldError)
	if !ok || len(fields) != 2 {
		t.Errorf("expected 2 field errors in details, got %v", se.Details["fields"])
	}
}

type listenOptions struct {
	Address string       `mapstructure:"bind_address" validate:"required"`
	Port    int          `mapstructure:"port" validate:"min=1,max=65535"`
	Store   storeOptions `mapstructure:"postgres"`
}

type storeOptions struct {
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
}

func TestStructValidateValid(t *testing.T) {
	if err := Validate(listenOptions{Address: "*", Port: 8787}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateInvalid(t *testing.T) {
	err := Validate(listenOptions{Port: 0, Store: storeOptions{Port: 99999}})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if errors.KindOf(err) != errors.KindInvalidConfig {
		t.Errorf("expected INVALID_CONFIG, got %s", errors.KindOf(err))
	}
	msg := err.Error()
	for _, want := range []string{"bind_address: is required", "port: must be at least 1", "postgres.port: must be at most 65535"} {
		if !strings.Contains(msg, want) {
			t.Errorf("expected %q in %q", want, msg)
		}
	}
}

func TestToSnakeCase(t *testing.T) {
	for in, want := range map[string]string{
		"SSLCertPath":          "ssl_cert_path",
		"Port":                 "port",
		"DataProtectionFolder": "data_protection_folder",
		"MainDB":               "main_db",
	} {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
