package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func jsonLogger(buf *bytes.Buffer, level string) *Logger {
	return NewWithWriter(&Config{Level: level, Format: "json"}, "apphost-test", buf)
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var out map[string]interface{}
	if err := json.Unmarshal([]byte(line), &out); err != nil {
		t.Fatalf("decode %q: %v", line, err)
	}
	return out
}

func TestNewWithWriter_JSONFields(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "debug").WithComponent("host")

	l.Info("composed", Fields(FieldMode, "interactive", FieldStep, "logging"))

	got := decodeLine(t, &buf)
	if got["message"] != "composed" {
		t.Errorf("message = %v", got["message"])
	}
	if got["service"] != "apphost-test" {
		t.Errorf("service = %v", got["service"])
	}
	if got[FieldComponent] != "host" {
		t.Errorf("component = %v", got[FieldComponent])
	}
	if got[FieldMode] != "interactive" {
		t.Errorf("mode = %v", got[FieldMode])
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "warn")

	l.Info("dropped")
	if buf.Len() != 0 {
		t.Fatalf("info should be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Errorf("warn should be written, got %q", buf.String())
	}
}

func TestInvalidLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	l := jsonLogger(&buf, "loud")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	jsonLogger(&buf, "info").WithError(errors.New("boom")).Error("failed")
	got := decodeLine(t, &buf)
	if got["error"] != "boom" {
		t.Errorf("error = %v", got["error"])
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", Config{}, false},
		{"bad level", Config{Level: "verbose"}, true},
		{"bad format", Config{Format: "xml"}, true},
		{"pretty", Config{Format: FormatPretty}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			cfg.ApplyDefaults()
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestTeardown_FileSinkClosedAndSilenced(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "apphost.log")
	l := Init(Config{Format: "json", Output: path}, "apphost-test")
	t.Cleanup(func() { Init(Config{}, "") })

	l.Info("before teardown")
	Teardown()
	Teardown()

	if !IsTornDown() {
		t.Fatal("expected torn down state")
	}
	l.Info("after teardown")
	Info("after teardown global")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), "before teardown") {
		t.Errorf("log file missing pre-teardown entry: %q", data)
	}
	if strings.Contains(string(data), "after teardown") {
		t.Errorf("log file has post-teardown entry: %q", data)
	}
}

func TestInitRearmsAfterTeardown(t *testing.T) {
	Init(Config{}, "")
	Teardown()
	Init(Config{}, "")
	if IsTornDown() {
		t.Error("Init should clear torn down state")
	}
}

func TestFieldHelpers(t *testing.T) {
	f := DurationFields("compose", 1500*time.Millisecond)
	if f[FieldDuration] != int64(1500) {
		t.Errorf("duration = %v", f[FieldDuration])
	}
	f = MergeWithError(nil, errors.New("x"))
	if f[FieldError] != "x" {
		t.Errorf("error = %v", f[FieldError])
	}
	f = Fields("a", 1, "dangling")
	if len(f) != 1 || f["a"] != 1 {
		t.Errorf("Fields = %v", f)
	}
}
