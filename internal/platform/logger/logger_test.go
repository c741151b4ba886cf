package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"OPENAI_API_KEY", "sk-abc",
		"header", "Bearer abc.def",
		"key", "sk-0123456789abcdefghijkl",
		"date", "2024-10-10",
		"headers", map[string]string{"x-rapidapi-key": "k", "x-rapidapi-host": "h"},
		"dangling",
	})
	if got[1] != redacted || got[3] != redacted || got[5] != redacted {
		t.Fatalf("secrets not redacted: %v", got)
	}
	if got[7] != "2024-10-10" {
		t.Fatalf("plain value changed: %v", got[7])
	}
	headers, ok := got[9].(map[string]interface{})
	if !ok || headers["x-rapidapi-key"] != redacted || headers["x-rapidapi-host"] != "h" {
		t.Fatalf("headers=%v", got[9])
	}
	if got[10] != "dangling" {
		t.Fatalf("odd trailing value dropped: %v", got)
	}
}

func TestFileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewWithOptions(Options{Mode: "production", File: path})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	log.With("service", "Test").Info("hello", "api_key", "secret-value", "n", 3)
	log.Debug("hidden at info level")
	log.Sync()

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(b)
	if !strings.Contains(out, `"msg":"hello"`) || !strings.Contains(out, `"service":"Test"`) {
		t.Fatalf("unexpected log output: %s", out)
	}
	if strings.Contains(out, "secret-value") || strings.Contains(out, "hidden at info level") {
		t.Fatalf("log leaked: %s", out)
	}
}

func TestRedactionCanBeDisabled(t *testing.T) {
	off := false
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := NewWithOptions(Options{Mode: "production", File: path, Redact: &off})
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	log.Info("hello", "token", "visible")
	log.Sync()
	b, _ := os.ReadFile(path)
	if !strings.Contains(string(b), "visible") {
		t.Fatalf("expected raw value with redaction off: %s", b)
	}
}

func TestInvalidLevel(t *testing.T) {
	if _, err := NewWithOptions(Options{Level: "loud"}); err == nil {
		t.Fatalf("expected level error")
	}
}
