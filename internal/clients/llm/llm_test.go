package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/option"
)

func TestNewSelectsProvider(t *testing.T) {
	c, err := New(Settings{}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, ok := c.(Mock); !ok {
		t.Fatalf("expected mock without key, got %T", c)
	}

	c, err = New(Settings{APIKey: "sk-test"}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	oc, ok := c.(*OpenAI)
	if !ok {
		t.Fatalf("expected openai with key, got %T", c)
	}
	if oc.Model != DefaultModel {
		t.Fatalf("model=%q", oc.Model)
	}

	if _, err := New(Settings{Provider: "openai"}, nil); err == nil {
		t.Fatalf("expected error for openai without key")
	}
	if _, err := New(Settings{Provider: "bogus"}, nil); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestMockComplete(t *testing.T) {
	out, err := Mock{}.Complete(context.Background(), Prompt{User: "line one\nline two"})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "<speak>line one line two</speak>" {
		t.Fatalf("out=%q", out)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (Mock{}).Complete(ctx, Prompt{User: "x"}); err == nil {
		t.Fatalf("expected context error")
	}
}

func TestOpenAIComplete(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("authorization=%q", auth)
		}
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":"  <speak>Hi</speak>\n"}}]}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(Settings{APIKey: "sk-test", BaseURL: srv.URL + "/v1"}, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	out, err := c.Complete(context.Background(), Prompt{System: "sys", User: "usr", Temperature: Float(0.7)})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "<speak>Hi</speak>" {
		t.Fatalf("out=%q", out)
	}
	if got["model"] != "gpt-4o-mini" || got["temperature"] != 0.7 {
		t.Fatalf("request=%v", got)
	}
	msgs, _ := got["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("messages=%v", got["messages"])
	}
}

func TestOpenAICompleteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	c, err := NewOpenAI(Settings{APIKey: "sk-test", BaseURL: srv.URL}, option.WithMaxRetries(0))
	if err != nil {
		t.Fatalf("NewOpenAI: %v", err)
	}
	if _, err := c.Complete(context.Background(), Prompt{User: "x"}); err == nil {
		t.Fatalf("expected error")
	}
}
