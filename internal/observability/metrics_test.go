package observability

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("POST", "/compose/ready-for-tts", "200", 30*time.Millisecond)
	m.ObserveAPI("POST", "/compose/ready-for-tts", "200", 3*time.Second)
	m.ObserveLLM("intro", nil, time.Second)
	m.ObserveLLM("intro", errors.New("x"), time.Second)
	m.IncComposition("empty")
	m.IncArchive(nil)

	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	out := rec.Body.String()

	for _, want := range []string{
		"# TYPE ssmlcast_api_requests_total counter",
		`ssmlcast_api_requests_total{method="POST",route="/compose/ready-for-tts",status="200"} 2`,
		`ssmlcast_api_request_duration_seconds_bucket{method="POST",route="/compose/ready-for-tts",le="0.05"} 1`,
		`ssmlcast_api_request_duration_seconds_bucket{method="POST",route="/compose/ready-for-tts",le="+Inf"} 2`,
		`ssmlcast_llm_requests_total{segment="intro",status="error"} 1`,
		`ssmlcast_compositions_total{outcome="empty"} 1`,
		`ssmlcast_transcript_archives_total{status="ok"} 1`,
		"ssmlcast_api_inflight_requests 0",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in:\n%s", want, out)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.APIInflightInc()
	m.IncComposition("ok")
	rec := httptest.NewRecorder()
	m.WriteHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 503 {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestLabelEscaping(t *testing.T) {
	got := labelString([]string{"a", "b"}, []string{`x"y`})
	if got != `{a="x\"y",b="unknown"}` {
		t.Fatalf("labels=%s", got)
	}
}
