package ctxutil

import (
	"context"
	"testing"
)

func TestTraceData(t *testing.T) {
	ctx := context.Background()
	if GetTraceData(ctx) != nil || RequestID(ctx) != "" {
		t.Fatalf("expected no trace data")
	}
	ctx = WithTraceData(ctx, &TraceData{TraceID: "t", RequestID: "r"})
	if td := GetTraceData(ctx); td == nil || td.TraceID != "t" {
		t.Fatalf("trace data=%+v", td)
	}
	if RequestID(ctx) != "r" {
		t.Fatalf("request id=%q", RequestID(ctx))
	}
}
