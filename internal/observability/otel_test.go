package observability

import (
	"reflect"
	"testing"
)

func TestParseHeaders(t *testing.T) {
	got := ParseHeaders(" api-key = abc , bad, =x, trace=1 ")
	want := map[string]string{"api-key": "abc", "trace": "1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("headers=%v want=%v", got, want)
	}
	if ParseHeaders("") != nil || ParseHeaders("novalue=") != nil {
		t.Fatalf("expected nil for empty headers")
	}
}

func TestClampRatio(t *testing.T) {
	if clampRatio(-1) != 0 || clampRatio(2) != 1 || clampRatio(0.25) != 0.25 {
		t.Fatalf("unexpected clamp")
	}
}
