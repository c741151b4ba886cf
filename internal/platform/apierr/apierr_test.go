package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatus(t *testing.T) {
	base := errors.New("boom")
	wrapped := fmt.Errorf("outer: %w", New(http.StatusNotFound, "missing", base))

	if got := Status(wrapped, http.StatusInternalServerError); got != http.StatusNotFound {
		t.Fatalf("status=%d", got)
	}
	if !errors.Is(wrapped, base) {
		t.Fatalf("expected unwrap to reach base error")
	}
	if got := Status(base, http.StatusBadGateway); got != http.StatusBadGateway {
		t.Fatalf("status=%d", got)
	}
	if New(http.StatusTeapot, "teapot", nil).Error() != "teapot" {
		t.Fatalf("code should be the message when no error is wrapped")
	}
}
