package observability_test

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"estates_console/internal/adapters/observability"
	"estates_console/internal/domain"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors are exported
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveSync("fetch", "cache", io.EOF)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{"estates_http_requests_total", "estates_sync_events_total"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestServeDisabledWithoutAddr(t *testing.T) {
	if srv := observability.Serve("", nil); srv != nil {
		t.Fatalf("expected nil server for empty addr")
	}
}

type dialErr struct{}

func (*dialErr) Error() string { return "connection refused" }

func TestLabelErr(t *testing.T) {
	if got := observability.LabelErr(nil); got != "none" {
		t.Fatalf("LabelErr(nil) = %q", got)
	}
	if got := observability.LabelErr(io.EOF); got != "*errors.errorString" {
		t.Fatalf("LabelErr(io.EOF) = %q", got)
	}
	cases := map[string]error{
		"timeout":                     fmt.Errorf("webhook list: %w", domain.ErrTimeout),
		"canceled":                    fmt.Errorf("webhook create: %w", context.Canceled),
		"status":                      fmt.Errorf("remote sync failed: %w", &domain.StatusError{Endpoint: "webhook update", Code: 503}),
		"*observability_test.dialErr": fmt.Errorf("webhook delete: %w", &dialErr{}),
	}
	for want, err := range cases {
		if got := observability.LabelErr(err); got != want {
			t.Fatalf("LabelErr(%v) = %q, want %q", err, got, want)
		}
	}
}

func TestObserveSync_ErrorLabel(t *testing.T) {
	reg := observability.InitRegistry()
	observability.ObserveSync("create", "local_only", fmt.Errorf("x: %w", domain.ErrTimeout))

	rr := httptest.NewRecorder()
	observability.MetricsHandler(reg).ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))
	want := `estates_sync_events_total{error="timeout",op="create",outcome="local_only"}`
	if !strings.Contains(rr.Body.String(), want) {
		t.Fatalf("expected %s in output", want)
	}
}
