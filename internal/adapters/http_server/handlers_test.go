package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	httpserver "estates_console/internal/adapters/http_server"
	"estates_console/internal/app"
	"estates_console/internal/domain"
)

// ---- fakes ----

type memStore struct {
	mu sync.Mutex
	m  map[string][]byte
}

func (s *memStore) Get(_ context.Context, k string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[k]
	return v, ok, nil
}
func (s *memStore) Set(_ context.Context, k string, v []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[k] = v
	return nil
}
func (s *memStore) Del(_ context.Context, k string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, k)
	return nil
}

// downRemote behaves like an unreachable webhook host.
type downRemote struct{}

var errDown = errors.New("connection refused")

func (downRemote) List(context.Context) ([]domain.Listing, error) { return nil, errDown }
func (downRemote) Create(context.Context, domain.Listing) error     { return errDown }
func (downRemote) Update(context.Context, domain.Listing) error     { return errDown }
func (downRemote) Delete(context.Context, string) error             { return errDown }

type noCalls struct{}

func (noCalls) ListCalls(context.Context, string, int) ([]domain.Call, error) {
	return []domain.Call{{ID: "c1", Status: "ended", Duration: 42}}, nil
}

func newTestServer(t *testing.T, opts app.SyncOptions) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	st := &memStore{m: map[string][]byte{}}
	settings := app.NewSettingsService(st, domain.VapiSettings{PrivateKey: "sk-test-9999"})
	h := &httpserver.Handlers{
		Sync:          app.NewSyncService(ctx, downRemote{}, app.NewSnapshotCache(st), opts),
		Calls:         app.NewCallLogService(noCalls{}, settings, 10),
		Settings:      settings,
		PublicBaseURL: "https://estates.example",
	}
	srv := httpserver.New(5 * time.Second)
	srv.MountHandlers(h)
	ts := httptest.NewServer(srv.Mux())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

const villa = `{"title":"Sea View Villa","type":"villa","location":"Marbella","price":450000,
"status":"available","bedrooms":4,"bathrooms":3,"area":320,"features":"Pool, Garden",
"availableFrom":"2025-06-01","isRental":false,"images":["a.jpg","",""]}`

// ---- tests ----

func TestListingsCRUD_WithRemoteDown(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())

	// create assigns the suggested id and strips blank image slots
	resp := do(t, http.MethodPost, ts.URL+"/v1/listings", villa)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create status = %d", resp.StatusCode)
	}
	created := decode[domain.Listing](t, resp)
	if created.ID != "PROP010" || len(created.Images) != 1 {
		t.Fatalf("created = %+v", created)
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/listings/PROP010" {
		t.Fatalf("Location = %q", loc)
	}

	// list falls back to the local cache
	resp = do(t, http.MethodGet, ts.URL+"/v1/listings?q=marbella&type=villa", "")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("ETag") == "" {
		t.Fatalf("list status = %d etag=%q", resp.StatusCode, resp.Header.Get("ETag"))
	}
	if got := decode[[]domain.Listing](t, resp); len(got) != 1 || got[0].ID != "PROP010" {
		t.Fatalf("list = %+v", got)
	}

	// update the price
	upd := strings.Replace(villa, "450000", "400000", 1)
	resp = do(t, http.MethodPut, ts.URL+"/v1/listings/PROP010", upd)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/v1/listings/PROP010", "")
	if got := decode[domain.Listing](t, resp); got.Price != 400000 {
		t.Fatalf("price after update = %v", got.Price)
	}

	// delete
	resp = do(t, http.MethodDelete, ts.URL+"/v1/listings/PROP010", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete status = %d", resp.StatusCode)
	}
	resp = do(t, http.MethodGet, ts.URL+"/v1/listings/PROP010", "")
	if resp.StatusCode != http.StatusNotFound || resp.Header.Get("Content-Type") != "application/problem+json" {
		t.Fatalf("get after delete = %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
}

func TestListings_ETagNotModified(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())
	do(t, http.MethodPost, ts.URL+"/v1/listings", villa)

	first := do(t, http.MethodGet, ts.URL+"/v1/listings", "")
	etag := first.Header.Get("ETag")

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/v1/listings", nil)
	req.Header.Set("If-None-Match", etag)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotModified {
		t.Fatalf("expected 304, got %d", resp.StatusCode)
	}
}

func TestCreate_InvalidListing(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())

	bad := strings.Replace(villa, `"villa"`, `"castle"`, 1)
	if resp := do(t, http.MethodPost, ts.URL+"/v1/listings", bad); resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/v1/listings", `{"id":`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/listings?type=castle", ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad type filter, got %d", resp.StatusCode)
	}
}

func TestUpdate_IDMismatch(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())
	body := strings.Replace(villa, `{"title"`, `{"id":"OTHER","title"`, 1)
	if resp := do(t, http.MethodPut, ts.URL+"/v1/listings/PROP010", body); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreate_StrictModeReportsBadGateway(t *testing.T) {
	opts := app.DefaultSyncOptions()
	opts.BestEffortRemoteSync = false
	ts := newTestServer(t, opts)

	if resp := do(t, http.MethodPost, ts.URL+"/v1/listings", villa); resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.StatusCode)
	}
	// local commit still happened
	if resp := do(t, http.MethodGet, ts.URL+"/v1/listings/PROP010", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected listing kept locally, got %d", resp.StatusCode)
	}
}

func TestCreate_DuplicateRejectConflict(t *testing.T) {
	opts := app.DefaultSyncOptions()
	opts.OnDuplicate = app.DuplicateReject
	ts := newTestServer(t, opts)

	body := strings.Replace(villa, `{"title"`, `{"id":"P1","title"`, 1)
	do(t, http.MethodPost, ts.URL+"/v1/listings", body)
	if resp := do(t, http.MethodPost, ts.URL+"/v1/listings", body); resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestClientView_IsReadOnly(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())
	do(t, http.MethodPost, ts.URL+"/v1/listings", villa)

	if resp := do(t, http.MethodGet, ts.URL+"/v1/client/listings", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("client list = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodGet, ts.URL+"/v1/client/listings/PROP010", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("client get = %d", resp.StatusCode)
	}
	if resp := do(t, http.MethodPost, ts.URL+"/v1/client/listings", villa); resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("client create should be refused, got %d", resp.StatusCode)
	}

	resp := do(t, http.MethodGet, ts.URL+"/v1/share", "")
	if got := decode[map[string]string](t, resp); got["url"] != "https://estates.example/?view=client" {
		t.Fatalf("share = %v", got)
	}
}

func TestNextID(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())
	resp := do(t, http.MethodGet, ts.URL+"/v1/listings/next-id", "")
	if got := decode[map[string]string](t, resp); got["id"] != "PROP010" {
		t.Fatalf("next-id = %v", got)
	}
}

func TestSettings_MaskedAndEchoSafe(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())

	resp := do(t, http.MethodGet, ts.URL+"/v1/settings", "")
	got := decode[domain.Settings](t, resp)
	if got.Vapi.PrivateKey != "********9999" {
		t.Fatalf("private key not masked: %q", got.Vapi.PrivateKey)
	}

	// echoing the masked key back must not overwrite the real one
	got.Vapi.AssistantID = "asst-1"
	b, _ := json.Marshal(got)
	resp = do(t, http.MethodPut, ts.URL+"/v1/settings", string(b))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("put settings = %d", resp.StatusCode)
	}
	after := decode[domain.Settings](t, resp)
	if after.Vapi.PrivateKey != "********9999" || after.Vapi.AssistantID != "asst-1" {
		t.Fatalf("settings after echo = %+v", after.Vapi)
	}
}

func TestCallsAndAnalytics(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())
	do(t, http.MethodPost, ts.URL+"/v1/listings", villa)

	calls := decode[[]domain.Call](t, do(t, http.MethodGet, ts.URL+"/v1/calls", ""))
	if len(calls) != 1 || calls[0].ID != "c1" {
		t.Fatalf("calls = %+v", calls)
	}

	sum := decode[app.Summary](t, do(t, http.MethodGet, ts.URL+"/v1/analytics", ""))
	if sum.Listings.Total != 1 || sum.Calls.Total != 1 || sum.Calls.SuccessRate != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, app.DefaultSyncOptions())
	if resp := do(t, http.MethodGet, ts.URL+"/healthz", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("healthz = %d", resp.StatusCode)
	}
}
