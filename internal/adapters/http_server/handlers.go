// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"estates_console/internal/app"
	"estates_console/internal/domain"
)

type Handlers struct {
	Sync     *app.SyncService
	Calls    *app.CallLogService
	Settings *app.SettingsService
	// PublicBaseURL is where the console is reachable; the share link
	// points clients at its read-only view.
	PublicBaseURL string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

const maxRequestBody = 1 << 20

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Route("/v1", func(r chi.Router) {
		r.Get("/listings", h.listListings)
		r.Post("/listings", h.createListing)
		r.Get("/listings/next-id", h.nextID)
		r.Get("/listings/{id}", h.getListing)
		r.Put("/listings/{id}", h.updateListing)
		r.Delete("/listings/{id}", h.deleteListing)

		// read-only client view
		r.Get("/client/listings", h.listListings)
		r.Get("/client/listings/{id}", h.getListing)
		r.Get("/share", h.share)

		r.Get("/calls", h.listCalls)
		r.Get("/analytics", h.analytics)
		r.Get("/settings", h.getSettings)
		r.Put("/settings", h.putSettings)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Int("status", status).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeCacheable serves v with a weak ETag and answers 304 on a match.
func writeCacheable(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ---- listings ----

func (h *Handlers) listListings(w http.ResponseWriter, r *http.Request) {
	q := app.Query{Search: r.URL.Query().Get("q"), Category: r.URL.Query().Get("type")}
	if c := strings.ToLower(q.Category); c != "" && c != "all" && !domain.ValidCategory(c) {
		writeProblem(w, http.StatusBadRequest, "Invalid type", "type must be all, apartment, villa or commercial")
		return
	}
	all := h.Sync.FetchAll(r.Context())
	writeCacheable(w, r, app.Filter(all, q))
}

func (h *Handlers) getListing(w http.ResponseWriter, r *http.Request) {
	l, err := h.Sync.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeProblem(w, http.StatusNotFound, "Not Found", "listing not found")
		return
	}
	writeCacheable(w, r, l)
}

func (h *Handlers) nextID(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"id": domain.NextID(h.Sync.Snapshot())})
}

func (h *Handlers) createListing(w http.ResponseWriter, r *http.Request) {
	var l domain.Listing
	if err := decodeBody(r, &l); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if strings.TrimSpace(l.ID) == "" {
		l.ID = domain.NextID(h.Sync.Snapshot())
	}
	l.CleanImages()
	if err := l.Validate(); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid listing", err.Error())
		return
	}
	if err := h.Sync.Create(r.Context(), l); err != nil {
		h.writeSyncError(w, err)
		return
	}
	w.Header().Set("Location", "/v1/listings/"+l.ID)
	writeJSON(w, http.StatusCreated, l)
}

func (h *Handlers) updateListing(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var l domain.Listing
	if err := decodeBody(r, &l); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	if l.ID == "" {
		l.ID = id
	}
	if l.ID != id {
		writeProblem(w, http.StatusBadRequest, "ID mismatch", "listing id is immutable")
		return
	}
	l.CleanImages()
	if err := l.Validate(); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid listing", err.Error())
		return
	}
	if err := h.Sync.Update(r.Context(), l); err != nil {
		h.writeSyncError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (h *Handlers) deleteListing(w http.ResponseWriter, r *http.Request) {
	if err := h.Sync.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeSyncError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeSyncError only fires for opt-in policies (duplicate reject, strict
// remote sync); best-effort writes never fail.
func (h *Handlers) writeSyncError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrDuplicateID):
		writeProblem(w, http.StatusConflict, "Duplicate ID", err.Error())
	case errors.Is(err, domain.ErrRemoteSync):
		writeProblem(w, http.StatusBadGateway, "Saved locally, remote sync failed", err.Error())
	default:
		log.Error().Err(err).Msg("listing write failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

func (h *Handlers) share(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"url": h.PublicBaseURL + "/?view=client"})
}

// ---- calls, analytics, settings ----

func (h *Handlers) listCalls(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Calls.Recent(r.Context()))
}

func (h *Handlers) analytics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, app.Summarize(h.Sync.FetchAll(r.Context()), h.Calls.Recent(r.Context())))
}

func (h *Handlers) getSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Settings.Load(r.Context()).Masked())
}

func (h *Handlers) putSettings(w http.ResponseWriter, r *http.Request) {
	var in domain.Settings
	if err := decodeBody(r, &in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid body", err.Error())
		return
	}
	// a masked key echoed back from GET means "unchanged"
	if strings.Contains(in.Vapi.PrivateKey, "*") {
		in.Vapi.PrivateKey = ""
	}
	if err := h.Settings.Save(r.Context(), in); err != nil {
		writeProblem(w, http.StatusUnprocessableEntity, "Invalid settings", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.Settings.Load(r.Context()).Masked())
}
