package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/slidesmith/internal/deckservice"
)

// Violations handles GET /api/decks/{id}/violations.
//
//	@Summary		Detect layout and styling directives in slide text
//	@Tags			review
//	@Produce		json
//	@Param			id	path		string	true	"Deck id"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id}/violations [get]
func (h *Handler) Violations(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Violations(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "violations", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"violations": v, "count": len(v)})
}

// Clean handles POST /api/decks/{id}/clean. The optional slide query
// parameter limits cleaning to one slide.
func (h *Handler) Clean(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Clean(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("slide"))
	if err != nil {
		writeError(w, "clean", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Validate handles GET /api/decks/{id}/validation.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Validate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "validate", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Approve handles POST /api/decks/{id}/approve.
//
//	@Summary		Validate a deck and store an approved snapshot
//	@Tags			review
//	@Produce		json
//	@Param			id	path		string	true	"Deck id"
//	@Success		201	{object}	index.Snapshot
//	@Failure		400	{object}	errResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id}/approve [post]
func (h *Handler) Approve(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Approve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "approve", err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// Snapshots handles GET /api/decks/{id}/snapshots.
func (h *Handler) Snapshots(w http.ResponseWriter, r *http.Request) {
	snaps, err := h.svc.Snapshots(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "snapshots", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"snapshots": snaps})
}

// Drift handles GET /api/decks/{id}/drift.
func (h *Handler) Drift(w http.ResponseWriter, r *http.Request) {
	report, err := h.svc.Drift(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "drift", err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Export handles GET /api/decks/{id}/export?format=text|yaml.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	out, err := h.svc.Export(r.Context(), chi.URLParam(r, "id"), format)
	if err != nil {
		writeError(w, "export", err)
		return
	}
	ct := "text/plain; charset=utf-8"
	if format == deckservice.FormatYAML {
		ct = "application/yaml; charset=utf-8"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}
