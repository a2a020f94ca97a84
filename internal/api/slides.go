package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/slidesmith/internal/deckservice"
	"github.com/starford/slidesmith/internal/models"
)

// AddSlide handles POST /api/decks/{id}/slides.
//
//	@Summary		Add a slide
//	@Tags			slides
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Deck id"
//	@Param			body	body		AddSlideRequest	true	"Slide and optional position"
//	@Success		201		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id}/slides [post]
func (h *Handler) AddSlide(w http.ResponseWriter, r *http.Request) {
	var req AddSlideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	at := -1
	if req.Position != nil {
		at = *req.Position
	}
	d, err := h.svc.AddSlide(r.Context(), chi.URLParam(r, "id"), req.Slide, at)
	if err != nil {
		writeError(w, "add slide", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// UpdateSlide handles PUT /api/decks/{id}/slides/{slideID}.
func (h *Handler) UpdateSlide(w http.ResponseWriter, r *http.Request) {
	var patch deckservice.SlidePatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	d, err := h.svc.UpdateSlide(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slideID"), patch)
	if err != nil {
		writeError(w, "update slide", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DeleteSlide handles DELETE /api/decks/{id}/slides/{slideID}.
func (h *Handler) DeleteSlide(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.DeleteSlide(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slideID"))
	if err != nil {
		writeError(w, "delete slide", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// DuplicateSlide handles POST /api/decks/{id}/slides/{slideID}/duplicate.
func (h *Handler) DuplicateSlide(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.DuplicateSlide(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slideID"))
	if err != nil {
		writeError(w, "duplicate slide", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// MoveSlide handles POST /api/decks/{id}/slides/{slideID}/move.
func (h *Handler) MoveSlide(w http.ResponseWriter, r *http.Request) {
	var req MoveSlideRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	d, err := h.svc.MoveSlide(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "slideID"), *req.To)
	if err != nil {
		writeError(w, "move slide", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// SetTheme handles PUT /api/decks/{id}/theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var req ThemeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	d, err := h.svc.SetTheme(r.Context(), chi.URLParam(r, "id"), req.Theme)
	if err != nil {
		writeError(w, "set theme", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// AddDiagram handles POST /api/decks/{id}/diagrams.
func (h *Handler) AddDiagram(w http.ResponseWriter, r *http.Request) {
	var d models.Diagram
	if !decodeJSON(w, r, &d) {
		return
	}
	detail, err := h.svc.AddDiagram(r.Context(), chi.URLParam(r, "id"), d)
	if err != nil {
		writeError(w, "add diagram", err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

// DiagramUsage handles GET /api/decks/{id}/diagrams/{diagramID}/usage.
func (h *Handler) DiagramUsage(w http.ResponseWriter, r *http.Request) {
	diagramID := chi.URLParam(r, "diagramID")
	slides, err := h.svc.DiagramUsage(r.Context(), chi.URLParam(r, "id"), diagramID)
	if err != nil {
		writeError(w, "diagram usage", err)
		return
	}
	writeJSON(w, http.StatusOK, UsageResponse{DiagramID: diagramID, Slides: slides})
}

// DeleteDiagram handles DELETE /api/decks/{id}/diagrams/{diagramID}.
// A referenced diagram is only removed with ?force=true.
func (h *Handler) DeleteDiagram(w http.ResponseWriter, r *http.Request) {
	force, _ := strconv.ParseBool(r.URL.Query().Get("force"))
	d, err := h.svc.DeleteDiagram(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "diagramID"), force)
	if err != nil {
		writeError(w, "delete diagram", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
