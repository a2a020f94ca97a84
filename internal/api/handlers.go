package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/slidesmith/internal/checksum"
	"github.com/starford/slidesmith/internal/deckservice"
	"github.com/starford/slidesmith/internal/generator"
	"github.com/starford/slidesmith/internal/models"
)

// Handler holds API route handlers.
type Handler struct {
	svc *deckservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *deckservice.Service) *Handler {
	return &Handler{svc: svc}
}

var listSorts = map[string]bool{"": true, "updated": true, "title": true, "id": true}

// ListDecks handles GET /api/decks.
//
//	@Summary		List decks with optional pagination
//	@Tags			decks
//	@Produce		json
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Param			sort	query		string	false	"Sort field"	Enums(updated, title, id)
//	@Success		200		{object}	DeckListResponse
//	@Security		BearerAuth
//	@Router			/decks [get]
func (h *Handler) ListDecks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	sort := q.Get("sort")
	if !listSorts[sort] {
		writeJSON(w, http.StatusBadRequest, errorBody("sort must be one of updated, title, id"))
		return
	}

	rows, total, err := h.svc.List(r.Context(), limit, offset, sort)
	if err != nil {
		writeError(w, "list decks", err)
		return
	}
	writeJSON(w, http.StatusOK, DeckListResponse{Decks: rows, Total: total})
}

// CreateDeck handles POST /api/decks.
//
//	@Summary		Create a deck, importing text when given
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateDeckRequest	true	"Deck to create"
//	@Success		201		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks [post]
func (h *Handler) CreateDeck(w http.ResponseWriter, r *http.Request) {
	var req CreateDeckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	d, err := h.svc.Create(r.Context(), req.ID, req.Text)
	if err != nil {
		writeError(w, "create deck", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}

// GetDeck handles GET /api/decks/{id}.
//
//	@Summary		Get a deck
//	@Tags			decks
//	@Produce		json
//	@Param			id	path		string	true	"Deck id"
//	@Success		200	{object}	DeckDetail
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id} [get]
func (h *Handler) GetDeck(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get deck", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(d.Checksum))
	writeJSON(w, http.StatusOK, d)
}

// PutDeck handles PUT /api/decks/{id}.
//
//	@Summary		Replace a deck with optimistic concurrency
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			id			path		string						true	"Deck id"
//	@Param			If-Match	header		string						false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body		models.StructuredSlideDeck	true	"Deck"
//	@Success		200			{object}	DeckDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id} [put]
func (h *Handler) PutDeck(w http.ResponseWriter, r *http.Request) {
	var deck models.StructuredSlideDeck
	if !decodeJSON(w, r, &deck) {
		return
	}
	d, err := h.svc.Put(r.Context(), chi.URLParam(r, "id"), &deck, checksum.FromIfMatch(r.Header.Get("If-Match")))
	if err != nil {
		writeError(w, "put deck", err)
		return
	}
	w.Header().Set("ETag", checksum.ETag(d.Checksum))
	writeJSON(w, http.StatusOK, d)
}

// DeleteDeck handles DELETE /api/decks/{id}.
//
//	@Summary		Delete a deck
//	@Tags			decks
//	@Param			id	path	string	true	"Deck id"
//	@Success		204	"Deck deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id} [delete]
func (h *Handler) DeleteDeck(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete deck", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportDeck handles POST /api/decks/{id}/import.
//
//	@Summary		Replace a deck's slides with imported slide text
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Deck id"
//	@Param			body	body		ImportRequest	true	"Slide text"
//	@Success		200		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/decks/{id}/import [post]
func (h *Handler) ImportDeck(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	d, err := h.svc.Import(r.Context(), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeError(w, "import deck", err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// Search handles GET /api/search.
//
//	@Summary		Search slide text across decks
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

// Themes handles GET /api/themes.
//
//	@Summary		List deck themes
//	@Tags			themes
//	@Produce		json
//	@Success		200	{object}	ThemesResponse
//	@Security		BearerAuth
//	@Router			/themes [get]
func (h *Handler) Themes(w http.ResponseWriter, _ *http.Request) {
	c := h.svc.Themes()
	writeJSON(w, http.StatusOK, ThemesResponse{Themes: c.All(), Default: c.DefaultID()})
}

// Generate handles POST /api/generate.
//
//	@Summary		Generate slide text from a business description and import it
//	@Tags			decks
//	@Accept			json
//	@Produce		json
//	@Param			body	body		GenerateRequest	true	"Generation request"
//	@Success		201		{object}	DeckDetail
//	@Failure		400		{object}	errResponse
//	@Failure		503		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/generate [post]
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	d, err := h.svc.Generate(r.Context(), req.ID, generator.Request{
		Description: req.Description,
		Recipient:   req.Recipient,
		Sender:      req.Sender,
		SlideCount:  req.SlideCount,
	})
	if err != nil {
		writeError(w, "generate", err)
		return
	}
	writeJSON(w, http.StatusCreated, d)
}
