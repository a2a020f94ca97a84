package api

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/slidesmith/internal/deckservice"
)

// UploadAsset handles POST /api/assets (multipart/form-data, field "file").
//
//	@Summary		Upload an image asset
//	@Tags			assets
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Image file"
//	@Success		201		{object}	deckservice.Asset
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/assets [post]
func (h *Handler) UploadAsset(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, deckservice.MaxAssetSize+1<<20)

	if err := r.ParseMultipartForm(deckservice.MaxAssetSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("file too large or invalid multipart"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("missing 'file' field in multipart form"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, deckservice.MaxAssetSize+1))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read file"))
		return
	}

	asset, err := h.svc.SaveAsset(r.Context(), header.Filename, data)
	if err != nil {
		writeError(w, "upload asset", err)
		return
	}
	writeJSON(w, http.StatusCreated, asset)
}

// ServeAsset handles GET /api/assets/{filename}.
func (h *Handler) ServeAsset(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")
	data, ct, err := h.svc.ReadAsset(r.Context(), name)
	if err != nil {
		writeError(w, "serve asset", err)
		return
	}
	w.Header().Set("Content-Type", ct)
	http.ServeContent(w, r, name, time.Time{}, bytes.NewReader(data))
}
