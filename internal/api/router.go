package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/slidesmith/internal/deckservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *deckservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/decks", func(r chi.Router) {
		r.Get("/", h.ListDecks)
		r.Post("/", h.CreateDeck)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetDeck)
			r.Put("/", h.PutDeck)
			r.Delete("/", h.DeleteDeck)
			r.Post("/import", h.ImportDeck)

			// Slide editing.
			r.Post("/slides", h.AddSlide)
			r.Put("/slides/{slideID}", h.UpdateSlide)
			r.Delete("/slides/{slideID}", h.DeleteSlide)
			r.Post("/slides/{slideID}/duplicate", h.DuplicateSlide)
			r.Post("/slides/{slideID}/move", h.MoveSlide)
			r.Put("/theme", h.SetTheme)

			// Review and approval.
			r.Get("/violations", h.Violations)
			r.Post("/clean", h.Clean)
			r.Get("/validation", h.Validate)
			r.Post("/approve", h.Approve)
			r.Get("/snapshots", h.Snapshots)
			r.Get("/drift", h.Drift)
			r.Get("/export", h.Export)

			// Diagrams.
			r.Post("/diagrams", h.AddDiagram)
			r.Get("/diagrams/{diagramID}/usage", h.DiagramUsage)
			r.Delete("/diagrams/{diagramID}", h.DeleteDiagram)
		})
	})

	r.Get("/search", h.Search)
	r.Get("/themes", h.Themes)
	r.Post("/generate", h.Generate)

	r.Post("/assets", h.UploadAsset)
	r.Get("/assets/{filename}", h.ServeAsset)

	// SSE endpoint (protected by same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
