package api

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/slidesmith/internal/deckservice"
	"github.com/starford/slidesmith/internal/index"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/theme"
)

var deckIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// CreateDeckRequest is the request body for creating a deck. Text is
// imported when present.
type CreateDeckRequest struct {
	ID   string `json:"id" example:"q3-proposal" validate:"required"`
	Text string `json:"text" example:"=== SLIDE ===\nTitle: Hello"`
}

// Validate checks the request shape.
func (r CreateDeckRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Required, validation.Length(1, 128), validation.Match(deckIDRe)),
	)
}

// ImportRequest is the request body for re-importing text into a deck.
type ImportRequest struct {
	Text string `json:"text" validate:"required"`
}

// Validate checks the request shape.
func (r ImportRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Text, validation.Required))
}

// AddSlideRequest is the request body for adding a slide. A nil Position
// appends.
type AddSlideRequest struct {
	Slide    models.Slide `json:"slide"`
	Position *int         `json:"position,omitempty" example:"0"`
}

// MoveSlideRequest is the request body for moving a slide.
type MoveSlideRequest struct {
	To *int `json:"to" example:"2" validate:"required"`
}

// Validate checks the request shape.
func (r MoveSlideRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.To, validation.NotNil, validation.Min(0)))
}

// ThemeRequest is the request body for switching a deck's theme.
type ThemeRequest struct {
	Theme string `json:"theme" example:"pure-minimal" validate:"required"`
}

// Validate checks the request shape.
func (r ThemeRequest) Validate() error {
	return validation.ValidateStruct(&r, validation.Field(&r.Theme, validation.Required))
}

// GenerateRequest is the request body for generating a deck.
type GenerateRequest struct {
	ID          string `json:"id,omitempty" example:"acme-pitch"`
	Description string `json:"description" example:"Retail analytics for mid-size grocers" validate:"required"`
	Recipient   string `json:"recipient,omitempty" example:"Acme"`
	Sender      string `json:"sender,omitempty"`
	SlideCount  int    `json:"slideCount,omitempty" example:"8"`
}

// Validate checks the request shape.
func (r GenerateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.ID, validation.Match(deckIDRe)),
		validation.Field(&r.Description, validation.Required, validation.Length(1, 4000)),
		validation.Field(&r.SlideCount, validation.Min(0), validation.Max(30)),
	)
}

// DeckDetail is the deck response type (aliased from the domain layer).
type DeckDetail = deckservice.DeckDetail

// DeckListResponse wraps paginated deck listings.
type DeckListResponse struct {
	Decks []index.DeckRow `json:"decks" validate:"required"`
	Total int             `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []index.SearchResult `json:"results" validate:"required"`
}

// ThemesResponse lists the theme catalogue.
type ThemesResponse struct {
	Themes  []theme.Theme `json:"themes" validate:"required"`
	Default string        `json:"default" example:"mono-gradient-v1"`
}

// UsageResponse lists the slides referencing a diagram.
type UsageResponse struct {
	DiagramID string   `json:"diagramId"`
	Slides    []string `json:"slides"`
}
