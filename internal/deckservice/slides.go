package deckservice

import (
	"context"
	"fmt"
	"slices"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
)

// SlidePatch carries the slide fields an update replaces. Nil fields are
// left alone.
type SlidePatch struct {
	Type          *string                   `json:"type,omitempty"`
	Title         *string                   `json:"title,omitempty"`
	Body          *[]string                 `json:"body,omitempty"`
	KeyData       *[]string                 `json:"keyData,omitempty"`
	Visuals       *[]models.VisualReference `json:"visuals,omitempty"`
	StyleGuidance *models.StyleGuidance     `json:"styleGuidance,omitempty"`
}

// AddSlide inserts s at position at (appended when at is out of range). An
// empty id is generated; an empty type becomes generic.
func (s *Service) AddSlide(ctx context.Context, id string, slide models.Slide, at int) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		taken := deck.TakenIDs()
		if slide.ID == "" {
			slide.ID = ident.Unique(s.ids, "slide", taken)
		} else if _, dup := taken[slide.ID]; dup {
			return fmt.Errorf("slide %q: %w", slide.ID, apperr.ErrAlreadyExists)
		}
		if slide.Type == "" {
			slide.Type = models.SlideTypeGeneric
		} else {
			slide.Type = parser.NormalizeSlideType(string(slide.Type))
		}
		if slide.Body == nil {
			slide.Body = []string{}
		}
		if err := slide.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
		}
		if at < 0 || at > len(deck.Slides) {
			at = len(deck.Slides)
		}
		deck.Slides = slices.Insert(deck.Slides, at, slide)
		return nil
	})
}

// UpdateSlide applies patch to one slide.
func (s *Service) UpdateSlide(ctx context.Context, id, slideID string, patch SlidePatch) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		i, err := slideIndex(deck, slideID)
		if err != nil {
			return err
		}
		sl := deck.Slides[i]
		if patch.Type != nil {
			sl.Type = parser.NormalizeSlideType(*patch.Type)
		}
		if patch.Title != nil {
			sl.Title = *patch.Title
		}
		if patch.Body != nil {
			sl.Body = nonNilSlice(*patch.Body)
		}
		if patch.KeyData != nil {
			sl.KeyData = *patch.KeyData
		}
		if patch.Visuals != nil {
			sl.Visuals = *patch.Visuals
		}
		if patch.StyleGuidance != nil {
			sl.StyleGuidance = patch.StyleGuidance
		}
		if err := sl.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
		}
		deck.Slides[i] = sl
		return nil
	})
}

// DeleteSlide removes one slide. Diagrams it referenced are kept.
func (s *Service) DeleteSlide(ctx context.Context, id, slideID string) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		i, err := slideIndex(deck, slideID)
		if err != nil {
			return err
		}
		deck.Slides = slices.Delete(deck.Slides, i, i+1)
		return nil
	})
}

// DuplicateSlide inserts a deep copy with a fresh id right after the original.
func (s *Service) DuplicateSlide(ctx context.Context, id, slideID string) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		i, err := slideIndex(deck, slideID)
		if err != nil {
			return err
		}
		cp := deck.Slides[i].Clone()
		cp.ID = ident.Unique(s.ids, "slide", deck.TakenIDs())
		deck.Slides = slices.Insert(deck.Slides, i+1, cp)
		return nil
	})
}

// MoveSlide moves one slide to position to.
func (s *Service) MoveSlide(ctx context.Context, id, slideID string, to int) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		i, err := slideIndex(deck, slideID)
		if err != nil {
			return err
		}
		if to < 0 || to >= len(deck.Slides) {
			return fmt.Errorf("%w: position %d out of range", apperr.ErrInvalid, to)
		}
		sl := deck.Slides[i]
		deck.Slides = slices.Insert(slices.Delete(deck.Slides, i, i+1), to, sl)
		return nil
	})
}

// SetTheme switches the deck to a catalogue theme.
func (s *Service) SetTheme(ctx context.Context, id, themeID string) (*DeckDetail, error) {
	if !s.themes.Has(themeID) {
		return nil, fmt.Errorf("%w: unknown theme %q", apperr.ErrInvalid, themeID)
	}
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		deck.DeckStyleID = themeID
		return nil
	})
}

func slideIndex(deck *models.StructuredSlideDeck, slideID string) (int, error) {
	i := deck.SlideIndex(slideID)
	if i < 0 {
		return -1, fmt.Errorf("slide %q: %w", slideID, apperr.ErrNotFound)
	}
	return i, nil
}
