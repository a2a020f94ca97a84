package deckservice

import (
	"context"
	"fmt"
	"slices"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/models"
)

// AddDiagram registers a diagram. An empty id is generated.
func (s *Service) AddDiagram(ctx context.Context, id string, d models.Diagram) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		taken := deck.TakenIDs()
		if d.ID == "" {
			d.ID = ident.Unique(s.ids, "diagram", taken)
		} else if _, dup := taken[d.ID]; dup {
			return fmt.Errorf("diagram %q: %w", d.ID, apperr.ErrAlreadyExists)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
		}
		deck.Diagrams = append(deck.Diagrams, d)
		return nil
	})
}

// DiagramUsage returns the ids of slides referencing diagramID, as recorded
// in the catalogue.
func (s *Service) DiagramUsage(ctx context.Context, id, diagramID string) ([]string, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	ids, err := s.db.DiagramUsage(id, diagramID)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(ids), nil
}

// DeleteDiagram removes a diagram. While slides reference it the call fails
// with apperr.ErrConflict, unless force is set, in which case the
// references are stripped too.
func (s *Service) DeleteDiagram(ctx context.Context, id, diagramID string, force bool) (*DeckDetail, error) {
	return s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		i := slices.IndexFunc(deck.Diagrams, func(d models.Diagram) bool { return d.ID == diagramID })
		if i < 0 {
			return fmt.Errorf("diagram %q: %w", diagramID, apperr.ErrNotFound)
		}
		if users := deck.DiagramUsage(diagramID); len(users) > 0 {
			if !force {
				return fmt.Errorf("diagram %q is used by %d slide(s): %w", diagramID, len(users), apperr.ErrConflict)
			}
			for j := range deck.Slides {
				deck.Slides[j].Visuals = slices.DeleteFunc(deck.Slides[j].Visuals, func(v models.VisualReference) bool {
					return v.Kind == models.VisualDiagram && v.DiagramID == diagramID
				})
			}
		}
		deck.Diagrams = slices.Delete(deck.Diagrams, i, i+1)
		return nil
	})
}
