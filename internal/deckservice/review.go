package deckservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/checksum"
	"github.com/starford/slidesmith/internal/exporter"
	"github.com/starford/slidesmith/internal/index"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
	"github.com/starford/slidesmith/internal/styling"
)

// Export formats.
const (
	FormatText = "text"
	FormatYAML = "yaml"
)

// ValidationError is returned by Approve for a deck that fails
// ValidateSlides. It matches apperr.ErrInvalid.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "deck is not valid: " + strings.Join(e.Errors, "; ")
}

// Is reports whether target is apperr.ErrInvalid.
func (e *ValidationError) Is(target error) bool { return target == apperr.ErrInvalid }

// SlideClean is the outcome of cleaning one slide.
type SlideClean struct {
	SlideID          string                   `json:"slideId"`
	ExtractedVisuals []models.VisualReference `json:"extractedVisuals"`
	RemovedText      []string                 `json:"removedText"`
}

// CleanReport is returned by Clean.
type CleanReport struct {
	*DeckDetail
	Slides      []SlideClean `json:"slides"`
	NewDiagrams []string     `json:"newDiagrams"`
}

// ValidationReport is returned by Validate.
type ValidationReport struct {
	parser.Validation
	DanglingRefs []index.DiagramRef `json:"danglingRefs"`
}

// DriftReport compares a deck with its latest approved snapshot.
type DriftReport struct {
	Approved         bool   `json:"approved"`
	Drifted          bool   `json:"drifted"`
	Version          int    `json:"version,omitempty"`
	ApprovedChecksum string `json:"approvedChecksum,omitempty"`
	CurrentChecksum  string `json:"currentChecksum"`
}

// Violations lists the styling violations of every slide.
func (s *Service) Violations(ctx context.Context, id string) ([]styling.Violation, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(styling.DetectViolations(d.Deck.Slides)), nil
}

// Clean auto-cleans every slide, or only slideID when set, and registers a
// diagram for each extracted visual.
func (s *Service) Clean(ctx context.Context, id, slideID string) (*CleanReport, error) {
	report := &CleanReport{Slides: []SlideClean{}, NewDiagrams: []string{}}
	detail, err := s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		if slideID != "" {
			if _, err := slideIndex(deck, slideID); err != nil {
				return err
			}
		}
		cleaner := styling.NewCleaner(styling.WithIDSource(s.ids), styling.WithTakenIDs(deck.TakenIDs()))
		for i := range deck.Slides {
			if slideID != "" && deck.Slides[i].ID != slideID {
				continue
			}
			res := cleaner.CleanSlide(deck.Slides[i])
			deck.Slides[i] = res.CleanedSlide
			for _, v := range res.ExtractedVisuals {
				deck.Diagrams = append(deck.Diagrams, s.extractedDiagram(deck, v))
				report.NewDiagrams = append(report.NewDiagrams, v.DiagramID)
			}
			report.Slides = append(report.Slides, SlideClean{
				SlideID:          res.CleanedSlide.ID,
				ExtractedVisuals: nonNilSlice(res.ExtractedVisuals),
				RemovedText:      res.RemovedText,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	report.DeckDetail = detail
	return report, nil
}

// extractedDiagram builds the diagram an extracted visual points at.
func (s *Service) extractedDiagram(deck *models.StructuredSlideDeck, v models.VisualReference) models.Diagram {
	source, _ := v.Metadata[styling.MetaSource].(string)
	if v.Metadata[styling.MetaExtracted] == "gradient" {
		spec := models.DiagramSpec{Direction: "diagonal"}
		if t, ok := s.themes.Lookup(deck.DeckStyleID); ok && len(t.Colors.Gradient) > 0 {
			spec.Colors = append([]string(nil), t.Colors.Gradient...)
		}
		return models.Diagram{ID: v.DiagramID, Type: models.DiagramGradientAccent, Name: "Gradient accent", Spec: spec}
	}
	return models.Diagram{
		ID:   v.DiagramID,
		Type: models.DiagramCustom,
		Name: "Extracted diagram",
		Spec: models.DiagramSpec{Custom: map[string]any{styling.MetaSource: source}},
	}
}

// Validate runs the completeness check and lists dangling diagram references.
func (s *Service) Validate(ctx context.Context, id string) (*ValidationReport, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := s.db.DanglingRefs(id)
	if err != nil {
		return nil, err
	}
	return &ValidationReport{
		Validation:   parser.ValidateSlides(d.Deck.Slides),
		DanglingRefs: nonNilSlice(refs),
	}, nil
}

// Approve validates the deck and stores an immutable snapshot of it as the
// next version. An invalid deck fails with a *ValidationError.
func (s *Service) Approve(_ context.Context, id string) (*index.Snapshot, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(id)
	defer unlock()

	deck, _, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if v := parser.ValidateSlides(deck.Slides); !v.Valid {
		return nil, &ValidationError{Errors: v.Errors}
	}

	data, err := encodeDeck(deck.Clone())
	if err != nil {
		return nil, err
	}
	at := s.now().UTC()
	sum := checksum.Sum(data)
	version, err := s.db.InsertSnapshot(id, sum, data, at)
	if err != nil {
		return nil, err
	}
	s.publish(EventApproved, id)
	s.logger.Info("deckservice: approved", slog.String("deck", id), slog.Int("version", version))
	return &index.Snapshot{DeckID: id, Version: version, Checksum: sum, ApprovedAt: at}, nil
}

// Snapshots lists approved versions, oldest first.
func (s *Service) Snapshots(ctx context.Context, id string) ([]index.Snapshot, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	snaps, err := s.db.ListSnapshots(id)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(snaps), nil
}

// ApprovedDeck returns the deck stored in the latest snapshot.
func (s *Service) ApprovedDeck(_ context.Context, id string) (*models.StructuredSlideDeck, *index.Snapshot, error) {
	snap, err := s.db.LatestSnapshot(id)
	if err != nil {
		if errors.Is(err, index.ErrNoRow) {
			return nil, nil, apperr.ErrNotFound
		}
		return nil, nil, err
	}
	var deck models.StructuredSlideDeck
	if err := json.Unmarshal(snap.Data, &deck); err != nil {
		return nil, nil, fmt.Errorf("deckservice: decode snapshot: %w", err)
	}
	return &deck, snap, nil
}

// Drift reports whether the deck changed since its latest approval. Both
// sides are compared in their canonical encoding.
func (s *Service) Drift(ctx context.Context, id string) (*DriftReport, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := encodeDeck(d.Deck)
	if err != nil {
		return nil, err
	}
	report := &DriftReport{CurrentChecksum: checksum.Sum(data)}

	snap, err := s.db.LatestSnapshot(id)
	if errors.Is(err, index.ErrNoRow) {
		return report, nil
	}
	if err != nil {
		return nil, err
	}
	report.Approved = true
	report.Version = snap.Version
	report.ApprovedChecksum = snap.Checksum
	report.Drifted = snap.Checksum != report.CurrentChecksum
	return report, nil
}

// Export renders a deck as text (metadata block plus slides) or YAML.
func (s *Service) Export(ctx context.Context, id, format string) (string, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	switch format {
	case "", FormatText:
		return exporter.ExportDocument(d.Deck), nil
	case FormatYAML:
		out, err := exporter.ExportYAML(d.Deck)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("%w: unknown export format %q", apperr.ErrInvalid, format)
	}
}
