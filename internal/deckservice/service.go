// Package deckservice coordinates deck storage, the catalogue and the
// slide-text pipeline. Mutations of one deck are serialized; different decks
// proceed independently.
package deckservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"time"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/checksum"
	"github.com/starford/slidesmith/internal/generator"
	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/importer"
	"github.com/starford/slidesmith/internal/index"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/storage"
	"github.com/starford/slidesmith/internal/theme"
)

// Deck event kinds passed to the Publisher.
const (
	EventCreated  = "created"
	EventUpdated  = "updated"
	EventDeleted  = "deleted"
	EventApproved = "approved"
)

var deckIDRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// Publisher receives deck change notifications.
type Publisher interface {
	PublishDeckEvent(kind, deckID string)
}

// DeckDetail is a stored deck with its current checksum.
type DeckDetail struct {
	ID       string                      `json:"id"`
	Checksum string                      `json:"checksum"`
	Deck     *models.StructuredSlideDeck `json:"deck"`
	Warnings []importer.Warning          `json:"warnings,omitempty"`
}

// Option configures a Service.
type Option func(*Service)

// WithThemes sets the theme catalogue.
func WithThemes(c *theme.Catalogue) Option {
	return func(s *Service) { s.themes = c }
}

// WithIDSource sets the id source for new slides, diagrams, decks and assets.
func WithIDSource(src ident.Source) Option {
	return func(s *Service) { s.ids = src }
}

// WithGenerator sets the text-generation collaborator.
func WithGenerator(g generator.Generator) Option {
	return func(s *Service) { s.gen = g }
}

// WithPublisher sets where deck events go.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service coordinates storage and index operations.
type Service struct {
	store    storage.Provider
	db       *index.DB
	themes   *theme.Catalogue
	ids      ident.Source
	gen      generator.Generator
	events   Publisher
	logger   *slog.Logger
	now      func() time.Time
	importer *importer.Importer
	locks    deckLocks
}

// NewService creates a deck service over store and db.
func NewService(store storage.Provider, db *index.DB, opts ...Option) *Service {
	s := &Service{
		store:  store,
		db:     db,
		themes: theme.Default(),
		ids:    ident.UUID,
		gen:    generator.Disabled{},
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.importer = importer.New(importer.WithIDSource(s.ids), importer.WithThemes(s.themes))
	return s
}

// Themes returns the catalogue the service validates theme ids against.
func (s *Service) Themes() *theme.Catalogue { return s.themes }

// Get reads a deck from storage.
func (s *Service) Get(_ context.Context, id string) (*DeckDetail, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	deck, sum, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return &DeckDetail{ID: id, Checksum: sum, Deck: deck}, nil
}

// Create stores a new deck. A non-empty text is imported; otherwise the deck
// starts empty with the default theme.
func (s *Service) Create(_ context.Context, id, text string) (*DeckDetail, error) {
	return s.create(id, text, nil)
}

// create imports text into a new deck and stores it in one save. Non-empty
// fields of md overlay the imported metadata.
func (s *Service) create(id, text string, md *models.DeckMetadata) (*DeckDetail, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(id)
	defer unlock()

	if _, err := s.store.Read(index.DeckPath(id)); err == nil {
		return nil, apperr.ErrAlreadyExists
	}

	deck := &models.StructuredSlideDeck{DeckStyleID: s.themes.DefaultID(), Slides: []models.Slide{}}
	var warnings []importer.Warning
	if text != "" {
		res := s.importer.Import(text, nil)
		deck, warnings = res.Deck, res.Warnings
	}
	if md != nil {
		deck.Metadata = overlayMetadata(deck.Metadata, md)
	}

	detail, err := s.save(id, deck)
	if err != nil {
		return nil, err
	}
	detail.Warnings = warnings
	s.publish(EventCreated, id)
	s.logger.Info("deckservice: created", slog.String("deck", id), slog.Int("slides", len(deck.Slides)))
	return detail, nil
}

// Put replaces a deck with optimistic concurrency. ifMatch, when set, must
// equal the stored checksum.
func (s *Service) Put(_ context.Context, id string, deck *models.StructuredSlideDeck, ifMatch string) (*DeckDetail, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if deck == nil {
		return nil, fmt.Errorf("deck is required: %w", apperr.ErrInvalid)
	}
	if err := deck.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperr.ErrInvalid, err.Error())
	}
	if deck.DeckStyleID != "" && !s.themes.Has(deck.DeckStyleID) {
		return nil, fmt.Errorf("%w: unknown theme %q", apperr.ErrInvalid, deck.DeckStyleID)
	}
	if deck.Slides == nil {
		deck.Slides = []models.Slide{}
	}

	unlock := s.locks.lock(id)
	defer unlock()

	_, sum, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if ifMatch != "" && ifMatch != sum {
		return nil, apperr.ErrConflict
	}
	detail, err := s.save(id, deck)
	if err != nil {
		return nil, err
	}
	s.publish(EventUpdated, id)
	return detail, nil
}

// Delete removes a deck from storage and the catalogue, snapshots included.
func (s *Service) Delete(_ context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	unlock := s.locks.lock(id)
	defer unlock()

	if err := s.store.Delete(index.DeckPath(id)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return apperr.ErrNotFound
		}
		return err
	}
	if err := s.db.DeleteDeck(id); err != nil {
		return err
	}
	s.publish(EventDeleted, id)
	s.logger.Info("deckservice: deleted", slog.String("deck", id))
	return nil
}

// List returns a page of catalogue rows.
func (s *Service) List(_ context.Context, limit, offset int, sort string) ([]index.DeckRow, int, error) {
	rows, total, err := s.db.ListDecks(limit, offset, sort)
	if err != nil {
		return nil, 0, err
	}
	return nonNilSlice(rows), total, nil
}

// Search delegates text search to the index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]index.SearchResult, error) {
	res, err := s.db.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	return nonNilSlice(res), nil
}

// Import re-imports text into an existing deck: slides are replaced,
// diagrams appended, metadata and theme kept unless the text names a theme.
func (s *Service) Import(ctx context.Context, id, text string) (*DeckDetail, error) {
	var warnings []importer.Warning
	detail, err := s.mutate(ctx, id, func(deck *models.StructuredSlideDeck) error {
		res := s.importer.Import(text, deck)
		*deck = *res.Deck
		warnings = res.Warnings
		return nil
	})
	if err != nil {
		return nil, err
	}
	detail.Warnings = warnings
	return detail, nil
}

// ImportInbox imports text into deck id, creating the deck if needed.
func (s *Service) ImportInbox(ctx context.Context, id, text string) error {
	_, err := s.Import(ctx, id, text)
	if errors.Is(err, apperr.ErrNotFound) {
		_, err = s.Create(ctx, id, text)
	}
	return err
}

// mutate loads deck id under its lock, applies fn and stores the result.
func (s *Service) mutate(_ context.Context, id string, fn func(*models.StructuredSlideDeck) error) (*DeckDetail, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	unlock := s.locks.lock(id)
	defer unlock()

	deck, _, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if err := fn(deck); err != nil {
		return nil, err
	}
	detail, err := s.save(id, deck)
	if err != nil {
		return nil, err
	}
	s.publish(EventUpdated, id)
	return detail, nil
}

func (s *Service) load(id string) (*models.StructuredSlideDeck, string, error) {
	data, err := s.store.Read(index.DeckPath(id))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", apperr.ErrNotFound
		}
		return nil, "", err
	}
	var deck models.StructuredSlideDeck
	if err := json.Unmarshal(data, &deck); err != nil {
		return nil, "", fmt.Errorf("deckservice: decode %s: %w", id, err)
	}
	if deck.Slides == nil {
		deck.Slides = []models.Slide{}
	}
	return &deck, checksum.Sum(data), nil
}

// save writes deck and indexes it. The caller holds the deck lock.
func (s *Service) save(id string, deck *models.StructuredSlideDeck) (*DeckDetail, error) {
	data, err := encodeDeck(deck)
	if err != nil {
		return nil, err
	}
	if err := s.store.Write(index.DeckPath(id), data); err != nil {
		return nil, err
	}
	sum := checksum.Sum(data)
	if err := s.db.Put(index.NewDocument(id, deck, sum, s.now())); err != nil {
		return nil, err
	}
	return &DeckDetail{ID: id, Checksum: sum, Deck: deck}, nil
}

func (s *Service) publish(kind, id string) {
	if s.events != nil {
		s.events.PublishDeckEvent(kind, id)
	}
}

func encodeDeck(deck *models.StructuredSlideDeck) ([]byte, error) {
	data, err := json.MarshalIndent(deck, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("deckservice: encode: %w", err)
	}
	return append(data, '\n'), nil
}

func checkID(id string) error {
	if !deckIDRe.MatchString(id) {
		return fmt.Errorf("%w: invalid deck id %q", apperr.ErrInvalid, id)
	}
	return nil
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
