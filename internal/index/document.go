package index

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/starford/slidesmith/internal/checksum"
	"github.com/starford/slidesmith/internal/models"
)

// DeckExt is the file extension of stored decks.
const DeckExt = ".json"

// DeckPath returns the store path of deck id.
func DeckPath(id string) string { return id + DeckExt }

// DeckID returns the deck id for a store path, and false for paths that are
// not root-level deck files.
func DeckID(p string) (string, bool) {
	p = strings.ReplaceAll(p, "\\", "/")
	if path.Dir(p) != "." || !strings.HasSuffix(p, DeckExt) {
		return "", false
	}
	id := strings.TrimSuffix(p, DeckExt)
	return id, id != ""
}

// Document is everything the catalogue stores about one deck.
type Document struct {
	Row  DeckRow
	Body string
	Refs []DiagramRef
}

// NewDocument derives the catalogue entry of a deck. The title is the first
// slide's title; the body is every slide's title, body and key data.
func NewDocument(id string, deck *models.StructuredSlideDeck, sum string, at time.Time) Document {
	doc := Document{Row: DeckRow{
		ID:         id,
		Theme:      deck.DeckStyleID,
		SlideCount: len(deck.Slides),
		Checksum:   sum,
		UpdatedAt:  at,
	}}
	if len(deck.Slides) > 0 {
		doc.Row.Title = deck.Slides[0].Title
	}

	var b strings.Builder
	for i := range deck.Slides {
		s := &deck.Slides[i]
		b.WriteString(s.Title)
		b.WriteByte('\n')
		for _, line := range s.Body {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		for _, line := range s.KeyData {
			b.WriteString(line)
			b.WriteByte('\n')
		}
		for _, id := range s.DiagramIDs() {
			_, ok := deck.Diagram(id)
			doc.Refs = append(doc.Refs, DiagramRef{SlideID: s.ID, DiagramID: id, Resolved: ok})
		}
	}
	doc.Body = b.String()
	return doc
}

// Put upserts doc.
func (db *DB) Put(doc Document) error {
	return db.UpsertDeck(doc.Row, doc.Body, doc.Refs)
}

// indexFile decodes stored deck JSON and upserts it.
func indexFile(db *DB, p string, data []byte) error {
	id, ok := DeckID(p)
	if !ok {
		return fmt.Errorf("index: not a deck path: %s", p)
	}
	var deck models.StructuredSlideDeck
	if err := json.Unmarshal(data, &deck); err != nil {
		return fmt.Errorf("index: decode %s: %w", p, err)
	}
	return db.Put(NewDocument(id, &deck, checksum.Sum(data), time.Now()))
}
