// Package exporter renders decks back into the delimiter text format, the
// metadata block that precedes it, and YAML.
package exporter

import (
	"fmt"
	"strings"

	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
)

// ExportDeckToText renders every slide's type, title, body and key data in
// the format ParseSlides reads. Diagrams are not serialized; a slide that
// references any gets a note line the parser skips.
func ExportDeckToText(deck *models.StructuredSlideDeck) string {
	if deck == nil || len(deck.Slides) == 0 {
		return ""
	}
	parts := make([]string, len(deck.Slides))
	for i := range deck.Slides {
		parts[i] = exportSlide(&deck.Slides[i], i)
	}
	return strings.Join(parts, "\n")
}

func exportSlide(s *models.Slide, index int) string {
	var b strings.Builder
	if index > 0 {
		b.WriteString("\n" + parser.Delimiter + "\n")
	} else {
		b.WriteString(parser.Delimiter + "\n")
	}
	fmt.Fprintf(&b, "Slide Type: %s\n", s.Type)
	fmt.Fprintf(&b, "Title: %s\n", s.Title)
	if len(s.Body) > 0 {
		b.WriteString("Body Content:\n")
		for _, line := range s.Body {
			b.WriteString(line + "\n")
		}
	}
	if len(s.KeyData) > 0 {
		b.WriteString("Key Data Highlights:\n")
		for _, line := range s.KeyData {
			b.WriteString(line + "\n")
		}
	}
	if n := countDiagrams(s); n > 0 {
		fmt.Fprintf(&b, "\n%s\n", diagramNote(n))
	}
	return b.String()
}

func countDiagrams(s *models.Slide) int {
	n := 0
	for _, v := range s.Visuals {
		if v.Kind == models.VisualDiagram {
			n++
		}
	}
	return n
}

func diagramNote(n int) string {
	plural := "s"
	if n == 1 {
		plural = ""
	}
	return fmt.Sprintf("[Note: %d diagram%s referenced - export diagrams separately]", n, plural)
}

// ExportDeckMetadata renders the recipient and sender fields that are set,
// followed by the deck's theme id.
func ExportDeckMetadata(deck *models.StructuredSlideDeck) string {
	var b strings.Builder
	b.WriteString(parser.MetadataHeader + "\n")
	if deck == nil {
		return b.String()
	}
	if md := deck.Metadata; md != nil {
		for _, f := range parser.MetadataFields {
			if v := *f.Field(md); v != "" {
				fmt.Fprintf(&b, "%s: %s\n", f.Label, v)
			}
		}
	}
	if deck.DeckStyleID != "" {
		fmt.Fprintf(&b, "\n%s: %s\n", parser.DeckStyleLabel, deck.DeckStyleID)
	}
	return b.String()
}

// ExportDocument is the metadata block followed by the slide text.
func ExportDocument(deck *models.StructuredSlideDeck) string {
	return ExportDeckMetadata(deck) + "\n" + ExportDeckToText(deck)
}
