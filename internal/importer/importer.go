// Package importer converts generator text into a StructuredSlideDeck:
// parsing, diagram inference from slide content, advisory warnings and theme
// selection.
package importer

import (
	"strings"

	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
	"github.com/starford/slidesmith/internal/styling"
	"github.com/starford/slidesmith/internal/theme"
)

// MetaVisualLayout is the slide metadata key holding layout notes carried
// alongside the slide rather than in its body.
const MetaVisualLayout = "visualLayout"

// UnmappedMessage is the text of the warning emitted for layout instructions
// that no diagram could absorb.
const UnmappedMessage = "Visual layout instructions found but could not be mapped to a diagram. Please review and add diagrams manually if needed."

// maxWarningLines caps how many offending lines a warning quotes.
const maxWarningLines = 3

// Warning is advisory; an import never fails because of one.
type Warning struct {
	SlideNumber int    `json:"slideNumber"`
	Message     string `json:"message"`
	Content     string `json:"content"`
}

// Result is the outcome of an import.
type Result struct {
	Deck     *models.StructuredSlideDeck `json:"deck"`
	Warnings []Warning                   `json:"warnings"`
}

// Option configures an Importer.
type Option func(*Importer)

// WithIDSource sets the id source for slides and inferred diagrams.
func WithIDSource(src ident.Source) Option {
	return func(im *Importer) { im.ids = src }
}

// WithThemes sets the theme catalogue used for theme inference and defaults.
func WithThemes(c *theme.Catalogue) Option {
	return func(im *Importer) { im.themes = c }
}

// Importer turns slide text into decks.
type Importer struct {
	ids    ident.Source
	themes *theme.Catalogue
}

// New returns an Importer with uuid ids and the builtin themes.
func New(opts ...Option) *Importer {
	im := &Importer{ids: ident.UUID, themes: theme.Default()}
	for _, o := range opts {
		o(im)
	}
	return im
}

// ImportText imports text with a default Importer.
func ImportText(text string, existing *models.StructuredSlideDeck) Result {
	return New().Import(text, existing)
}

// Import parses text into a new deck. When existing is given its diagrams
// are kept and the new ones appended, its slides are replaced, and its
// metadata and theme carry over unless the text names a theme. A leading
// deck metadata block sets the theme and overrides the metadata fields it
// declares. existing is not modified.
func (im *Importer) Import(text string, existing *models.StructuredSlideDeck) Result {
	existing = existing.Clone()

	taken := make(map[string]struct{})
	if existing != nil {
		taken = existing.TakenIDs()
	}

	header, text, _ := parser.SplitDocument(text)
	slides := parser.ParseSlides(text, parser.WithIDSource(im.ids))
	for i := range slides {
		taken[slides[i].ID] = struct{}{}
	}

	res := Result{Warnings: []Warning{}}
	var diagrams []models.Diagram
	for i := range slides {
		s := &slides[i]
		corpus := scanLines(s)

		var visuals []models.VisualReference
		if d, placement, ok := inferDiagram(s, corpus); ok {
			d.ID = ident.Unique(im.ids, "diagram", taken)
			diagrams = append(diagrams, d)
			visuals = append(visuals, models.VisualReference{
				Kind:      models.VisualDiagram,
				DiagramID: d.ID,
				Placement: placement,
			})
		} else if w, ok := unmappedWarning(s, i+1); ok {
			res.Warnings = append(res.Warnings, w)
		}

		body := make([]string, 0, len(s.Body))
		for _, line := range s.Body {
			if !styling.IsLayoutDirectiveLine(line) {
				body = append(body, line)
			}
		}
		s.Body = body
		s.Visuals = visuals
	}

	deck := &models.StructuredSlideDeck{
		DeckStyleID: im.deckStyle(header, text, existing),
		Slides:      slides,
	}
	if existing != nil {
		deck.Diagrams = existing.Diagrams
		deck.Metadata = existing.Metadata
	}
	deck.Metadata = mergeMetadata(deck.Metadata, header.Metadata)
	deck.Diagrams = append(deck.Diagrams, diagrams...)
	if deck.Slides == nil {
		deck.Slides = []models.Slide{}
	}
	res.Deck = deck
	return res
}

// scanLines is the text diagram inference looks at: body, key data and
// any metadata layout notes.
func scanLines(s *models.Slide) []string {
	lines := make([]string, 0, len(s.Body)+len(s.KeyData))
	lines = append(lines, s.Body...)
	lines = append(lines, s.KeyData...)
	lines = append(lines, metadataLines(s, MetaVisualLayout)...)
	return lines
}

func unmappedWarning(s *models.Slide, number int) (Warning, bool) {
	layoutNotes := metadataLines(s, MetaVisualLayout)
	if !mentionsVisualLayout(s.Body) && !mentionsVisualLayout(layoutNotes) {
		return Warning{}, false
	}

	var offending []string
	for _, line := range s.Body {
		lower := strings.ToLower(line)
		switch {
		case strings.Contains(lower, "visual layout"),
			strings.Contains(lower, "visual component"),
			strings.Contains(lower, "centered") && !strings.Contains(lower, "title"),
			strings.Contains(lower, "monochrome") && !strings.Contains(lower, "base"):
			offending = append(offending, line)
		}
	}
	offending = append(offending, layoutNotes...)
	if len(offending) == 0 {
		return Warning{}, false
	}

	content := strings.Join(offending[:min(len(offending), maxWarningLines)], "; ")
	if len(offending) > maxWarningLines {
		content += "..."
	}
	return Warning{SlideNumber: number, Message: UnmappedMessage, Content: content}, true
}

func mentionsVisualLayout(lines []string) bool {
	for _, line := range lines {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "visual layout") || strings.Contains(lower, "visual component") {
			return true
		}
	}
	return false
}

// metadataLines reads a string list from slide metadata, accepting both the
// decoded-JSON and the in-memory shape.
func metadataLines(s *models.Slide, key string) []string {
	switch v := s.Metadata[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	case string:
		return []string{v}
	default:
		return nil
	}
}

func (im *Importer) deckStyle(header parser.DocumentHeader, text string, existing *models.StructuredSlideDeck) string {
	if im.themes.Has(header.DeckStyle) {
		return header.DeckStyle
	}
	if id, ok := inferTheme(text); ok && im.themes.Has(id) {
		return id
	}
	if existing != nil && existing.DeckStyleID != "" {
		return existing.DeckStyleID
	}
	return im.themes.DefaultID()
}

// mergeMetadata overlays the fields a metadata block declares onto md.
func mergeMetadata(md *models.DeckMetadata, declared models.DeckMetadata) *models.DeckMetadata {
	if declared == (models.DeckMetadata{}) {
		return md
	}
	if md == nil {
		md = &models.DeckMetadata{}
	}
	for _, f := range parser.MetadataFields {
		if v := *f.Field(&declared); v != "" {
			*f.Field(md) = v
		}
	}
	return md
}

// themeRules maps keywords in the raw text to a theme id. First match wins.
var themeRules = []struct {
	keywords []string
	id       string
}{
	{[]string{"mono-gradient", "monochrome"}, theme.MonoGradientV1},
	{[]string{"pure minimal", "minimal"}, theme.PureMinimal},
	{[]string{"high contrast"}, theme.HighContrast},
}

func inferTheme(text string) (string, bool) {
	lower := strings.ToLower(text)
	for _, r := range themeRules {
		for _, k := range r.keywords {
			if strings.Contains(lower, k) {
				return r.id, true
			}
		}
	}
	return "", false
}
