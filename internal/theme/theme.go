// Package theme holds the deck style presets. A Catalogue is passed to the
// importer, the service and the exporters as configuration; there is no
// process-wide theme.
package theme

import (
	"fmt"
	"slices"
)

// Preset ids.
const (
	MonoGradientV1 = "mono-gradient-v1"
	PureMinimal    = "pure-minimal"
	HighContrast   = "high-contrast"
)

// Fonts names the typefaces a theme renders with.
type Fonts struct {
	Title string `json:"title" yaml:"title"`
	Body  string `json:"body" yaml:"body"`
	Mono  string `json:"mono" yaml:"mono"`
}

// Colors is a theme palette. Gradient is empty for themes without accents.
type Colors struct {
	Primary    string   `json:"primary" yaml:"primary"`
	Accent     string   `json:"accent" yaml:"accent"`
	Background string   `json:"background" yaml:"background"`
	Surface    string   `json:"surface" yaml:"surface"`
	Text       string   `json:"text" yaml:"text"`
	TextMuted  string   `json:"textMuted" yaml:"text_muted"`
	Gradient   []string `json:"gradient,omitempty" yaml:"gradient,omitempty"`
}

// Theme is one deck style preset.
type Theme struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Fonts       Fonts  `json:"fonts" yaml:"fonts"`
	Colors      Colors `json:"colors" yaml:"colors"`
}

var defaultFonts = Fonts{Title: "Inter", Body: "Inter", Mono: "Courier New"}

// Builtin returns the stock presets, default first.
func Builtin() []Theme {
	return []Theme{
		{
			ID:          MonoGradientV1,
			Name:        "Mono Gradient v1",
			Description: "Monochrome base with intelligence gradient accents",
			Fonts:       defaultFonts,
			Colors: Colors{
				Primary: "#0A2540", Accent: "#635BFF", Background: "#FFFFFF", Surface: "#F1F5F9",
				Text: "#000000", TextMuted: "#94a3b8",
				Gradient: []string{"#6366f1", "#a855f7", "#ec4899"},
			},
		},
		{
			ID:          PureMinimal,
			Name:        "Pure Minimal",
			Description: "Clean minimal design with no gradients",
			Fonts:       defaultFonts,
			Colors: Colors{
				Primary: "#111827", Accent: "#111827", Background: "#FFFFFF", Surface: "#F9FAFB",
				Text: "#111827", TextMuted: "#6B7280",
			},
		},
		{
			ID:          HighContrast,
			Name:        "High Contrast",
			Description: "Maximum contrast for readability",
			Fonts:       defaultFonts,
			Colors: Colors{
				Primary: "#000000", Accent: "#FFD400", Background: "#FFFFFF", Surface: "#000000",
				Text: "#000000", TextMuted: "#333333",
			},
		},
	}
}

// Catalogue is an ordered, read-only set of themes with a default.
type Catalogue struct {
	themes    []Theme
	defaultID string
}

// NewCatalogue builds a catalogue. defaultID must name one of themes.
func NewCatalogue(themes []Theme, defaultID string) (*Catalogue, error) {
	if len(themes) == 0 {
		return nil, fmt.Errorf("theme: empty catalogue")
	}
	seen := make(map[string]struct{}, len(themes))
	for _, t := range themes {
		if t.ID == "" {
			return nil, fmt.Errorf("theme: preset without id")
		}
		if _, dup := seen[t.ID]; dup {
			return nil, fmt.Errorf("theme: duplicate preset %q", t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	if _, ok := seen[defaultID]; !ok {
		return nil, fmt.Errorf("theme: unknown default %q", defaultID)
	}
	return &Catalogue{themes: slices.Clone(themes), defaultID: defaultID}, nil
}

// Default returns the builtin catalogue with mono-gradient-v1 as default.
func Default() *Catalogue {
	return &Catalogue{themes: Builtin(), defaultID: MonoGradientV1}
}

// Lookup returns the theme with the given id.
func (c *Catalogue) Lookup(id string) (Theme, bool) {
	for _, t := range c.themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}

// Has reports whether id is a known theme.
func (c *Catalogue) Has(id string) bool {
	_, ok := c.Lookup(id)
	return ok
}

// DefaultID returns the id used when nothing else selects a theme.
func (c *Catalogue) DefaultID() string { return c.defaultID }

// IDs lists theme ids in catalogue order.
func (c *Catalogue) IDs() []string {
	out := make([]string, len(c.themes))
	for i, t := range c.themes {
		out[i] = t.ID
	}
	return out
}

// All returns a copy of every theme.
func (c *Catalogue) All() []Theme {
	return slices.Clone(c.themes)
}
