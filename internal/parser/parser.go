// Package parser turns the delimiter-based slide text produced by the
// generator into structured slides.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/models"
)

// Delimiter separates slide blocks in the text format.
const Delimiter = "=== SLIDE ==="

// FallbackBody is used when a block yields no body lines at all.
const FallbackBody = "No content"

// MetaUnparsed is the slide metadata key holding lines the parser could not
// place in any section.
const MetaUnparsed = "unparsed"

var (
	typeDeclRe    = regexp.MustCompile(`(?i)slide type:\s*(.*)`)
	titleDeclRe   = regexp.MustCompile(`(?i)title:\s*(.*)`)
	labelValueRe  = regexp.MustCompile(`^[^:]+:\s*[^:]+$`)
	anyPairRe     = regexp.MustCompile(`^[-•]?\s*.+?:\s*.+$`)
	exportNoteRe  = regexp.MustCompile(`(?i)^\[note:.*\]$`)
	bodyHeaders   = []string{"body content:", "body:"}
	highlightHdrs = []string{"key data highlights:", "highlights:", "data highlights:"}
)

type section int

const (
	sectionNone section = iota
	sectionBody
	sectionHighlights
)

type options struct {
	ids ident.Source
}

// Option configures ParseSlides.
type Option func(*options)

// WithIDSource overrides the identifier source used for new slides.
func WithIDSource(src ident.Source) Option {
	return func(o *options) {
		o.ids = src
	}
}

// ParseSlides splits text on Delimiter and parses every non-blank block.
// A leading deck metadata block is skipped. Empty or whitespace-only input
// yields an empty (nil) result.
func ParseSlides(text string, opts ...Option) []models.Slide {
	o := options{ids: ident.UUID}
	for _, opt := range opts {
		opt(&o)
	}

	_, text, _ = SplitDocument(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var out []models.Slide
	for _, block := range strings.Split(text, Delimiter) {
		if strings.TrimSpace(block) == "" {
			continue
		}
		n := len(out) + 1
		s := parseBlock(block, n)
		s.ID = o.ids.New("slide-" + strconv.Itoa(n))
		out = append(out, s)
	}
	return out
}

// parseBlock parses one slide block; n is the 1-based slide position.
func parseBlock(block string, n int) models.Slide {
	lines := splitLines(block)

	s := models.Slide{
		Type:  models.SlideTypeGeneric,
		Title: "Slide " + strconv.Itoa(n),
	}
	var (
		typeSeen  bool
		titleSeen bool
		mode      = sectionNone
		unparsed  []any
	)

	for _, line := range lines {
		if exportNoteRe.MatchString(line) {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "slide type:"):
			if !typeSeen {
				typeSeen = true
				if m := typeDeclRe.FindStringSubmatch(line); m != nil {
					s.Type = NormalizeSlideType(m[1])
				}
			}
			continue

		case strings.Contains(lower, "title:"):
			if !titleSeen {
				if m := titleDeclRe.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[1]) != "" {
					s.Title = strings.TrimSpace(m[1])
					titleSeen = true
				}
			}
			continue

		case containsAny(lower, bodyHeaders):
			mode = sectionBody
			continue

		case containsAny(lower, highlightHdrs):
			mode = sectionHighlights
			continue
		}

		clean := models.StripBullet(line)
		if clean == "" {
			continue
		}

		switch mode {
		case sectionHighlights:
			s.KeyData = append(s.KeyData, clean)
		case sectionBody:
			s.Body = append(s.Body, clean)
		default:
			if !strings.Contains(line, ":") || labelValueRe.MatchString(clean) {
				s.Body = append(s.Body, clean)
			} else {
				unparsed = append(unparsed, line)
			}
		}
	}

	if len(s.Body) == 0 {
		s.Body = fallbackBody(lines)
	}
	if len(unparsed) > 0 {
		s.Metadata = map[string]any{MetaUnparsed: unparsed}
	}
	return s
}

// fallbackBody collects every line that is not a declarator, a section header
// or a label/value pair. It never returns an empty slice.
func fallbackBody(lines []string) []string {
	var body []string
	for _, line := range lines {
		lower := strings.ToLower(line)
		if exportNoteRe.MatchString(line) ||
			strings.Contains(lower, "slide type") ||
			strings.Contains(lower, "title:") ||
			strings.Contains(lower, "body content:") ||
			strings.Contains(lower, "highlights:") ||
			anyPairRe.MatchString(line) {
			continue
		}
		if clean := models.StripBullet(line); clean != "" {
			body = append(body, clean)
		}
	}
	if len(body) == 0 {
		return []string{FallbackBody}
	}
	return body
}

func splitLines(block string) []string {
	raw := strings.Split(strings.ReplaceAll(block, "\r\n", "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
