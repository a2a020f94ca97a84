package styling

import (
	"regexp"
	"strings"

	"github.com/starford/slidesmith/internal/ident"
	"github.com/starford/slidesmith/internal/models"
)

// maxCleanPasses bounds the CleanText fixpoint loop.
const maxCleanPasses = 8

// Metadata keys set on extracted visual references.
const (
	MetaSource    = "source"
	MetaExtracted = "extractedFrom"
)

var (
	diagramPlacementRe = regexp.MustCompile(`(?i)diagram.*?(left|right|background)`)
	gradientAccentRe   = regexp.MustCompile(`(?i)gradient.*accent|intelligence gradient`)
	spaceRunRe         = regexp.MustCompile(`\s{2,}`)
	leadingPunctRe     = regexp.MustCompile(`^[\s:;,.\-–]+`)
)

// layoutIntents maps stripped directive text to a layout intent. First match
// wins.
var layoutIntents = []struct {
	re     *regexp.Regexp
	intent string
}{
	{regexp.MustCompile(`(?i)two[\s-]?column`), "two-column"},
	{regexp.MustCompile(`(?i)left column`), "left-column"},
	{regexp.MustCompile(`(?i)right column`), "right-column"},
	{regexp.MustCompile(`(?i)centered`), "centered"},
}

// CleanText strips every banned token and leading boilerplate prefix from
// text. It repeats until the text stops changing, so CleanText(CleanText(x))
// == CleanText(x).
func CleanText(text string) string {
	out := strings.TrimSpace(text)
	for range maxCleanPasses {
		next := cleanOnce(out)
		if next == out {
			break
		}
		out = next
	}
	return out
}

func cleanOnce(text string) string {
	out := text
	for _, p := range boilerplatePrefixes {
		out = p.ReplaceAllString(strings.TrimSpace(out), "")
	}
	for _, r := range Rules {
		out = r.Pattern.ReplaceAllString(out, "")
	}
	if out != text {
		out = spaceRunRe.ReplaceAllString(out, " ")
		out = leadingPunctRe.ReplaceAllString(out, "")
	}
	return strings.TrimSpace(out)
}

// Result is the outcome of cleaning one slide.
type Result struct {
	CleanedSlide     models.Slide             `json:"cleanedSlide"`
	ExtractedVisuals []models.VisualReference `json:"extractedVisuals"`
	RemovedText      []string                 `json:"removedText"`
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithIDSource sets the id source for extracted diagram references.
func WithIDSource(src ident.Source) Option {
	return func(c *Cleaner) { c.ids = src }
}

// WithTakenIDs makes the cleaner avoid ids already present in a deck. The
// set is updated with every id the cleaner hands out.
func WithTakenIDs(taken map[string]struct{}) Option {
	return func(c *Cleaner) { c.taken = taken }
}

// Cleaner removes directives from slides and promotes diagram-shaped lines
// into visual references.
type Cleaner struct {
	ids   ident.Source
	taken map[string]struct{}
}

// NewCleaner returns a Cleaner using uuid ids unless overridden.
func NewCleaner(opts ...Option) *Cleaner {
	c := &Cleaner{ids: ident.UUID}
	for _, o := range opts {
		o(c)
	}
	if c.taken == nil {
		c.taken = make(map[string]struct{})
	}
	return c
}

// AutoCleanSlide cleans s with a default Cleaner.
func AutoCleanSlide(s models.Slide) Result {
	return NewCleaner().CleanSlide(s)
}

// CleanSlide returns a cleaned copy of s. The input is not modified.
//
// Body and key-data lines naming a diagram placement or a gradient accent
// are removed and turned into diagram references. Every other line and the
// title go through CleanText; lines left empty are dropped.
func (c *Cleaner) CleanSlide(s models.Slide) Result {
	out := s.Clone()
	res := Result{RemovedText: []string{}}
	var notes []string

	out.Title = CleanText(s.Title)
	if out.Title != strings.TrimSpace(s.Title) {
		notes = append(notes, strings.TrimSpace(s.Title))
	}

	cleanLines := func(lines []string) []string {
		kept := make([]string, 0, len(lines))
		for _, line := range lines {
			if v, ok := c.extract(line); ok {
				res.ExtractedVisuals = append(res.ExtractedVisuals, v)
				res.RemovedText = append(res.RemovedText, line)
				notes = append(notes, strings.TrimSpace(line))
				continue
			}
			cleaned := CleanText(line)
			if cleaned != strings.TrimSpace(line) {
				notes = append(notes, strings.TrimSpace(line))
			}
			if cleaned != "" {
				kept = append(kept, cleaned)
			}
		}
		return kept
	}

	out.Body = cleanLines(s.Body)
	out.KeyData = cleanLines(s.KeyData)
	if len(out.KeyData) == 0 {
		out.KeyData = nil
	}
	out.Visuals = append(out.Visuals, res.ExtractedVisuals...)

	if len(notes) > 0 {
		sg := &models.StyleGuidance{}
		if out.StyleGuidance != nil {
			sg = out.StyleGuidance
		}
		sg.Notes = append(sg.Notes, notes...)
		if sg.LayoutIntent == "" {
			sg.LayoutIntent = inferLayoutIntent(notes)
		}
		out.StyleGuidance = sg
	}

	res.CleanedSlide = out
	return res
}

// extract turns a diagram-placement or gradient-accent line into a visual
// reference. Placement mentions are tested first; a line yields at most one
// reference.
func (c *Cleaner) extract(line string) (models.VisualReference, bool) {
	source := strings.TrimSpace(line)
	if m := diagramPlacementRe.FindStringSubmatch(line); m != nil {
		return models.VisualReference{
			Kind:      models.VisualDiagram,
			DiagramID: ident.Unique(c.ids, "diagram", c.taken),
			Placement: placementFor(m[1]),
			Metadata:  map[string]any{MetaExtracted: "placement", MetaSource: source},
		}, true
	}
	if gradientAccentRe.MatchString(line) {
		return models.VisualReference{
			Kind:      models.VisualDiagram,
			DiagramID: ident.Unique(c.ids, "gradient", c.taken),
			Placement: models.PlacementBackgroundAccent,
			Metadata:  map[string]any{MetaExtracted: "gradient", MetaSource: source},
		}, true
	}
	return models.VisualReference{}, false
}

func placementFor(side string) models.Placement {
	switch strings.ToLower(side) {
	case "left":
		return models.PlacementLeft
	case "right":
		return models.PlacementRight
	case "background":
		return models.PlacementBackgroundAccent
	default:
		return models.PlacementCenter
	}
}

func inferLayoutIntent(notes []string) string {
	for _, li := range layoutIntents {
		for _, n := range notes {
			if li.re.MatchString(n) {
				return li.intent
			}
		}
	}
	return ""
}
