package models

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	bulletRe       = regexp.MustCompile(`^[-•]\s*`)
	labelValueRe   = regexp.MustCompile(`^(.+?):\s*(.+)$`)
	labelDashValRe = regexp.MustCompile(`^(.+?)[-:]\s*(.+)$`)
)

// Highlight is the legacy label/value form of a key-data entry.
type Highlight struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// String renders the highlight back into its canonical key-data line.
func (h Highlight) String() string {
	return h.Label + ": " + h.Value
}

// StripBullet removes a leading "-" or "•" marker and surrounding space.
func StripBullet(line string) string {
	return strings.TrimSpace(bulletRe.ReplaceAllString(strings.TrimSpace(line), ""))
}

// SplitHighlight splits a key-data line into a label/value pair. Lines shaped
// "label: value" split on the first colon; anything else is best-effort split
// on the first dash or colon. ok is false when no split is possible.
func SplitHighlight(line string) (Highlight, bool) {
	line = StripBullet(line)
	if m := labelValueRe.FindStringSubmatch(line); m != nil {
		return Highlight{Label: strings.TrimSpace(m[1]), Value: strings.TrimSpace(m[2])}, true
	}
	if m := labelDashValRe.FindStringSubmatch(line); m != nil {
		label, value := strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
		if label != "" && value != "" {
			return Highlight{Label: label, Value: value}, true
		}
	}
	return Highlight{}, false
}

// Highlights derives label/value pairs from KeyData. Lines that cannot be
// split are skipped.
func (s *Slide) Highlights() []Highlight {
	var out []Highlight
	for _, line := range s.KeyData {
		if h, ok := SplitHighlight(line); ok {
			out = append(out, h)
		}
	}
	return out
}

// slideFields has Slide's fields without its JSON methods.
type slideFields Slide

// MarshalJSON emits the canonical fields plus the legacy highlights array.
func (s Slide) MarshalJSON() ([]byte, error) {
	f := slideFields(s)
	if f.Body == nil {
		f.Body = []string{}
	}
	return json.Marshal(struct {
		slideFields
		Highlights []Highlight `json:"highlights,omitempty"`
	}{f, s.Highlights()})
}

// UnmarshalJSON accepts legacy payloads that only carry highlights and folds
// them into KeyData.
func (s *Slide) UnmarshalJSON(data []byte) error {
	var aux struct {
		slideFields
		Highlights []Highlight `json:"highlights"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Slide(aux.slideFields)
	if len(s.KeyData) == 0 && len(aux.Highlights) > 0 {
		for _, h := range aux.Highlights {
			s.KeyData = append(s.KeyData, h.String())
		}
	}
	return nil
}
