package styling

import "github.com/starford/slidesmith/internal/models"

// Field names a slide content field checked for directives.
type Field string

// Checked fields.
const (
	FieldTitle   Field = "title"
	FieldBody    Field = "body"
	FieldKeyData Field = "keyData"
)

// Violation is one banned-token match in a slide content field.
type Violation struct {
	SlideID     string `json:"slideId"`
	SlideNumber int    `json:"slideNumber"`
	Field       Field  `json:"field"`
	LineIndex   *int   `json:"lineIndex,omitempty"`
	MatchedText string `json:"matchedText"`
	Rule        string `json:"rule"`
	Pattern     string `json:"pattern"`
}

// DetectViolations checks every title, body line and key-data line against
// every rule. Matches are not deduplicated: a line hitting three rules yields
// three violations.
func DetectViolations(slides []models.Slide) []Violation {
	var out []Violation
	for i := range slides {
		s := &slides[i]
		out = appendMatches(out, s, i+1, FieldTitle, nil, s.Title)
		for j, line := range s.Body {
			out = appendMatches(out, s, i+1, FieldBody, &j, line)
		}
		for j, line := range s.KeyData {
			out = appendMatches(out, s, i+1, FieldKeyData, &j, line)
		}
	}
	return out
}

// HasViolations reports whether any slide carries a directive.
func HasViolations(slides []models.Slide) bool {
	for i := range slides {
		s := &slides[i]
		if matchesAny(s.Title) {
			return true
		}
		for _, line := range s.Body {
			if matchesAny(line) {
				return true
			}
		}
		for _, line := range s.KeyData {
			if matchesAny(line) {
				return true
			}
		}
	}
	return false
}

func appendMatches(out []Violation, s *models.Slide, number int, field Field, line *int, text string) []Violation {
	if text == "" {
		return out
	}
	for _, r := range Rules {
		m := r.Pattern.FindString(text)
		if m == "" {
			continue
		}
		v := Violation{
			SlideID:     s.ID,
			SlideNumber: number,
			Field:       field,
			MatchedText: m,
			Rule:        r.Name,
			Pattern:     r.Pattern.String(),
		}
		if line != nil {
			idx := *line
			v.LineIndex = &idx
		}
		out = append(out, v)
	}
	return out
}

func matchesAny(text string) bool {
	for _, r := range Rules {
		if r.Pattern.MatchString(text) {
			return true
		}
	}
	return false
}
