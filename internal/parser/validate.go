package parser

import (
	"fmt"
	"strings"

	"github.com/starford/slidesmith/internal/models"
)

// Validation is the result of a structural completeness check.
type Validation struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors"`
}

// ValidateSlides flags an empty deck and slides missing a title or body. The
// result is advisory; callers decide whether to block on it.
func ValidateSlides(slides []models.Slide) Validation {
	errs := []string{}
	if len(slides) == 0 {
		errs = append(errs, "No slides found in content")
	}
	for i, s := range slides {
		if strings.TrimSpace(s.Title) == "" {
			errs = append(errs, fmt.Sprintf("Slide %d: Missing title", i+1))
		}
		if len(s.Body) == 0 {
			errs = append(errs, fmt.Sprintf("Slide %d: Missing body content", i+1))
		}
	}
	return Validation{Valid: len(errs) == 0, Errors: errs}
}
