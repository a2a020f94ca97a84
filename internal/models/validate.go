package models

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Validate checks the structural shape of a deck received from an untrusted
// source (API payloads, files on disk). It does not check content
// completeness; see parser.ValidateSlides for that.
func (d StructuredSlideDeck) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.Slides, validation.By(uniqueSlideIDs)),
		validation.Field(&d.Diagrams, validation.By(uniqueDiagramIDs)),
	)
}

// Validate checks a single slide's identity and enumerations.
func (s Slide) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.ID, validation.Required),
		validation.Field(&s.Type, validation.Required, validation.In(enumValues(SlideTypes)...)),
		validation.Field(&s.Visuals),
	)
}

// Validate checks a visual reference's enumerations.
func (v VisualReference) Validate() error {
	return validation.ValidateStruct(&v,
		validation.Field(&v.Kind, validation.Required, validation.In(VisualDiagram, VisualChart, VisualImage)),
		validation.Field(&v.Placement, validation.Required, validation.In(enumValues(Placements)...)),
		validation.Field(&v.DiagramID, validation.When(v.Kind == VisualDiagram, validation.Required)),
	)
}

// Validate checks a diagram's identity and type.
func (d Diagram) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.ID, validation.Required),
		validation.Field(&d.Type, validation.Required, validation.In(enumValues(DiagramTypes)...)),
	)
}

func uniqueSlideIDs(value any) error {
	slides, _ := value.([]Slide)
	seen := make(map[string]struct{}, len(slides))
	for _, s := range slides {
		if s.ID == "" {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			return fmt.Errorf("duplicate slide id %q", s.ID)
		}
		seen[s.ID] = struct{}{}
	}
	return nil
}

func uniqueDiagramIDs(value any) error {
	diagrams, _ := value.([]Diagram)
	seen := make(map[string]struct{}, len(diagrams))
	for _, d := range diagrams {
		if d.ID == "" {
			continue
		}
		if _, dup := seen[d.ID]; dup {
			return fmt.Errorf("duplicate diagram id %q", d.ID)
		}
		seen[d.ID] = struct{}{}
	}
	return nil
}

func enumValues[T ~string](values []T) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
