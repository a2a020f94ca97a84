package models

// Clone returns a deep copy of the deck. The copy shares no slices, maps or
// pointers with the original, so it is safe to keep as an approval snapshot.
func (d *StructuredSlideDeck) Clone() *StructuredSlideDeck {
	if d == nil {
		return nil
	}
	out := &StructuredSlideDeck{
		DeckStyleID: d.DeckStyleID,
		Slides:      make([]Slide, len(d.Slides)),
	}
	for i := range d.Slides {
		out.Slides[i] = d.Slides[i].Clone()
	}
	if d.Diagrams != nil {
		out.Diagrams = make([]Diagram, len(d.Diagrams))
		for i := range d.Diagrams {
			out.Diagrams[i] = d.Diagrams[i].Clone()
		}
	}
	if d.Metadata != nil {
		md := *d.Metadata
		out.Metadata = &md
	}
	return out
}

// Clone returns a deep copy of the slide.
func (s Slide) Clone() Slide {
	out := s
	out.Body = cloneStrings(s.Body)
	out.KeyData = cloneStrings(s.KeyData)
	if s.Visuals != nil {
		out.Visuals = make([]VisualReference, len(s.Visuals))
		for i, v := range s.Visuals {
			out.Visuals[i] = v.Clone()
		}
	}
	out.Metadata = cloneMap(s.Metadata)
	if s.StyleGuidance != nil {
		sg := *s.StyleGuidance
		sg.Notes = cloneStrings(s.StyleGuidance.Notes)
		out.StyleGuidance = &sg
	}
	return out
}

// Clone returns a deep copy of the visual reference.
func (v VisualReference) Clone() VisualReference {
	out := v
	out.Metadata = cloneMap(v.Metadata)
	return out
}

// Clone returns a deep copy of the diagram.
func (d Diagram) Clone() Diagram {
	out := d
	if d.Spec.Nodes != nil {
		out.Spec.Nodes = append([]FlywheelNode(nil), d.Spec.Nodes...)
	}
	if d.Spec.Layers != nil {
		out.Spec.Layers = append([]ArchitectureLayer(nil), d.Spec.Layers...)
	}
	if d.Spec.Items != nil {
		out.Spec.Items = append([]TimelineItem(nil), d.Spec.Items...)
	}
	out.Spec.Colors = cloneStrings(d.Spec.Colors)
	out.Spec.Custom = cloneMap(d.Spec.Custom)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneMap(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return cloneStrings(t)
	default:
		return v
	}
}
