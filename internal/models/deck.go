// Package models defines the slide-deck document model shared by the parser,
// the styling validator, the importer and the exporters.
package models

// SlideType selects the template a slide is rendered with.
type SlideType string

// Slide types.
const (
	SlideTypeCover            SlideType = "cover-slide"
	SlideTypeExecutiveSummary SlideType = "executive-summary"
	SlideTypeArchitecture     SlideType = "architecture"
	SlideTypeROI              SlideType = "roi"
	SlideTypeFlywheel         SlideType = "flywheel"
	SlideTypeStrategy         SlideType = "strategy"
	SlideTypeRoadmap          SlideType = "roadmap"
	SlideTypeConclusion       SlideType = "conclusion"
	SlideTypeGeneric          SlideType = "generic"
)

// SlideTypes lists every valid slide type.
var SlideTypes = []SlideType{
	SlideTypeCover,
	SlideTypeExecutiveSummary,
	SlideTypeArchitecture,
	SlideTypeROI,
	SlideTypeFlywheel,
	SlideTypeStrategy,
	SlideTypeRoadmap,
	SlideTypeConclusion,
	SlideTypeGeneric,
}

// VisualKind is the kind of asset a VisualReference points to.
type VisualKind string

// Visual kinds.
const (
	VisualDiagram VisualKind = "diagram"
	VisualChart   VisualKind = "chart"
	VisualImage   VisualKind = "image"
)

// Placement is where a visual sits on its slide.
type Placement string

// Placements.
const (
	PlacementLeft             Placement = "left"
	PlacementRight            Placement = "right"
	PlacementCenter           Placement = "center"
	PlacementTop              Placement = "top"
	PlacementBottom           Placement = "bottom"
	PlacementBackgroundAccent Placement = "background-accent"
)

// Placements lists every valid placement.
var Placements = []Placement{
	PlacementLeft,
	PlacementRight,
	PlacementCenter,
	PlacementTop,
	PlacementBottom,
	PlacementBackgroundAccent,
}

// DiagramType is the kind of visual specification a Diagram holds.
type DiagramType string

// Diagram types.
const (
	DiagramFlywheel       DiagramType = "flywheel"
	DiagramArchitecture   DiagramType = "architecture"
	DiagramTimeline       DiagramType = "timeline"
	DiagramGradientAccent DiagramType = "gradient-accent"
	DiagramChart          DiagramType = "chart"
	DiagramCustom         DiagramType = "custom"
)

// DiagramTypes lists every valid diagram type.
var DiagramTypes = []DiagramType{
	DiagramFlywheel,
	DiagramArchitecture,
	DiagramTimeline,
	DiagramGradientAccent,
	DiagramChart,
	DiagramCustom,
}

// VisualReference is a slide's pointer to a visual asset. DiagramID is a weak
// reference into the deck's diagrams; a missing target means "no visual".
type VisualReference struct {
	Kind      VisualKind     `json:"kind"`
	DiagramID string         `json:"diagramId,omitempty"`
	Placement Placement      `json:"placement"`
	Caption   string         `json:"caption,omitempty"`
	Size      string         `json:"size,omitempty"`
	AssetID   string         `json:"assetId,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// StyleGuidance holds layout hints pulled out of slide prose. It is never
// rendered into exported content.
type StyleGuidance struct {
	Emphasis     string   `json:"emphasis,omitempty"`
	LayoutIntent string   `json:"layoutIntent,omitempty"`
	CalloutCount int      `json:"calloutCount,omitempty"`
	Notes        []string `json:"notes,omitempty"`
}

// Slide is one presentation unit.
//
// KeyData is the canonical representation of highlight data. The legacy
// label/value form is derived by Highlights and only materialised at the JSON
// boundary.
type Slide struct {
	ID            string            `json:"id"`
	Type          SlideType         `json:"type"`
	Title         string            `json:"title"`
	Body          []string          `json:"body"`
	KeyData       []string          `json:"keyData,omitempty"`
	Visuals       []VisualReference `json:"visuals,omitempty"`
	Metadata      map[string]any    `json:"metadata,omitempty"`
	StyleGuidance *StyleGuidance    `json:"styleGuidance,omitempty"`
}

// DiagramIDs returns the ids of every diagram this slide references, in order.
func (s *Slide) DiagramIDs() []string {
	var out []string
	for _, v := range s.Visuals {
		if v.Kind == VisualDiagram && v.DiagramID != "" {
			out = append(out, v.DiagramID)
		}
	}
	return out
}

// References reports whether the slide points at diagramID.
func (s *Slide) References(diagramID string) bool {
	for _, v := range s.Visuals {
		if v.Kind == VisualDiagram && v.DiagramID == diagramID {
			return true
		}
	}
	return false
}

// FlywheelNode is one station on a flywheel diagram.
type FlywheelNode struct {
	Label string  `json:"label"`
	Angle float64 `json:"angle,omitempty"`
}

// ArchitectureLayer is one tier of an architecture diagram.
type ArchitectureLayer struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

// TimelineItem is one entry on a timeline diagram.
type TimelineItem struct {
	Label       string `json:"label"`
	Date        string `json:"date,omitempty"`
	Description string `json:"description,omitempty"`
}

// DiagramSpec is the type-specific parameter bag of a Diagram. Only the
// fields relevant to the diagram's type are populated; anything else goes
// into Custom.
type DiagramSpec struct {
	Nodes           []FlywheelNode      `json:"nodes,omitempty"`
	Size            float64             `json:"size,omitempty"`
	Radius          float64             `json:"radius,omitempty"`
	Layers          []ArchitectureLayer `json:"layers,omitempty"`
	Items           []TimelineItem      `json:"items,omitempty"`
	Direction       string              `json:"direction,omitempty"`
	Colors          []string            `json:"colors,omitempty"`
	Width           float64             `json:"width,omitempty"`
	Height          float64             `json:"height,omitempty"`
	BackgroundColor string              `json:"backgroundColor,omitempty"`
	Custom          map[string]any      `json:"custom,omitempty"`
}

// Diagram is a named, typed visual specification shared by reference.
type Diagram struct {
	ID   string      `json:"id"`
	Type DiagramType `json:"type"`
	Spec DiagramSpec `json:"spec"`
	Name string      `json:"name,omitempty"`
}

// DeckMetadata carries the sender and recipient shown on cover and closing slides.
type DeckMetadata struct {
	ToCompany   string `json:"toCompany,omitempty" yaml:"to_company,omitempty"`
	ToPerson    string `json:"toPerson,omitempty" yaml:"to_person,omitempty"`
	ToRole      string `json:"toRole,omitempty" yaml:"to_role,omitempty"`
	FromCompany string `json:"fromCompany,omitempty" yaml:"from_company,omitempty"`
	FromPerson  string `json:"fromPerson,omitempty" yaml:"from_person,omitempty"`
	FromRole    string `json:"fromRole,omitempty" yaml:"from_role,omitempty"`
}

// StructuredSlideDeck is the aggregate root: ordered slides, shared diagrams
// and a theme selector.
type StructuredSlideDeck struct {
	DeckStyleID string        `json:"deckStyleId,omitempty"`
	Slides      []Slide       `json:"slides"`
	Diagrams    []Diagram     `json:"diagrams,omitempty"`
	Metadata    *DeckMetadata `json:"metadata,omitempty"`
}

// Diagram looks up a diagram by id. A dangling reference simply reports false.
func (d *StructuredSlideDeck) Diagram(id string) (*Diagram, bool) {
	for i := range d.Diagrams {
		if d.Diagrams[i].ID == id {
			return &d.Diagrams[i], true
		}
	}
	return nil, false
}

// SlideIndex returns the position of the slide with the given id, or -1.
func (d *StructuredSlideDeck) SlideIndex(id string) int {
	for i := range d.Slides {
		if d.Slides[i].ID == id {
			return i
		}
	}
	return -1
}

// DiagramUsage returns the ids of the slides that reference diagramID.
func (d *StructuredSlideDeck) DiagramUsage(diagramID string) []string {
	var out []string
	for i := range d.Slides {
		if d.Slides[i].References(diagramID) {
			out = append(out, d.Slides[i].ID)
		}
	}
	return out
}

// DanglingReferences returns referenced diagram ids with no matching diagram.
func (d *StructuredSlideDeck) DanglingReferences() []string {
	seen := make(map[string]struct{})
	var out []string
	for i := range d.Slides {
		for _, id := range d.Slides[i].DiagramIDs() {
			if _, ok := d.Diagram(id); ok {
				continue
			}
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}

// TakenIDs returns the set of slide and diagram ids already present in the deck.
func (d *StructuredSlideDeck) TakenIDs() map[string]struct{} {
	out := make(map[string]struct{}, len(d.Slides)+len(d.Diagrams))
	for _, s := range d.Slides {
		out[s.ID] = struct{}{}
	}
	for _, dg := range d.Diagrams {
		out[dg.ID] = struct{}{}
	}
	return out
}
