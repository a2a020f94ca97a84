package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/slidesmith/internal/models"
)

// maxTimelineItems caps the items taken from a slide body for a timeline.
const maxTimelineItems = 5

type diagramRule struct {
	keywords []string
	kind     models.DiagramType
	spec     func(s *models.Slide) models.DiagramSpec
	// fixed, when set, overrides keyword-based placement.
	fixed models.Placement
}

// diagramRules is ordered; the first rule whose keyword appears wins.
var diagramRules = []diagramRule{
	{
		keywords: []string{"flywheel", "circular flow"},
		kind:     models.DiagramFlywheel,
		spec: func(*models.Slide) models.DiagramSpec {
			return models.DiagramSpec{Nodes: []models.FlywheelNode{
				{Label: "Data"},
				{Label: "Prediction"},
				{Label: "Decision"},
				{Label: "Improvement"},
				{Label: "More Data"},
			}}
		},
	},
	{
		keywords: []string{"architecture", "layered"},
		kind:     models.DiagramArchitecture,
		spec: func(*models.Slide) models.DiagramSpec {
			return models.DiagramSpec{Layers: []models.ArchitectureLayer{
				{Name: "Feedback Loop", Description: "Real-time predictions"},
				{Name: "Inference", Description: "Model training"},
				{Name: "Training", Description: "Feature engineering"},
				{Name: "Feature Store", Description: "Data ingestion"},
				{Name: "Data Layer"},
			}}
		},
	},
	{
		keywords: []string{"timeline", "roadmap"},
		kind:     models.DiagramTimeline,
		spec: func(s *models.Slide) models.DiagramSpec {
			n := min(len(s.Body), maxTimelineItems)
			items := make([]models.TimelineItem, n)
			for i := range n {
				items[i] = models.TimelineItem{Label: fmt.Sprintf("Phase %d", i+1), Description: s.Body[i]}
			}
			return models.DiagramSpec{Items: items}
		},
	},
	{
		keywords: []string{"gradient accent", "intelligence gradient"},
		kind:     models.DiagramGradientAccent,
		spec: func(*models.Slide) models.DiagramSpec {
			return models.DiagramSpec{Direction: "diagonal"}
		},
		fixed: models.PlacementBackgroundAccent,
	},
}

// placementRules picks a placement from words in the slide text. First match
// wins; nothing matching means left.
var placementRules = []struct {
	re        *regexp.Regexp
	placement models.Placement
}{
	{regexp.MustCompile(`(?i)\bleft\b`), models.PlacementLeft},
	{regexp.MustCompile(`(?i)\bright\b`), models.PlacementRight},
	{regexp.MustCompile(`(?i)\b(?:background|accent)\b`), models.PlacementBackgroundAccent},
	{regexp.MustCompile(`(?i)\bcent(?:er|ered|re)\b`), models.PlacementCenter},
}

func inferDiagram(s *models.Slide, lines []string) (models.Diagram, models.Placement, bool) {
	text := strings.Join(lines, "\n")
	lower := strings.ToLower(text)
	for _, r := range diagramRules {
		if !containsAny(lower, r.keywords) {
			continue
		}
		d := models.Diagram{Type: r.kind, Spec: r.spec(s), Name: diagramName(r.kind, s)}
		placement := r.fixed
		if placement == "" {
			placement = detectPlacement(text)
		}
		return d, placement, true
	}
	return models.Diagram{}, "", false
}

func detectPlacement(text string) models.Placement {
	for _, r := range placementRules {
		if r.re.MatchString(text) {
			return r.placement
		}
	}
	return models.PlacementLeft
}

func diagramName(kind models.DiagramType, s *models.Slide) string {
	if s.Title == "" {
		return string(kind)
	}
	return s.Title + " " + string(kind)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
