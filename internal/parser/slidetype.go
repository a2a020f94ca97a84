package parser

import (
	"strings"

	"github.com/starford/slidesmith/internal/models"
)

// typeRule maps any of its keywords to a slide type.
type typeRule struct {
	keywords []string
	typ      models.SlideType
}

// typeRules is evaluated in order; the first rule with a matching keyword wins.
var typeRules = []typeRule{
	{[]string{"cover", "title"}, models.SlideTypeCover},
	{[]string{"executive", "summary"}, models.SlideTypeExecutiveSummary},
	{[]string{"architecture", "platform"}, models.SlideTypeArchitecture},
	{[]string{"roi", "return", "investment"}, models.SlideTypeROI},
	{[]string{"flywheel", "loop"}, models.SlideTypeFlywheel},
	{[]string{"strategy", "strategic"}, models.SlideTypeStrategy},
	{[]string{"roadmap", "plan", "implementation"}, models.SlideTypeRoadmap},
	{[]string{"conclusion", "next steps"}, models.SlideTypeConclusion},
}

// NormalizeSlideType maps a free-text type declaration onto the closed set of
// slide types by keyword matching. Unknown values become generic.
func NormalizeSlideType(value string) models.SlideType {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return models.SlideTypeGeneric
	}
	for _, r := range typeRules {
		for _, kw := range r.keywords {
			if strings.Contains(v, kw) {
				return r.typ
			}
		}
	}
	return models.SlideTypeGeneric
}
