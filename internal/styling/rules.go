// Package styling keeps layout and style directives out of slide content.
// It detects banned directive phrases, strips them, and promotes
// diagram-shaped mentions into explicit visual references.
package styling

import (
	"regexp"
	"strings"
)

// Category groups banned-token rules by the kind of directive they catch.
type Category string

// Rule categories.
const (
	CategoryLayout      Category = "layout"
	CategoryAppearance  Category = "appearance"
	CategoryGradient    Category = "gradient"
	CategoryPlacement   Category = "placement"
	CategoryInstruction Category = "instruction"
)

// Rule is one entry of the banned-token table.
type Rule struct {
	Name     string
	Category Category
	Pattern  *regexp.Regexp
}

func rule(name string, cat Category, expr string) Rule {
	return Rule{Name: name, Category: cat, Pattern: regexp.MustCompile(`(?i)` + expr)}
}

// Rules is the ordered banned-token table. Some entries swallow the verb
// lead-in and trailing layout noun of a directive so a directive sentence is
// one match and is removed whole.
var Rules = []Rule{
	rule("visual-layout-declarator", CategoryLayout, `visual layout:`),
	rule("layout-declarator", CategoryLayout, `layout:`),
	rule("centered", CategoryAppearance, `centered`),
	rule("monochrome-base", CategoryAppearance, `monochrome base`),
	rule("monochrome", CategoryAppearance, `monochrome`),

	rule("intelligence-gradient", CategoryGradient, `intelligence gradient`),
	rule("gradient-accent", CategoryGradient, `gradient accent`),
	rule("include-gradient", CategoryGradient, `\binclude\b.*gradient`),
	rule("subtle-gradient", CategoryGradient, `\bsubtle\b.*gradient`),
	rule("gradient-then-accent", CategoryGradient, `gradient.*accent`),

	rule("diagram-on-side", CategoryPlacement, `diagram on (?:the )?(?:left|right)`),
	rule("diagram-left", CategoryPlacement, `diagram.*\bleft\b`),
	rule("diagram-right", CategoryPlacement, `diagram.*\bright\b`),
	rule("left-column", CategoryPlacement, `left column`),
	rule("right-column", CategoryPlacement, `right column`),
	rule("two-column", CategoryPlacement, `(?:\b(?:use|apply|with|in)\s+(?:an?\s+|the\s+)?)?two[\s-]?column(?:\s+(?:layout|format|grid|design|structure))?`),

	rule("include-visual", CategoryInstruction, `\binclude\b.*\bvisuals?\b`),
	rule("add-visual", CategoryInstruction, `\badd\b.*\bvisuals?\b`),
	rule("visual-component", CategoryInstruction, `visual component`),
	rule("visual-element", CategoryInstruction, `visual element`),
	rule("apply-style", CategoryInstruction, `\bapply\b.*\bstyles?\b`),
	rule("styling", CategoryInstruction, `styling`),
	rule("design-instruction", CategoryInstruction, `design.*instruction`),
}

// boilerplatePrefixes are stripped from the start of a line before the rules
// run.
var boilerplatePrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(?:visual layout|layout|styling):\s*`),
	regexp.MustCompile(`(?i)^(?:include|add|use|apply):\s*`),
}

// importDirectiveMarkers are the coarse substrings the importer uses to drop
// whole body lines that describe layout rather than content.
var importDirectiveMarkers = []string{
	"visual layout",
	"visual component",
	"diagram on",
	"left column",
	"right column",
}

// IsLayoutDirectiveLine reports whether line mentions one of the coarse
// layout markers that make a whole line layout-only.
func IsLayoutDirectiveLine(line string) bool {
	lower := strings.ToLower(line)
	for _, m := range importDirectiveMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}
