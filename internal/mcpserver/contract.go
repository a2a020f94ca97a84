package mcpserver

// SlideFormatContract describes the plain-text slide format that LLM
// consumers should produce before calling parse_slides or import_deck.
const SlideFormatContract = `# Slidesmith Slide Format

Decks are written as plain text. Each slide starts with a delimiter line and
carries a handful of labelled sections.

## Structure

` + "```" + `text
=== SLIDE ===
Slide Type: roi                 # OPTIONAL - template hint, see below
Title: Year-one return          # OPTIONAL - defaults to "Slide N"
Body Content:                   # lines until the next section header
Revenue grows 20% in year one
Payback within nine months
Key Data Highlights:            # OPTIONAL - "Label: value" lines
Net ROI: 340%
Payback: 9 months
` + "```" + `

## Rules

1. **Delimiter.** Every slide begins with ` + "`" + `=== SLIDE ===` + "`" + ` on its own line.
   Blank blocks are skipped; any other block becomes a slide.
2. **Headers are case-insensitive.** ` + "`" + `Slide Type:` + "`" + ` and ` + "`" + `Title:` + "`" + ` are read once (the
   first occurrence wins). ` + "`" + `Body Content:` + "`" + ` (or ` + "`" + `Body:` + "`" + `) and ` + "`" + `Key Data Highlights:` + "`" + `
   (or ` + "`" + `Highlights:` + "`" + `) open a section that runs until the next header.
3. **Slide types** are one of cover-slide, executive-summary, architecture,
   roi, flywheel, strategy, roadmap, conclusion, generic. Free text such as
   "Executive Summary" or "ROI analysis" is mapped onto the nearest type;
   anything else becomes generic.
4. **Key data** lines are "Label: value". Leading "-" or "•" bullets are stripped.
5. **No layout directives in content.** Do not write "two-column layout",
   "show the diagram on the right", "gradient background" or font and color
   instructions into titles or bodies. The lint_slides tool flags them and
   clean_slide_text strips them.
6. **Themes** are picked from the text: mentioning "pure minimal" or "high
   contrast" selects that theme, otherwise the deck keeps its current theme.

## Images

- Attach images with the ` + "`" + `attach_image` + "`" + ` tool. It accepts a base64 data URI or an
  http(s) URL and adds an image visual to the slide.
- Supported formats: png, jpg, gif, webp, svg.
`
