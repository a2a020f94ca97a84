package parser

import (
	"strings"

	"github.com/starford/slidesmith/internal/models"
)

// MetadataHeader opens the deck metadata block that may precede the first
// slide of an exported document.
const MetadataHeader = "=== DECK METADATA ==="

// DeckStyleLabel labels the theme id line of the metadata block.
const DeckStyleLabel = "Deck Style"

// MetadataField pairs a metadata block label with the DeckMetadata field
// it carries.
type MetadataField struct {
	Label string
	Field func(*models.DeckMetadata) *string
}

// MetadataFields lists the metadata block lines in export order.
var MetadataFields = []MetadataField{
	{"Recipient Company", func(m *models.DeckMetadata) *string { return &m.ToCompany }},
	{"Recipient Person", func(m *models.DeckMetadata) *string { return &m.ToPerson }},
	{"Recipient Role", func(m *models.DeckMetadata) *string { return &m.ToRole }},
	{"Sender Company", func(m *models.DeckMetadata) *string { return &m.FromCompany }},
	{"Sender Person", func(m *models.DeckMetadata) *string { return &m.FromPerson }},
	{"Sender Role", func(m *models.DeckMetadata) *string { return &m.FromRole }},
}

// DocumentHeader is what a metadata block declares. Fields absent from the
// block are empty.
type DocumentHeader struct {
	Metadata  models.DeckMetadata
	DeckStyle string
}

// Empty reports whether the block declared nothing.
func (h DocumentHeader) Empty() bool {
	return h.DeckStyle == "" && h.Metadata == (models.DeckMetadata{})
}

// SplitDocument separates a leading metadata block from the slide text that
// follows it. ok is false, and slides is text unchanged, when text does not
// start with MetadataHeader.
func SplitDocument(text string) (header DocumentHeader, slides string, ok bool) {
	rest, found := strings.CutPrefix(strings.TrimLeft(text, " \t\r\n"), MetadataHeader)
	if !found {
		return DocumentHeader{}, text, false
	}
	block := rest
	if i := strings.Index(rest, Delimiter); i >= 0 {
		block, slides = rest[:i], rest[i:]
	} else {
		slides = ""
	}

	for _, line := range splitLines(block) {
		label, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		label, value = strings.TrimSpace(label), strings.TrimSpace(value)
		if strings.EqualFold(label, DeckStyleLabel) {
			header.DeckStyle = value
			continue
		}
		for _, f := range MetadataFields {
			if strings.EqualFold(label, f.Label) {
				*f.Field(&header.Metadata) = value
				break
			}
		}
	}
	return header, slides, true
}
