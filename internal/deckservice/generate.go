package deckservice

import (
	"context"
	"log/slog"

	"github.com/starford/slidesmith/internal/generator"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
)

// Generate asks the generator for slide text and imports it into a new
// deck. An empty id is generated. Recipient and sender become the deck
// metadata.
func (s *Service) Generate(ctx context.Context, id string, req generator.Request) (*DeckDetail, error) {
	if id == "" {
		id = s.ids.New("deck")
	}
	if err := checkID(id); err != nil {
		return nil, err
	}
	text, err := s.gen.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("deckservice: generated", slog.String("deck", id), slog.Int("bytes", len(text)))

	var md *models.DeckMetadata
	if req.Recipient != "" || req.Sender != "" {
		md = &models.DeckMetadata{ToCompany: req.Recipient, FromCompany: req.Sender}
	}
	return s.create(id, text, md)
}

// overlayMetadata copies the non-empty fields of src onto dst.
func overlayMetadata(dst, src *models.DeckMetadata) *models.DeckMetadata {
	if dst == nil {
		out := *src
		return &out
	}
	for _, f := range parser.MetadataFields {
		if v := *f.Field(src); v != "" {
			*f.Field(dst) = v
		}
	}
	return dst
}
