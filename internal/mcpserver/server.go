// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Slidesmith tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/deckservice"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
	"github.com/starford/slidesmith/internal/styling"
)

// SlideFormatURI is the resource URI of the slide format contract.
const SlideFormatURI = "slidesmith://slide-format"

// Server wraps the MCP server with Slidesmith tools.
type Server struct {
	mcp *server.MCPServer
	svc *deckservice.Service
	// fetch downloads http(s) images for attach_image.
	fetch func(ctx context.Context, rawURL string) (name string, data []byte, err error)
}

// New creates a new MCP server with all Slidesmith tools registered.
func New(svc *deckservice.Service) *Server {
	s := &Server{svc: svc, fetch: newImageFetcher(blockedAddr).Fetch}

	s.mcp = server.NewMCPServer(
		"Slidesmith",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("parse_slides",
		mcp.WithDescription("Parse slide text into structured slides and report whether "+
			"every slide is complete. Text MUST follow the slide format; read it first via "+
			"get_slide_format or the "+SlideFormatURI+" resource."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Slide text using === SLIDE === delimiters")),
	), s.parseSlides)

	s.mcp.AddTool(mcp.NewTool("lint_slides",
		mcp.WithDescription("List layout and styling directives found in slide titles, bodies and key data."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Slide text using === SLIDE === delimiters")),
	), s.lintSlides)

	s.mcp.AddTool(mcp.NewTool("clean_slide_text",
		mcp.WithDescription("Strip layout and styling directives from a piece of slide text."),
		mcp.WithString("text", mcp.Required(), mcp.Description("Text to clean")),
	), s.cleanSlideText)

	s.mcp.AddTool(mcp.NewTool("import_deck",
		mcp.WithDescription("Import slide text into a deck. A new deck is created when the id "+
			"is unknown; otherwise the slides are replaced and existing diagrams are kept."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Deck id (letters, digits, - and _)")),
		mcp.WithString("text", mcp.Required(), mcp.Description("Slide text following the slide format")),
	), s.importDeck)

	s.mcp.AddTool(mcp.NewTool("export_deck",
		mcp.WithDescription("Export a deck as slide text (with its metadata block) or YAML."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Deck id")),
		mcp.WithString("format", mcp.Enum(deckservice.FormatText, deckservice.FormatYAML), mcp.Description("Output format (default text)")),
	), s.exportDeck)

	s.mcp.AddTool(mcp.NewTool("validate_deck",
		mcp.WithDescription("Check that every slide of a deck has an id, a type, a title and body "+
			"content, and list diagram references that point nowhere."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Deck id")),
	), s.validateDeck)

	s.mcp.AddTool(mcp.NewTool("list_decks",
		mcp.WithDescription("List decks in the catalogue."),
		mcp.WithString("sort", mcp.Enum("updated", "title", "id"), mcp.Description("Sort order (default updated)")),
	), s.listDecks)

	s.mcp.AddTool(mcp.NewTool("search_decks",
		mcp.WithDescription("Search slide titles, bodies and key data across decks."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchDecks)

	s.mcp.AddTool(mcp.NewTool("get_slide_format",
		mcp.WithDescription("Returns the slide text format contract. "+
			"Call this before writing slide text to ensure correct structure."),
	), s.getSlideFormat)

	s.mcp.AddTool(mcp.NewTool("attach_image",
		mcp.WithDescription("Store an image and add it to a slide as an image visual. "+
			"Accepts a base64 data URI (data:image/png;base64,...) or an http(s) URL."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Deck id")),
		mcp.WithString("slide_id", mcp.Required(), mcp.Description("Slide id")),
		mcp.WithString("url", mcp.Required(), mcp.Description("Data URI or http(s) URL of the image")),
		mcp.WithString("placement", mcp.Description("left, right, center, top, bottom or background-accent (default right)")),
		mcp.WithString("caption", mcp.Description("Optional caption")),
	), s.attachImage)

	// Resource: slide format contract.
	s.mcp.AddResource(
		mcp.NewResource(SlideFormatURI, "Slide Format Contract",
			mcp.WithResourceDescription("Plain-text slide format accepted by the importer."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSlideFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

type parseResult struct {
	Slides     []models.Slide    `json:"slides"`
	Validation parser.Validation `json:"validation"`
}

func (s *Server) parseSlides(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slides := parser.ParseSlides(text)
	if slides == nil {
		slides = []models.Slide{}
	}
	return jsonResult(parseResult{Slides: slides, Validation: parser.ValidateSlides(slides)})
}

func (s *Server) lintSlides(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	v := styling.DetectViolations(parser.ParseSlides(text))
	if len(v) == 0 {
		return mcp.NewToolResultText("no violations found"), nil
	}
	return jsonResult(v)
}

func (s *Server) cleanSlideText(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(styling.CleanText(text)), nil
}

func (s *Server) importDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	d, err := s.svc.Import(ctx, id, text)
	if errors.Is(err, apperr.ErrNotFound) {
		d, err = s.svc.Create(ctx, id, text)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d)
}

func (s *Server) exportDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.Export(ctx, id, req.GetString("format", deckservice.FormatText))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(out), nil
}

func (s *Server) validateDeck(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	report, err := s.svc.Validate(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(report)
}

func (s *Server) listDecks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rows, _, err := s.svc.List(ctx, 0, 0, req.GetString("sort", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultText("no decks found"), nil
	}
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = r.ID + "\t" + r.Title
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchDecks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getSlideFormat(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(SlideFormatContract), nil
}

func (s *Server) readSlideFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      SlideFormatURI,
			MIMEType: "text/markdown",
			Text:     SlideFormatContract,
		},
	}, nil
}

func (s *Server) attachImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	slideID, err := req.RequireString("slide_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawURL, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var asset *deckservice.Asset
	if strings.HasPrefix(rawURL, "data:") {
		asset, err = s.svc.SaveDataURI(ctx, rawURL)
	} else {
		var (
			name string
			data []byte
		)
		name, data, err = s.fetch(ctx, rawURL)
		if err == nil {
			asset, err = s.svc.SaveAsset(ctx, name, data)
		}
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	placement := models.Placement(req.GetString("placement", ""))
	d, err := s.svc.AttachImage(ctx, id, slideID, asset.ID, placement, req.GetString("caption", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(struct {
		Asset    *deckservice.Asset `json:"asset"`
		Checksum string             `json:"checksum"`
	}{asset, d.Checksum})
}
