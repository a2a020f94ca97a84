// Package generator talks to the text-generation collaborator that writes
// slide text in the delimiter format.
package generator

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/starford/slidesmith/internal/apperr"
	"github.com/starford/slidesmith/internal/parser"
)

// Request describes the deck to generate.
type Request struct {
	Description string
	Recipient   string
	Sender      string
	SlideCount  int
}

// Generator produces slide text for a request.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Disabled is the Generator used when no provider is configured.
type Disabled struct{}

// Generate always fails with apperr.ErrUnavailable.
func (Disabled) Generate(context.Context, Request) (string, error) {
	return "", fmt.Errorf("generator: not configured: %w", apperr.ErrUnavailable)
}

// ChatClient is the subset of *openai.Client the generator uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAI generates slide text with an OpenAI-compatible chat completion API.
type OpenAI struct {
	client  ChatClient
	model   string
	timeout time.Duration
}

// NewOpenAI builds a generator for the given API key. baseURL may be empty
// for the public endpoint.
func NewOpenAI(apiKey, baseURL, model string, timeout time.Duration) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return NewOpenAIWithClient(openai.NewClientWithConfig(cfg), model, timeout)
}

// NewOpenAIWithClient builds a generator around an existing client.
func NewOpenAIWithClient(client ChatClient, model string, timeout time.Duration) *OpenAI {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAI{client: client, model: model, timeout: timeout}
}

const systemPrompt = `You write business presentation decks as plain text.
Separate slides with a line containing exactly "=== SLIDE ===".
Each slide has these lines, in order:
Slide Type: one of cover, executive summary, architecture, roi, flywheel, strategy, roadmap, conclusion
Title: the slide title
Body Content:
one body line per line
Key Data Highlights:
one "label: value" pair per line
Write content only. Never describe layout, columns, colours, gradients, centering or where visuals go.`

// Generate asks the model for slide text and returns it stripped of
// markdown fences.
func (g *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Description) == "" {
		return "", fmt.Errorf("generator: empty description: %w", apperr.ErrInvalid)
	}
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(req)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generator: chat completion: %w: %w", apperr.ErrUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generator: empty response: %w", apperr.ErrUnavailable)
	}

	text := stripFences(resp.Choices[0].Message.Content)
	if !isSlideText(text) {
		return "", fmt.Errorf("generator: response is not slide text: %w", apperr.ErrUnavailable)
	}
	return text, nil
}

var declaratorRe = regexp.MustCompile(`(?im)^\s*(slide type|title)\s*:\s*\S`)

// isSlideText reports whether a reply is in the slide text format: it has
// the delimiter or at least one Slide Type/Title declarator. A refusal or
// free prose has neither, although ParseSlides would still turn it into a
// slide.
func isSlideText(text string) bool {
	if len(parser.ParseSlides(text)) == 0 {
		return false
	}
	return strings.Contains(text, parser.Delimiter) || declaratorRe.MatchString(text)
}

func userPrompt(req Request) string {
	var b strings.Builder
	b.WriteString("Generate a proposal deck for the following business: ")
	b.WriteString(strings.TrimSpace(req.Description))
	if req.Recipient != "" {
		fmt.Fprintf(&b, "\nThe deck is addressed to %s.", req.Recipient)
	}
	if req.Sender != "" {
		fmt.Fprintf(&b, "\nThe deck is presented by %s.", req.Sender)
	}
	if req.SlideCount > 0 {
		fmt.Fprintf(&b, "\nWrite exactly %d slides.", req.SlideCount)
	}
	return b.String()
}

var fenceRe = regexp.MustCompile("(?m)^```[a-zA-Z]*\\s*$")

func stripFences(s string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(s, ""))
}
