package generator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"

	"github.com/starford/slidesmith/internal/apperr"
)

type fakeChat struct {
	reply string
	err   error
	got   openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.got = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{Choices: []openai.ChatCompletionChoice{
		{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.reply}},
	}}, nil
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Generate(context.Background(), Request{Description: "x"})
	if !errors.Is(err, apperr.ErrUnavailable) {
		t.Errorf("err = %v", err)
	}
}

func TestOpenAI_Generate(t *testing.T) {
	fake := &fakeChat{reply: "```text\n=== SLIDE ===\nTitle: Hello\nBody Content:\nWorld\n```"}
	g := NewOpenAIWithClient(fake, "", 0)

	text, err := g.Generate(context.Background(), Request{Description: "Retail analytics", Recipient: "Acme", SlideCount: 6})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "=== SLIDE ===\nTitle: Hello\nBody Content:\nWorld" {
		t.Errorf("text = %q", text)
	}
	if fake.got.Model != openai.GPT4o || len(fake.got.Messages) != 2 {
		t.Fatalf("request = %+v", fake.got)
	}
	user := fake.got.Messages[1].Content
	for _, want := range []string{"Retail analytics", "addressed to Acme", "exactly 6 slides"} {
		if !strings.Contains(user, want) {
			t.Errorf("user prompt missing %q: %q", want, user)
		}
	}
}

func TestOpenAI_Errors(t *testing.T) {
	g := NewOpenAIWithClient(&fakeChat{}, "m", 0)
	if _, err := g.Generate(context.Background(), Request{}); !errors.Is(err, apperr.ErrInvalid) {
		t.Errorf("empty description err = %v", err)
	}
	for _, reply := range []string{
		"",
		"I'm sorry, but I can't help with that request.",
		"```\nHere is a great deck about retail analytics.\n```",
		"=== SLIDE ===\n\n=== SLIDE ===",
	} {
		g = NewOpenAIWithClient(&fakeChat{reply: reply}, "m", 0)
		if _, err := g.Generate(context.Background(), Request{Description: "x"}); !errors.Is(err, apperr.ErrUnavailable) {
			t.Errorf("reply %q: err = %v", reply, err)
		}
	}

	g = NewOpenAIWithClient(&fakeChat{err: errors.New("rate limited")}, "m", 0)
	if _, err := g.Generate(context.Background(), Request{Description: "x"}); !errors.Is(err, apperr.ErrUnavailable) || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("err = %v", err)
	}
}

func TestIsSlideText(t *testing.T) {
	cases := map[string]bool{
		"=== SLIDE ===\nRevenue grew":             true,
		"Title: Market Fit\nBody:\nStrong demand": true,
		"slide type: roi\nNumbers":                true,
		"Our title: is great but this is prose":   false,
		"Sure! Here are some ideas.":              false,
		"   ":                                     false,
	}
	for text, want := range cases {
		if got := isSlideText(text); got != want {
			t.Errorf("isSlideText(%q) = %v, want %v", text, got, want)
		}
	}
}
