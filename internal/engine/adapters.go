package engine

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/pkg/anthropic"
	"github.com/georepute/visibility-cli/pkg/gemini"
	"github.com/georepute/visibility-cli/pkg/openaichat"
)

// chatEngine adapts any OpenAI-compatible chat-completions client. OpenAI,
// Perplexity, and DeepSeek all go through here with different clients.
type chatEngine struct {
	key    string
	client openaichat.Client
}

// NewChatEngine wraps an OpenAI-compatible client as an Engine.
func NewChatEngine(key string, client openaichat.Client) Engine {
	return &chatEngine{key: key, client: client}
}

func (e *chatEngine) Key() string { return e.key }

func (e *chatEngine) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := e.client.ChatCompletion(ctx, openaichat.ChatCompletionRequest{
		Messages:    []openaichat.Message{{Role: "user", Content: prompt}},
		Temperature: &completionTemperature,
		MaxTokens:   &completionMaxTokens,
	})
	if err != nil {
		return nil, eris.Wrapf(err, "engine %s: chat completion", e.key)
	}
	return &Completion{
		Text: resp.Text(),
		Usage: model.TokenUsage{
			InputTokens:  int64(resp.Usage.PromptTokens),
			OutputTokens: int64(resp.Usage.CompletionTokens),
		},
	}, nil
}

// anthropicEngine adapts the Anthropic messages API.
type anthropicEngine struct {
	client anthropic.Client
	model  string
}

// NewAnthropicEngine wraps an Anthropic client as an Engine.
func NewAnthropicEngine(client anthropic.Client, modelName string) Engine {
	return &anthropicEngine{client: client, model: modelName}
}

func (e *anthropicEngine) Key() string { return KeyAnthropic }

func (e *anthropicEngine) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := e.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       e.model,
		MaxTokens:   int64(completionMaxTokens),
		Messages:    []anthropic.Message{{Role: "user", Content: prompt}},
		Temperature: &completionTemperature,
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine anthropic: create message")
	}
	return &Completion{
		Text: resp.Text(),
		Usage: model.TokenUsage{
			InputTokens:  resp.Usage.InputTokens,
			OutputTokens: resp.Usage.OutputTokens,
		},
	}, nil
}

// geminiEngine adapts the Generative Language API.
type geminiEngine struct {
	client gemini.Client
}

// NewGeminiEngine wraps a Gemini client as an Engine.
func NewGeminiEngine(client gemini.Client) Engine {
	return &geminiEngine{client: client}
}

func (e *geminiEngine) Key() string { return KeyGemini }

func (e *geminiEngine) Complete(ctx context.Context, prompt string) (*Completion, error) {
	resp, err := e.client.GenerateContent(ctx, gemini.GenerateContentRequest{
		Contents: []gemini.Content{{Role: "user", Parts: []gemini.Part{{Text: prompt}}}},
		GenerationConfig: &gemini.GenerationConfig{
			Temperature:     &completionTemperature,
			MaxOutputTokens: &completionMaxTokens,
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "engine gemini: generate content")
	}
	return &Completion{
		Text: resp.Text(),
		Usage: model.TokenUsage{
			InputTokens:  int64(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(resp.UsageMetadata.CandidatesTokenCount),
		},
	}, nil
}
