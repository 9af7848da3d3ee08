package ai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/safetydesk/incident-service/internal/config"
	"github.com/safetydesk/incident-service/internal/domain"
)

// VisionProvider is the primary strategy: joint image+text reasoning
// over a vision-capable chat model.
type VisionProvider struct {
	client *openai.Client
	cfg    config.AIConfig
	logger *zap.Logger
}

// NewVisionProvider constructs the primary provider.
func NewVisionProvider(client *openai.Client, cfg config.AIConfig, logger *zap.Logger) *VisionProvider {
	return &VisionProvider{client: client, cfg: cfg, logger: logger}
}

func (p *VisionProvider) Name() string { return "openai-vision" }

// Analyze sends the prompt with an optional image part and parses the
// structured JSON response.
func (p *VisionProvider) Analyze(ctx context.Context, input Input) (*domain.AIAnalysis, error) {
	if !p.cfg.Enabled || p.client == nil {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout())
	defer cancel()

	parts := []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: BuildPrompt(input)},
	}
	if input.ImageURL != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: input.ImageURL},
		})
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.cfg.VisionModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, MultiContent: parts},
		},
	})
	if err != nil {
		p.logger.Warn("vision provider failed", zap.Error(err))
		return nil, ErrUnavailable
	}
	if len(resp.Choices) == 0 {
		return nil, ErrUnavailable
	}
	return ParseAnalysis(resp.Choices[0].Message.Content)
}

// TextProvider is the secondary strategy: text-only reasoning. It
// cannot see images and refuses inputs without text.
type TextProvider struct {
	client *openai.Client
	cfg    config.AIConfig
	logger *zap.Logger
}

// NewTextProvider constructs the fallback provider.
func NewTextProvider(client *openai.Client, cfg config.AIConfig, logger *zap.Logger) *TextProvider {
	return &TextProvider{client: client, cfg: cfg, logger: logger}
}

func (p *TextProvider) Name() string { return "openai-text" }

// Analyze sends the text-only prompt and parses the response.
func (p *TextProvider) Analyze(ctx context.Context, input Input) (*domain.AIAnalysis, error) {
	if !p.cfg.Enabled || p.client == nil {
		return nil, ErrUnavailable
	}
	if input.Text == "" {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout())
	defer cancel()

	textInput := input
	textInput.ImageURL = ""
	if textInput.ContentType == "image+text" {
		textInput.ContentType = "text-only"
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.cfg.TextModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(textInput)},
		},
	})
	if err != nil {
		p.logger.Warn("text provider failed", zap.Error(err))
		return nil, ErrUnavailable
	}
	if len(resp.Choices) == 0 {
		return nil, ErrUnavailable
	}
	return ParseAnalysis(resp.Choices[0].Message.Content)
}
