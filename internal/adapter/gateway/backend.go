package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/config/configs"
	"github.com/Neural-Ads/neural-ads-ctv-v3-sub001/internal/core/port"
)

// Backend is one completion backend the gateway can route to.
type Backend interface {
	Name() string
	Complete(ctx context.Context, model string, msgs []port.Message, temperature float64, maxTokens int) (string, error)
}

// langchainBackend adapts a langchaingo model to the Backend interface.
type langchainBackend struct {
	name  string
	model llms.Model
}

// NewOpenAIBackend builds the remote OpenAI-compatible backend.
func NewOpenAIBackend(cfg configs.LLM) (Backend, error) {
	opts := []openai.Option{}
	if cfg.OpenAIKey != "" {
		opts = append(opts, openai.WithToken(cfg.OpenAIKey))
	}
	if cfg.OpenAIModel != "" {
		opts = append(opts, openai.WithModel(cfg.OpenAIModel))
	}
	if cfg.OpenAIBase != "" {
		opts = append(opts, openai.WithBaseURL(cfg.OpenAIBase))
	}
	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("openai backend: %w", err)
	}
	return &langchainBackend{name: "openai", model: client}, nil
}

// NewOllamaBackend builds the local Ollama backend.
func NewOllamaBackend(cfg configs.LLM) (Backend, error) {
	opts := []ollama.Option{
		ollama.WithServerURL(cfg.OllamaURL),
	}
	if cfg.OllamaModel != "" {
		opts = append(opts, ollama.WithModel(cfg.OllamaModel))
	}
	client, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama backend: %w", err)
	}
	return &langchainBackend{name: "ollama", model: client}, nil
}

func (b *langchainBackend) Name() string {
	return b.name
}

func (b *langchainBackend) Complete(ctx context.Context, model string, msgs []port.Message, temperature float64, maxTokens int) (string, error) {
	content := toMessageContent(msgs)
	callOpts := []llms.CallOption{}
	if model != "" {
		callOpts = append(callOpts, llms.WithModel(model))
	}
	if temperature > 0 {
		callOpts = append(callOpts, llms.WithTemperature(temperature))
	}
	if maxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(maxTokens))
	}
	resp, err := b.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", errors.New("empty completion response")
	}
	return resp.Choices[0].Content, nil
}

func toMessageContent(msgs []port.Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(msgs))
	for _, m := range msgs {
		var role llms.ChatMessageType
		switch m.Role {
		case port.RoleSystem:
			role = llms.ChatMessageTypeSystem
		case port.RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.MessageContent{
			Role:  role,
			Parts: []llms.ContentPart{llms.TextPart(m.Content)},
		})
	}
	return out
}
