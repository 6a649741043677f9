// Package ai provides the inference client: it relays an assembled system
// prompt and message list to a generative-language API and returns the
// assistant's text. Providers are selected by base URL; every supported
// provider speaks the OpenAI-compatible chat completion surface, including
// Gemini through its compatibility endpoint.
package ai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/musubi-chat/musubi/store"
)

// Role of an outbound message. The wire contract knows only the two
// conversation roles; the system prompt travels separately.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// InlineData is a binary part, carried base64-encoded with its MIME type.
type InlineData struct {
	MimeType string
	Data     string
}

// Part is one piece of a message: text or inline binary.
type Part struct {
	Text       string
	InlineData *InlineData
}

// Message is one outbound conversation turn.
type Message struct {
	Role  Role
	Parts []Part
}

// TextPart builds a plain text part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart builds an inline binary part.
func InlinePart(mimeType, base64Data string) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: base64Data}}
}

// LLMService is the inference client interface.
type LLMService interface {
	// Chat performs a synchronous completion and returns the assistant text.
	Chat(ctx context.Context, systemPrompt string, messages []Message) (string, error)
}

// Provider identifiers.
const (
	ProviderGoogle     = "google"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderCustom     = "custom"
)

var providerBaseURLs = map[string]string{
	ProviderGoogle:     "https://generativelanguage.googleapis.com/v1beta/openai/",
	ProviderOpenAI:     "https://api.openai.com/v1",
	ProviderOpenRouter: "https://openrouter.ai/api/v1",
}

// Config holds the inference client configuration.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string // required for the custom provider, ignored otherwise
	MaxTokens   int
	Temperature float32
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderGoogle,
		Model:       "gemini-2.0-flash",
		MaxTokens:   2048,
		Temperature: 0.9,
	}
}

type llmService struct {
	client *openai.Client
	config *Config
}

// NewLLMService creates an inference client for the configured provider.
func NewLLMService(cfg *Config) (LLMService, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = 0.9
	}

	baseURL := cfg.BaseURL
	if url, ok := providerBaseURLs[cfg.Provider]; ok {
		baseURL = url
	} else if cfg.Provider != ProviderCustom {
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("provider %s requires a base URL", cfg.Provider)
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL

	return &llmService{
		client: openai.NewClientWithConfig(clientConfig),
		config: cfg,
	}, nil
}

// NewLLMServiceFromSettings builds a client from the persisted provider
// settings, with the default generation parameters.
func NewLLMServiceFromSettings(settings store.Settings) (LLMService, error) {
	cfg := DefaultConfig()
	cfg.Provider = settings.Provider
	cfg.Model = settings.Model
	cfg.APIKey = settings.APIKey
	cfg.BaseURL = settings.BaseURL
	return NewLLMService(cfg)
}

func (s *llmService) Chat(ctx context.Context, systemPrompt string, messages []Message) (string, error) {
	if s.config.APIKey == "" {
		return "", &Failure{
			kind:    ErrAuthFailure,
			Message: "APIキーが設定されていません。設定画面からAPIキーを入力してください。",
		}
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.config.Model,
		Messages:    convertMessages(systemPrompt, messages),
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	})
	if err != nil {
		return "", Classify(err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &Failure{kind: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

func convertMessages(systemPrompt string, messages []Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	if systemPrompt != "" {
		out = append(out, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}

	for _, m := range messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleModel {
			role = openai.ChatMessageRoleAssistant
		}

		if flat, ok := flattenText(m.Parts); ok {
			out = append(out, openai.ChatCompletionMessage{Role: role, Content: flat})
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(m.Parts))
		for _, p := range m.Parts {
			if p.InlineData != nil {
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeImageURL,
					ImageURL: &openai.ChatMessageImageURL{
						URL: fmt.Sprintf("data:%s;base64,%s", p.InlineData.MimeType, p.InlineData.Data),
					},
				})
			} else {
				parts = append(parts, openai.ChatMessagePart{
					Type: openai.ChatMessagePartTypeText,
					Text: p.Text,
				})
			}
		}
		out = append(out, openai.ChatCompletionMessage{Role: role, MultiContent: parts})
	}
	return out
}

// flattenText collapses a single text part to flat content, the shape every
// provider accepts for plain turns.
func flattenText(parts []Part) (string, bool) {
	if len(parts) != 1 || parts[0].InlineData != nil {
		return "", false
	}
	return parts[0].Text, true
}
