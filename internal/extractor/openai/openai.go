package openai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"claimdesk/internal/config"
	"claimdesk/internal/extractor"
	"claimdesk/internal/port"
)

func init() {
	extractor.RegisterProvider("openai", func(cfg *config.ProviderConfig) (port.PageExtractor, error) {
		return NewExtractor(cfg)
	})
}

// Extractor implements port.PageExtractor using the OpenAI Chat Completions API.
type Extractor struct {
	client *openai.Client
	model  string
}

// NewExtractor creates an OpenAI-based page extractor. A configured BaseURL
// replaces the default API host.
func NewExtractor(cfg *config.ProviderConfig) (*Extractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = openai.GPT4o
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &Extractor{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
	}, nil
}

func (e *Extractor) ExtractPage(ctx context.Context, input port.PageInput) (*port.PageOutput, error) {
	prompt := extractor.BuildPagePrompt(input.Class, input.PageIndex, input.TotalPages)
	text, err := e.complete(ctx, input.Image, input.MimeType, prompt, 16384)
	if err != nil {
		return nil, err
	}
	return extractor.ParsePageResponse(text, e.model)
}

func (e *Extractor) ClassifyPage(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	text, err := e.complete(ctx, input.Image, input.MimeType, extractor.BuildClassifyPrompt(), 256)
	if err != nil {
		return nil, err
	}
	return extractor.ParseClassifyResponse(text, e.model)
}

func (e *Extractor) complete(ctx context.Context, image []byte, mimeType, prompt string, maxTokens int) (string, error) {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return "", fmt.Errorf("unsupported content type for extraction: %s", mimeType)
	}
	dataURI := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(image))

	req := openai.ChatCompletionRequest{
		Model:               e.model,
		MaxCompletionTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURI, Detail: openai.ImageURLDetailHigh},
					},
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
				},
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := e.client.CreateChatCompletion(ctx, req)
	if err != nil {
		if isRateLimited(err) {
			return "", extractor.NewRateLimitError("openai", err, 0)
		}
		return "", fmt.Errorf("calling openai API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonLength {
		return "", fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}
	return resp.Choices[0].Message.Content, nil
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
