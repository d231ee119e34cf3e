package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"claimdesk/internal/config"
	"claimdesk/internal/extractor"
	"claimdesk/internal/port"
)

func init() {
	extractor.RegisterProvider("gemini", func(cfg *config.ProviderConfig) (port.PageExtractor, error) {
		return NewExtractor(context.Background(), cfg)
	})
}

// Extractor implements port.PageExtractor using the Gemini API through the
// genai SDK.
type Extractor struct {
	client *genai.Client
	model  string
}

// NewExtractor creates a Gemini-based page extractor. A configured BaseURL
// points the SDK at a different host.
func NewExtractor(ctx context.Context, cfg *config.ProviderConfig) (*Extractor, error) {
	model := cfg.DefaultModel
	if model == "" {
		model = "gemini-2.0-flash"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: timeout},
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Extractor{client: client, model: model}, nil
}

func (e *Extractor) ExtractPage(ctx context.Context, input port.PageInput) (*port.PageOutput, error) {
	prompt := extractor.BuildPagePrompt(input.Class, input.PageIndex, input.TotalPages)
	text, err := e.generate(ctx, input.Image, input.MimeType, prompt, 16384)
	if err != nil {
		return nil, err
	}
	return extractor.ParsePageResponse(text, e.model)
}

func (e *Extractor) ClassifyPage(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	text, err := e.generate(ctx, input.Image, input.MimeType, extractor.BuildClassifyPrompt(), 256)
	if err != nil {
		return nil, err
	}
	return extractor.ParseClassifyResponse(text, e.model)
}

func (e *Extractor) generate(ctx context.Context, image []byte, mimeType, prompt string, maxTokens int32) (string, error) {
	switch mimeType {
	case "image/jpeg", "image/png", "image/gif", "image/webp":
	default:
		return "", fmt.Errorf("unsupported content type for extraction: %s", mimeType)
	}

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, mimeType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		MaxOutputTokens:  maxTokens,
	}

	result, err := e.client.Models.GenerateContent(ctx, e.model, contents, cfg)
	if err != nil {
		if isRateLimited(err) {
			return "", extractor.NewRateLimitError("gemini", err, 0)
		}
		return "", fmt.Errorf("calling gemini API: %w", err)
	}

	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("empty response from API: no candidates")
	}
	if result.Candidates[0].FinishReason == genai.FinishReasonMaxTokens {
		return "", fmt.Errorf("output truncated (finish_reason: MAX_TOKENS): response exceeded output token limit")
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from API: no parts")
	}
	return text, nil
}

func isRateLimited(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code == http.StatusTooManyRequests
	}
	return false
}
