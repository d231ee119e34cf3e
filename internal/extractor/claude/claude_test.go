package claude_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/config"
	"claimdesk/internal/domain"
	"claimdesk/internal/extractor"
	"claimdesk/internal/extractor/claude"
	"claimdesk/internal/port"
)

func newTestExtractor(serverURL string) *claude.Extractor {
	cfg := &config.ProviderConfig{
		Provider:     "claude",
		APIKey:       "test-api-key",
		DefaultModel: "claude-sonnet-4-20250514",
		TimeoutSecs:  30,
	}
	return claude.NewExtractorWithEndpoint(cfg, serverURL)
}

func textResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"content":     []map[string]interface{}{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	}
}

func TestClaudeExtractor_ExtractPage_Success(t *testing.T) {
	image := []byte("\x89PNG fake")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-api-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, "claude-sonnet-4-20250514", reqBody["model"])
		assert.Equal(t, float64(16384), reqBody["max_tokens"])

		messages := reqBody["messages"].([]interface{})
		require.Len(t, messages, 1)
		content := messages[0].(map[string]interface{})["content"].([]interface{})
		require.Len(t, content, 2)

		imageBlock := content[0].(map[string]interface{})
		assert.Equal(t, "image", imageBlock["type"])
		source := imageBlock["source"].(map[string]interface{})
		assert.Equal(t, "image/png", source["media_type"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(image), source["data"])

		textBlock := content[1].(map[string]interface{})
		assert.Equal(t, "text", textBlock["type"])
		assert.Contains(t, textBlock["text"], "page 1 of 3")

		_ = json.NewEncoder(w).Encode(textResponse(`{"claim_number":"01-002-161543","page_text":"Claim 01-002-161543"}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).ExtractPage(context.Background(), port.PageInput{
		Image: image, MimeType: "image/png", PageIndex: 1, TotalPages: 3, Class: domain.DocumentClassFNOL,
	})

	require.NoError(t, err)
	assert.Equal(t, "01-002-161543", out.Data["claim_number"])
	assert.Equal(t, "Claim 01-002-161543", out.PageText)
	assert.Equal(t, "claude-sonnet-4-20250514", out.ModelUsed)
}

func TestClaudeExtractor_ClassifyPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		assert.Equal(t, float64(256), reqBody["max_tokens"])
		_ = json.NewEncoder(w).Encode(textResponse(`{"class":"policy","confidence":0.93}`))
	}))
	defer server.Close()

	out, err := newTestExtractor(server.URL).ClassifyPage(context.Background(), port.ClassifyInput{
		Image: []byte("jpeg"), MimeType: "image/jpeg",
	})

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentClassPolicy, out.Class)
	assert.Equal(t, 0.93, out.Confidence)
}

func TestClaudeExtractor_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "12")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).ExtractPage(context.Background(), port.PageInput{
		Image: []byte("png"), MimeType: "image/png", PageIndex: 1, TotalPages: 1, Class: domain.DocumentClassPolicy,
	})

	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
	assert.Equal(t, float64(12), rlErr.RetryAfter.Seconds())
}

func TestClaudeExtractor_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal"}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).ExtractPage(context.Background(), port.PageInput{
		Image: []byte("png"), MimeType: "image/png", PageIndex: 1, TotalPages: 1, Class: domain.DocumentClassPolicy,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")
	var rlErr *extractor.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestClaudeExtractor_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]interface{}{{"type": "text", "text": `{"form_code":"HO`}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestExtractor(server.URL).ExtractPage(context.Background(), port.PageInput{
		Image: []byte("png"), MimeType: "image/png", PageIndex: 1, TotalPages: 1, Class: domain.DocumentClassPolicy,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}

func TestClaudeExtractor_UnsupportedMimeType(t *testing.T) {
	_, err := newTestExtractor("http://127.0.0.1:0").ExtractPage(context.Background(), port.PageInput{
		Image: []byte("%PDF"), MimeType: "application/pdf", PageIndex: 1, TotalPages: 1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported content type")
}
