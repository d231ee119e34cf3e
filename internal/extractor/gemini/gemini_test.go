package gemini_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/config"
	"claimdesk/internal/domain"
	"claimdesk/internal/extractor"
	"claimdesk/internal/extractor/gemini"
	"claimdesk/internal/port"
)

func newTestExtractor(t *testing.T, serverURL string) *gemini.Extractor {
	t.Helper()
	e, err := gemini.NewExtractor(context.Background(), &config.ProviderConfig{
		Provider:     "gemini",
		APIKey:       "test-key",
		DefaultModel: "gemini-2.0-flash",
		TimeoutSecs:  30,
		BaseURL:      serverURL,
	})
	require.NoError(t, err)
	return e
}

func candidates(text, finishReason string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": text}},
					"role":  "model",
				},
				"finishReason": finishReason,
			},
		},
	}
}

func TestGeminiExtractor_ExtractPage_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "models/gemini-2.0-flash:generateContent"), r.URL.Path)

		var reqBody map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
		contents := reqBody["contents"].([]interface{})
		parts := contents[0].(map[string]interface{})["parts"].([]interface{})
		require.Len(t, parts, 2)
		assert.Contains(t, parts[0], "inlineData")

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(candidates(`{"endorsements":[{"form_code":"HO 04 90"}],"page_text":"PERSONAL PROPERTY REPLACEMENT COST"}`, "STOP"))
	}))
	defer server.Close()

	out, err := newTestExtractor(t, server.URL).ExtractPage(context.Background(), port.PageInput{
		Image: []byte("png"), MimeType: "image/png", PageIndex: 1, TotalPages: 1, Class: domain.DocumentClassEndorsement,
	})

	require.NoError(t, err)
	assert.Len(t, out.Data["endorsements"], 1)
	assert.Equal(t, "PERSONAL PROPERTY REPLACEMENT COST", out.PageText)
	assert.Equal(t, "gemini-2.0-flash", out.ModelUsed)
}

func TestGeminiExtractor_TruncatedOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(candidates(`{"form_code":"HO`, "MAX_TOKENS"))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).ExtractPage(context.Background(), port.PageInput{
		Image: []byte("png"), MimeType: "image/png", PageIndex: 1, TotalPages: 1, Class: domain.DocumentClassPolicy,
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_TOKENS")
}

func TestGeminiExtractor_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"Resource exhausted","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer server.Close()

	_, err := newTestExtractor(t, server.URL).ClassifyPage(context.Background(), port.ClassifyInput{
		Image: []byte("png"), MimeType: "image/png",
	})

	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "gemini", rlErr.Provider)
}
