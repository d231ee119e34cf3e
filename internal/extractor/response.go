package extractor

import (
	"encoding/json"
	"fmt"
	"strings"

	"claimdesk/internal/domain"
	"claimdesk/internal/merge"
	"claimdesk/internal/port"
)

// ParsePageResponse decodes a provider's page JSON. The optional page_text
// key is moved out of the data into PageText.
func ParsePageResponse(text, model string) (*port.PageOutput, error) {
	data, err := merge.Decode([]byte(stripFences(text)))
	if err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}

	out := &port.PageOutput{Data: data, ModelUsed: model}
	if pt, ok := data["page_text"].(string); ok {
		out.PageText = pt
	}
	delete(data, "page_text")
	return out, nil
}

// ParseClassifyResponse decodes a provider's classification JSON. Unknown
// classes are reported as correspondence.
func ParseClassifyResponse(text, model string) (*port.ClassifyOutput, error) {
	var parsed struct {
		Class      string  `json:"class"`
		Confidence float64 `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(stripFences(text)), &parsed); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, Truncate(text, 500))
	}

	class := domain.DocumentClass(strings.ToLower(strings.TrimSpace(parsed.Class)))
	if !domain.ValidDocumentClasses[class] {
		class = domain.DocumentClassCorrespondence
	}
	return &port.ClassifyOutput{Class: class, Confidence: parsed.Confidence, ModelUsed: model}, nil
}

// stripFences removes a markdown code fence some models add despite the prompt.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// Truncate shortens s for error messages.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
