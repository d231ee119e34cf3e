package port

import (
	"context"

	"claimdesk/internal/domain"
)

// PageInput carries one rendered page to the extraction service.
type PageInput struct {
	Image      []byte
	MimeType   string
	PageIndex  int // 1-based
	TotalPages int
	Class      domain.DocumentClass
}

// PageOutput is the weakly typed JSON the service returned for one page.
// PageText is the verbatim page text when the service supplied one.
type PageOutput struct {
	Data      map[string]interface{}
	PageText  string
	ModelUsed string
}

// ClassifyInput carries the page used to decide a document's class.
type ClassifyInput struct {
	Image    []byte
	MimeType string
}

// ClassifyOutput is the class the service assigned to a document.
type ClassifyOutput struct {
	Class      domain.DocumentClass
	Confidence float64
	ModelUsed  string
}

// PageExtractor abstracts the external vision extraction service.
type PageExtractor interface {
	ExtractPage(ctx context.Context, input PageInput) (*PageOutput, error)
	ClassifyPage(ctx context.Context, input ClassifyInput) (*ClassifyOutput, error)
}
