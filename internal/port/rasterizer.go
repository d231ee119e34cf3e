package port

import "context"

// Page is one rendered page of a source file. Placeholder pages carry no
// image; Warning explains why rendering or text extraction failed.
type Page struct {
	Index       int // 1-based
	Image       []byte
	MimeType    string
	Text        string
	Placeholder bool
	Warning     string
}

// Rasterizer converts a source file into ordered page images plus per-page text.
type Rasterizer interface {
	Rasterize(ctx context.Context, data []byte, mimeType string) ([]Page, error)
}
