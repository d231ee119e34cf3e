// Package raster turns uploaded files into ordered page images plus the
// verbatim text of each page.
package raster

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"claimdesk/internal/config"
	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

var pageFilePattern = regexp.MustCompile(`-(\d+)\.png$`)

// Rasterizer renders PDFs with pdftoppm and normalizes single images to a
// format the extraction service accepts.
type Rasterizer struct {
	cfg    config.RasterConfig
	runner Runner
}

// New returns a Rasterizer. A nil runner uses ExecRunner.
func New(cfg config.RasterConfig, runner Runner) *Rasterizer {
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.PdftoppmPath == "" {
		cfg.PdftoppmPath = "pdftoppm"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 200
	}
	if cfg.PageTextTimeoutSecs <= 0 {
		cfg.PageTextTimeoutSecs = 10
	}
	return &Rasterizer{cfg: cfg, runner: runner}
}

var _ port.Rasterizer = (*Rasterizer)(nil)

// Rasterize implements port.Rasterizer. A page that cannot be rendered is
// returned as a placeholder rather than failing the document.
func (r *Rasterizer) Rasterize(ctx context.Context, data []byte, mimeType string) ([]port.Page, error) {
	mimeType = normalizeMime(mimeType)
	switch {
	case mimeType == "application/pdf":
		return r.rasterizePDF(ctx, data)
	case isImage(mimeType):
		img, outMime, err := normalizeImage(data, mimeType)
		if err != nil {
			return []port.Page{{Index: 1, Placeholder: true, Warning: err.Error()}}, nil
		}
		return []port.Page{{Index: 1, Image: img, MimeType: outMime}}, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedMimeType, mimeType)
}

func normalizeMime(m string) string {
	m = strings.ToLower(strings.TrimSpace(m))
	if i := strings.Index(m, ";"); i >= 0 {
		m = strings.TrimSpace(m[:i])
	}
	return m
}

func (r *Rasterizer) rasterizePDF(ctx context.Context, data []byte) ([]port.Page, error) {
	tmpDir, err := os.MkdirTemp("", "claimdesk-raster-*")
	if err != nil {
		return nil, fmt.Errorf("raster.rasterizePDF: creating temp dir: %w", err)
	}
	defer func(path string) {
		if err := os.RemoveAll(path); err != nil {
			zap.S().Warnf("raster.rasterizePDF: failed to remove temp dir %q: %v", path, err)
		}
	}(tmpDir)

	srcPath := filepath.Join(tmpDir, "source.pdf")
	if err := os.WriteFile(srcPath, data, 0o600); err != nil {
		return nil, fmt.Errorf("raster.rasterizePDF: writing source: %w", err)
	}

	texts, textErr := pageTexts(data, r.cfg.PageTextTimeout())
	if textErr != nil {
		zap.S().Warnf("raster.rasterizePDF: text extraction unavailable: %v", textErr)
	}

	pageCount := len(texts)
	if r.cfg.MaxPages > 0 && pageCount > r.cfg.MaxPages {
		pageCount = r.cfg.MaxPages
	}

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(r.cfg.DPI), "-png"}
	if r.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(r.cfg.MaxPages))
	}
	args = append(args, srcPath, prefix)

	images := map[int]string{}
	_, stderr, runErr := r.runner.Run(ctx, r.cfg.PdftoppmPath, args...)
	if runErr != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		zap.S().Warnf("raster.rasterizePDF: pdftoppm failed: %v: %s", runErr, truncate(string(stderr), 512))
	} else {
		images = renderedPages(prefix)
	}

	for idx := range images {
		if idx > pageCount && (r.cfg.MaxPages <= 0 || idx <= r.cfg.MaxPages) {
			pageCount = idx
		}
	}
	if pageCount == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("raster.rasterizePDF: no pages rendered: %w", runErr)
		}
		return nil, fmt.Errorf("raster.rasterizePDF: no pages rendered")
	}

	pages := make([]port.Page, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := port.Page{Index: i}
		if i <= len(texts) {
			page.Text = texts[i-1].text
			page.Warning = texts[i-1].warning
		}
		path, ok := images[i]
		if !ok {
			page.Placeholder = true
			page.Warning = joinWarnings(page.Warning, fmt.Sprintf("page %d was not rendered", i))
			pages = append(pages, page)
			continue
		}
		img, err := os.ReadFile(path)
		if err != nil {
			page.Placeholder = true
			page.Warning = joinWarnings(page.Warning, fmt.Sprintf("reading rendered page %d: %v", i, err))
			pages = append(pages, page)
			continue
		}
		page.Image = img
		page.MimeType = "image/png"
		pages = append(pages, page)
	}
	return pages, nil
}

// renderedPages maps page numbers to pdftoppm output files. pdftoppm zero-pads
// the page number to the width of the page count.
func renderedPages(prefix string) map[int]string {
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	out := make(map[int]string, len(matches))
	for _, m := range matches {
		sub := pageFilePattern.FindStringSubmatch(m)
		if sub == nil {
			continue
		}
		n, err := strconv.Atoi(sub[1])
		if err != nil || n < 1 {
			continue
		}
		out[n] = m
	}
	return out
}

func joinWarnings(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
