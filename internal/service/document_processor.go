package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"claimdesk/internal/canonical"
	"claimdesk/internal/domain"
	"claimdesk/internal/extractor"
	"claimdesk/internal/merge"
	"claimdesk/internal/metrics"
	"claimdesk/internal/port"
)

// DocumentProcessor runs one processing attempt for a document.
type DocumentProcessor interface {
	Process(ctx context.Context, doc *domain.Document) error
}

// ProcessorConfig holds optional processing behavior.
type ProcessorConfig struct {
	// UploadPages stores each rendered page under pages/<document id>/.
	UploadPages bool
	// FollowUps receives a claim.policy_updated task when a policy form or
	// endorsement is stored for a document already linked to a claim.
	FollowUps *FollowUpDispatcher
}

type documentProcessor struct {
	docRepo      port.DocumentRepository
	auditRepo    port.DocumentAuditRepository
	storage      port.ObjectStorage
	rasterizer   port.Rasterizer
	extractor    port.PageExtractor
	writer       CanonicalWriter
	materializer ClaimMaterializer
	cfg          ProcessorConfig
}

// NewDocumentProcessor creates a new DocumentProcessor.
func NewDocumentProcessor(
	docRepo port.DocumentRepository,
	auditRepo port.DocumentAuditRepository,
	storage port.ObjectStorage,
	rasterizer port.Rasterizer,
	pageExtractor port.PageExtractor,
	writer CanonicalWriter,
	materializer ClaimMaterializer,
	cfg ProcessorConfig,
) DocumentProcessor {
	return &documentProcessor{
		docRepo:      docRepo,
		auditRepo:    auditRepo,
		storage:      storage,
		rasterizer:   rasterizer,
		extractor:    pageExtractor,
		writer:       writer,
		materializer: materializer,
		cfg:          cfg,
	}
}

// Process downloads, renders, classifies and extracts doc, then stores the
// canonical result. The returned error decides whether the queue retries.
func (p *documentProcessor) Process(ctx context.Context, doc *domain.Document) error {
	start := time.Now()
	defer func() { metrics.CaptureStageLatency("document", time.Since(start)) }()

	data, err := p.storage.Download(ctx, doc.StorageKey)
	if err != nil {
		return err
	}

	pages, err := p.rasterize(ctx, data, doc.MimeType)
	if err != nil {
		return err
	}
	if p.cfg.UploadPages {
		p.uploadPages(ctx, doc, pages)
	}

	if doc.DocumentClass == "" {
		doc.DocumentClass = p.classify(ctx, doc, pages)
	}

	if !doc.DocumentClass.Extractable() {
		zap.S().Infof("documentProcessor.Process: document %s is %q, skipping extraction", doc.ID, doc.DocumentClass)
		doc.ExtractedData = nil
		doc.RawText = canonical.Input{PageTexts: pageTexts(pages)}.JoinedText()
		doc.PageCount = len(pages)
		return p.save(ctx, doc)
	}

	in, model, err := p.extractPages(ctx, doc.DocumentClass, pages)
	if err != nil {
		return err
	}

	res, err := canonical.Transform(doc.DocumentClass, in)
	if err != nil {
		return err
	}

	if err := p.writer.Write(ctx, doc, res, len(pages)); err != nil {
		return err
	}

	if res.FNOL != nil && doc.ClaimID == nil && p.materializer != nil {
		if _, err := p.materializer.Materialize(ctx, doc, res.FNOL, res.Payload); err != nil {
			return err
		}
	}

	doc.ExtractedData = res.Payload
	doc.RawText = res.RawText
	doc.PageCount = len(pages)
	doc.ModelUsed = model
	if err := p.save(ctx, doc); err != nil {
		return err
	}

	if doc.ClaimID != nil && (res.PolicyForm != nil || res.Endorsement != nil) {
		p.policyUpdated(doc)
	}
	return nil
}

func (p *documentProcessor) policyUpdated(doc *domain.Document) {
	if p.cfg.FollowUps == nil {
		return
	}
	task := domain.FollowUpTask{
		Kind:           domain.FollowUpPolicyUpdated,
		OrganizationID: doc.OrganizationID,
		ClaimID:        *doc.ClaimID,
		DocumentID:     doc.ID,
	}
	if err := p.cfg.FollowUps.Dispatch(task); err != nil {
		zap.S().Warnf("documentProcessor.Process: dispatching policy update for claim %s: %v", task.ClaimID, err)
	}
}

func (p *documentProcessor) rasterize(ctx context.Context, data []byte, mimeType string) ([]port.Page, error) {
	start := time.Now()
	defer func() { metrics.CaptureStageLatency("rasterize", time.Since(start)) }()

	pages, err := p.rasterizer.Rasterize(ctx, data, mimeType)
	if err != nil {
		return nil, err
	}
	for _, pg := range pages {
		if pg.Placeholder {
			zap.S().Warnf("documentProcessor.rasterize: page %d is a placeholder: %s", pg.Index, pg.Warning)
		}
	}
	return pages, nil
}

// classify asks the extraction service for the document's class using its
// first rendered page. Any failure leaves the class empty so the document
// completes without extraction.
func (p *documentProcessor) classify(ctx context.Context, doc *domain.Document, pages []port.Page) domain.DocumentClass {
	first := firstRendered(pages)
	if first == nil {
		zap.S().Warnf("documentProcessor.classify: document %s has no rendered pages", doc.ID)
		return ""
	}

	out, err := p.extractor.ClassifyPage(ctx, port.ClassifyInput{Image: first.Image, MimeType: first.MimeType})
	if err != nil {
		zap.S().Warnf("documentProcessor.classify: document %s: %v", doc.ID, err)
		return ""
	}

	if err := p.docRepo.UpdateClass(ctx, doc.ID, out.Class); err != nil {
		zap.S().Warnf("documentProcessor.classify: saving class for %s: %v", doc.ID, err)
	}
	changes, _ := json.Marshal(map[string]interface{}{
		"class": out.Class, "confidence": out.Confidence, "model": out.ModelUsed,
	})
	auditEntry(ctx, p.auditRepo, doc.OrganizationID, doc.ID, domain.AuditDocumentClassified, changes)
	zap.S().Infof("documentProcessor.classify: document %s classified as %s (%.2f)", doc.ID, out.Class, out.Confidence)
	return out.Class
}

// extractPages sends rendered pages to the extraction service one at a time
// in page order. Placeholder pages contribute their text only.
func (p *documentProcessor) extractPages(ctx context.Context, class domain.DocumentClass, pages []port.Page) (canonical.Input, string, error) {
	var (
		partials []map[string]interface{}
		texts    = make([]string, len(pages))
		model    string
	)
	for i, pg := range pages {
		texts[i] = pg.Text
		if pg.Placeholder || len(pg.Image) == 0 {
			continue
		}

		start := time.Now()
		out, err := p.extractor.ExtractPage(ctx, port.PageInput{
			Image:      pg.Image,
			MimeType:   pg.MimeType,
			PageIndex:  pg.Index,
			TotalPages: len(pages),
			Class:      class,
		})
		metrics.CaptureStageLatency("extract_page", time.Since(start))
		if err != nil {
			if ctx.Err() != nil {
				return canonical.Input{}, "", ctx.Err()
			}
			return canonical.Input{}, "", &domain.ExtractionServiceError{Provider: providerOf(err), Page: pg.Index, Err: err}
		}
		metrics.IncrementPagesExtracted(string(class))

		partials = append(partials, out.Data)
		if texts[i] == "" {
			texts[i] = out.PageText
		}
		if out.ModelUsed != "" {
			model = out.ModelUsed
		}
	}
	return canonical.Input{Raw: merge.Pages(partials), PageTexts: texts}, model, nil
}

func (p *documentProcessor) uploadPages(ctx context.Context, doc *domain.Document, pages []port.Page) {
	for _, pg := range pages {
		if pg.Placeholder || len(pg.Image) == 0 {
			continue
		}
		key := fmt.Sprintf("pages/%s/page_%04d%s", doc.ID, pg.Index, extensionFor(pg.MimeType))
		_, err := p.storage.Upload(ctx, port.UploadInput{
			Key:         key,
			Body:        bytes.NewReader(pg.Image),
			ContentType: pg.MimeType,
			Size:        int64(len(pg.Image)),
		})
		if err != nil {
			zap.S().Warnf("documentProcessor.uploadPages: %s: %v", key, err)
		}
	}
}

func (p *documentProcessor) save(ctx context.Context, doc *domain.Document) error {
	if err := p.docRepo.SaveExtraction(ctx, doc); err != nil {
		return fmt.Errorf("documentProcessor.save: %w", err)
	}
	changes, _ := json.Marshal(map[string]interface{}{
		"class": doc.DocumentClass, "page_count": doc.PageCount, "model": doc.ModelUsed,
	})
	auditEntry(ctx, p.auditRepo, doc.OrganizationID, doc.ID, domain.AuditProcessingCompleted, changes)
	zap.S().Infof("documentProcessor.save: document %s completed (%s, %d pages)", doc.ID, doc.DocumentClass, doc.PageCount)
	return nil
}

func firstRendered(pages []port.Page) *port.Page {
	for i := range pages {
		if !pages[i].Placeholder && len(pages[i].Image) > 0 {
			return &pages[i]
		}
	}
	return nil
}

func pageTexts(pages []port.Page) []string {
	out := make([]string, len(pages))
	for i, pg := range pages {
		out[i] = pg.Text
	}
	return out
}

func providerOf(err error) string {
	var rlErr *extractor.RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr.Provider
	}
	return "extractor"
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}
