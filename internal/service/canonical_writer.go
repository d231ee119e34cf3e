package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimdesk/internal/canonical"
	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

// CanonicalWriter persists validated canonical extractions.
type CanonicalWriter interface {
	// Write stores the canonical rows for a policy or endorsement document.
	// FNOL results have no canonical table and are ignored.
	Write(ctx context.Context, doc *domain.Document, res *canonical.Result, pageCount int) error
	// Relink re-upserts a document's canonical rows under claimID so they
	// supersede older rows for the same form codes.
	Relink(ctx context.Context, docID, claimID uuid.UUID) error
}

type canonicalWriter struct {
	repo port.CanonicalRepository
}

// NewCanonicalWriter creates a new CanonicalWriter.
func NewCanonicalWriter(repo port.CanonicalRepository) CanonicalWriter {
	return &canonicalWriter{repo: repo}
}

func (w *canonicalWriter) Write(ctx context.Context, doc *domain.Document, res *canonical.Result, pageCount int) error {
	switch res.Class {
	case domain.DocumentClassPolicy:
		rec := &domain.PolicyFormRecord{
			DocumentID:       doc.ID,
			OrganizationID:   doc.OrganizationID,
			ClaimID:          doc.ClaimID,
			FormCode:         domain.FormKey(res.PolicyForm.FormCode, res.PolicyForm.FormName),
			Extraction:       res.Payload,
			RawText:          res.PolicyForm.RawText,
			PageCount:        pageCount,
			ExtractionStatus: domain.ExtractionStatusCompleted,
		}
		if err := w.repo.UpsertPolicyForm(ctx, rec); err != nil {
			return fmt.Errorf("canonicalWriter.Write: %w", err)
		}
		zap.S().Infof("canonicalWriter.Write: stored policy form %q for document %s", rec.FormCode, doc.ID)

	case domain.DocumentClassEndorsement:
		recs := make([]domain.EndorsementRecord, 0, len(res.Endorsement.Endorsements))
		for _, e := range res.Endorsement.Endorsements {
			payload, err := json.Marshal(e)
			if err != nil {
				return fmt.Errorf("canonicalWriter.Write: marshaling %s: %w", e.FormCode, err)
			}
			recs = append(recs, domain.EndorsementRecord{
				DocumentID:         doc.ID,
				OrganizationID:     doc.OrganizationID,
				ClaimID:            doc.ClaimID,
				FormCode:           domain.FormKey(e.FormCode, e.Title),
				EndorsementType:    e.EndorsementType,
				PrecedencePriority: e.PrecedencePriority,
				Extraction:         payload,
				RawText:            e.RawText,
				PageCount:          pageCount,
				ExtractionStatus:   domain.ExtractionStatusCompleted,
			})
		}
		if err := w.repo.UpsertEndorsements(ctx, recs); err != nil {
			return fmt.Errorf("canonicalWriter.Write: %w", err)
		}
		zap.S().Infof("canonicalWriter.Write: stored %d endorsements for document %s", len(recs), doc.ID)
	}
	return nil
}

func (w *canonicalWriter) Relink(ctx context.Context, docID, claimID uuid.UUID) error {
	form, err := w.repo.GetPolicyFormByDocument(ctx, docID)
	switch {
	case err == nil:
		form.ClaimID = &claimID
		if err := w.repo.UpsertPolicyForm(ctx, form); err != nil {
			return fmt.Errorf("canonicalWriter.Relink: %w", err)
		}
	case !errors.Is(err, domain.ErrExtractionNotFound):
		return fmt.Errorf("canonicalWriter.Relink: %w", err)
	}

	recs, err := w.repo.ListEndorsementsByDocument(ctx, docID)
	if err != nil {
		return fmt.Errorf("canonicalWriter.Relink: %w", err)
	}
	if len(recs) == 0 {
		return nil
	}
	for i := range recs {
		recs[i].ClaimID = &claimID
	}
	if err := w.repo.UpsertEndorsements(ctx, recs); err != nil {
		return fmt.Errorf("canonicalWriter.Relink: %w", err)
	}
	return nil
}
