package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimdesk/internal/claimfields"
	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

const defaultSiblingWindow = 10 * time.Minute

// siblingClasses are the document classes linked to a new claim. Unclassified
// documents are included so uploads still waiting in the queue are linked
// before they are extracted.
var siblingClasses = []domain.DocumentClass{
	domain.DocumentClassPolicy,
	domain.DocumentClassEndorsement,
	"",
}

// ClaimMaterializer turns a completed FNOL extraction into a claim.
type ClaimMaterializer interface {
	Materialize(ctx context.Context, doc *domain.Document, fnol *domain.FNOLExtraction, lossContext json.RawMessage) (*domain.Claim, error)
}

type claimMaterializer struct {
	claimRepo  port.ClaimRepository
	docRepo    port.DocumentRepository
	auditRepo  port.DocumentAuditRepository
	writer     CanonicalWriter
	classifier port.PerilClassifier
	followUps  *FollowUpDispatcher
	window     time.Duration
	now        func() time.Time
}

// NewClaimMaterializer creates a new ClaimMaterializer. followUps may be nil.
func NewClaimMaterializer(
	claimRepo port.ClaimRepository,
	docRepo port.DocumentRepository,
	auditRepo port.DocumentAuditRepository,
	writer CanonicalWriter,
	classifier port.PerilClassifier,
	followUps *FollowUpDispatcher,
	siblingWindow time.Duration,
) ClaimMaterializer {
	if siblingWindow <= 0 {
		siblingWindow = defaultSiblingWindow
	}
	return &claimMaterializer{
		claimRepo:  claimRepo,
		docRepo:    docRepo,
		auditRepo:  auditRepo,
		writer:     writer,
		classifier: classifier,
		followUps:  followUps,
		window:     siblingWindow,
		now:        time.Now,
	}
}

// Materialize creates the claim for doc, links the FNOL and its sibling
// uploads, and queues a claim.materialized follow-up. Reprocessing an FNOL
// that already produced a claim returns that claim.
func (m *claimMaterializer) Materialize(ctx context.Context, doc *domain.Document, fnol *domain.FNOLExtraction, lossContext json.RawMessage) (*domain.Claim, error) {
	if isEmptyPayload(lossContext) {
		return nil, &domain.ValidationError{Field: "loss_context", Reason: "FNOL payload is empty"}
	}

	existing, err := m.claimRepo.GetBySourceDocument(ctx, doc.ID)
	switch {
	case err == nil:
		zap.S().Infof("claimMaterializer.Materialize: document %s already produced claim %s", doc.ID, existing.ClaimNumber)
		return existing, m.link(ctx, doc, existing)
	case !errors.Is(err, domain.ErrClaimNotFound):
		return nil, fmt.Errorf("claimMaterializer.Materialize: %w", err)
	}

	claim := &domain.Claim{
		ID:               uuid.New(),
		OrganizationID:   doc.OrganizationID,
		Status:           domain.ClaimStatusFNOL,
		LossContext:      append(json.RawMessage(nil), lossContext...),
		SourceDocumentID: doc.ID,
	}
	claimfields.Populate(claim, fnol)
	m.classifyPeril(ctx, claim, fnol)

	if err := m.claimRepo.CreateWithNextNumber(ctx, claim, m.now().UTC().Year()); err != nil {
		if errors.Is(err, domain.ErrClaimAlreadyExists) {
			existing, getErr := m.claimRepo.GetBySourceDocument(ctx, doc.ID)
			if getErr != nil {
				return nil, fmt.Errorf("claimMaterializer.Materialize: %w", getErr)
			}
			return existing, m.link(ctx, doc, existing)
		}
		return nil, fmt.Errorf("claimMaterializer.Materialize: %w", err)
	}
	zap.S().Infof("claimMaterializer.Materialize: created claim %s (%s) from document %s",
		claim.ClaimNumber, claim.ID, doc.ID)

	if err := m.link(ctx, doc, claim); err != nil {
		return nil, err
	}

	changes, _ := json.Marshal(map[string]interface{}{
		"claim_id": claim.ID, "claim_number": claim.ClaimNumber, "primary_peril": claim.PrimaryPeril,
	})
	auditEntry(ctx, m.auditRepo, doc.OrganizationID, doc.ID, domain.AuditClaimMaterialized, changes)

	if m.followUps != nil {
		task := domain.FollowUpTask{
			Kind:           domain.FollowUpClaimMaterialized,
			OrganizationID: claim.OrganizationID,
			ClaimID:        claim.ID,
			DocumentID:     doc.ID,
		}
		if err := m.followUps.Dispatch(task); err != nil {
			zap.S().Warnf("claimMaterializer.Materialize: dispatching follow-up for claim %s: %v", claim.ID, err)
		}
	}
	return claim, nil
}

func (m *claimMaterializer) classifyPeril(ctx context.Context, claim *domain.Claim, fnol *domain.FNOLExtraction) {
	if m.classifier == nil || fnol.Peril == nil {
		return
	}
	if fnol.Peril.Cause == "" && fnol.Peril.Description == "" {
		return
	}
	verdict, err := m.classifier.Classify(ctx, port.PerilInput{
		Cause:       fnol.Peril.Cause,
		Description: fnol.Peril.Description,
	})
	if err != nil {
		zap.S().Warnf("claimMaterializer.classifyPeril: claim %s: %v", claim.ID, err)
		return
	}
	claim.PrimaryPeril = verdict.PrimaryPeril
	claim.SecondaryPerils = domain.StringList(verdict.SecondaryPerils)
	confidence := verdict.Confidence
	claim.PerilConfidence = &confidence
}

// link attaches the FNOL document and its unlinked siblings to claim.
// Sibling failures are logged and skipped.
func (m *claimMaterializer) link(ctx context.Context, doc *domain.Document, claim *domain.Claim) error {
	if err := m.docRepo.LinkClaim(ctx, doc.ID, claim.ID); err != nil {
		return fmt.Errorf("claimMaterializer.link: %w", err)
	}
	doc.ClaimID = &claim.ID

	siblings, err := m.docRepo.ListUnlinkedSiblings(ctx, doc.OrganizationID,
		doc.CreatedAt.Add(-m.window), doc.CreatedAt.Add(m.window), siblingClasses)
	if err != nil {
		zap.S().Warnf("claimMaterializer.link: listing siblings of %s: %v", doc.ID, err)
		return nil
	}

	for i := range siblings {
		sib := &siblings[i]
		if sib.ID == doc.ID {
			continue
		}
		if err := m.docRepo.LinkClaim(ctx, sib.ID, claim.ID); err != nil {
			zap.S().Warnf("claimMaterializer.link: linking %s to claim %s: %v", sib.ID, claim.ID, err)
			continue
		}
		if err := m.writer.Relink(ctx, sib.ID, claim.ID); err != nil {
			zap.S().Warnf("claimMaterializer.link: relinking extractions of %s: %v", sib.ID, err)
		}
		changes, _ := json.Marshal(map[string]interface{}{"claim_id": claim.ID, "fnol_document_id": doc.ID})
		auditEntry(ctx, m.auditRepo, sib.OrganizationID, sib.ID, domain.AuditDocumentLinked, changes)
		zap.S().Infof("claimMaterializer.link: linked %s document %s to claim %s", sib.DocumentClass, sib.ID, claim.ClaimNumber)
	}
	return nil
}

func isEmptyPayload(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null")) || bytes.Equal(t, []byte("{}"))
}
