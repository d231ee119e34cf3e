package port

import (
	"context"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
)

// CanonicalRepository persists canonical policy and endorsement extractions.
// Upserts flip any other canonical row for the same (claim, form code) to
// superseded in the same transaction; rows are never deleted.
type CanonicalRepository interface {
	UpsertPolicyForm(ctx context.Context, rec *domain.PolicyFormRecord) error
	UpsertEndorsements(ctx context.Context, recs []domain.EndorsementRecord) error
	GetPolicyFormByDocument(ctx context.Context, docID uuid.UUID) (*domain.PolicyFormRecord, error)
	ListEndorsementsByDocument(ctx context.Context, docID uuid.UUID) ([]domain.EndorsementRecord, error)
	ListCanonicalPolicyForms(ctx context.Context, claimID uuid.UUID) ([]domain.PolicyFormRecord, error)
	ListCanonicalEndorsements(ctx context.Context, claimID uuid.UUID) ([]domain.EndorsementRecord, error)
}
