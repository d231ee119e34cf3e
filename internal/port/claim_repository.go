package port

import (
	"context"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
)

// ClaimRepository defines the contract for claim persistence.
type ClaimRepository interface {
	// CreateWithNextNumber increments the organization's claim counter for
	// year, stamps claim.ClaimNumber from it and inserts the claim in one
	// transaction, so a failed insert leaves no gap in the sequence.
	CreateWithNextNumber(ctx context.Context, claim *domain.Claim, year int) error
	GetByID(ctx context.Context, orgID, claimID uuid.UUID) (*domain.Claim, error)
	GetBySourceDocument(ctx context.Context, docID uuid.UUID) (*domain.Claim, error)
}
