package port

import (
	"context"
	"time"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	GetByOrganization(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error)
	ListByStatus(ctx context.Context, statuses ...domain.ProcessingStatus) ([]domain.Document, error)
	ListUnlinkedSiblings(ctx context.Context, orgID uuid.UUID, from, to time.Time, classes []domain.DocumentClass) ([]domain.Document, error)
	MarkProcessing(ctx context.Context, docID uuid.UUID) error
	UpdateClass(ctx context.Context, docID uuid.UUID, class domain.DocumentClass) error
	SaveExtraction(ctx context.Context, doc *domain.Document) error
	MarkFailed(ctx context.Context, docID uuid.UUID, errMsg string) error
	LinkClaim(ctx context.Context, docID, claimID uuid.UUID) error
}
