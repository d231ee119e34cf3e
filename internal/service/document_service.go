package service

import (
	"context"

	"github.com/google/uuid"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

// DocumentService exposes documents and their pipeline state to the HTTP layer.
type DocumentService interface {
	GetByID(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error)
	// Process queues a document for (re)processing. It returns
	// domain.ErrDocumentAlreadyQueued when the document is waiting or running.
	Process(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error)
	ListAudit(ctx context.Context, orgID, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error)
}

// Enqueuer is the part of the processing queue the document service needs.
type Enqueuer interface {
	Enqueue(docID uuid.UUID) (<-chan Result, bool)
}

type documentService struct {
	docRepo   port.DocumentRepository
	auditRepo port.DocumentAuditRepository
	queue     Enqueuer
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(docRepo port.DocumentRepository, auditRepo port.DocumentAuditRepository, queue Enqueuer) DocumentService {
	return &documentService{docRepo: docRepo, auditRepo: auditRepo, queue: queue}
}

func (s *documentService) GetByID(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByOrganization(ctx, orgID, docID)
}

func (s *documentService) Process(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error) {
	doc, err := s.docRepo.GetByOrganization(ctx, orgID, docID)
	if err != nil {
		return nil, err
	}
	if _, ok := s.queue.Enqueue(doc.ID); !ok {
		return nil, domain.ErrDocumentAlreadyQueued
	}
	return doc, nil
}

func (s *documentService) ListAudit(ctx context.Context, orgID, docID uuid.UUID, offset, limit int) ([]domain.DocumentAuditEntry, int, error) {
	if _, err := s.docRepo.GetByOrganization(ctx, orgID, docID); err != nil {
		return nil, 0, err
	}
	return s.auditRepo.ListByDocument(ctx, orgID, docID, offset, limit)
}
