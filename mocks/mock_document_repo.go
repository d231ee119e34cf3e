package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockDocumentRepo is a mock implementation of port.DocumentRepository.
type MockDocumentRepo struct {
	mock.Mock
}

func (m *MockDocumentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) GetByOrganization(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, orgID, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListByStatus(ctx context.Context, statuses ...domain.ProcessingStatus) ([]domain.Document, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) ListUnlinkedSiblings(ctx context.Context, orgID uuid.UUID, from, to time.Time, classes []domain.DocumentClass) ([]domain.Document, error) {
	args := m.Called(ctx, orgID, from, to, classes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepo) MarkProcessing(ctx context.Context, docID uuid.UUID) error {
	args := m.Called(ctx, docID)
	return args.Error(0)
}

func (m *MockDocumentRepo) UpdateClass(ctx context.Context, docID uuid.UUID, class domain.DocumentClass) error {
	args := m.Called(ctx, docID, class)
	return args.Error(0)
}

func (m *MockDocumentRepo) SaveExtraction(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepo) MarkFailed(ctx context.Context, docID uuid.UUID, errMsg string) error {
	args := m.Called(ctx, docID, errMsg)
	return args.Error(0)
}

func (m *MockDocumentRepo) LinkClaim(ctx context.Context, docID, claimID uuid.UUID) error {
	args := m.Called(ctx, docID, claimID)
	return args.Error(0)
}
