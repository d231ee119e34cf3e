package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockClaimRepo is a mock implementation of port.ClaimRepository.
type MockClaimRepo struct {
	mock.Mock
}

func (m *MockClaimRepo) CreateWithNextNumber(ctx context.Context, claim *domain.Claim, year int) error {
	args := m.Called(ctx, claim, year)
	return args.Error(0)
}

func (m *MockClaimRepo) GetByID(ctx context.Context, orgID, claimID uuid.UUID) (*domain.Claim, error) {
	args := m.Called(ctx, orgID, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}

func (m *MockClaimRepo) GetBySourceDocument(ctx context.Context, docID uuid.UUID) (*domain.Claim, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}
