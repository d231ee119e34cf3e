package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockCanonicalRepo is a mock implementation of port.CanonicalRepository.
type MockCanonicalRepo struct {
	mock.Mock
}

func (m *MockCanonicalRepo) UpsertPolicyForm(ctx context.Context, rec *domain.PolicyFormRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockCanonicalRepo) UpsertEndorsements(ctx context.Context, recs []domain.EndorsementRecord) error {
	args := m.Called(ctx, recs)
	return args.Error(0)
}

func (m *MockCanonicalRepo) GetPolicyFormByDocument(ctx context.Context, docID uuid.UUID) (*domain.PolicyFormRecord, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PolicyFormRecord), args.Error(1)
}

func (m *MockCanonicalRepo) ListEndorsementsByDocument(ctx context.Context, docID uuid.UUID) ([]domain.EndorsementRecord, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EndorsementRecord), args.Error(1)
}

func (m *MockCanonicalRepo) ListCanonicalPolicyForms(ctx context.Context, claimID uuid.UUID) ([]domain.PolicyFormRecord, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PolicyFormRecord), args.Error(1)
}

func (m *MockCanonicalRepo) ListCanonicalEndorsements(ctx context.Context, claimID uuid.UUID) ([]domain.EndorsementRecord, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.EndorsementRecord), args.Error(1)
}
