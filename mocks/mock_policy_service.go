package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockPolicyService is a mock implementation of service.PolicyService.
type MockPolicyService struct {
	mock.Mock
}

func (m *MockPolicyService) EffectivePolicy(ctx context.Context, orgID, claimID uuid.UUID) (*domain.Claim, *domain.EffectivePolicy, error) {
	args := m.Called(ctx, orgID, claimID)
	var claim *domain.Claim
	if v := args.Get(0); v != nil {
		claim = v.(*domain.Claim)
	}
	var ep *domain.EffectivePolicy
	if v := args.Get(1); v != nil {
		ep = v.(*domain.EffectivePolicy)
	}
	return claim, ep, args.Error(2)
}

func (m *MockPolicyService) Export(ctx context.Context, orgID, claimID uuid.UUID, w io.Writer) (*domain.Claim, error) {
	args := m.Called(ctx, orgID, claimID, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Claim), args.Error(1)
}
