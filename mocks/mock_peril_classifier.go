package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/port"
)

// MockPerilClassifier is a mock implementation of port.PerilClassifier.
type MockPerilClassifier struct {
	mock.Mock
}

func (m *MockPerilClassifier) Classify(ctx context.Context, input port.PerilInput) (*port.PerilClassification, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PerilClassification), args.Error(1)
}
