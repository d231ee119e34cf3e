package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/domain"
)

// MockAlertSender is a mock implementation of port.AlertSender.
type MockAlertSender struct {
	mock.Mock
}

func (m *MockAlertSender) SendDocumentFailure(ctx context.Context, doc *domain.Document, reason string) error {
	args := m.Called(ctx, doc, reason)
	return args.Error(0)
}
