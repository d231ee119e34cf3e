package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/port"
)

// MockRasterizer is a mock implementation of port.Rasterizer.
type MockRasterizer struct {
	mock.Mock
}

func (m *MockRasterizer) Rasterize(ctx context.Context, data []byte, mimeType string) ([]port.Page, error) {
	args := m.Called(ctx, data, mimeType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]port.Page), args.Error(1)
}
