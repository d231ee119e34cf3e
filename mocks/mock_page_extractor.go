package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"claimdesk/internal/port"
)

// MockPageExtractor is a mock implementation of port.PageExtractor.
type MockPageExtractor struct {
	mock.Mock
}

func (m *MockPageExtractor) ExtractPage(ctx context.Context, input port.PageInput) (*port.PageOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.PageOutput), args.Error(1)
}

func (m *MockPageExtractor) ClassifyPage(ctx context.Context, input port.ClassifyInput) (*port.ClassifyOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ClassifyOutput), args.Error(1)
}
