package extractor_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/extractor"
	"claimdesk/mocks"
)

func TestNewRateLimited_DisabledReturnsNext(t *testing.T) {
	m := new(mocks.MockPageExtractor)
	assert.Same(t, m, extractor.NewRateLimited(m, 0))
}

func TestRateLimited_SpacesCalls(t *testing.T) {
	m := new(mocks.MockPageExtractor)
	input := pageInput()
	m.On("ExtractPage", mock.Anything, input).Return(pageOutput("claude"), nil)

	// 600 per minute is one call every 100ms after the initial burst of one.
	limited := extractor.NewRateLimited(m, 600)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := limited.ExtractPage(context.Background(), input)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
	m.AssertNumberOfCalls(t, "ExtractPage", 3)
}

func TestRateLimited_ContextCanceled(t *testing.T) {
	m := new(mocks.MockPageExtractor)
	input := pageInput()
	m.On("ExtractPage", mock.Anything, input).Return(pageOutput("claude"), nil)

	limited := extractor.NewRateLimited(m, 1)
	_, err := limited.ExtractPage(context.Background(), input)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = limited.ExtractPage(ctx, input)
	assert.Error(t, err)
	m.AssertNumberOfCalls(t, "ExtractPage", 1)
}
