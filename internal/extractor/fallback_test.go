package extractor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
	"claimdesk/internal/extractor"
	"claimdesk/internal/port"
	"claimdesk/mocks"
)

func pageInput() port.PageInput {
	return port.PageInput{Image: []byte("png"), MimeType: "image/png", PageIndex: 1, TotalPages: 2, Class: domain.DocumentClassFNOL}
}

func pageOutput(model string) *port.PageOutput {
	return &port.PageOutput{Data: map[string]interface{}{"claim_number": "C-1"}, ModelUsed: model}
}

func TestFallback_FirstSucceeds(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)
	e3 := new(mocks.MockPageExtractor)

	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Return(pageOutput("claude"), nil)

	f := extractor.NewFallback(
		[]port.PageExtractor{e1, e2, e3},
		[]string{"claude", "gemini", "openai"},
	)

	result, err := f.ExtractPage(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "claude", result.ModelUsed)
	e2.AssertNotCalled(t, "ExtractPage", mock.Anything, mock.Anything)
	e3.AssertNotCalled(t, "ExtractPage", mock.Anything, mock.Anything)
}

func TestFallback_FirstFails_SecondSucceeds(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)

	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Return(nil, errors.New("generic error"))
	e2.On("ExtractPage", mock.Anything, input).Return(pageOutput("gemini"), nil)

	f := extractor.NewFallback([]port.PageExtractor{e1, e2}, []string{"claude", "gemini"})

	result, err := f.ExtractPage(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "gemini", result.ModelUsed)
}

func TestFallback_TwoRateLimited_ThirdSucceeds(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)
	e3 := new(mocks.MockPageExtractor)

	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 60))
	e2.On("ExtractPage", mock.Anything, input).Return(nil, extractor.NewRateLimitError("gemini", errors.New("429"), 30))
	e3.On("ExtractPage", mock.Anything, input).Return(pageOutput("openai"), nil)

	f := extractor.NewFallback(
		[]port.PageExtractor{e1, e2, e3},
		[]string{"claude", "gemini", "openai"},
	)

	result, err := f.ExtractPage(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, "openai", result.ModelUsed)
}

func TestFallback_CircuitOpenSkipsProvider(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)

	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 60)).Once()
	e2.On("ExtractPage", mock.Anything, input).Return(pageOutput("gemini"), nil)

	f := extractor.NewFallback([]port.PageExtractor{e1, e2}, []string{"claude", "gemini"})

	for i := 0; i < 3; i++ {
		result, err := f.ExtractPage(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "gemini", result.ModelUsed)
	}

	e1.AssertNumberOfCalls(t, "ExtractPage", 1)
	e2.AssertNumberOfCalls(t, "ExtractPage", 3)
}

func TestFallback_AllRateLimited(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)

	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 60))
	e2.On("ExtractPage", mock.Anything, input).Return(nil, extractor.NewRateLimitError("gemini", errors.New("429"), 30))

	f := extractor.NewFallback([]port.PageExtractor{e1, e2}, []string{"claude", "gemini"})

	result, err := f.ExtractPage(context.Background(), input)

	assert.Nil(t, result)
	var rlErr *extractor.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.True(t, domain.IsTransient(err))
}

func TestFallback_AllFail_NonRateLimit(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)

	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Return(nil, extractor.NewRateLimitError("claude", errors.New("429"), 60))
	e2.On("ExtractPage", mock.Anything, input).Return(nil, errors.New("server error"))

	f := extractor.NewFallback([]port.PageExtractor{e1, e2}, []string{"claude", "gemini"})

	_, err := f.ExtractPage(context.Background(), input)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "all extractors failed")
	assert.Contains(t, err.Error(), "server error")
	var rlErr *extractor.RateLimitError
	assert.False(t, errors.As(err, &rlErr))
}

func TestFallback_ContextCanceled(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)

	ctx, cancel := context.WithCancel(context.Background())
	input := pageInput()
	e1.On("ExtractPage", mock.Anything, input).Run(func(mock.Arguments) { cancel() }).Return(nil, errors.New("aborted"))

	f := extractor.NewFallback([]port.PageExtractor{e1, e2}, []string{"claude", "gemini"})

	_, err := f.ExtractPage(ctx, input)

	assert.ErrorIs(t, err, context.Canceled)
	e2.AssertNotCalled(t, "ExtractPage", mock.Anything, mock.Anything)
}

func TestFallback_ClassifyPage(t *testing.T) {
	e1 := new(mocks.MockPageExtractor)
	e2 := new(mocks.MockPageExtractor)

	input := port.ClassifyInput{Image: []byte("png"), MimeType: "image/png"}
	e1.On("ClassifyPage", mock.Anything, input).Return(nil, errors.New("boom"))
	e2.On("ClassifyPage", mock.Anything, input).Return(&port.ClassifyOutput{Class: domain.DocumentClassPolicy, ModelUsed: "gemini"}, nil)

	f := extractor.NewFallback([]port.PageExtractor{e1, e2}, []string{"claude", "gemini"})

	out, err := f.ClassifyPage(context.Background(), input)

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentClassPolicy, out.Class)
}
