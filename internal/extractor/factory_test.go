package extractor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/config"
	"claimdesk/internal/extractor"
	"claimdesk/internal/port"
	"claimdesk/mocks"
)

func TestNewExtractor_UnknownProvider(t *testing.T) {
	_, err := extractor.NewExtractor(&config.ProviderConfig{Provider: "nonexistent"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown extraction provider")
}

func TestNewExtractor_FactoryError(t *testing.T) {
	extractor.RegisterProvider("broken-test", func(cfg *config.ProviderConfig) (port.PageExtractor, error) {
		return nil, errors.New("missing key")
	})

	_, err := extractor.NewChain(&config.ExtractorConfig{Primary: config.ProviderConfig{Provider: "broken-test"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating broken-test extractor")
}

func TestNewChain_SingleProvider(t *testing.T) {
	m := new(mocks.MockPageExtractor)
	extractor.RegisterProvider("single-test", func(cfg *config.ProviderConfig) (port.PageExtractor, error) {
		return m, nil
	})

	chain, err := extractor.NewChain(&config.ExtractorConfig{Primary: config.ProviderConfig{Provider: "single-test"}})
	require.NoError(t, err)
	assert.Same(t, m, chain)
}

func TestNewChain_FallbackOrder(t *testing.T) {
	primary := new(mocks.MockPageExtractor)
	secondary := new(mocks.MockPageExtractor)
	extractor.RegisterProvider("primary-test", func(cfg *config.ProviderConfig) (port.PageExtractor, error) {
		return primary, nil
	})
	extractor.RegisterProvider("secondary-test", func(cfg *config.ProviderConfig) (port.PageExtractor, error) {
		return secondary, nil
	})

	chain, err := extractor.NewChain(&config.ExtractorConfig{
		Primary:   config.ProviderConfig{Provider: "primary-test"},
		Secondary: config.ProviderConfig{Provider: "secondary-test", RequestsPerMinute: 6000},
	})
	require.NoError(t, err)
	assert.IsType(t, &extractor.Fallback{}, chain)

	input := pageInput()
	primary.On("ExtractPage", mock.Anything, input).Return(nil, errors.New("down"))
	secondary.On("ExtractPage", mock.Anything, input).Return(pageOutput("secondary"), nil)

	out, err := chain.ExtractPage(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "secondary", out.ModelUsed)
}
