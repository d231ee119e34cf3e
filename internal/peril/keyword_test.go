package peril_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
	"claimdesk/internal/peril"
	"claimdesk/internal/port"
)

func TestKeywordClassifier_Classify(t *testing.T) {
	tests := []struct {
		name          string
		input         port.PerilInput
		wantPrimary   string
		wantSecondary []string
	}{
		{"hail", port.PerilInput{Cause: "Hail"}, domain.PerilWindHail, nil},
		{"cause beats description", port.PerilInput{Cause: "Kitchen fire", Description: "water used to put out flames"}, domain.PerilFire, []string{domain.PerilWater}},
		{"description only", port.PerilInput{Description: "Pipe burst in the attic"}, domain.PerilWater, nil},
		{"tree", port.PerilInput{Cause: "Tree fell on roof during storm"}, domain.PerilWindHail, []string{domain.PerilFallingObject}},
		{"theft", port.PerilInput{Cause: "Burglary", Description: "TV stolen"}, domain.PerilTheft, nil},
		{"unmatched", port.PerilInput{Cause: "Unknown"}, domain.PerilOther, nil},
	}

	c := peril.NewKeywordClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.Classify(context.Background(), tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantPrimary, got.PrimaryPeril)
			assert.Equal(t, tt.wantSecondary, got.SecondaryPerils)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestKeywordClassifier_Confidence(t *testing.T) {
	c := peril.NewKeywordClassifier()

	got, err := c.Classify(context.Background(), port.PerilInput{Cause: "Hail"})
	require.NoError(t, err)
	assert.Equal(t, 0.9, got.Confidence)

	got, err = c.Classify(context.Background(), port.PerilInput{Description: "hail damage"})
	require.NoError(t, err)
	assert.Equal(t, 0.5, got.Confidence)

	got, err = c.Classify(context.Background(), port.PerilInput{})
	require.NoError(t, err)
	assert.Zero(t, got.Confidence)
}
