package claimfields_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/claimfields"
	"claimdesk/internal/domain"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"Personal Property $187,900", ptr(187900.00)},
		{"$350,000", ptr(350000)},
		{"350000", ptr(350000)},
		{"$2,500.50", ptr(2500.50)},
		{"Form 2024 limit $35,000", ptr(35000)},
		{"2% ($7,000)", ptr(7000)},
		{"1%", nil},
		{"2 % of Coverage A", nil},
		{"Included", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := claimfields.ParseCurrency(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 0.001)
		})
	}
}

func TestParsePercent(t *testing.T) {
	got := claimfields.ParsePercent("1%")
	require.NotNil(t, got)
	assert.Equal(t, 1.0, *got)

	got = claimfields.ParsePercent("Wind/Hail 2.5 % of Coverage A")
	require.NotNil(t, got)
	assert.Equal(t, 2.5, *got)

	assert.Nil(t, claimfields.ParsePercent("$1,000"))
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in     string
		want   claimfields.Address
		wantOK bool
	}{
		{"123 Main St, Dallas, TX 75201", claimfields.Address{Street: "123 Main St", City: "Dallas", State: "TX", Zip: "75201"}, true},
		{"Apt 4, 55 Elm Rd, Fort Worth tx 76102-1234", claimfields.Address{Street: "Apt 4, 55 Elm Rd", City: "Fort Worth", State: "TX", Zip: "76102-1234"}, true},
		{"123 Main St Dallas TX 75201", claimfields.Address{Street: "123 Main St Dallas", State: "TX", Zip: "75201"}, true},
		{"Rural Route 9", claimfields.Address{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := claimfields.ParseAddress(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2025, time.April, 18, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"04/18/2025", "4/18/2025", "2025-04-18", "April 18, 2025", " Apr 18, 2025 "} {
		got, err := claimfields.ParseDate(in)
		require.NoError(t, err, in)
		assert.True(t, want.Equal(got), in)
	}

	_, err := claimfields.ParseDate("last tuesday")
	assert.Error(t, err)
}

func TestFormatClaimNumber(t *testing.T) {
	assert.Equal(t, "2025-000001", claimfields.FormatClaimNumber(2025, 1))
	assert.Equal(t, "2025-123456", claimfields.FormatClaimNumber(2025, 123456))
}

func TestPopulate(t *testing.T) {
	fnol := &domain.FNOLExtraction{
		ClaimNumber: "01-002-161543",
		DateOfLoss:  "04/18/2025",
		Insured:     &domain.FNOLInsured{Name: "DANNY DIKKER"},
		Property:    &domain.FNOLProperty{Address: "123 Main St, Dallas, TX 75201"},
		Policy:      &domain.FNOLPolicy{PolicyNumber: "HO-998877"},
		Coverages: &domain.FNOLCoverages{
			CoverageA: "$375,800",
			CoverageC: "Personal Property $187,900",
			CoverageD: "Included",
		},
		Deductibles: &domain.FNOLDeductibles{AllPerils: "$2,500", WindHail: "1%"},
	}

	var c domain.Claim
	claimfields.Populate(&c, fnol)

	assert.Equal(t, "01-002-161543", c.CarrierClaimNumber)
	require.NotNil(t, c.DateOfLoss)
	assert.Equal(t, "2025-04-18", c.DateOfLoss.Format("2006-01-02"))
	assert.Equal(t, "DANNY DIKKER", c.InsuredName)
	assert.Equal(t, "HO-998877", c.PolicyNumber)
	assert.Equal(t, "123 Main St", c.PropertyAddress)
	assert.Equal(t, "Dallas", c.PropertyCity)
	assert.Equal(t, "TX", c.PropertyState)
	assert.Equal(t, "75201", c.PropertyZip)
	assert.Equal(t, 375800.0, *c.CoverageA)
	assert.Nil(t, c.CoverageB)
	assert.Equal(t, 187900.0, *c.CoverageC)
	assert.Nil(t, c.CoverageD)
	assert.Equal(t, 2500.0, *c.DeductibleAllPerils)
	assert.Nil(t, c.DeductibleWindHail)
	assert.Equal(t, 1.0, *c.WindHailPercent)
}

func TestPopulate_StructuredPartsWin(t *testing.T) {
	fnol := &domain.FNOLExtraction{
		ClaimNumber: "C-1",
		Property: &domain.FNOLProperty{
			Address: "9 Oak Ln, Austin, TX 78701",
			City:    "West Lake Hills",
		},
	}

	var c domain.Claim
	claimfields.Populate(&c, fnol)

	assert.Equal(t, "9 Oak Ln", c.PropertyAddress)
	assert.Equal(t, "West Lake Hills", c.PropertyCity)
	assert.Equal(t, "TX", c.PropertyState)
	assert.Nil(t, c.DateOfLoss)
}

func TestPopulate_UnparseableAddressKeptWhole(t *testing.T) {
	var c domain.Claim
	claimfields.Populate(&c, &domain.FNOLExtraction{
		ClaimNumber: "C-1",
		Property:    &domain.FNOLProperty{Address: "Rural Route 9"},
	})
	assert.Equal(t, "Rural Route 9", c.PropertyAddress)
}

func ptr(f float64) *float64 { return &f }
