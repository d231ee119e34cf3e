package csvexport

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/domain"
)

func f(v float64) *float64 { return &v }

func samplePolicy() (*domain.Claim, *domain.EffectivePolicy) {
	endorsementDoc := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	policyDoc := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	claim := &domain.Claim{ClaimNumber: "2025-000007", CarrierClaimNumber: "01-002-161543"}
	ep := &domain.EffectivePolicy{
		Jurisdiction: "TX",
		PolicyNumber: "HO-998877",
		BaseForms:    []string{"HO 00 03"},
		Coverages: map[string]domain.CoverageRule{
			"C": {Code: "C", Name: "Personal Property", Limit: f(187900), SettlementBasis: "ACV"},
			"A": {Code: "A", Name: "Dwelling", Limit: f(375800), SettlementBasis: "RCV", ModifiedBy: "HO 04 90"},
		},
		Deductibles: domain.Deductibles{AllPerils: f(2500), WindHailPercent: f(1)},
		AppliedEndorsements: []domain.AppliedEndorsement{
			{DocumentID: endorsementDoc, FormCode: "HO 04 90", EndorsementType: domain.EndorsementTypeLossSettlement, PrecedencePriority: 10},
		},
		Exclusions: []string{"Flood"},
		SourceMap: map[string][]uuid.UUID{
			"coverages.A": {policyDoc, endorsementDoc},
			"baseForms":   {policyDoc},
		},
	}
	return claim, ep
}

func readAll(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	require.True(t, bytes.HasPrefix(buf.Bytes(), BOM))
	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes()[len(BOM):])).ReadAll()
	require.NoError(t, err)
	return rows
}

func findRows(rows [][]string, section string) [][]string {
	var out [][]string
	for _, r := range rows {
		if r[0] == section {
			out = append(out, r)
		}
	}
	return out
}

func TestWriteHeader(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteHeader())
	w.Flush()
	require.NoError(t, w.Error())

	row, err := csv.NewReader(&buf).Read()
	require.NoError(t, err)
	assert.Equal(t, []string{"Section", "Item", "Value", "Detail", "Sources"}, row)
}

func TestWrite(t *testing.T) {
	claim, ep := samplePolicy()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, claim, ep))
	rows := readAll(t, &buf)

	summary := findRows(rows, SectionSummary)
	require.Len(t, summary, 4)
	assert.Equal(t, []string{SectionSummary, "Claim Number", "2025-000007", "01-002-161543", ""}, summary[0])
	assert.Equal(t, "HO 00 03", summary[3][2])

	coverages := findRows(rows, SectionCoverage)
	require.Len(t, coverages, 2)
	assert.Equal(t, []string{SectionCoverage, "A Dwelling", "375800.00", "RCV modified by HO 04 90", ""}, coverages[0])
	assert.Equal(t, []string{SectionCoverage, "C Personal Property", "187900.00", "ACV", ""}, coverages[1])

	deductibles := findRows(rows, SectionDeductible)
	require.Len(t, deductibles, 3)
	assert.Equal(t, "2500.00", deductibles[0][2])
	assert.Empty(t, deductibles[1][2])
	assert.Equal(t, "1%", deductibles[2][2])

	endorsements := findRows(rows, SectionEndorsement)
	require.Len(t, endorsements, 1)
	assert.Equal(t, "priority 10", endorsements[0][3])
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", endorsements[0][4])

	sources := findRows(rows, SectionSource)
	require.Len(t, sources, 2)
	assert.Equal(t, "baseForms", sources[0][1])
	assert.Equal(t, "coverages.A", sources[1][1])
	assert.Equal(t, "22222222-2222-2222-2222-222222222222; 11111111-1111-1111-1111-111111111111", sources[1][4])

	assert.Len(t, findRows(rows, SectionExclusion), 1)
	assert.Empty(t, findRows(rows, SectionCondition))
}

func TestWrite_EmptyPolicy(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &domain.Claim{ClaimNumber: "2025-000001"}, &domain.EffectivePolicy{}))
	rows := readAll(t, &buf)

	// header, summary and deductible rows are always present
	assert.Len(t, rows, 1+4+3)
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2025, time.May, 2, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, "effective_policy_2025-000001_2025-05-02.csv", BuildFilename("2025-000001", now))
	assert.Equal(t, "effective_policy_A_B_2025-05-02.csv", BuildFilename("A / B", now))
}
