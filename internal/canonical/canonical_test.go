package canonical_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claimdesk/internal/canonical"
	"claimdesk/internal/domain"
	"claimdesk/internal/merge"
)

func rawInput(t *testing.T, pages ...string) canonical.Input {
	t.Helper()
	var objs []map[string]interface{}
	for _, p := range pages {
		m, err := merge.Decode([]byte(p))
		require.NoError(t, err)
		objs = append(objs, m)
	}
	return canonical.Input{Raw: merge.Pages(objs)}
}

func TestFNOL_Scenario(t *testing.T) {
	in := rawInput(t,
		`{"claim_number": "01-002-161543", "date_of_loss": "04/18/2025", "insured": {"name": "DANNY DIKKER"}, "peril": {"cause": "Hail"}}`,
		`{"coverages": {"coverage_a": "$350,000", "coverage_c": "Personal Property $187,900"}, "deductibles": {"wind_hail": "1%"}}`,
	)

	got, err := canonical.FNOL(in)
	require.NoError(t, err)

	assert.Equal(t, "01-002-161543", got.ClaimNumber)
	assert.Equal(t, "04/18/2025", got.DateOfLoss)
	require.NotNil(t, got.Insured)
	assert.Equal(t, "DANNY DIKKER", got.Insured.Name)
	require.NotNil(t, got.Peril)
	assert.Equal(t, "Hail", got.Peril.Cause)
	require.NotNil(t, got.Coverages)
	assert.Equal(t, "Personal Property $187,900", got.Coverages.CoverageC)
	assert.Equal(t, "1%", got.Deductibles.WindHail)
}

func TestFNOL_AbsentFieldsStayAbsent(t *testing.T) {
	in := rawInput(t, `{"claim_number": "C-1", "property": {"city": ""}, "policy": {}}`)

	got, err := canonical.FNOL(in)
	require.NoError(t, err)

	assert.Nil(t, got.Property)
	assert.Nil(t, got.Policy)
	assert.Nil(t, got.Insured)

	payload, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"claim_number": "C-1"}`, string(payload))
}

func TestFNOL_SingleAnchorIsEnough(t *testing.T) {
	_, err := canonical.FNOL(rawInput(t, `{"insured": {"name": "DANNY DIKKER"}}`))
	assert.NoError(t, err)
}

func TestFNOL_MissingAnchors(t *testing.T) {
	_, err := canonical.FNOL(rawInput(t, `{"peril": {"cause": "Hail"}, "insured": {"phone": "555"}}`))

	var malformed *domain.MalformedDocumentError
	require.True(t, errors.As(err, &malformed))
	assert.Equal(t, domain.DocumentClassFNOL, malformed.Class)
	assert.False(t, domain.IsTransient(err))
}

func TestPolicyForm_KeepsVerbatimPageText(t *testing.T) {
	in := rawInput(t,
		`{"form_code": "HO 00 03", "form_name": "Homeowners 3 - Special Form", "provisions": {"exclusions": ["Earth Movement"]}}`,
		`{"provisions": {"exclusions": ["Water"], "loss_settlement": {"roofing_system": "Replacement Cost"}}}`,
	)
	in.PageTexts = []string{"SECTION I - PROPERTY COVERAGES\n", "", "SECTION II - LIABILITY"}

	got, err := canonical.PolicyForm(in)
	require.NoError(t, err)

	assert.Equal(t, "HO 00 03", got.FormCode)
	assert.Equal(t, "SECTION I - PROPERTY COVERAGES\n\n\nSECTION II - LIABILITY", got.RawText)
	require.NotNil(t, got.Provisions)
	assert.Equal(t, []string{"Earth Movement", "Water"}, got.Provisions.Exclusions)
	assert.Equal(t, "Replacement Cost", got.Provisions.LossSettlement.RoofingSystem)
	assert.Nil(t, got.Provisions.Definitions)
}

func TestPolicyForm_MissingAnchors(t *testing.T) {
	_, err := canonical.PolicyForm(rawInput(t, `{"jurisdiction": "TX"}`))

	var malformed *domain.MalformedDocumentError
	assert.True(t, errors.As(err, &malformed))
}

func TestEndorsements_SameFormCodeMergedAcrossPages(t *testing.T) {
	in := rawInput(t,
		`{"endorsements": [{"form_code": "HO 04 16", "title": "Premises Alarm", "applies_to_forms": ["HO 00 03"], "raw_text": "page one text"}]}`,
		`{"endorsements": [
			{"form_code": "ho 04  16", "title": "Ignored", "applies_to_forms": ["HO 00 05", "HO 00 03"], "applies_to_coverages": ["C"], "raw_text": "page two text"},
			{"form_code": "TDP 004", "title": "Roof Surface Payment Schedule", "raw_text": "schedule text"}
		]}`,
	)

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)
	require.Len(t, got.Endorsements, 2)

	first := got.Endorsements[0]
	assert.Equal(t, "HO 04 16", first.FormCode)
	assert.Equal(t, "Premises Alarm", first.Title)
	assert.Equal(t, []string{"HO 00 03", "HO 00 05"}, first.AppliesToForms)
	assert.Equal(t, []string{"C"}, first.AppliesToCoverages)
	assert.Equal(t, "page one text\n\npage two text", first.RawText)

	second := got.Endorsements[1]
	assert.Equal(t, domain.EndorsementTypeLossSettlement, second.EndorsementType)
	assert.Equal(t, 5, second.PrecedencePriority)
}

func TestEndorsements_UncodedEndorsementsKeyedByTitle(t *testing.T) {
	in := rawInput(t,
		`{"endorsements": [
			{"title": "Roof Surface Payment Schedule", "raw_text": "schedule page one"},
			{"title": "Limited Fungi, Wet or Dry Rot Coverage"}
		]}`,
		`{"endorsements": [{"title": "roof surface  payment schedule", "raw_text": "schedule page two"}]}`,
	)

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)
	require.Len(t, got.Endorsements, 2)

	keys := map[string]bool{}
	for _, e := range got.Endorsements {
		assert.Empty(t, e.FormCode)
		keys[domain.FormKey(e.FormCode, e.Title)] = true
	}
	assert.Len(t, keys, 2)
	assert.Equal(t, "schedule page one\n\nschedule page two", got.Endorsements[0].RawText)
	assert.Equal(t, "Limited Fungi, Wet or Dry Rot Coverage", got.Endorsements[1].Title)
}

func TestEndorsements_AmendatoryDefaultsToForty(t *testing.T) {
	in := rawInput(t, `{"endorsements": [{"form_code": "HO 01 42", "title": "Special Provisions - AMENDATORY Endorsement"}]}`)

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)

	assert.Equal(t, domain.EndorsementTypeStateAmendatory, got.Endorsements[0].EndorsementType)
	assert.Equal(t, 40, got.Endorsements[0].PrecedencePriority)
}

func TestEndorsements_ExplicitTypeAndPriorityKept(t *testing.T) {
	in := rawInput(t, `{"endorsements": [{"form_code": "HO 04 90", "endorsement_type": "Coverage_Specific", "precedence_priority": 12}]}`)

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)

	assert.Equal(t, domain.EndorsementTypeCoverageSpecific, got.Endorsements[0].EndorsementType)
	assert.Equal(t, 12, got.Endorsements[0].PrecedencePriority)
}

func TestEndorsements_PriorityClamped(t *testing.T) {
	in := rawInput(t, `{"endorsements": [{"form_code": "X 1", "precedence_priority": 250}]}`)

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)
	assert.Equal(t, 100, got.Endorsements[0].PrecedencePriority)
}

func TestEndorsements_SingleEndorsementFallsBackToPageText(t *testing.T) {
	in := rawInput(t, `{"endorsements": [{"form_code": "HO 04 90"}]}`)
	in.PageTexts = []string{"first", "second"}

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)
	assert.Equal(t, "first\n\nsecond", got.Endorsements[0].RawText)
}

func TestEndorsements_ModificationsAndSchedules(t *testing.T) {
	in := rawInput(t, `{"endorsements": [{
		"form_code": "TDP 004",
		"modifications": {
			"exclusions": {"added": ["Cosmetic damage to metal roofing"], "deleted": []},
			"loss_settlement": {"replaced": [{"section": "Roof Surfacing", "basis": "ACV", "metal_component_rule": "Cosmetic hail damage excluded"}]},
			"coverages": [{"coverage": "A", "settlement_basis": "ACV"}]
		},
		"schedules": [{"name": "Roof Surface Payment Schedule", "section": "roof", "entries": [
			{"age_range": "0-5", "min_age_years": 0, "max_age_years": 5, "payment_percent": "100%"},
			{"age_range": "6-10", "min_age_years": 6, "max_age_years": 10, "payment_percent": 80}
		]}]
	}]}`)

	got, err := canonical.Endorsements(in)
	require.NoError(t, err)

	e := got.Endorsements[0]
	require.NotNil(t, e.Modifications)
	assert.Equal(t, []string{"Cosmetic damage to metal roofing"}, e.Modifications.Exclusions.Added)
	assert.Nil(t, e.Modifications.Exclusions.Deleted)
	assert.Nil(t, e.Modifications.Conditions)
	require.Len(t, e.Modifications.LossSettlement.Replaced, 1)
	assert.Equal(t, "ACV", e.Modifications.LossSettlement.Replaced[0].Basis)
	require.Len(t, e.Schedules, 1)
	require.Len(t, e.Schedules[0].Entries, 2)
	assert.Equal(t, 100.0, *e.Schedules[0].Entries[0].PaymentPercent)
	assert.Equal(t, 80.0, *e.Schedules[0].Entries[1].PaymentPercent)
}

func TestEndorsements_RequiresEndorsementsArray(t *testing.T) {
	_, err := canonical.Endorsements(rawInput(t, `{"form_code": "HO 04 90", "title": "Legacy flat shape"}`))

	var malformed *domain.MalformedDocumentError
	assert.True(t, errors.As(err, &malformed))
}

func TestClassifyEndorsement(t *testing.T) {
	// Keyword classification is a best-effort tie-breaker.
	cases := []struct {
		formCode, title string
		want            domain.EndorsementType
	}{
		{"HO 04 93", "Actual Cash Value Loss Settlement", domain.EndorsementTypeLossSettlement},
		{"TDP 004", "Roof Surface Payment Schedule", domain.EndorsementTypeLossSettlement},
		{"HO 01 42", "Amendatory Endorsement", domain.EndorsementTypeStateAmendatory},
		{"HO 03 TX", "Texas Changes", domain.EndorsementTypeStateAmendatory},
		{"HO 04 90", "Personal Property Replacement", domain.EndorsementTypeCoverageSpecific},
		{"HO 04 16", "Premises Alarm or Fire Protection System", domain.EndorsementTypeGeneral},
	}
	for _, tc := range cases {
		t.Run(tc.title, func(t *testing.T) {
			assert.Equal(t, tc.want, canonical.ClassifyEndorsement(tc.formCode, tc.title))
		})
	}
}

func TestDefaultPriority(t *testing.T) {
	assert.Equal(t, 5, canonical.DefaultPriority(domain.EndorsementTypeLossSettlement))
	assert.Equal(t, 20, canonical.DefaultPriority(domain.EndorsementTypeCoverageSpecific))
	assert.Equal(t, 40, canonical.DefaultPriority(domain.EndorsementTypeStateAmendatory))
	assert.Equal(t, 75, canonical.DefaultPriority(domain.EndorsementTypeGeneral))
	assert.Equal(t, 75, canonical.DefaultPriority("unknown"))
}

func TestTransform_ValidatesPayload(t *testing.T) {
	res, err := canonical.Transform(domain.DocumentClassFNOL, rawInput(t, `{"claim_number": "C-1"}`))
	require.NoError(t, err)
	assert.NotNil(t, res.FNOL)
	assert.JSONEq(t, `{"claim_number": "C-1"}`, string(res.Payload))
}

func TestTransform_UnknownClass(t *testing.T) {
	_, err := canonical.Transform(domain.DocumentClassPhoto, rawInput(t, `{}`))

	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidate_RejectsOutOfRangePriority(t *testing.T) {
	err := canonical.Validate(domain.DocumentClassEndorsement,
		[]byte(`{"endorsements": [{"form_code": "X", "endorsement_type": "general", "precedence_priority": 0}]}`))

	var verr *domain.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestValidate_AcceptsEndorsementPacket(t *testing.T) {
	err := canonical.Validate(domain.DocumentClassEndorsement,
		[]byte(`{"endorsements": [{"title": "Water Backup", "endorsement_type": "coverage_specific", "precedence_priority": 20}]}`))
	assert.NoError(t, err)
}
