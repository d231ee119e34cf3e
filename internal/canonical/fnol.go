package canonical

import (
	"claimdesk/internal/domain"
)

var fnolAnchors = []string{"claim_number", "date_of_loss", "insured.name"}

// FNOL maps a merged raw FNOL object onto the canonical shape.
func FNOL(in Input) (*domain.FNOLExtraction, error) {
	raw := in.Raw
	out := &domain.FNOLExtraction{
		ClaimNumber:  str(raw, "claim_number"),
		DateOfLoss:   str(raw, "date_of_loss"),
		Endorsements: strList(raw, "endorsements"),
	}

	if p := obj(raw, "peril"); p != nil {
		peril := domain.FNOLPeril{
			Cause:       str(p, "cause"),
			Description: str(p, "description"),
		}
		if peril != (domain.FNOLPeril{}) {
			out.Peril = &peril
		}
	}

	if i := obj(raw, "insured"); i != nil {
		insured := domain.FNOLInsured{
			Name:           str(i, "name"),
			SecondaryName:  str(i, "secondary_name"),
			Phone:          str(i, "phone"),
			Email:          str(i, "email"),
			MailingAddress: str(i, "mailing_address"),
		}
		if insured != (domain.FNOLInsured{}) {
			out.Insured = &insured
		}
	}

	if p := obj(raw, "property"); p != nil {
		property := domain.FNOLProperty{
			Address:      str(p, "address"),
			Street:       str(p, "street"),
			City:         str(p, "city"),
			State:        str(p, "state"),
			Zip:          str(p, "zip"),
			YearBuilt:    str(p, "year_built"),
			Stories:      str(p, "stories"),
			RoofMaterial: str(p, "roof_material"),
			RoofType:     str(p, "roof_type"),
			RoofAge:      str(p, "roof_age"),
		}
		if property != (domain.FNOLProperty{}) {
			out.Property = &property
		}
	}

	if p := obj(raw, "policy"); p != nil {
		policy := domain.FNOLPolicy{
			PolicyNumber:   str(p, "policy_number"),
			Carrier:        str(p, "carrier"),
			EffectiveDate:  str(p, "effective_date"),
			ExpirationDate: str(p, "expiration_date"),
			FormCode:       str(p, "form_code"),
		}
		if policy != (domain.FNOLPolicy{}) {
			out.Policy = &policy
		}
	}

	if c := obj(raw, "coverages"); c != nil {
		coverages := domain.FNOLCoverages{
			CoverageA: str(c, "coverage_a"),
			CoverageB: str(c, "coverage_b"),
			CoverageC: str(c, "coverage_c"),
			CoverageD: str(c, "coverage_d"),
		}
		if coverages != (domain.FNOLCoverages{}) {
			out.Coverages = &coverages
		}
	}

	if d := obj(raw, "deductibles"); d != nil {
		deductibles := domain.FNOLDeductibles{
			AllPerils: str(d, "all_perils"),
			WindHail:  str(d, "wind_hail"),
		}
		if deductibles != (domain.FNOLDeductibles{}) {
			out.Deductibles = &deductibles
		}
	}

	if r := obj(raw, "reporting"); r != nil {
		reporting := domain.FNOLReporting{
			ReportedBy:   str(r, "reported_by"),
			ReportedDate: str(r, "reported_date"),
			ReportMethod: str(r, "report_method"),
			AdjusterName: str(r, "adjuster_name"),
		}
		if reporting != (domain.FNOLReporting{}) {
			out.Reporting = &reporting
		}
	}

	if out.ClaimNumber == "" && out.DateOfLoss == "" && (out.Insured == nil || out.Insured.Name == "") {
		return nil, &domain.MalformedDocumentError{Class: domain.DocumentClassFNOL, Anchors: fnolAnchors}
	}
	return out, nil
}
