package canonical

import (
	"claimdesk/internal/domain"
)

var policyFormAnchors = []string{"form_code", "form_name"}

// PolicyForm maps a merged raw policy form onto the canonical shape. The
// verbatim page text is carried in RawText; a raw_text field from the
// extraction service is used only when no page text exists.
func PolicyForm(in Input) (*domain.PolicyFormExtraction, error) {
	raw := in.Raw
	out := &domain.PolicyFormExtraction{
		FormCode:     str(raw, "form_code"),
		FormName:     str(raw, "form_name"),
		EditionDate:  str(raw, "edition_date"),
		Jurisdiction: str(raw, "jurisdiction"),
		RawText:      in.JoinedText(),
	}
	if out.RawText == "" {
		out.RawText = str(raw, "raw_text")
	}

	if out.FormCode == "" && out.FormName == "" {
		return nil, &domain.MalformedDocumentError{Class: domain.DocumentClassPolicy, Anchors: policyFormAnchors}
	}

	if p := obj(raw, "provisions"); p != nil {
		prov := &domain.PolicyProvisions{
			Definitions: definitions(p, "definitions"),
			NamedPerils: strList(p, "named_perils"),
			Exclusions:  strList(p, "exclusions"),
			Conditions:  strList(p, "conditions"),
		}
		for _, c := range objList(p, "coverages") {
			cov := domain.CoverageProvision{
				Code:           str(c, "code"),
				Name:           str(c, "name"),
				Description:    str(c, "description"),
				LossSettlement: str(c, "loss_settlement"),
			}
			if cov != (domain.CoverageProvision{}) {
				prov.Coverages = append(prov.Coverages, cov)
			}
		}
		if ls := obj(p, "loss_settlement"); ls != nil {
			defaults := domain.LossSettlementDefaults{
				Dwelling:         str(ls, "dwelling"),
				OtherStructures:  str(ls, "other_structures"),
				RoofingSystem:    str(ls, "roofing_system"),
				PersonalProperty: str(ls, "personal_property"),
			}
			if defaults != (domain.LossSettlementDefaults{}) {
				prov.LossSettlement = &defaults
			}
		}
		if !emptyProvisions(prov) {
			out.Provisions = prov
		}
	}

	return out, nil
}

func definitions(m map[string]interface{}, key string) []domain.Definition {
	var out []domain.Definition
	for _, d := range objList(m, key) {
		def := domain.Definition{Term: str(d, "term"), Meaning: str(d, "meaning")}
		if def.Term != "" {
			out = append(out, def)
		}
	}
	return out
}

func emptyProvisions(p *domain.PolicyProvisions) bool {
	return len(p.Definitions) == 0 && len(p.Coverages) == 0 && len(p.NamedPerils) == 0 &&
		len(p.Exclusions) == 0 && len(p.Conditions) == 0 && p.LossSettlement == nil
}
