package extractor

import (
	"fmt"

	"claimdesk/internal/domain"
)

const commonRules = `
IMPORTANT INSTRUCTIONS:
- You are looking at ONE page of a multi-page document. Extract only what is visible on this page.
- Leave out any field that does not appear on this page. Do not guess, infer or default values.
- Copy identifiers (claim numbers, policy numbers, form codes) exactly as printed.
- Add a top-level "page_text" string with the verbatim text of the page.

Return ONLY valid JSON with no markdown formatting, no code fences, no explanation, just the raw JSON object.`

const fnolSchema = `{
  "claim_number": "",
  "date_of_loss": "",
  "peril": {"cause": "", "description": ""},
  "insured": {"name": "", "secondary_name": "", "phone": "", "email": "", "mailing_address": ""},
  "property": {"address": "", "street": "", "city": "", "state": "", "zip": "",
               "year_built": "", "stories": "", "roof_material": "", "roof_type": "", "roof_age": ""},
  "policy": {"policy_number": "", "carrier": "", "effective_date": "", "expiration_date": "", "form_code": ""},
  "coverages": {"coverage_a": "", "coverage_b": "", "coverage_c": "", "coverage_d": ""},
  "deductibles": {"all_perils": "", "wind_hail": ""},
  "endorsements": [""],
  "reporting": {"reported_by": "", "reported_date": "", "report_method": "", "adjuster_name": ""}
}`

const policyFormSchema = `{
  "form_code": "",
  "form_name": "",
  "edition_date": "",
  "jurisdiction": "",
  "provisions": {
    "definitions": [{"term": "", "meaning": ""}],
    "coverages": [{"code": "", "name": "", "description": "", "loss_settlement": ""}],
    "named_perils": [""],
    "exclusions": [""],
    "conditions": [""],
    "loss_settlement": {"dwelling": "", "other_structures": "", "roofing_system": "", "personal_property": ""}
  }
}`

const endorsementSchema = `{
  "endorsements": [
    {
      "form_code": "",
      "title": "",
      "edition_date": "",
      "jurisdiction": "",
      "applies_to_forms": [""],
      "applies_to_coverages": [""],
      "endorsement_type": "loss_settlement | coverage_specific | state_amendatory | general",
      "precedence_priority": 0,
      "modifications": {
        "definitions": {"added": [{"term": "", "meaning": ""}], "deleted": [""], "replaced": [{"term": "", "meaning": ""}]},
        "exclusions": {"added": [""], "deleted": [""]},
        "conditions": {"added": [""], "deleted": [""]},
        "loss_settlement": {"replaced": [{"section": "", "basis": "", "description": "", "metal_component_rule": ""}]},
        "coverages": [{"coverage": "", "description": "", "settlement_basis": ""}]
      },
      "schedules": [
        {"name": "", "section": "", "entries": [{"age_range": "", "min_age_years": 0, "max_age_years": 0, "roof_material": "", "payment_percent": 0}]}
      ],
      "raw_text": ""
    }
  ]
}`

// BuildPagePrompt returns the per-page extraction prompt for a document class.
func BuildPagePrompt(class domain.DocumentClass, pageIndex, totalPages int) string {
	var subject, schema, extra string
	switch class {
	case domain.DocumentClassFNOL:
		subject = "first notice of loss (FNOL) report for a property insurance claim"
		schema = fnolSchema
	case domain.DocumentClassPolicy:
		subject = "base homeowners policy form"
		schema = policyFormSchema
		extra = "\n- Record provisions as written. Do not summarize or paraphrase policy language."
	case domain.DocumentClassEndorsement:
		subject = "policy endorsement packet"
		schema = endorsementSchema
		extra = `
- Record only what each endorsement CHANGES. Never restate base policy language.
- One entry per endorsement form code. If an endorsement continues from a previous page, repeat its form_code.
- Put the endorsement's verbatim text from this page in its "raw_text".
- Omit endorsement_type and precedence_priority unless the page states them.`
	default:
		subject = "insurance document"
		schema = "{}"
	}
	return fmt.Sprintf(`You are an insurance document extraction assistant. This is page %d of %d of a %s. Extract the page into the following JSON structure.
%s%s

Schema:
%s`, pageIndex, totalPages, subject, commonRules, extra, schema)
}

// BuildClassifyPrompt returns the prompt used to determine a document's class
// from its first page.
func BuildClassifyPrompt() string {
	return `You are an insurance document classifier. Decide which kind of document this page belongs to.

Classes:
- "fnol": first notice of loss / claim intake report
- "policy": base policy form (declarations or policy jacket language)
- "endorsement": endorsement or amendment that modifies a base policy
- "photo": photograph of damage or property
- "correspondence": letters, emails and any other document

Return ONLY valid JSON with no markdown formatting, no code fences:
{"class": "", "confidence": 0.0}`
}
