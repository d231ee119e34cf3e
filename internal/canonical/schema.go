package canonical

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"claimdesk/internal/domain"
)

const fnolSchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["claim_number"]},
    {"required": ["date_of_loss"]},
    {"required": ["insured"], "properties": {"insured": {"required": ["name"]}}}
  ],
  "properties": {
    "claim_number": {"type": "string", "minLength": 1},
    "date_of_loss": {"type": "string", "minLength": 1},
    "endorsements": {"type": "array", "items": {"type": "string"}}
  }
}`

const policyFormSchema = `{
  "type": "object",
  "anyOf": [
    {"required": ["form_code"]},
    {"required": ["form_name"]}
  ],
  "properties": {
    "form_code": {"type": "string", "minLength": 1},
    "form_name": {"type": "string", "minLength": 1},
    "provisions": {"type": "object"}
  }
}`

const endorsementPacketSchema = `{
  "type": "object",
  "required": ["endorsements"],
  "properties": {
    "endorsements": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["endorsement_type", "precedence_priority"],
        "anyOf": [
          {"required": ["form_code"]},
          {"required": ["title"]}
        ],
        "properties": {
          "endorsement_type": {"enum": ["loss_settlement", "coverage_specific", "state_amendatory", "general"]},
          "precedence_priority": {"type": "integer", "minimum": 1, "maximum": 100},
          "applies_to_forms": {"type": "array", "uniqueItems": true},
          "applies_to_coverages": {"type": "array", "uniqueItems": true}
        }
      }
    }
  }
}`

var schemas = map[domain.DocumentClass]*jsonschema.Schema{
	domain.DocumentClassFNOL:        jsonschema.MustCompileString("fnol.json", fnolSchema),
	domain.DocumentClassPolicy:      jsonschema.MustCompileString("policy_form.json", policyFormSchema),
	domain.DocumentClassEndorsement: jsonschema.MustCompileString("endorsement_packet.json", endorsementPacketSchema),
}

// Validate checks a canonical payload against its class schema. Violations
// are returned as *domain.ValidationError.
func Validate(class domain.DocumentClass, payload []byte) error {
	schema, ok := schemas[class]
	if !ok {
		return &domain.ValidationError{Field: "document_class", Reason: fmt.Sprintf("no canonical schema for %q", class)}
	}
	var v interface{}
	if err := json.Unmarshal(payload, &v); err != nil {
		return &domain.ValidationError{Reason: fmt.Sprintf("canonical payload is not valid JSON: %v", err)}
	}
	if err := schema.Validate(v); err != nil {
		return &domain.ValidationError{Field: string(class), Reason: err.Error()}
	}
	return nil
}
