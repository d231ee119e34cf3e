package canonical

import (
	"encoding/json"
	"fmt"

	"claimdesk/internal/domain"
)

// Result is a validated canonical extraction. Exactly one of the typed
// fields is set, matching Class.
type Result struct {
	Class       domain.DocumentClass
	Payload     json.RawMessage
	RawText     string
	FNOL        *domain.FNOLExtraction
	PolicyForm  *domain.PolicyFormExtraction
	Endorsement *domain.EndorsementPacket
}

// Transform runs the class's transformer and validates the canonical payload.
func Transform(class domain.DocumentClass, in Input) (*Result, error) {
	res := &Result{Class: class, RawText: in.JoinedText()}

	var (
		value interface{}
		err   error
	)
	switch class {
	case domain.DocumentClassFNOL:
		res.FNOL, err = FNOL(in)
		value = res.FNOL
	case domain.DocumentClassPolicy:
		res.PolicyForm, err = PolicyForm(in)
		value = res.PolicyForm
	case domain.DocumentClassEndorsement:
		res.Endorsement, err = Endorsements(in)
		value = res.Endorsement
	default:
		return nil, &domain.ValidationError{Field: "document_class", Reason: fmt.Sprintf("no transformer for %q", class)}
	}
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("canonical.Transform: marshaling %s: %w", class, err)
	}
	if err := Validate(class, payload); err != nil {
		return nil, err
	}
	res.Payload = payload
	return res, nil
}
