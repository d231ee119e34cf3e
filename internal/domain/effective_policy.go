package domain

import "github.com/google/uuid"

// EffectivePolicy is the claim-specific view of coverage after endorsements
// are layered over the base form. It is recomputed on every request and never
// stored. SourceMap keys are the dotted JSON paths of the resolved fields.
type EffectivePolicy struct {
	ClaimID             uuid.UUID               `json:"claimId"`
	Jurisdiction        string                  `json:"jurisdiction,omitempty"`
	PolicyNumber        string                  `json:"policyNumber,omitempty"`
	BaseForms           []string                `json:"baseForms"`
	Coverages           map[string]CoverageRule `json:"coverages"`
	LossSettlement      LossSettlement          `json:"lossSettlement"`
	Deductibles         Deductibles             `json:"deductibles"`
	Exclusions          []string                `json:"exclusions"`
	Conditions          []string                `json:"conditions"`
	Definitions         []Definition            `json:"definitions"`
	AppliedEndorsements []AppliedEndorsement    `json:"appliedEndorsements"`
	SourceMap           map[string][]uuid.UUID  `json:"sourceMap"`
}

// CoverageRule is the resolved rule for one coverage code (A, B, C, D, ...).
type CoverageRule struct {
	Code            string   `json:"code"`
	Name            string   `json:"name,omitempty"`
	Limit           *float64 `json:"limit,omitempty"`
	SettlementBasis string   `json:"settlementBasis,omitempty"`
	ModifiedBy      string   `json:"modifiedBy,omitempty"`
	Description     string   `json:"description,omitempty"`
}

type LossSettlement struct {
	DwellingAndStructures *SettlementRule    `json:"dwellingAndStructures,omitempty"`
	RoofingSystem         *RoofingSettlement `json:"roofingSystem,omitempty"`
	PersonalProperty      *SettlementRule    `json:"personalProperty,omitempty"`
}

type SettlementRule struct {
	Basis          string `json:"basis,omitempty"`
	Description    string `json:"description,omitempty"`
	SourceFormCode string `json:"sourceFormCode,omitempty"`
}

type RoofingSettlement struct {
	Basis              string          `json:"basis,omitempty"`
	Description        string          `json:"description,omitempty"`
	PaymentSchedule    []ScheduleEntry `json:"paymentSchedule,omitempty"`
	MetalComponentRule string          `json:"metalComponentRule,omitempty"`
	SourceFormCode     string          `json:"sourceFormCode,omitempty"`
}

type Deductibles struct {
	AllPerils       *float64 `json:"allPerils,omitempty"`
	WindHail        *float64 `json:"windHail,omitempty"`
	WindHailPercent *float64 `json:"windHailPercent,omitempty"`
}

// AppliedEndorsement records one endorsement in fold order.
type AppliedEndorsement struct {
	DocumentID         uuid.UUID       `json:"documentId"`
	FormCode           string          `json:"formCode"`
	Title              string          `json:"title,omitempty"`
	EndorsementType    EndorsementType `json:"endorsementType"`
	PrecedencePriority int             `json:"precedencePriority"`
}
