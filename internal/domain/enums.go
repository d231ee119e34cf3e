package domain

// DocumentClass identifies which canonical shape a document is extracted into.
// An empty class means the document still needs classification.
type DocumentClass string

const (
	DocumentClassFNOL           DocumentClass = "fnol"
	DocumentClassPolicy         DocumentClass = "policy"
	DocumentClassEndorsement    DocumentClass = "endorsement"
	DocumentClassPhoto          DocumentClass = "photo"
	DocumentClassCorrespondence DocumentClass = "correspondence"
)

// Extractable reports whether the class has a canonical transformer.
func (c DocumentClass) Extractable() bool {
	switch c {
	case DocumentClassFNOL, DocumentClassPolicy, DocumentClassEndorsement:
		return true
	}
	return false
}

// ValidDocumentClasses lists every class the classifier may return.
var ValidDocumentClasses = map[DocumentClass]bool{
	DocumentClassFNOL:           true,
	DocumentClassPolicy:         true,
	DocumentClassEndorsement:    true,
	DocumentClassPhoto:          true,
	DocumentClassCorrespondence: true,
}

// ProcessingStatus represents the pipeline state of a document.
type ProcessingStatus string

const (
	ProcessingStatusPending    ProcessingStatus = "pending"
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusFailed     ProcessingStatus = "failed"
)

// ExtractionStatus is stored on canonical extraction rows.
type ExtractionStatus string

const (
	ExtractionStatusCompleted ExtractionStatus = "completed"
	ExtractionStatusFailed    ExtractionStatus = "failed"
)

// ClaimStatus represents the lifecycle of a claim.
type ClaimStatus string

const (
	ClaimStatusFNOL ClaimStatus = "fnol"
)

// EndorsementType drives the default precedence band of an endorsement.
type EndorsementType string

const (
	EndorsementTypeLossSettlement   EndorsementType = "loss_settlement"
	EndorsementTypeCoverageSpecific EndorsementType = "coverage_specific"
	EndorsementTypeStateAmendatory  EndorsementType = "state_amendatory"
	EndorsementTypeGeneral          EndorsementType = "general"
)

// PriorityBand is the inclusive precedence range of an endorsement type.
type PriorityBand struct {
	Min     int
	Max     int
	Default int
}

// PriorityBands maps each endorsement type to its precedence band.
// Lower numbers are more specific.
var PriorityBands = map[EndorsementType]PriorityBand{
	EndorsementTypeLossSettlement:   {Min: 1, Max: 10, Default: 5},
	EndorsementTypeCoverageSpecific: {Min: 11, Max: 30, Default: 20},
	EndorsementTypeStateAmendatory:  {Min: 31, Max: 50, Default: 40},
	EndorsementTypeGeneral:          {Min: 51, Max: 100, Default: 75},
}

// Valid reports whether t is one of the known endorsement types.
func (t EndorsementType) Valid() bool {
	_, ok := PriorityBands[t]
	return ok
}

// Settlement bases used by the effective policy.
const (
	SettlementBasisRCV       = "RCV"
	SettlementBasisACV       = "ACV"
	SettlementBasisScheduled = "SCHEDULED"
)

// Peril codes produced by the peril classifier.
const (
	PerilWindHail      = "wind_hail"
	PerilWater         = "water"
	PerilFire          = "fire"
	PerilTheft         = "theft"
	PerilLightning     = "lightning"
	PerilFallingObject = "falling_object"
	PerilVandalism     = "vandalism"
	PerilFreeze        = "freeze"
	PerilCollapse      = "collapse"
	PerilOther         = "other"
)

// FollowUpKind identifies downstream work queued after a pipeline step.
type FollowUpKind string

const (
	FollowUpClaimMaterialized FollowUpKind = "claim.materialized"
	FollowUpPolicyUpdated     FollowUpKind = "claim.policy_updated"
)

// AuditAction names a pipeline event recorded in the document audit log.
type AuditAction string

const (
	AuditProcessingStarted   AuditAction = "processing.started"
	AuditProcessingRetry     AuditAction = "processing.retry"
	AuditProcessingCompleted AuditAction = "processing.completed"
	AuditProcessingFailed    AuditAction = "processing.failed"
	AuditDocumentClassified  AuditAction = "document.classified"
	AuditClaimMaterialized   AuditAction = "claim.materialized"
	AuditDocumentLinked      AuditAction = "document.linked"
)
