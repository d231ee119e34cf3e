package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Document is an uploaded source file moving through the extraction pipeline.
type Document struct {
	ID                 uuid.UUID        `db:"id" json:"id"`
	OrganizationID     uuid.UUID        `db:"organization_id" json:"organization_id"`
	ClaimID            *uuid.UUID       `db:"claim_id" json:"claim_id"`
	DocumentClass      DocumentClass    `db:"document_class" json:"document_class"`
	StorageKey         string           `db:"storage_key" json:"storage_key"`
	FileName           string           `db:"file_name" json:"file_name"`
	MimeType           string           `db:"mime_type" json:"mime_type"`
	ProcessingStatus   ProcessingStatus `db:"processing_status" json:"processing_status"`
	ProcessingError    string           `db:"processing_error" json:"processing_error"`
	ProcessingAttempts int              `db:"processing_attempts" json:"processing_attempts"`
	ExtractedData      json.RawMessage  `db:"extracted_data" json:"extracted_data"`
	RawText            string           `db:"raw_text" json:"raw_text"`
	PageCount          int              `db:"page_count" json:"page_count"`
	ModelUsed          string           `db:"model_used" json:"model_used"`
	ProcessedAt        *time.Time       `db:"processed_at" json:"processed_at"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// Claim is materialized from a single FNOL extraction.
type Claim struct {
	ID                  uuid.UUID       `db:"id" json:"id"`
	OrganizationID      uuid.UUID       `db:"organization_id" json:"organization_id"`
	ClaimNumber         string          `db:"claim_number" json:"claim_number"`
	CarrierClaimNumber  string          `db:"carrier_claim_number" json:"carrier_claim_number"`
	DateOfLoss          *time.Time      `db:"date_of_loss" json:"date_of_loss"`
	Status              ClaimStatus     `db:"status" json:"status"`
	PrimaryPeril        string          `db:"primary_peril" json:"primary_peril"`
	SecondaryPerils     StringList      `db:"secondary_perils" json:"secondary_perils"`
	PerilConfidence     *float64        `db:"peril_confidence" json:"peril_confidence"`
	InsuredName         string          `db:"insured_name" json:"insured_name"`
	PropertyAddress     string          `db:"property_address" json:"property_address"`
	PropertyCity        string          `db:"property_city" json:"property_city"`
	PropertyState       string          `db:"property_state" json:"property_state"`
	PropertyZip         string          `db:"property_zip" json:"property_zip"`
	PolicyNumber        string          `db:"policy_number" json:"policy_number"`
	CoverageA           *float64        `db:"coverage_a" json:"coverage_a"`
	CoverageB           *float64        `db:"coverage_b" json:"coverage_b"`
	CoverageC           *float64        `db:"coverage_c" json:"coverage_c"`
	CoverageD           *float64        `db:"coverage_d" json:"coverage_d"`
	DeductibleAllPerils *float64        `db:"deductible_all_perils" json:"deductible_all_perils"`
	DeductibleWindHail  *float64        `db:"deductible_wind_hail" json:"deductible_wind_hail"`
	WindHailPercent     *float64        `db:"wind_hail_percent" json:"wind_hail_percent"`
	LossContext         json.RawMessage `db:"loss_context" json:"loss_context"`
	SourceDocumentID    uuid.UUID       `db:"source_document_id" json:"source_document_id"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updated_at"`
}

// PolicyFormRecord is a stored canonical base policy extraction.
type PolicyFormRecord struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	DocumentID       uuid.UUID        `db:"document_id" json:"document_id"`
	OrganizationID   uuid.UUID        `db:"organization_id" json:"organization_id"`
	ClaimID          *uuid.UUID       `db:"claim_id" json:"claim_id"`
	FormCode         string           `db:"form_code" json:"form_code"`
	Extraction       json.RawMessage  `db:"extraction" json:"extraction"`
	RawText          string           `db:"raw_text" json:"raw_text"`
	PageCount        int              `db:"page_count" json:"page_count"`
	IsCanonical      bool             `db:"is_canonical" json:"is_canonical"`
	ExtractionStatus ExtractionStatus `db:"extraction_status" json:"extraction_status"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// EndorsementRecord is a stored canonical endorsement extraction. One source
// document may produce several rows, one per form code.
type EndorsementRecord struct {
	ID                 uuid.UUID        `db:"id" json:"id"`
	DocumentID         uuid.UUID        `db:"document_id" json:"document_id"`
	OrganizationID     uuid.UUID        `db:"organization_id" json:"organization_id"`
	ClaimID            *uuid.UUID       `db:"claim_id" json:"claim_id"`
	FormCode           string           `db:"form_code" json:"form_code"`
	EndorsementType    EndorsementType  `db:"endorsement_type" json:"endorsement_type"`
	PrecedencePriority int              `db:"precedence_priority" json:"precedence_priority"`
	Extraction         json.RawMessage  `db:"extraction" json:"extraction"`
	RawText            string           `db:"raw_text" json:"raw_text"`
	PageCount          int              `db:"page_count" json:"page_count"`
	IsCanonical        bool             `db:"is_canonical" json:"is_canonical"`
	ExtractionStatus   ExtractionStatus `db:"extraction_status" json:"extraction_status"`
	CreatedAt          time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time        `db:"updated_at" json:"updated_at"`
}

// FollowUpTask is downstream work triggered by a pipeline step.
type FollowUpTask struct {
	Kind           FollowUpKind `json:"kind"`
	OrganizationID uuid.UUID    `json:"organization_id"`
	ClaimID        uuid.UUID    `json:"claim_id"`
	DocumentID     uuid.UUID    `json:"document_id"`
	Attempt        int          `json:"attempt"`
}

// StringList is a string slice persisted as a JSONB array.
type StringList []string

// Value implements driver.Valuer.
func (s StringList) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(s))
}

// Scan implements sql.Scanner.
func (s *StringList) Scan(src interface{}) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*s = nil
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	return json.Unmarshal(data, (*[]string)(s))
}

// DocumentAuditEntry records one pipeline event for a document.
type DocumentAuditEntry struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	OrganizationID uuid.UUID       `db:"organization_id" json:"organization_id"`
	DocumentID     uuid.UUID       `db:"document_id" json:"document_id"`
	Action         AuditAction     `db:"action" json:"action"`
	Changes        json.RawMessage `db:"changes" json:"changes"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
}
