package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"claimdesk/internal/claimfields"
	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type claimRepo struct {
	db *sqlx.DB
}

// NewClaimRepo creates a new PostgreSQL-backed ClaimRepository.
func NewClaimRepo(db *sqlx.DB) port.ClaimRepository {
	return &claimRepo{db: db}
}

func (r *claimRepo) CreateWithNextNumber(ctx context.Context, c *domain.Claim, year int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("claimRepo.CreateWithNextNumber begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var seq int64
	err = tx.GetContext(ctx, &seq,
		`INSERT INTO claim_number_sequences (organization_id, year, last_value)
		 VALUES ($1, $2, 1)
		 ON CONFLICT (organization_id, year)
		 DO UPDATE SET last_value = claim_number_sequences.last_value + 1
		 RETURNING last_value`,
		c.OrganizationID, year)
	if err != nil {
		return fmt.Errorf("claimRepo.CreateWithNextNumber: next sequence: %w", err)
	}

	now := time.Now().UTC()
	c.ClaimNumber = claimfields.FormatClaimNumber(year, seq)
	c.CreatedAt = now
	c.UpdatedAt = now

	query := `INSERT INTO claims (
		id, organization_id, claim_number, carrier_claim_number, date_of_loss, status,
		primary_peril, secondary_perils, peril_confidence,
		insured_name, property_address, property_city, property_state, property_zip,
		policy_number, coverage_a, coverage_b, coverage_c, coverage_d,
		deductible_all_perils, deductible_wind_hail, wind_hail_percent,
		loss_context, source_document_id, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6,
		$7, $8, $9,
		$10, $11, $12, $13, $14,
		$15, $16, $17, $18, $19,
		$20, $21, $22,
		$23, $24, $25, $26
	)`

	_, err = tx.ExecContext(ctx, query,
		c.ID, c.OrganizationID, c.ClaimNumber, c.CarrierClaimNumber, c.DateOfLoss, c.Status,
		c.PrimaryPeril, c.SecondaryPerils, c.PerilConfidence,
		c.InsuredName, c.PropertyAddress, c.PropertyCity, c.PropertyState, c.PropertyZip,
		c.PolicyNumber, c.CoverageA, c.CoverageB, c.CoverageC, c.CoverageD,
		c.DeductibleAllPerils, c.DeductibleWindHail, c.WindHailPercent,
		c.LossContext, c.SourceDocumentID, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		c.ClaimNumber = ""
		if strings.Contains(err.Error(), "duplicate key") && strings.Contains(err.Error(), "source_document_id") {
			return domain.ErrClaimAlreadyExists
		}
		return fmt.Errorf("claimRepo.CreateWithNextNumber: %w", err)
	}
	if err := tx.Commit(); err != nil {
		c.ClaimNumber = ""
		return fmt.Errorf("claimRepo.CreateWithNextNumber commit: %w", err)
	}
	return nil
}

func (r *claimRepo) GetByID(ctx context.Context, orgID, claimID uuid.UUID) (*domain.Claim, error) {
	var c domain.Claim
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM claims WHERE id = $1 AND organization_id = $2", claimID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, fmt.Errorf("claimRepo.GetByID: %w", err)
	}
	return &c, nil
}

func (r *claimRepo) GetBySourceDocument(ctx context.Context, docID uuid.UUID) (*domain.Claim, error) {
	var c domain.Claim
	err := r.db.GetContext(ctx, &c,
		"SELECT * FROM claims WHERE source_document_id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClaimNotFound
		}
		return nil, fmt.Errorf("claimRepo.GetBySourceDocument: %w", err)
	}
	return &c, nil
}
