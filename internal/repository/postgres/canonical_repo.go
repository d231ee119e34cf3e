package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type canonicalRepo struct {
	db *sqlx.DB
}

// NewCanonicalRepo creates a new PostgreSQL-backed CanonicalRepository.
func NewCanonicalRepo(db *sqlx.DB) port.CanonicalRepository {
	return &canonicalRepo{db: db}
}

func (r *canonicalRepo) UpsertPolicyForm(ctx context.Context, rec *domain.PolicyFormRecord) error {
	return r.inTx(ctx, "canonicalRepo.UpsertPolicyForm", func(tx *sqlx.Tx) error {
		claimID, err := linkedClaim(ctx, tx, rec.ClaimID, rec.DocumentID)
		if err != nil {
			return err
		}
		rec.ClaimID = claimID
		if err := supersede(ctx, tx, "policy_form_extractions", rec.ClaimID, rec.FormCode, rec.DocumentID); err != nil {
			return err
		}

		now := time.Now().UTC()
		rec.IsCanonical = true
		if rec.ID == uuid.Nil {
			rec.ID = uuid.New()
		}
		return tx.QueryRowxContext(ctx,
			`INSERT INTO policy_form_extractions (
				id, document_id, organization_id, claim_id, form_code, extraction,
				raw_text, page_count, is_canonical, extraction_status, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE, $9, $10, $10)
			ON CONFLICT (document_id) DO UPDATE SET
				organization_id = EXCLUDED.organization_id,
				claim_id = EXCLUDED.claim_id,
				form_code = EXCLUDED.form_code,
				extraction = EXCLUDED.extraction,
				raw_text = EXCLUDED.raw_text,
				page_count = EXCLUDED.page_count,
				is_canonical = TRUE,
				extraction_status = EXCLUDED.extraction_status,
				updated_at = EXCLUDED.updated_at
			RETURNING id, created_at, updated_at`,
			rec.ID, rec.DocumentID, rec.OrganizationID, rec.ClaimID, rec.FormCode, rec.Extraction,
			rec.RawText, rec.PageCount, rec.ExtractionStatus, now,
		).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
	})
}

func (r *canonicalRepo) UpsertEndorsements(ctx context.Context, recs []domain.EndorsementRecord) error {
	if len(recs) == 0 {
		return nil
	}
	return r.inTx(ctx, "canonicalRepo.UpsertEndorsements", func(tx *sqlx.Tx) error {
		now := time.Now().UTC()
		linked := map[uuid.UUID]*uuid.UUID{}
		for i := range recs {
			rec := &recs[i]
			if rec.ClaimID == nil {
				claimID, ok := linked[rec.DocumentID]
				if !ok {
					var err error
					if claimID, err = linkedClaim(ctx, tx, nil, rec.DocumentID); err != nil {
						return err
					}
					linked[rec.DocumentID] = claimID
				}
				rec.ClaimID = claimID
			}
			if err := supersede(ctx, tx, "endorsement_extractions", rec.ClaimID, rec.FormCode, rec.DocumentID); err != nil {
				return err
			}

			rec.IsCanonical = true
			if rec.ID == uuid.Nil {
				rec.ID = uuid.New()
			}
			err := tx.QueryRowxContext(ctx,
				`INSERT INTO endorsement_extractions (
					id, document_id, organization_id, claim_id, form_code, endorsement_type,
					precedence_priority, extraction, raw_text, page_count, is_canonical,
					extraction_status, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, TRUE, $11, $12, $12)
				ON CONFLICT (document_id, form_code) DO UPDATE SET
					organization_id = EXCLUDED.organization_id,
					claim_id = EXCLUDED.claim_id,
					endorsement_type = EXCLUDED.endorsement_type,
					precedence_priority = EXCLUDED.precedence_priority,
					extraction = EXCLUDED.extraction,
					raw_text = EXCLUDED.raw_text,
					page_count = EXCLUDED.page_count,
					is_canonical = TRUE,
					extraction_status = EXCLUDED.extraction_status,
					updated_at = EXCLUDED.updated_at
				RETURNING id, created_at, updated_at`,
				rec.ID, rec.DocumentID, rec.OrganizationID, rec.ClaimID, rec.FormCode, rec.EndorsementType,
				rec.PrecedencePriority, rec.Extraction, rec.RawText, rec.PageCount,
				rec.ExtractionStatus, now,
			).Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
			if err != nil {
				return fmt.Errorf("form %s: %w", rec.FormCode, err)
			}
		}
		return nil
	})
}

func (r *canonicalRepo) GetPolicyFormByDocument(ctx context.Context, docID uuid.UUID) (*domain.PolicyFormRecord, error) {
	var rec domain.PolicyFormRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM policy_form_extractions WHERE document_id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrExtractionNotFound
		}
		return nil, fmt.Errorf("canonicalRepo.GetPolicyFormByDocument: %w", err)
	}
	return &rec, nil
}

func (r *canonicalRepo) ListEndorsementsByDocument(ctx context.Context, docID uuid.UUID) ([]domain.EndorsementRecord, error) {
	var recs []domain.EndorsementRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM endorsement_extractions WHERE document_id = $1
		 ORDER BY form_code ASC`, docID)
	if err != nil {
		return nil, fmt.Errorf("canonicalRepo.ListEndorsementsByDocument: %w", err)
	}
	return recs, nil
}

func (r *canonicalRepo) ListCanonicalPolicyForms(ctx context.Context, claimID uuid.UUID) ([]domain.PolicyFormRecord, error) {
	var recs []domain.PolicyFormRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM policy_form_extractions
		 WHERE claim_id = $1 AND is_canonical AND extraction_status = $2
		 ORDER BY created_at ASC, id ASC`,
		claimID, domain.ExtractionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("canonicalRepo.ListCanonicalPolicyForms: %w", err)
	}
	return recs, nil
}

func (r *canonicalRepo) ListCanonicalEndorsements(ctx context.Context, claimID uuid.UUID) ([]domain.EndorsementRecord, error) {
	var recs []domain.EndorsementRecord
	err := r.db.SelectContext(ctx, &recs,
		`SELECT * FROM endorsement_extractions
		 WHERE claim_id = $1 AND is_canonical AND extraction_status = $2
		 ORDER BY precedence_priority ASC, created_at DESC`,
		claimID, domain.ExtractionStatusCompleted)
	if err != nil {
		return nil, fmt.Errorf("canonicalRepo.ListCanonicalEndorsements: %w", err)
	}
	return recs, nil
}

func (r *canonicalRepo) inTx(ctx context.Context, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s begin: %w", op, err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s commit: %w", op, err)
	}
	return nil
}

// linkedClaim returns the claim a record is stored under: its own claim id,
// or the source document's link when the document was linked after the
// extraction was queued. The document row is share-locked so a concurrent
// link waits for this transaction.
func linkedClaim(ctx context.Context, tx *sqlx.Tx, claimID *uuid.UUID, docID uuid.UUID) (*uuid.UUID, error) {
	if claimID != nil {
		return claimID, nil
	}
	var linked uuid.NullUUID
	err := tx.QueryRowxContext(ctx,
		"SELECT claim_id FROM documents WHERE id = $1 FOR SHARE", docID).Scan(&linked)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading claim link for %s: %w", docID, err)
	}
	if !linked.Valid {
		return nil, nil
	}
	return &linked.UUID, nil
}

// supersede clears the canonical flag on rows for the same claim and form
// code that belong to other documents. Unlinked rows and rows without a form
// code are never superseded.
func supersede(ctx context.Context, tx *sqlx.Tx, table string, claimID *uuid.UUID, formCode string, docID uuid.UUID) error {
	if claimID == nil || formCode == "" {
		return nil
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET is_canonical = FALSE, updated_at = $1
		 WHERE claim_id = $2 AND form_code = $3 AND document_id <> $4 AND is_canonical`,
		time.Now().UTC(), *claimID, formCode, docID)
	if err != nil {
		return fmt.Errorf("superseding %s: %w", formCode, err)
	}
	return nil
}
