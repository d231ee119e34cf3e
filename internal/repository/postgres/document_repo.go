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

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) GetByOrganization(ctx context.Context, orgID, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1 AND organization_id = $2", docID, orgID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByOrganization: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByStatus(ctx context.Context, statuses ...domain.ProcessingStatus) ([]domain.Document, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = string(s)
	}

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE processing_status = ANY($1)
		 ORDER BY created_at ASC, id ASC`,
		values)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListByStatus: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) ListUnlinkedSiblings(ctx context.Context, orgID uuid.UUID, from, to time.Time, classes []domain.DocumentClass) ([]domain.Document, error) {
	values := make([]string, len(classes))
	for i, c := range classes {
		values[i] = string(c)
	}

	var docs []domain.Document
	err := r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents
		 WHERE organization_id = $1 AND claim_id IS NULL
		   AND created_at BETWEEN $2 AND $3
		   AND document_class = ANY($4)
		 ORDER BY created_at ASC, id ASC`,
		orgID, from, to, values)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ListUnlinkedSiblings: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) MarkProcessing(ctx context.Context, docID uuid.UUID) error {
	return r.exec(ctx, "documentRepo.MarkProcessing",
		`UPDATE documents SET processing_status = $1, processing_error = '',
		 processing_attempts = processing_attempts + 1, updated_at = $2
		 WHERE id = $3`,
		domain.ProcessingStatusProcessing, time.Now().UTC(), docID)
}

func (r *documentRepo) UpdateClass(ctx context.Context, docID uuid.UUID, class domain.DocumentClass) error {
	return r.exec(ctx, "documentRepo.UpdateClass",
		`UPDATE documents SET document_class = $1, updated_at = $2 WHERE id = $3`,
		class, time.Now().UTC(), docID)
}

func (r *documentRepo) SaveExtraction(ctx context.Context, doc *domain.Document) error {
	now := time.Now().UTC()
	doc.ProcessingStatus = domain.ProcessingStatusCompleted
	doc.ProcessingError = ""
	doc.ProcessedAt = &now
	doc.UpdatedAt = now

	return r.exec(ctx, "documentRepo.SaveExtraction",
		`UPDATE documents SET
			document_class = $1, extracted_data = $2, raw_text = $3, page_count = $4,
			model_used = $5, processing_status = $6, processing_error = '',
			processed_at = $7, updated_at = $8
		 WHERE id = $9`,
		doc.DocumentClass, nullableJSON(doc.ExtractedData), doc.RawText, doc.PageCount,
		doc.ModelUsed, doc.ProcessingStatus, doc.ProcessedAt, doc.UpdatedAt, doc.ID)
}

func (r *documentRepo) MarkFailed(ctx context.Context, docID uuid.UUID, errMsg string) error {
	return r.exec(ctx, "documentRepo.MarkFailed",
		`UPDATE documents SET processing_status = $1, processing_error = $2, updated_at = $3
		 WHERE id = $4`,
		domain.ProcessingStatusFailed, errMsg, time.Now().UTC(), docID)
}

func (r *documentRepo) LinkClaim(ctx context.Context, docID, claimID uuid.UUID) error {
	return r.exec(ctx, "documentRepo.LinkClaim",
		`UPDATE documents SET claim_id = $1, updated_at = $2
		 WHERE id = $3 AND (claim_id IS NULL OR claim_id = $1)`,
		claimID, time.Now().UTC(), docID)
}

func (r *documentRepo) exec(ctx context.Context, op, query string, args ...interface{}) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows affected: %w", op, err)
	}
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

// nullableJSON stores an empty payload as SQL NULL rather than invalid JSONB.
func nullableJSON(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
