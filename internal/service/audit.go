package service

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

// auditEntry records a pipeline event in the audit log. Failures are logged but never block processing.
func auditEntry(ctx context.Context, repo port.DocumentAuditRepository, orgID, docID uuid.UUID, action domain.AuditAction, changes json.RawMessage) {
	if repo == nil {
		return
	}
	if changes == nil {
		changes = json.RawMessage("{}")
	}
	entry := &domain.DocumentAuditEntry{
		ID:             uuid.New(),
		OrganizationID: orgID,
		DocumentID:     docID,
		Action:         action,
		Changes:        changes,
	}
	if err := repo.Create(ctx, entry); err != nil {
		zap.S().Warnf("service.auditEntry: failed to write audit entry for %s/%s: %v", action, docID, err)
	}
}
