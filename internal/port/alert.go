package port

import (
	"context"

	"claimdesk/internal/domain"
)

// AlertSender notifies operators about documents that need attention.
type AlertSender interface {
	SendDocumentFailure(ctx context.Context, doc *domain.Document, reason string) error
}
