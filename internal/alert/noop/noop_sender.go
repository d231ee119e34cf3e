package noop

import (
	"context"

	"go.uber.org/zap"

	"claimdesk/internal/domain"
	"claimdesk/internal/port"
)

type noopSender struct{}

// NewNoopSender creates an AlertSender that only logs failures.
func NewNoopSender() port.AlertSender {
	return &noopSender{}
}

func (s *noopSender) SendDocumentFailure(_ context.Context, doc *domain.Document, reason string) error {
	zap.S().Warnf("[NOOP ALERT] document %s (%s) failed after %d attempt(s): %s",
		doc.ID, doc.FileName, doc.ProcessingAttempts, reason)
	return nil
}
