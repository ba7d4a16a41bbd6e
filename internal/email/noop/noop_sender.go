package noop

import (
	"context"
	"fmt"

	"mediguard/internal/domain"
	"mediguard/internal/email"
	"mediguard/internal/logging"
	"mediguard/internal/port"
)

type noopSender struct {
	frontendURL string
}

// NewNoopSender creates a no-op EmailSender that logs what would have been sent.
func NewNoopSender(frontendURL string) port.EmailSender {
	return &noopSender{frontendURL: frontendURL}
}

func (s *noopSender) SendAnalysisReady(ctx context.Context, toEmail, toName, billTitle string, analysis *domain.BillAnalysis) error {
	msg := email.AnalysisReady(toName, billTitle, fmt.Sprintf("%s/history", s.frontendURL), analysis)
	logging.FromContext(ctx).Info().
		Str("to", toEmail).
		Str("subject", msg.Subject).
		Int("issues_found", analysis.IssuesFound).
		Msg("[NOOP EMAIL] analysis ready")
	return nil
}
