package port

import (
	"context"

	"mediguard/internal/domain"
)

// EmailSender defines the contract for sending emails.
type EmailSender interface {
	SendAnalysisReady(ctx context.Context, toEmail, toName, billTitle string, analysis *domain.BillAnalysis) error
}
