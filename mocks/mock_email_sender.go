package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediguard/internal/domain"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendAnalysisReady(ctx context.Context, toEmail, toName, billTitle string, analysis *domain.BillAnalysis) error {
	args := m.Called(ctx, toEmail, toName, billTitle, analysis)
	return args.Error(0)
}
