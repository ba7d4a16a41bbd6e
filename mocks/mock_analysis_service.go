package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediguard/internal/service"
)

// MockAnalysisService is a mock implementation of service.AnalysisService.
type MockAnalysisService struct {
	mock.Mock
}

func (m *MockAnalysisService) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *MockAnalysisService) Analyze(ctx context.Context, input service.AnalyzeInput) (*service.AnalyzeOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AnalyzeOutput), args.Error(1)
}
