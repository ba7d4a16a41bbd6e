package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mediguard/internal/domain"
	"mediguard/internal/service"
)

// MockHistoryService is a mock implementation of service.HistoryService.
type MockHistoryService struct {
	mock.Mock
}

func (m *MockHistoryService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.HistoryRecord, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HistoryRecord), args.Int(1), args.Error(2)
}

func (m *MockHistoryService) Get(ctx context.Context, userID, id uuid.UUID) (*service.HistoryDetail, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.HistoryDetail), args.Error(1)
}

func (m *MockHistoryService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

// Export writes whatever bytes the expectation supplies as its first return value.
func (m *MockHistoryService) Export(ctx context.Context, userID uuid.UUID, format domain.ExportFormat, w io.Writer) error {
	args := m.Called(ctx, userID, format, w)
	if b, ok := args.Get(0).([]byte); ok {
		_, _ = w.Write(b)
	}
	return args.Error(1)
}
