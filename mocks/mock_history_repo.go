package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mediguard/internal/domain"
)

// MockHistoryRepo is a mock implementation of port.HistoryRepository.
type MockHistoryRepo struct {
	mock.Mock
}

func (m *MockHistoryRepo) Create(ctx context.Context, record *domain.HistoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.HistoryRecord, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryRecord), args.Error(1)
}

func (m *MockHistoryRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.HistoryRecord, int, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.HistoryRecord), args.Int(1), args.Error(2)
}

func (m *MockHistoryRepo) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.HistoryRecord, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryRecord), args.Error(1)
}

func (m *MockHistoryRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}
