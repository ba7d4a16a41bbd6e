package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediguard/internal/domain"
)

// MockGuestUsageRepo is a mock implementation of port.GuestUsageRepository.
type MockGuestUsageRepo struct {
	mock.Mock
}

func (m *MockGuestUsageRepo) Get(ctx context.Context, guestID string) (*domain.GuestUsage, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.GuestUsage), args.Error(1)
}

func (m *MockGuestUsageRepo) Save(ctx context.Context, usage *domain.GuestUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}
