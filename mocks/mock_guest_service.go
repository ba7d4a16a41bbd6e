package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"mediguard/internal/service"
)

// MockGuestService is a mock implementation of service.GuestService.
type MockGuestService struct {
	mock.Mock
}

func (m *MockGuestService) Check(ctx context.Context, guestID string) (*service.GuestStatus, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GuestStatus), args.Error(1)
}

func (m *MockGuestService) Consume(ctx context.Context, guestID string) (*service.GuestStatus, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GuestStatus), args.Error(1)
}

func (m *MockGuestService) Status(ctx context.Context, guestID string) (*service.GuestStatus, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.GuestStatus), args.Error(1)
}
