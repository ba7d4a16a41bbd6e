package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"mediguard/internal/service"
)

// MockProfileService is a mock implementation of service.ProfileService.
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) Get(ctx context.Context, userID uuid.UUID) (*service.ProfileView, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProfileView), args.Error(1)
}

func (m *MockProfileService) Update(ctx context.Context, userID uuid.UUID, input service.UpdateProfileInput) (*service.ProfileView, error) {
	args := m.Called(ctx, userID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProfileView), args.Error(1)
}
