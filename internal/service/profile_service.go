package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"mediguard/internal/domain"
	"mediguard/internal/port"
)

// ProfileView is the profile as shown to its owner.
type ProfileView struct {
	Profile     *domain.Profile `json:"profile"`
	Email       string          `json:"email"`
	DisplayName string          `json:"display_name"`
}

// UpdateProfileInput is the DTO for profile updates. Nil fields are left unchanged.
type UpdateProfileInput struct {
	FullName    *string `json:"full_name"`
	EmailAlerts *bool   `json:"email_alerts"`
}

// ProfileService defines the profile contract.
type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
	Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileView, error)
}

type profileService struct {
	userRepo    port.UserRepository
	profileRepo port.ProfileRepository
}

// NewProfileService creates a new ProfileService implementation.
func NewProfileService(userRepo port.UserRepository, profileRepo port.ProfileRepository) ProfileService {
	return &profileService{userRepo: userRepo, profileRepo: profileRepo}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{Profile: profile, Email: user.Email, DisplayName: DisplayName(profile, user)}, nil
}

func (s *profileService) Update(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*ProfileView, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	profile, err := s.loadProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			profile.FullName = nil
		} else {
			profile.FullName = &name
		}
	}
	if input.EmailAlerts != nil {
		profile.EmailAlerts = *input.EmailAlerts
	}
	if err := s.profileRepo.Upsert(ctx, profile); err != nil {
		return nil, fmt.Errorf("profile.Update: %w", err)
	}
	return &ProfileView{Profile: profile, Email: user.Email, DisplayName: DisplayName(profile, user)}, nil
}

// loadProfile returns the stored profile or an empty one for accounts without a row yet.
func (s *profileService) loadProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return &domain.Profile{ID: userID}, nil
		}
		return nil, fmt.Errorf("profile.load: %w", err)
	}
	return profile, nil
}

// DisplayName picks the name shown for a user: the profile name, then the
// account's first and last name, then the email local part, then "Guest".
func DisplayName(profile *domain.Profile, user *domain.User) string {
	if profile != nil && profile.FullName != nil {
		if name := strings.TrimSpace(*profile.FullName); name != "" {
			return name
		}
	}
	if user == nil {
		return "Guest"
	}
	if name := strings.TrimSpace(user.FirstName + " " + user.LastName); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(user.Email, "@"); ok && local != "" {
		return local
	}
	if user.Email != "" {
		return user.Email
	}
	return "Guest"
}
