package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mediguard/internal/domain"
	"mediguard/internal/guest"
	"mediguard/internal/port"
)

// GuestStatus reports a guest's allowance.
type GuestStatus struct {
	Limit     int        `json:"limit"`
	Used      int        `json:"used"`
	Remaining int        `json:"remaining"`
	ResetsAt  *time.Time `json:"resets_at,omitempty"`
}

// GuestService meters analyses of unauthenticated users.
type GuestService interface {
	// Check fails with domain.ErrGuestLimitReached when the guest has no
	// analyses left. It records nothing.
	Check(ctx context.Context, guestID string) (*GuestStatus, error)
	// Consume records one completed analysis.
	Consume(ctx context.Context, guestID string) (*GuestStatus, error)
	Status(ctx context.Context, guestID string) (*GuestStatus, error)
}

type guestService struct {
	repo   port.GuestUsageRepository
	policy guest.Policy
	now    func() time.Time
}

// NewGuestService creates a new GuestService implementation.
func NewGuestService(repo port.GuestUsageRepository, policy guest.Policy) GuestService {
	return &guestService{repo: repo, policy: policy, now: time.Now}
}

// NewGuestServiceWithClock is NewGuestService with an injectable clock (for testing).
func NewGuestServiceWithClock(repo port.GuestUsageRepository, policy guest.Policy, now func() time.Time) GuestService {
	return &guestService{repo: repo, policy: policy, now: now}
}

func (s *guestService) Check(ctx context.Context, guestID string) (*GuestStatus, error) {
	if guestID == "" {
		return nil, domain.NewInputError("Missing guest session.")
	}
	now := s.now().UTC()

	counter, err := s.load(ctx, guestID)
	if err != nil {
		return nil, err
	}
	st := s.status(counter, now)
	if st.Remaining == 0 {
		return st, domain.ErrGuestLimitReached
	}
	return st, nil
}

func (s *guestService) Consume(ctx context.Context, guestID string) (*GuestStatus, error) {
	if guestID == "" {
		return nil, domain.NewInputError("Missing guest session.")
	}
	now := s.now().UTC()

	counter, err := s.load(ctx, guestID)
	if err != nil {
		return nil, err
	}
	next, err := s.policy.Consume(counter, now)
	if err != nil {
		return s.status(next, now), err
	}
	if err := s.repo.Save(ctx, guest.ToUsage(guestID, next, now)); err != nil {
		return nil, fmt.Errorf("guest.Consume: %w", err)
	}
	return s.status(next, now), nil
}

func (s *guestService) Status(ctx context.Context, guestID string) (*GuestStatus, error) {
	now := s.now().UTC()
	if guestID == "" {
		return s.status(guest.Counter{}, now), nil
	}
	counter, err := s.load(ctx, guestID)
	if err != nil {
		return nil, err
	}
	return s.status(counter, now), nil
}

func (s *guestService) load(ctx context.Context, guestID string) (guest.Counter, error) {
	usage, err := s.repo.Get(ctx, guestID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return guest.Counter{}, nil
		}
		return guest.Counter{}, fmt.Errorf("guest.load: %w", err)
	}
	return guest.FromUsage(usage), nil
}

func (s *guestService) status(c guest.Counter, now time.Time) *GuestStatus {
	cur := s.policy.Current(c, now)
	st := &GuestStatus{
		Limit:     s.policy.Limit,
		Used:      cur.Used,
		Remaining: s.policy.Remaining(c, now),
	}
	if resets := s.policy.ResetsAt(c, now); !resets.IsZero() {
		st.ResetsAt = &resets
	}
	return st
}
