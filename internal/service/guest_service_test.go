package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"mediguard/internal/domain"
	"mediguard/internal/guest"
	"mediguard/internal/service"
	"mediguard/mocks"
)

var guestNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return guestNow }

func TestGuestService_Consume_FirstUse(t *testing.T) {
	repo := new(mocks.MockGuestUsageRepo)
	svc := service.NewGuestServiceWithClock(repo, guest.DefaultPolicy(), fixedClock)

	repo.On("Get", mock.Anything, "g1").Return(nil, domain.ErrNotFound)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u *domain.GuestUsage) bool {
		return u.GuestID == "g1" && u.AnalysesUsed == 1 && u.WindowStart.Equal(guestNow)
	})).Return(nil)

	st, err := svc.Consume(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Limit)
	assert.Equal(t, 1, st.Used)
	assert.Equal(t, 2, st.Remaining)
	require.NotNil(t, st.ResetsAt)
	assert.Equal(t, guestNow.Add(24*time.Hour), *st.ResetsAt)
	repo.AssertExpectations(t)
}

func TestGuestService_Consume_LimitReached(t *testing.T) {
	repo := new(mocks.MockGuestUsageRepo)
	svc := service.NewGuestServiceWithClock(repo, guest.DefaultPolicy(), fixedClock)

	repo.On("Get", mock.Anything, "g1").Return(&domain.GuestUsage{
		GuestID: "g1", WindowStart: guestNow.Add(-time.Hour), AnalysesUsed: 3,
	}, nil)

	st, err := svc.Consume(context.Background(), "g1")
	assert.ErrorIs(t, err, domain.ErrGuestLimitReached)
	require.NotNil(t, st)
	assert.Equal(t, 0, st.Remaining)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestGuestService_Consume_WindowExpired(t *testing.T) {
	repo := new(mocks.MockGuestUsageRepo)
	svc := service.NewGuestServiceWithClock(repo, guest.DefaultPolicy(), fixedClock)

	repo.On("Get", mock.Anything, "g1").Return(&domain.GuestUsage{
		GuestID: "g1", WindowStart: guestNow.Add(-25 * time.Hour), AnalysesUsed: 3,
	}, nil)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u *domain.GuestUsage) bool {
		return u.AnalysesUsed == 1 && u.WindowStart.Equal(guestNow)
	})).Return(nil)

	st, err := svc.Consume(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Remaining)
}

func TestGuestService_Consume_Errors(t *testing.T) {
	repo := new(mocks.MockGuestUsageRepo)
	svc := service.NewGuestServiceWithClock(repo, guest.DefaultPolicy(), fixedClock)

	_, err := svc.Consume(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	repo.On("Get", mock.Anything, "g2").Return(nil, errors.New("db down"))
	_, err = svc.Consume(context.Background(), "g2")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrGuestLimitReached)
}

func TestGuestService_Status(t *testing.T) {
	repo := new(mocks.MockGuestUsageRepo)
	svc := service.NewGuestServiceWithClock(repo, guest.DefaultPolicy(), fixedClock)

	st, err := svc.Status(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Remaining)
	assert.Nil(t, st.ResetsAt)

	repo.On("Get", mock.Anything, "g1").Return(&domain.GuestUsage{
		GuestID: "g1", WindowStart: guestNow.Add(-time.Hour), AnalysesUsed: 2,
	}, nil)
	st, err = svc.Status(context.Background(), "g1")
	require.NoError(t, err)
	assert.Equal(t, 2, st.Used)
	assert.Equal(t, 1, st.Remaining)
}

func TestGuestService_Check(t *testing.T) {
	repo := new(mocks.MockGuestUsageRepo)
	svc := service.NewGuestServiceWithClock(repo, guest.DefaultPolicy(), fixedClock)

	_, err := svc.Check(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	repo.On("Get", mock.Anything, "fresh").Return(nil, domain.ErrNotFound)
	st, err := svc.Check(context.Background(), "fresh")
	require.NoError(t, err)
	assert.Equal(t, 3, st.Remaining)

	repo.On("Get", mock.Anything, "full").Return(&domain.GuestUsage{
		GuestID: "full", WindowStart: guestNow.Add(-time.Hour), AnalysesUsed: 3,
	}, nil)
	st, err = svc.Check(context.Background(), "full")
	assert.ErrorIs(t, err, domain.ErrGuestLimitReached)
	require.NotNil(t, st)
	assert.Equal(t, 0, st.Remaining)

	repo.On("Get", mock.Anything, "expired").Return(&domain.GuestUsage{
		GuestID: "expired", WindowStart: guestNow.Add(-25 * time.Hour), AnalysesUsed: 3,
	}, nil)
	_, err = svc.Check(context.Background(), "expired")
	assert.NoError(t, err)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
