package port

import (
	"context"

	"github.com/google/uuid"

	"mediguard/internal/domain"
)

// UserRepository defines the contract for account persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// ProfileRepository defines the contract for profile persistence.
type ProfileRepository interface {
	Upsert(ctx context.Context, profile *domain.Profile) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
}

// HistoryRepository defines the contract for saved analyses.
// Every query is scoped by the owning user.
type HistoryRepository interface {
	Create(ctx context.Context, record *domain.HistoryRecord) error
	GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.HistoryRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.HistoryRecord, int, error)
	ListAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.HistoryRecord, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
}

// GuestUsageRepository persists guest counters with plain point reads and writes.
type GuestUsageRepository interface {
	Get(ctx context.Context, guestID string) (*domain.GuestUsage, error)
	Save(ctx context.Context, usage *domain.GuestUsage) error
}
