package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"mediguard/internal/domain"
	"mediguard/internal/port"
)

type guestUsageRepo struct {
	db *sqlx.DB
}

// NewGuestUsageRepo creates a new PostgreSQL-backed GuestUsageRepository.
func NewGuestUsageRepo(db *sqlx.DB) port.GuestUsageRepository {
	return &guestUsageRepo{db: db}
}

func (r *guestUsageRepo) Get(ctx context.Context, guestID string) (*domain.GuestUsage, error) {
	var usage domain.GuestUsage
	err := r.db.GetContext(ctx, &usage,
		"SELECT * FROM guest_usage WHERE guest_id = $1", guestID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("guestUsageRepo.Get: %w", err)
	}
	return &usage, nil
}

// Save writes the counter as is; the caller owns the window arithmetic.
func (r *guestUsageRepo) Save(ctx context.Context, usage *domain.GuestUsage) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO guest_usage (guest_id, window_start, analyses_used, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (guest_id) DO UPDATE SET
			window_start = EXCLUDED.window_start,
			analyses_used = EXCLUDED.analyses_used,
			updated_at = EXCLUDED.updated_at`,
		usage.GuestID, usage.WindowStart, usage.AnalysesUsed, usage.UpdatedAt)
	if err != nil {
		return fmt.Errorf("guestUsageRepo.Save: %w", err)
	}
	return nil
}
