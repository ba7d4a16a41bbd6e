package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"mediguard/internal/domain"
	"mediguard/internal/port"
)

type profileRepo struct {
	db *sqlx.DB
}

// NewProfileRepo creates a new PostgreSQL-backed ProfileRepository.
func NewProfileRepo(db *sqlx.DB) port.ProfileRepository {
	return &profileRepo{db: db}
}

// Upsert inserts the profile or overwrites the editable columns of an existing one.
func (r *profileRepo) Upsert(ctx context.Context, profile *domain.Profile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now

	query := `INSERT INTO profiles (id, full_name, email_alerts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email_alerts = EXCLUDED.email_alerts,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at`

	err := r.db.QueryRowxContext(ctx, query,
		profile.ID, profile.FullName, profile.EmailAlerts, profile.CreatedAt, profile.UpdatedAt).
		Scan(&profile.CreatedAt)
	if err != nil {
		return fmt.Errorf("profileRepo.Upsert: %w", err)
	}
	return nil
}

func (r *profileRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.GetContext(ctx, &profile, "SELECT * FROM profiles WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("profileRepo.GetByID: %w", err)
	}
	return &profile, nil
}
