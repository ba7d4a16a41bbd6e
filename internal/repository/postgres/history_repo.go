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

type historyRepo struct {
	db *sqlx.DB
}

// NewHistoryRepo creates a new PostgreSQL-backed HistoryRepository.
func NewHistoryRepo(db *sqlx.DB) port.HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, rec *domain.HistoryRecord) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now().UTC()

	query := `INSERT INTO analyses (id, user_id, bill_title, insurance_provider, total_billed,
		potential_savings, issues_found, ai_result, source_object_key, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.BillTitle, rec.InsuranceProvider, rec.TotalBilled,
		rec.PotentialSavings, rec.IssuesFound, []byte(rec.AIResult), rec.SourceObjectKey, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("historyRepo.Create: %w", err)
	}
	return nil
}

func (r *historyRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	err := r.db.GetContext(ctx, &rec,
		"SELECT * FROM analyses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("historyRepo.GetByID: %w", err)
	}
	return &rec, nil
}

func (r *historyRepo) ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.HistoryRecord, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM analyses WHERE user_id = $1", userID)
	if err != nil {
		return nil, 0, fmt.Errorf("historyRepo.ListByUser count: %w", err)
	}

	var recs []domain.HistoryRecord
	err = r.db.SelectContext(ctx, &recs,
		"SELECT * FROM analyses WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3",
		userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("historyRepo.ListByUser: %w", err)
	}
	return recs, total, nil
}

func (r *historyRepo) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]domain.HistoryRecord, error) {
	var recs []domain.HistoryRecord
	err := r.db.SelectContext(ctx, &recs,
		"SELECT * FROM analyses WHERE user_id = $1 ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("historyRepo.ListAllByUser: %w", err)
	}
	return recs, nil
}

func (r *historyRepo) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM analyses WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("historyRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}
