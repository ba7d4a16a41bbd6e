package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"mediguard/internal/config"
	"mediguard/internal/domain"
	"mediguard/internal/export"
	"mediguard/internal/logging"
	"mediguard/internal/port"
)

// HistoryDetail is a saved analysis with its decoded result.
type HistoryDetail struct {
	Record    *domain.HistoryRecord `json:"record"`
	Analysis  *domain.BillAnalysis  `json:"analysis"`
	SourceURL string                `json:"source_url,omitempty"`
}

// HistoryService defines the saved-analysis contract.
type HistoryService interface {
	List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.HistoryRecord, int, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*HistoryDetail, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	Export(ctx context.Context, userID uuid.UUID, format domain.ExportFormat, w io.Writer) error
}

type historyService struct {
	repo    port.HistoryRepository
	storage port.ObjectStorage
	s3cfg   *config.S3Config
}

// NewHistoryService creates a new HistoryService implementation.
// storage may be nil when uploads are not kept.
func NewHistoryService(repo port.HistoryRepository, storage port.ObjectStorage, s3cfg *config.S3Config) HistoryService {
	return &historyService{repo: repo, storage: storage, s3cfg: s3cfg}
}

func (s *historyService) List(ctx context.Context, userID uuid.UUID, offset, limit int) ([]domain.HistoryRecord, int, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

func (s *historyService) Get(ctx context.Context, userID, id uuid.UUID) (*HistoryDetail, error) {
	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	detail := &HistoryDetail{Record: rec, Analysis: rec.Analysis()}

	if rec.SourceObjectKey != nil && s.storage != nil {
		url, err := s.storage.GetPresignedURL(ctx, s.s3cfg.Bucket, *rec.SourceObjectKey, s.s3cfg.PresignExpiry)
		if err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("record_id", id.String()).Msg("presigning bill upload failed")
		} else {
			detail.SourceURL = url
		}
	}
	return detail, nil
}

func (s *historyService) Delete(ctx context.Context, userID, id uuid.UUID) error {
	rec, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		return err
	}
	if rec.SourceObjectKey != nil && s.storage != nil {
		if err := s.storage.Delete(ctx, s.s3cfg.Bucket, *rec.SourceObjectKey); err != nil {
			logging.FromContext(ctx).Warn().Err(err).Str("key", *rec.SourceObjectKey).Msg("deleting bill upload failed")
		}
	}
	return nil
}

func (s *historyService) Export(ctx context.Context, userID uuid.UUID, format domain.ExportFormat, w io.Writer) error {
	if format != domain.ExportCSV && format != domain.ExportXLSX {
		return domain.ErrUnsupportedExport
	}
	recs, err := s.repo.ListAllByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("history.Export: %w", err)
	}
	if format == domain.ExportXLSX {
		return export.WriteXLSX(w, recs)
	}
	return export.WriteCSV(w, recs)
}
