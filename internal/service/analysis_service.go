package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"mediguard/internal/analysis"
	"mediguard/internal/config"
	"mediguard/internal/domain"
	"mediguard/internal/llm"
	"mediguard/internal/logging"
	"mediguard/internal/port"
)

// AnalyzeInput is one analysis request. UserID is uuid.Nil for guests,
// who are identified by GuestID instead.
type AnalyzeInput struct {
	Request analysis.Request
	UserID  uuid.UUID
	GuestID string
}

// AnalyzeOutput is the result of a successful analysis.
type AnalyzeOutput struct {
	Analysis *domain.BillAnalysis
	RecordID *uuid.UUID
	Guest    *GuestStatus
}

// AnalysisService runs bill analyses.
type AnalysisService interface {
	// Configured reports whether a completion provider is available.
	Configured() bool
	Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error)
}

type analysisService struct {
	completion  port.CompletionClient
	guests      GuestService
	historyRepo port.HistoryRepository
	userRepo    port.UserRepository
	profileRepo port.ProfileRepository
	storage     port.ObjectStorage
	emails      port.EmailSender
	s3cfg       *config.S3Config
	now         func() time.Time
}

// NewAnalysisService creates a new AnalysisService implementation.
// completion is nil when no provider credential is configured; storage is
// nil when uploads are not kept; emails may be nil to disable alerts.
func NewAnalysisService(
	completion port.CompletionClient,
	guests GuestService,
	historyRepo port.HistoryRepository,
	userRepo port.UserRepository,
	profileRepo port.ProfileRepository,
	storage port.ObjectStorage,
	emails port.EmailSender,
	s3cfg *config.S3Config,
) AnalysisService {
	return &analysisService{
		completion:  completion,
		guests:      guests,
		historyRepo: historyRepo,
		userRepo:    userRepo,
		profileRepo: profileRepo,
		storage:     storage,
		emails:      emails,
		s3cfg:       s3cfg,
		now:         time.Now,
	}
}

func (s *analysisService) Configured() bool {
	return s.completion != nil
}

func (s *analysisService) Analyze(ctx context.Context, input AnalyzeInput) (*AnalyzeOutput, error) {
	log := logging.FromContext(ctx)

	if !s.Configured() {
		log.Error().Msg("analysis requested but no completion provider is configured")
		return nil, domain.ErrServerConfiguration
	}
	if err := input.Request.Validate(); err != nil {
		return nil, err
	}

	isGuest := input.UserID == uuid.Nil
	if isGuest {
		if _, err := s.guests.Check(ctx, input.GuestID); err != nil {
			return nil, err
		}
	}

	raw, err := s.completion.Complete(ctx, analysis.BuildCompletion(&input.Request))
	if err != nil {
		log.Error().Err(err).Msg("completion request failed")
		return nil, fmt.Errorf("analysis.Analyze: %w", err)
	}

	result, err := analysis.Normalize(raw)
	if err != nil {
		log.Error().Err(err).Str("answer", llm.Truncate(raw, 500)).Msg("model answer rejected")
		return nil, fmt.Errorf("analysis.Analyze: %w", err)
	}
	out := &AnalyzeOutput{Analysis: result}

	if isGuest {
		// Only a delivered analysis counts against the allowance.
		status, err := s.guests.Consume(context.WithoutCancel(ctx), input.GuestID)
		if err != nil {
			log.Warn().Err(err).Str("guest_id", input.GuestID).Msg("recording guest analysis failed")
		}
		out.Guest = status
		return out, nil
	}
	out.RecordID = s.save(ctx, input, result)
	return out, nil
}

// save persists the analysis for a signed-in user. Failures are logged and
// never fail the request.
func (s *analysisService) save(ctx context.Context, input AnalyzeInput, result *domain.BillAnalysis) *uuid.UUID {
	// The analysis is already paid for; keep it even if the caller went away.
	ctx = context.WithoutCancel(ctx)
	log := logging.FromContext(ctx)

	blob, err := json.Marshal(result)
	if err != nil {
		log.Error().Err(err).Msg("encoding analysis for history failed")
		return nil
	}

	now := s.now().UTC()
	title := HistoryTitle(input.Request.InsuranceProvider, now)
	total, savings, issues := result.TotalBilled, result.PotentialSavings, result.IssuesFound
	rec := &domain.HistoryRecord{
		ID:               uuid.New(),
		UserID:           input.UserID,
		BillTitle:        &title,
		TotalBilled:      &total,
		PotentialSavings: &savings,
		IssuesFound:      &issues,
		AIResult:         blob,
	}
	if p := input.Request.InsuranceProvider; p != "" {
		rec.InsuranceProvider = &p
	}
	rec.SourceObjectKey = s.storeUpload(ctx, input, rec.ID)

	if err := s.historyRepo.Create(ctx, rec); err != nil {
		log.Error().Err(err).Str("user_id", input.UserID.String()).Msg("saving analysis to history failed")
		return nil
	}

	s.notify(ctx, input.UserID, title, result)
	return &rec.ID
}

func (s *analysisService) storeUpload(ctx context.Context, input AnalyzeInput, recordID uuid.UUID) *string {
	file := input.Request.File
	if s.storage == nil || !input.Request.HasFile() {
		return nil
	}
	ext := domain.UploadExtensions[file.MIMEType]
	if ext == "" {
		ext = "bin"
	}
	key := fmt.Sprintf("users/%s/bills/%s.%s", input.UserID, recordID, ext)

	_, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(file.Data),
		ContentType: file.MIMEType,
		Size:        int64(len(file.Data)),
	})
	if err != nil {
		logging.FromContext(ctx).Warn().Err(errors.Join(domain.ErrUploadFailed, err)).Str("key", key).Msg("keeping bill upload failed")
		return nil
	}
	return &key
}

func (s *analysisService) notify(ctx context.Context, userID uuid.UUID, title string, result *domain.BillAnalysis) {
	if s.emails == nil {
		return
	}
	log := logging.FromContext(ctx)

	profile, err := s.profileRepo.GetByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			log.Warn().Err(err).Msg("loading profile for alert failed")
		}
		return
	}
	if !profile.EmailAlerts {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		log.Warn().Err(err).Msg("loading user for alert failed")
		return
	}
	if err := s.emails.SendAnalysisReady(ctx, user.Email, DisplayName(profile, user), title, result); err != nil {
		log.Warn().Err(err).Msg("sending analysis alert failed")
	}
}

// HistoryTitle names a saved analysis after the insurer and the date.
func HistoryTitle(provider string, at time.Time) string {
	date := at.Format("Jan 2, 2006")
	if provider != "" {
		return fmt.Sprintf("%s bill - %s", provider, date)
	}
	return "Saved analysis - " + date
}
