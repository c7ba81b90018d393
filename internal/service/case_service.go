package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/legalvoice/api/internal/client"
	"github.com/legalvoice/api/internal/metrics"
	"github.com/legalvoice/api/internal/model"
	"github.com/legalvoice/api/internal/store"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	MaxAudioSize        = 50 * 1024 * 1024 // 50MB
	MaxDurationSeconds  = 600
	defaultAudioExt     = "wav"
	uploadStepMessage   = "Audio file uploaded successfully"
	acceptedCaseMessage = "Case created successfully and processing started"
)

// ValidationError is an intake rejection. No case exists when it is returned.
type ValidationError struct {
	Message string
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Starter schedules the first pipeline stage for a new case.
type Starter interface {
	Start(ctx context.Context, caseID string) error
}

// AudioUpload is the recorded or uploaded file attached to an intake request.
type AudioUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// CaseService accepts new cases and serves case reads
type CaseService struct {
	store    store.Store
	storage  client.StorageClient
	starter  Starter
	validate *validator.Validate
	metrics  *metrics.Metrics
	log      *zap.Logger
	now      func() time.Time
}

// NewCaseService creates a case service
func NewCaseService(s store.Store, storage client.StorageClient, starter Starter, v *validator.Validate, m *metrics.Metrics, log *zap.Logger) *CaseService {
	if v == nil {
		v = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CaseService{
		store:    s,
		storage:  storage,
		starter:  starter,
		validate: v,
		metrics:  m,
		log:      log,
		now:      time.Now,
	}
}

// Intake validates the request, stores the audio, creates the case and starts the pipeline.
func (s *CaseService) Intake(ctx context.Context, req model.CreateCaseRequest, audio AudioUpload) (*model.CreateCaseResponse, error) {
	req.UserName = strings.TrimSpace(req.UserName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Language == "" {
		req.Language = model.LanguageEN
	}
	if err := s.validateIntake(req, audio); err != nil {
		return nil, err
	}

	key := AudioKey(uuid.New().String(), audio.Filename)
	audioURL, err := s.storage.Upload(ctx, key, audio.Body, audio.ContentType)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio: %w", err)
	}

	c := &model.Case{
		UserName:     req.UserName,
		Email:        req.Email,
		Phone:        req.Phone,
		Category:     req.Category,
		Language:     req.Language,
		Method:       req.Method,
		Status:       model.CaseStatusProcessing,
		AudioKey:     key,
		AudioFileURL: audioURL,
		Stage:        model.StageUpload,
	}
	c.AppendStep(model.StageUpload, model.StepStatusCompleted, uploadStepMessage, s.now())

	caseID, err := s.store.Create(ctx, c)
	if err != nil {
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			s.log.Warn("failed to remove orphaned audio", zap.String("key", key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	s.metrics.IncCaseCreated(string(c.Category), string(c.Method))

	log := s.log.With(zap.String("case_id", caseID))
	log.Info("case created", zap.String("category", string(c.Category)), zap.String("method", string(c.Method)))

	if err := s.starter.Start(ctx, caseID); err != nil {
		log.Error("failed to start pipeline", zap.Error(err))
		s.abandon(ctx, caseID)
		return nil, fmt.Errorf("failed to start processing: %w", err)
	}

	return &model.CreateCaseResponse{
		CaseID:  caseID,
		Status:  model.CaseStatusProcessing,
		Message: acceptedCaseMessage,
	}, nil
}

// abandon fails a case whose first stage could not be scheduled.
func (s *CaseService) abandon(ctx context.Context, caseID string) {
	_, err := s.store.Update(context.WithoutCancel(ctx), caseID, func(c *model.Case) error {
		if c.Stage > model.StageUpload || c.Status == model.CaseStatusFailed {
			return nil
		}
		c.Status = model.CaseStatusFailed
		c.FailureReason = "Processing could not be started"
		c.AppendStep(model.StageTranscription, model.StepStatusFailed, c.FailureReason, s.now())
		return nil
	})
	if err != nil {
		s.log.Error("failed to mark case failed", zap.String("case_id", caseID), zap.Error(err))
	}
}

func (s *CaseService) validateIntake(req model.CreateCaseRequest, audio AudioUpload) error {
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			details := make(map[string]interface{}, len(fieldErrs))
			for _, fe := range fieldErrs {
				details[lowerFirst(fe.Field())] = fe.Tag()
			}
			return &ValidationError{Message: "Invalid case data", Details: details}
		}
		return &ValidationError{Message: err.Error()}
	}

	if audio.Body == nil {
		return &ValidationError{Message: "Audio file is required"}
	}
	if audio.Size > MaxAudioSize {
		return &ValidationError{
			Message: "File size exceeds 50MB limit",
			Details: map[string]interface{}{
				"maxSize":  MaxAudioSize,
				"fileSize": audio.Size,
			},
		}
	}
	if !AcceptedAudioType(audio.ContentType) {
		return &ValidationError{
			Message: "Invalid file type. Supported: audio files and MP4 video",
			Details: map[string]interface{}{
				"contentType": audio.ContentType,
			},
		}
	}
	return nil
}

// AcceptedAudioType reports whether a content type can be transcribed.
func AcceptedAudioType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "audio/") && len(ct) > len("audio/") || ct == "video/mp4"
}

// AudioKey builds the object key for an uploaded recording.
func AudioKey(id, filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = defaultAudioExt
	}
	return fmt.Sprintf("audio-uploads/%s.%s", id, ext)
}

// Get returns a single case
func (s *CaseService) Get(ctx context.Context, caseID string) (*model.Case, error) {
	return s.store.Get(ctx, caseID)
}

// List returns the cases matching the filter, newest first, with stats over all cases.
func (s *CaseService) List(ctx context.Context, filter model.CaseFilter) (*model.CaseListResponse, error) {
	cases, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	filtered := lo.Filter(cases, func(c *model.Case, _ int) bool {
		if filter.Status != "" && c.Status != filter.Status {
			return false
		}
		if filter.Category != "" && c.Category != filter.Category {
			return false
		}
		if search == "" {
			return true
		}
		return strings.Contains(strings.ToLower(c.UserName), search) ||
			strings.Contains(strings.ToLower(c.Email), search) ||
			strings.Contains(strings.ToLower(string(c.Category)), search) ||
			strings.HasPrefix(strings.ToLower(c.ID), search)
	})

	return &model.CaseListResponse{
		Cases: filtered,
		Stats: ComputeStats(cases),
	}, nil
}

// Stats summarizes every stored case
func (s *CaseService) Stats(ctx context.Context) (*model.CaseStats, error) {
	cases, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	stats := ComputeStats(cases)
	return &stats, nil
}

// ComputeStats counts cases per status group. The success rate is a rounded percentage.
func ComputeStats(cases []*model.Case) model.CaseStats {
	counts := lo.CountValuesBy(cases, func(c *model.Case) model.CaseStatus {
		return c.Status
	})
	stats := model.CaseStats{
		Total:     len(cases),
		Completed: counts[model.CaseStatusCompleted],
		Processing: counts[model.CaseStatusProcessing] +
			counts[model.CaseStatusTranscribing] +
			counts[model.CaseStatusGenerating],
		Pending: counts[model.CaseStatusPending],
		Failed:  counts[model.CaseStatusFailed],
	}
	if stats.Total > 0 {
		stats.SuccessRate = (stats.Completed*100 + stats.Total/2) / stats.Total
	}
	return stats
}

// Options lists the categories and languages offered at intake
func (s *CaseService) Options() *model.IntakeOptionsResponse {
	return &model.IntakeOptionsResponse{
		Categories: lo.Map(model.ValidCategories, func(c model.Category, _ int) model.IntakeOption {
			return model.IntakeOption{Value: string(c), Label: string(c)}
		}),
		Languages: lo.Map(model.ValidLanguages, func(l model.Language, _ int) model.IntakeOption {
			return model.IntakeOption{Value: string(l), Label: l.Name()}
		}),
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
