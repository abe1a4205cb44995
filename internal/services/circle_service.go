package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/storage"
	"github.com/google/uuid"
)

const (
	// CircleFilesBucket holds portfolio samples.
	CircleFilesBucket = "circle-files"

	// MaxSampleSize caps a portfolio upload.
	MaxSampleSize = 10 << 20
)

// SubmitCircleInput is a booth application.
type SubmitCircleInput struct {
	Name            string `json:"name" validate:"notblank,max=150"`
	PenName         string `json:"pen_name" validate:"max=150"`
	Email           string `json:"email" validate:"required,email"`
	Phone           string `json:"phone" validate:"phone"`
	Genre           string `json:"genre" validate:"max=100"`
	Description     string `json:"description" validate:"notblank,max=2000"`
	BoothPreference string `json:"booth_preference" validate:"max=100"`
}

// ReviewCircleInput is a coordinator decision.
type ReviewCircleInput struct {
	Status models.CircleStatus `json:"status" validate:"required"`
	Notes  string              `json:"notes" validate:"max=2000"`
}

// CircleService handles circle (booth) applications.
type CircleService struct {
	repo       repositories.CircleRepository
	files      storage.Storage
	dispatcher *events.Dispatcher
	logger     *log.Logger
	now        func() time.Time
}

func NewCircleService(repo repositories.CircleRepository, files storage.Storage, dispatcher *events.Dispatcher, logger *log.Logger) *CircleService {
	return &CircleService{
		repo:       repo,
		files:      files,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// Submit stores a new pending application.
func (s *CircleService) Submit(ctx context.Context, input *SubmitCircleInput) (*models.Circle, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	circle := &models.Circle{
		BaseModel:       models.BaseModel{ID: uuid.NewString()},
		Name:            strings.TrimSpace(input.Name),
		PenName:         strings.TrimSpace(input.PenName),
		Email:           strings.ToLower(strings.TrimSpace(input.Email)),
		Phone:           input.Phone,
		Genre:           input.Genre,
		Description:     strings.TrimSpace(input.Description),
		BoothPreference: input.BoothPreference,
		Status:          models.CircleStatusPending,
	}
	circle.Initialize(s.now())

	if err := s.repo.Create(ctx, circle); err != nil {
		return nil, fmt.Errorf("failed to submit circle: %w", err)
	}

	s.logger.Printf("✅ Circle application %s submitted by %s", circle.ID, circle.Email)
	s.dispatch(events.EventCircleSubmitted, circle)
	return circle, nil
}

// Review moves a pending or waitlisted application to its next status.
func (s *CircleService) Review(ctx context.Context, id string, input *ReviewCircleInput) (*models.Circle, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if input.Status == models.CircleStatusPending || !input.Status.Valid() {
		return nil, models.ErrInvalidReview
	}

	circle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("circle %s: %w", id, err)
	}
	if !circle.CanReview() {
		return nil, fmt.Errorf("circle %s is %s: %w", id, circle.Status, models.ErrInvalidStateTransition)
	}

	circle.Status = input.Status
	circle.ReviewNotes = strings.TrimSpace(input.Notes)
	circle.Touch(s.now())

	if err := s.repo.Update(ctx, circle); err != nil {
		return nil, fmt.Errorf("failed to review circle %s: %w", id, err)
	}

	s.logger.Printf("✅ Circle %s reviewed: %s", circle.ID, circle.Status)
	s.dispatch(events.EventCircleReviewed, circle)
	return circle, nil
}

func (s *CircleService) FindByID(ctx context.Context, id string) (*models.Circle, error) {
	circle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("circle %s: %w", id, err)
	}
	return circle, nil
}

// List returns applications, filtered by status when set.
func (s *CircleService) List(ctx context.Context, status models.CircleStatus) ([]*models.Circle, error) {
	if status != "" && !status.Valid() {
		return nil, models.NewValidationError("status: is invalid", map[string][]string{"status": {"is invalid"}})
	}
	return s.repo.List(ctx, status)
}

// UploadSample stores a portfolio sample (an image or a PDF) for a circle
// and records its URL on the application.
func (s *CircleService) UploadSample(ctx context.Context, id, filename string, data []byte) (*models.Circle, error) {
	// 1. Validate file
	if len(data) == 0 {
		return nil, models.NewValidationError("file: is required", map[string][]string{"file": {"is required"}})
	}
	if len(data) > MaxSampleSize {
		return nil, models.NewValidationError("file: must be at most 10MB",
			map[string][]string{"file": {"must be at most 10MB"}})
	}
	mimeType := storage.DetectMimeType(data)
	if !allowedSampleType(mimeType) {
		return nil, models.NewValidationError("file: must be an image or a PDF",
			map[string][]string{"file": {"must be an image or a PDF"}})
	}

	// 2. Load circle
	circle, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("circle %s: %w", id, err)
	}

	// 3. Store file
	object, err := s.files.Put(CircleFilesBucket, circle.ID+"/"+storage.GenerateUniqueName(filename), data)
	if err != nil {
		return nil, fmt.Errorf("failed to store sample for %s: %w", id, err)
	}

	// 4. Replace previous sample
	previous := circle.SampleURL
	circle.SampleURL = object.URL
	circle.Touch(s.now())
	if err := s.repo.Update(ctx, circle); err != nil {
		_ = s.files.Delete(CircleFilesBucket, object.Key)
		return nil, fmt.Errorf("failed to save sample for %s: %w", id, err)
	}

	if previous != "" {
		if key := s.sampleKey(previous); key != "" {
			_ = s.files.Delete(CircleFilesBucket, key)
		}
	}

	s.logger.Printf("✅ Sample uploaded for circle %s (%s, %d bytes)", circle.ID, mimeType, object.Size)
	return circle, nil
}

// sampleKey recovers the object key from a stored sample URL.
func (s *CircleService) sampleKey(url string) string {
	prefix := s.files.URL(CircleFilesBucket, "x")
	prefix = strings.TrimSuffix(prefix, "x")
	if !strings.HasPrefix(url, prefix) {
		return ""
	}
	return strings.TrimPrefix(url, prefix)
}

func allowedSampleType(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "application/pdf")
}

func (s *CircleService) dispatch(name string, circle *models.Circle) {
	if s.dispatcher == nil {
		return
	}
	c := *circle
	if err := s.dispatcher.Dispatch(events.NewBaseEvent(name, &c)); err != nil {
		s.logger.Printf("⚠️  Listener failed for %s: %v", name, err)
	}
}
