package services

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/doujindesk/doujindesk-api/internal/models"
	"github.com/doujindesk/doujindesk-api/internal/repositories"
	"github.com/doujindesk/doujindesk-api/pkg/events"
	"github.com/doujindesk/doujindesk-api/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newCircleService(t *testing.T) (*CircleService, *storage.LocalStorage, *events.Dispatcher) {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir(), "/files", discardLogger())
	require.NoError(t, err)

	dispatcher := events.NewDispatcher(discardLogger())
	t.Cleanup(dispatcher.Shutdown)

	s := NewCircleService(repositories.NewMemoryCircleRepository(repositories.NopPersister{}, discardLogger()), files, dispatcher, discardLogger())
	s.now = fixedClock(testNow)
	return s, files, dispatcher
}

func submitHanabi(t *testing.T, s *CircleService) *models.Circle {
	t.Helper()
	circle, err := s.Submit(context.Background(), &SubmitCircleInput{
		Name:        "Studio Hanabi",
		PenName:     "Hanabi",
		Email:       "hello@hanabi.example",
		Phone:       "+62 811 222 3333",
		Genre:       "Original",
		Description: "Illustration books and acrylic stands",
	})
	require.NoError(t, err)
	return circle
}

func TestCircle_SubmitAndReview(t *testing.T) {
	s, _, dispatcher := newCircleService(t)
	ctx := context.Background()

	var seen []string
	dispatcher.Subscribe([]string{events.EventCircleSubmitted, events.EventCircleReviewed},
		events.ListenerFunc(func(e events.Event) error {
			seen = append(seen, e.Name())
			return nil
		}))

	circle := submitHanabi(t, s)
	assert.Equal(t, models.CircleStatusPending, circle.Status)
	assert.Len(t, circle.ID, 36)

	reviewed, err := s.Review(ctx, circle.ID, &ReviewCircleInput{Status: models.CircleStatusWaitlist, Notes: "hall full"})
	require.NoError(t, err)
	assert.Equal(t, models.CircleStatusWaitlist, reviewed.Status)
	assert.Equal(t, "hall full", reviewed.ReviewNotes)

	reviewed, err = s.Review(ctx, circle.ID, &ReviewCircleInput{Status: models.CircleStatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.CircleStatusApproved, reviewed.Status)

	_, err = s.Review(ctx, circle.ID, &ReviewCircleInput{Status: models.CircleStatusRejected})
	assert.ErrorIs(t, err, models.ErrInvalidStateTransition)

	assert.Equal(t, []string{events.EventCircleSubmitted, events.EventCircleReviewed, events.EventCircleReviewed}, seen)

	approved, err := s.List(ctx, models.CircleStatusApproved)
	require.NoError(t, err)
	assert.Len(t, approved, 1)
}

func TestCircle_ReviewRejectsPendingStatus(t *testing.T) {
	s, _, _ := newCircleService(t)
	circle := submitHanabi(t, s)

	_, err := s.Review(context.Background(), circle.ID, &ReviewCircleInput{Status: models.CircleStatusPending})
	assert.ErrorIs(t, err, models.ErrInvalidReview)

	_, err = s.Review(context.Background(), circle.ID, &ReviewCircleInput{Status: "maybe"})
	assert.ErrorIs(t, err, models.ErrInvalidReview)

	_, err = s.Review(context.Background(), "missing", &ReviewCircleInput{Status: models.CircleStatusApproved})
	assert.True(t, models.IsNotFound(err))
}

func TestCircle_SubmitValidation(t *testing.T) {
	s, _, _ := newCircleService(t)

	_, err := s.Submit(context.Background(), &SubmitCircleInput{
		Name:        "   ",
		Email:       "hanabi",
		Phone:       "call me",
		Description: "x",
	})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "email")
	assert.Contains(t, appErr.Fields, "phone")

	_, err = s.List(context.Background(), "archived")
	assert.Equal(t, models.KindInvalid, models.KindOf(err))
}

func TestCircle_UploadSample(t *testing.T) {
	s, files, _ := newCircleService(t)
	ctx := context.Background()
	circle := submitHanabi(t, s)

	updated, err := s.UploadSample(ctx, circle.ID, "portfolio.png", pngHeader)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(updated.SampleURL, "/files/"+CircleFilesBucket+"/"+circle.ID+"/"))
	assert.True(t, strings.HasSuffix(updated.SampleURL, "-portfolio.png"))

	stored, err := files.Files(CircleFilesBucket, circle.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)

	// a new upload replaces the old file
	replaced, err := s.UploadSample(ctx, circle.ID, "v2.png", pngHeader)
	require.NoError(t, err)
	assert.NotEqual(t, updated.SampleURL, replaced.SampleURL)

	stored, err = files.Files(CircleFilesBucket, circle.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 1)
}

func TestCircle_UploadSampleRejectsBadFiles(t *testing.T) {
	s, _, _ := newCircleService(t)
	ctx := context.Background()
	circle := submitHanabi(t, s)

	_, err := s.UploadSample(ctx, circle.ID, "notes.txt", []byte("just some text"))
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	_, err = s.UploadSample(ctx, circle.ID, "empty.png", nil)
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	big := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte{0}, MaxSampleSize)...)
	_, err = s.UploadSample(ctx, circle.ID, "huge.png", big)
	assert.Equal(t, models.KindInvalid, models.KindOf(err))

	_, err = s.UploadSample(ctx, "missing", "portfolio.png", pngHeader)
	assert.True(t, models.IsNotFound(err))
}
