package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type syllabusRepository interface {
	CreateChapter(ctx context.Context, chapter *models.SyllabusChapter) error
	FindChapter(ctx context.Context, id string) (*models.SyllabusChapterProgress, error)
	ListChapters(ctx context.Context, className, subject string) ([]models.SyllabusChapterProgress, error)
	AdjustProgress(ctx context.Context, chapterID string, topicsDelta, sessionsDelta int) (*models.SyllabusProgress, error)
	DeleteChapter(ctx context.Context, id string) error
}

// SyllabusService manages syllabus chapters and their progress counters.
type SyllabusService struct {
	repo      syllabusRepository
	activity  activityAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSyllabusService constructs a SyllabusService instance.
func NewSyllabusService(repo syllabusRepository, activity activityAppender, validate *validator.Validate, logger *zap.Logger) *SyllabusService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SyllabusService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// CreateChapter registers a chapter with zeroed progress.
func (s *SyllabusService) CreateChapter(ctx context.Context, teacherID string, req models.CreateChapterRequest) (*models.SyllabusChapterProgress, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chapter payload")
	}

	chapter := &models.SyllabusChapter{
		ClassName:         req.ClassName,
		Subject:           req.Subject,
		ChapterName:       req.ChapterName,
		TotalTopics:       req.TotalTopics,
		EstimatedSessions: req.EstimatedSessions,
	}
	if err := s.repo.CreateChapter(ctx, chapter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create chapter")
	}

	s.recordActivity(ctx, teacherID, models.ActivitySyllabus,
		fmt.Sprintf("Added syllabus chapter %q for %s %s", chapter.ChapterName, chapter.ClassName, chapter.Subject))

	return &models.SyllabusChapterProgress{SyllabusChapter: *chapter}, nil
}

// ListChapters returns chapters with counters, optionally scoped.
func (s *SyllabusService) ListChapters(ctx context.Context, className, subject string) ([]models.SyllabusChapterProgress, error) {
	rows, err := s.repo.ListChapters(ctx, className, subject)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list chapters")
	}
	return rows, nil
}

// AdjustProgress applies deltas to a chapter's counters. Topics completed is
// clamped to [0, total topics] and sessions taken to >= 0; the committed
// counters are returned so the client can reconcile its optimistic state.
func (s *SyllabusService) AdjustProgress(ctx context.Context, teacherID, chapterID string, req models.AdjustProgressRequest) (*models.SyllabusProgress, error) {
	if req.TopicsDelta == 0 && req.SessionsDelta == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "at least one delta must be non-zero")
	}

	progress, err := s.repo.AdjustProgress(ctx, chapterID, req.TopicsDelta, req.SessionsDelta)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "chapter not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to adjust progress")
	}

	s.recordActivity(ctx, teacherID, models.ActivitySyllabus,
		fmt.Sprintf("Updated syllabus progress (%d topics, %d sessions)", progress.TopicsCompleted, progress.SessionsTaken))
	return progress, nil
}

// DeleteChapter removes a chapter and its counters.
func (s *SyllabusService) DeleteChapter(ctx context.Context, teacherID, chapterID string) error {
	chapter, err := s.repo.FindChapter(ctx, chapterID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "chapter not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load chapter")
	}
	if err := s.repo.DeleteChapter(ctx, chapterID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete chapter")
	}
	s.recordActivity(ctx, teacherID, models.ActivitySyllabus,
		fmt.Sprintf("Deleted syllabus chapter %q", chapter.ChapterName))
	return nil
}

func (s *SyllabusService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
