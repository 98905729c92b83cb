package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type noticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	FindByID(ctx context.Context, id string) (*models.Notice, error)
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
	Update(ctx context.Context, notice *models.Notice) error
	SetPublished(ctx context.Context, id string, published bool) error
	Delete(ctx context.Context, id string) error
}

// NoticeService manages notice-board entries.
type NoticeService struct {
	repo      noticeRepository
	activity  activityAppender
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewNoticeService constructs a NoticeService instance.
func NewNoticeService(repo noticeRepository, activity activityAppender, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoticeService{repo: repo, activity: activity, validator: validate, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Create posts a new notice.
func (s *NoticeService) Create(ctx context.Context, teacherID string, req models.CreateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}
	if !req.Audience.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown audience %q", req.Audience))
	}

	publishDate, err := parseDateOnly(req.PublishDate)
	if err != nil {
		return nil, err
	}
	expiryDate, err := parseDateOnly(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	if expiryDate.Before(publishDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expiry date cannot precede publish date")
	}

	priority := req.Priority
	if priority == "" {
		priority = models.NoticePriorityNormal
	}

	notice := &models.Notice{
		TeacherID:   teacherID,
		Title:       req.Title,
		Body:        req.Body,
		Audience:    req.Audience,
		Priority:    priority,
		PublishDate: publishDate,
		ExpiryDate:  expiryDate,
		IsPublished: req.IsPublished,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}

	s.recordActivity(ctx, teacherID, models.ActivityNotice, fmt.Sprintf("Posted notice %q", notice.Title))
	return notice, nil
}

// List returns notices scoped by the filter.
func (s *NoticeService) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	notices, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, total, nil
}

// Update edits a notice owned by the teacher. An expired notice is
// read-only; the only edit accepted is a new expiry date, which revives it.
func (s *NoticeService) Update(ctx context.Context, teacherID, noticeID string, req models.UpdateNoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notice payload")
	}

	notice, err := s.loadOwned(ctx, teacherID, noticeID)
	if err != nil {
		return nil, err
	}

	if notice.Expired(s.now()) && req.ExpiryDate == nil {
		return nil, appErrors.Clone(appErrors.ErrNoticeExpired, "cannot edit an expired notice")
	}

	if req.Title != nil {
		notice.Title = *req.Title
	}
	if req.Body != nil {
		notice.Body = *req.Body
	}
	if req.Audience != nil {
		if !req.Audience.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown audience %q", *req.Audience))
		}
		notice.Audience = *req.Audience
	}
	if req.Priority != nil {
		notice.Priority = *req.Priority
	}
	if req.ExpiryDate != nil {
		expiry, err := parseDateOnly(*req.ExpiryDate)
		if err != nil {
			return nil, err
		}
		notice.ExpiryDate = expiry
	}

	if err := s.repo.Update(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notice")
	}

	s.recordActivity(ctx, teacherID, models.ActivityNotice, fmt.Sprintf("Updated notice %q", notice.Title))
	return notice, nil
}

// SetPublished publishes or unpublishes a notice. Publishing an expired
// notice is refused; the stored flag would never surface on the board and
// flipping it silently would mislead the author.
func (s *NoticeService) SetPublished(ctx context.Context, teacherID, noticeID string, published bool) (*models.Notice, error) {
	notice, err := s.loadOwned(ctx, teacherID, noticeID)
	if err != nil {
		return nil, err
	}

	if published && notice.Expired(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrNoticeExpired, "cannot publish an expired notice")
	}

	if err := s.repo.SetPublished(ctx, noticeID, published); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update publish flag")
	}
	notice.IsPublished = published

	verb := "Unpublished"
	if published {
		verb = "Published"
	}
	s.recordActivity(ctx, teacherID, models.ActivityNotice, fmt.Sprintf("%s notice %q", verb, notice.Title))
	return notice, nil
}

// Delete removes a notice owned by the teacher.
func (s *NoticeService) Delete(ctx context.Context, teacherID, noticeID string) error {
	notice, err := s.loadOwned(ctx, teacherID, noticeID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, noticeID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	s.recordActivity(ctx, teacherID, models.ActivityNotice, fmt.Sprintf("Deleted notice %q", notice.Title))
	return nil
}

// PublicBoard returns published, unexpired notices addressed to everyone.
// This backs the unauthenticated landing page.
func (s *NoticeService) PublicBoard(ctx context.Context, page, pageSize int) ([]models.Notice, int, error) {
	audience := models.NoticeAudienceAll
	return s.List(ctx, models.NoticeFilter{
		Audience:      &audience,
		PublishedOnly: true,
		Unexpired:     true,
		Page:          page,
		PageSize:      pageSize,
	})
}

// AudienceBoard returns the published, unexpired notices for one audience.
func (s *NoticeService) AudienceBoard(ctx context.Context, audience models.NoticeAudience, page, pageSize int) ([]models.Notice, int, error) {
	return s.List(ctx, models.NoticeFilter{
		Audience:      &audience,
		PublishedOnly: true,
		Unexpired:     true,
		Page:          page,
		PageSize:      pageSize,
	})
}

func (s *NoticeService) loadOwned(ctx context.Context, teacherID, noticeID string) (*models.Notice, error) {
	notice, err := s.repo.FindByID(ctx, noticeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}
	if notice.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "notice belongs to another teacher")
	}
	return notice, nil
}

func (s *NoticeService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
