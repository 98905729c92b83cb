package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type homeworkRepository interface {
	Create(ctx context.Context, hw *models.Homework) error
	FindByID(ctx context.Context, id string) (*models.Homework, error)
	List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error)
	Update(ctx context.Context, hw *models.Homework) error
	Delete(ctx context.Context, id string) error
	CountActive(ctx context.Context, teacherID string) (int, error)
}

// HomeworkService manages homework assignments and their optional
// attachments.
type HomeworkService struct {
	repo      homeworkRepository
	store     objectStore
	activity  activityAppender
	limits    UploadLimits
	validator *validator.Validate
	logger    *zap.Logger
}

// NewHomeworkService constructs a HomeworkService instance.
func NewHomeworkService(repo homeworkRepository, store objectStore, activity activityAppender, limits UploadLimits, validate *validator.Validate, logger *zap.Logger) *HomeworkService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &HomeworkService{repo: repo, store: store, activity: activity, limits: limits, validator: validate, logger: logger}
}

// Create posts a new assignment in active status. When an attachment is
// present it is stored first and the returned URL linked into the row; a
// failed row insert removes the freshly stored object again.
func (s *HomeworkService) Create(ctx context.Context, teacherID string, req models.CreateHomeworkRequest, file *multipart.FileHeader) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}

	assigned, err := parseDateOnly(req.AssignedDate)
	if err != nil {
		return nil, err
	}
	due, err := parseDateOnly(req.DueDate)
	if err != nil {
		return nil, err
	}

	var fileURL *string
	var storedPath string
	if file != nil {
		if err := s.limits.check(file); err != nil {
			return nil, err
		}
		path, url, err := s.store.SaveMultipart(teacherID, file)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store attachment")
		}
		storedPath = path
		fileURL = &url
	}

	hw := &models.Homework{
		TeacherID:    teacherID,
		ClassName:    req.ClassName,
		Section:      req.Section,
		Subject:      req.Subject,
		Description:  req.Description,
		AssignedDate: assigned,
		DueDate:      due,
		FileURL:      fileURL,
		Status:       models.HomeworkActive,
	}
	if err := s.repo.Create(ctx, hw); err != nil {
		if storedPath != "" {
			if cleanupErr := s.store.Delete(storedPath); cleanupErr != nil {
				s.logger.Warn("failed to remove orphaned attachment", zap.String("path", storedPath), zap.Error(cleanupErr))
			}
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create homework")
	}

	s.recordActivity(ctx, teacherID, models.ActivityHomework,
		fmt.Sprintf("Posted %s homework for %s-%s", hw.Subject, hw.ClassName, hw.Section))
	return hw, nil
}

// List returns assignments scoped by the filter.
func (s *HomeworkService) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list homework")
	}
	return items, total, nil
}

// Update edits an assignment owned by the teacher.
func (s *HomeworkService) Update(ctx context.Context, teacherID, homeworkID string, req models.UpdateHomeworkRequest) (*models.Homework, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid homework payload")
	}

	hw, err := s.loadOwned(ctx, teacherID, homeworkID)
	if err != nil {
		return nil, err
	}

	if req.Subject != nil {
		hw.Subject = *req.Subject
	}
	if req.Description != nil {
		hw.Description = *req.Description
	}
	if req.DueDate != nil {
		due, err := parseDateOnly(*req.DueDate)
		if err != nil {
			return nil, err
		}
		hw.DueDate = due
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown homework status %q", *req.Status))
		}
		hw.Status = *req.Status
	}

	if err := s.repo.Update(ctx, hw); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update homework")
	}

	s.recordActivity(ctx, teacherID, models.ActivityHomework,
		fmt.Sprintf("Updated %s homework for %s-%s", hw.Subject, hw.ClassName, hw.Section))
	return hw, nil
}

// Delete removes an assignment owned by the teacher. The row goes first,
// then the attachment, best-effort; a lingering object is logged and left.
func (s *HomeworkService) Delete(ctx context.Context, teacherID, homeworkID string) error {
	hw, err := s.loadOwned(ctx, teacherID, homeworkID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, homeworkID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete homework")
	}
	if hw.FileURL != nil {
		if path, ok := s.store.PathFromURL(*hw.FileURL); ok {
			if err := s.store.Delete(path); err != nil {
				s.logger.Warn("failed to delete homework attachment", zap.String("path", path), zap.Error(err))
			}
		}
	}
	s.recordActivity(ctx, teacherID, models.ActivityHomework,
		fmt.Sprintf("Deleted %s homework for %s-%s", hw.Subject, hw.ClassName, hw.Section))
	return nil
}

func (s *HomeworkService) loadOwned(ctx context.Context, teacherID, homeworkID string) (*models.Homework, error) {
	hw, err := s.repo.FindByID(ctx, homeworkID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "homework not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load homework")
	}
	if hw.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "homework belongs to another teacher")
	}
	return hw, nil
}

func (s *HomeworkService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
