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

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByUserID(ctx context.Context, userID string) (*models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

// StudentService manages student roster records.
type StudentService struct {
	repo      studentRepository
	activity  activityAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, activity activityAppender, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, activity: activity, validator: validate, logger: logger}
}

// List returns students matching the filter.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, total, nil
}

// Get loads one student.
func (s *StudentService) Get(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	return student, nil
}

// SelfRecord resolves the student row linked to a portal account.
func (s *StudentService) SelfRecord(ctx context.Context, userID string) (*models.Student, error) {
	student, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no student record is linked to this account")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student record")
	}
	return student, nil
}

// Create registers a roster entry.
func (s *StudentService) Create(ctx context.Context, actorID string, req models.CreateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student := &models.Student{
		UserID:     req.UserID,
		FullName:   req.FullName,
		RollNumber: req.RollNumber,
		ClassName:  req.ClassName,
		Section:    req.Section,
		Active:     true,
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}

	s.recordActivity(ctx, actorID, models.ActivityAdmin,
		fmt.Sprintf("Added student %s to %s-%s", student.FullName, student.ClassName, student.Section))
	return student, nil
}

// Update edits a roster entry.
func (s *StudentService) Update(ctx context.Context, actorID, studentID string, req models.UpdateStudentRequest) (*models.Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.Get(ctx, studentID)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		student.FullName = *req.FullName
	}
	if req.RollNumber != nil {
		student.RollNumber = *req.RollNumber
	}
	if req.ClassName != nil {
		student.ClassName = *req.ClassName
	}
	if req.Section != nil {
		student.Section = *req.Section
	}
	if req.Active != nil {
		student.Active = *req.Active
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}

	s.recordActivity(ctx, actorID, models.ActivityAdmin, fmt.Sprintf("Updated student %s", student.FullName))
	return student, nil
}

// Delete removes a roster entry.
func (s *StudentService) Delete(ctx context.Context, actorID, studentID string) error {
	student, err := s.Get(ctx, studentID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, studentID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.recordActivity(ctx, actorID, models.ActivityAdmin, fmt.Sprintf("Removed student %s", student.FullName))
	return nil
}

func (s *StudentService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
