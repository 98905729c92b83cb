package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type timetableRepository interface {
	Create(ctx context.Context, entry *models.TimetableEntry) error
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error)
	Delete(ctx context.Context, id string) error
}

// TimetableService serves weekly teaching slots. Teachers read their own
// schedule; slot maintenance is an admin operation.
type TimetableService struct {
	repo      timetableRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService instance.
func NewTimetableService(repo timetableRepository, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{repo: repo, validator: validate, logger: logger}
}

// CreateEntry registers a weekly slot.
func (s *TimetableService) CreateEntry(ctx context.Context, req models.CreateTimetableEntryRequest) (*models.TimetableEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}

	entry := &models.TimetableEntry{
		TeacherID: req.TeacherID,
		Day:       req.Day,
		TimeSlot:  req.TimeSlot,
		ClassName: req.ClassName,
		Section:   req.Section,
		Room:      req.Room,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create timetable entry")
	}
	return entry, nil
}

// List returns slots scoped by the filter.
func (s *TimetableService) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error) {
	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	return entries, nil
}

// DeleteEntry removes a weekly slot.
func (s *TimetableService) DeleteEntry(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable entry")
	}
	return nil
}
