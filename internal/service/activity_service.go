package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

// ActivityService lists the append-only activity log.
type ActivityService struct {
	repo   activityLister
	logger *zap.Logger
}

// NewActivityService constructs an ActivityService instance.
func NewActivityService(repo activityLister, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// List returns activity entries, newest first.
func (s *ActivityService) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEntry, int, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list activity")
	}
	return entries, total, nil
}
