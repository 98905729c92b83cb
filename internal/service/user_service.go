package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type userAdminRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	SetActive(ctx context.Context, id string, active bool) error
}

// UserService serves admin account management.
type UserService struct {
	repo     userAdminRepository
	activity activityAppender
	logger   *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userAdminRepository, activity activityAppender, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{repo: repo, activity: activity, logger: logger}
}

// List returns accounts matching the filter.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// SetActive enables or disables an account. Admins cannot deactivate
// themselves; locking out the last administrator is unrecoverable via the API.
func (s *UserService) SetActive(ctx context.Context, actorID, userID string, active bool) (*models.User, error) {
	if !active && actorID == userID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot deactivate your own account")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	if err := s.repo.SetActive(ctx, userID, active); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update account")
	}
	user.Active = active

	verb := "Deactivated"
	if active {
		verb = "Activated"
	}
	s.recordActivity(ctx, actorID, models.ActivityAdmin, fmt.Sprintf("%s account %s", verb, user.Email))
	return user, nil
}

func (s *UserService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
