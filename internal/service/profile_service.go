package service

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type profileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error)
	Upsert(ctx context.Context, profile *models.TeacherProfile) error
	UpdateSelfFields(ctx context.Context, userID string, phone, bio *string) error
	SetAvatarURL(ctx context.Context, userID, url string) error
}

// ProfileService manages teacher profiles. Self-service updates only touch
// phone, bio and avatar; subject and employee ID are ignored if sent.
type ProfileService struct {
	repo      profileRepository
	store     objectStore
	activity  activityAppender
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfileService constructs a ProfileService instance.
func NewProfileService(repo profileRepository, store objectStore, activity activityAppender, validate *validator.Validate, logger *zap.Logger) *ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProfileService{repo: repo, store: store, activity: activity, validator: validate, logger: logger}
}

// Get returns the teacher's profile.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	profile, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}
	return profile, nil
}

// UpdateSelf persists the self-editable fields and returns the fresh profile.
func (s *ProfileService) UpdateSelf(ctx context.Context, userID string, req models.UpdateTeacherProfileRequest) (*models.TeacherProfile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	current, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	phone := current.Phone
	if req.Phone != nil {
		phone = req.Phone
	}
	bio := current.Bio
	if req.Bio != nil {
		bio = req.Bio
	}

	if err := s.repo.UpdateSelfFields(ctx, userID, phone, bio); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	s.recordActivity(ctx, userID, models.ActivityProfile, "Updated profile")
	return s.Get(ctx, userID)
}

// UploadAvatar stores the image and links its URL into the profile.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID string, file *multipart.FileHeader) (*models.TeacherProfile, error) {
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "an image file is required")
	}

	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	path, url, err := s.store.SaveMultipart(userID, file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store avatar")
	}

	if err := s.repo.SetAvatarURL(ctx, userID, url); err != nil {
		if cleanupErr := s.store.Delete(path); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned avatar", zap.String("path", path), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to link avatar")
	}

	s.recordActivity(ctx, userID, models.ActivityProfile, "Changed avatar")
	return s.Get(ctx, userID)
}

// UpsertAdmin seeds or replaces a teacher profile with admin-set fields.
func (s *ProfileService) UpsertAdmin(ctx context.Context, profile *models.TeacherProfile) (*models.TeacherProfile, error) {
	if profile.UserID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "user_id is required")
	}
	if err := s.repo.Upsert(ctx, profile); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save profile")
	}
	return s.Get(ctx, profile.UserID)
}

func (s *ProfileService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}
