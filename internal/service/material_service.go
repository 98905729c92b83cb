package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type materialRepository interface {
	Create(ctx context.Context, material *models.StudyMaterial) error
	FindByID(ctx context.Context, id string) (*models.StudyMaterial, error)
	List(ctx context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, int, error)
	Delete(ctx context.Context, id string) error
}

type objectStore interface {
	SaveMultipart(ownerID string, header *multipart.FileHeader) (string, string, error)
	PathFromURL(url string) (string, bool)
	Delete(path string) error
}

// UploadLimits bounds what teachers may upload.
type UploadLimits struct {
	MaxFileSize  int64
	AllowedMIMEs []string
}

func (l UploadLimits) check(file *multipart.FileHeader) error {
	if l.MaxFileSize > 0 && file.Size > l.MaxFileSize {
		return appErrors.Clone(appErrors.ErrValidation,
			fmt.Sprintf("file exceeds the %d byte limit", l.MaxFileSize))
	}
	contentType := file.Header.Get("Content-Type")
	if !l.mimeAllowed(contentType) {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file type %q is not allowed", contentType))
	}
	return nil
}

func (l UploadLimits) mimeAllowed(contentType string) bool {
	if len(l.AllowedMIMEs) == 0 {
		return true
	}
	for _, allowed := range l.AllowedMIMEs {
		if strings.EqualFold(allowed, contentType) {
			return true
		}
	}
	return false
}

// MaterialService manages study materials and their backing file objects.
type MaterialService struct {
	repo      materialRepository
	store     objectStore
	activity  activityAppender
	limits    UploadLimits
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMaterialService constructs a MaterialService instance.
func NewMaterialService(repo materialRepository, store objectStore, activity activityAppender, limits UploadLimits, validate *validator.Validate, logger *zap.Logger) *MaterialService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &MaterialService{repo: repo, store: store, activity: activity, limits: limits, validator: validate, logger: logger}
}

// Upload stores the file first and links the returned URL into a new row.
// If the row insert fails, the freshly stored object is removed so the store
// does not accumulate orphans.
func (s *MaterialService) Upload(ctx context.Context, teacherID string, req models.CreateMaterialRequest, file *multipart.FileHeader) (*models.StudyMaterial, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid material payload")
	}
	if file == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a file is required")
	}
	if err := s.limits.check(file); err != nil {
		return nil, err
	}

	path, url, err := s.store.SaveMultipart(teacherID, file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}

	material := &models.StudyMaterial{
		TeacherID:   teacherID,
		Title:       req.Title,
		Subject:     req.Subject,
		ClassName:   req.ClassName,
		Section:     req.Section,
		Chapter:     req.Chapter,
		Description: req.Description,
		FileURL:     url,
		FileType:    fileType(file.Filename, file.Header.Get("Content-Type")),
	}
	if err := s.repo.Create(ctx, material); err != nil {
		if cleanupErr := s.store.Delete(path); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("path", path), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save material")
	}

	s.recordActivity(ctx, teacherID, models.ActivityMaterial, fmt.Sprintf("Uploaded material %q", material.Title))
	return material, nil
}

// List returns materials scoped by the filter.
func (s *MaterialService) List(ctx context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, int, error) {
	materials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list materials")
	}
	return materials, total, nil
}

// Delete removes the row first and then the backing file. A file that fails
// to delete is logged and left behind; the material must stop being listable
// even if the object lingers.
func (s *MaterialService) Delete(ctx context.Context, teacherID, materialID string) error {
	material, err := s.repo.FindByID(ctx, materialID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "material not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load material")
	}
	if material.TeacherID != teacherID {
		return appErrors.Clone(appErrors.ErrForbidden, "material belongs to another teacher")
	}

	if err := s.repo.Delete(ctx, materialID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete material")
	}

	if path, ok := s.store.PathFromURL(material.FileURL); ok {
		if err := s.store.Delete(path); err != nil {
			s.logger.Warn("failed to delete material file", zap.String("path", path), zap.Error(err))
		}
	}

	s.recordActivity(ctx, teacherID, models.ActivityMaterial, fmt.Sprintf("Deleted material %q", material.Title))
	return nil
}

func (s *MaterialService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}

func fileType(filename, contentType string) string {
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return contentType
}
