package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockHomeworkRepo struct {
	homework  map[string]*models.Homework
	created   *models.Homework
	createErr error
	deleted   []string
}

func (m *mockHomeworkRepo) Create(ctx context.Context, hw *models.Homework) error {
	if m.createErr != nil {
		return m.createErr
	}
	hw.ID = "hw-new"
	m.created = hw
	return nil
}

func (m *mockHomeworkRepo) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	hw, ok := m.homework[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return hw, nil
}

func (m *mockHomeworkRepo) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
	return nil, 0, nil
}

func (m *mockHomeworkRepo) Update(ctx context.Context, hw *models.Homework) error {
	return nil
}

func (m *mockHomeworkRepo) Delete(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockHomeworkRepo) CountActive(ctx context.Context, teacherID string) (int, error) {
	return 0, nil
}

func homeworkRequest() models.CreateHomeworkRequest {
	return models.CreateHomeworkRequest{
		ClassName:    "10",
		Section:      "A",
		Subject:      "Maths",
		Description:  "Exercise 4.2, questions 1-10.",
		AssignedDate: "2026-09-01",
		DueDate:      "2026-09-05",
	}
}

func TestHomeworkCreateWithoutAttachment(t *testing.T) {
	repo := &mockHomeworkRepo{}
	store := &mockObjectStore{}
	svc := NewHomeworkService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	hw, err := svc.Create(context.Background(), "t1", homeworkRequest(), nil)
	require.NoError(t, err)
	assert.Nil(t, hw.FileURL)
	assert.Equal(t, models.HomeworkActive, hw.Status)
	assert.Empty(t, store.savedPath)
}

func TestHomeworkCreateLinksStoredAttachment(t *testing.T) {
	repo := &mockHomeworkRepo{}
	store := &mockObjectStore{}
	svc := NewHomeworkService(repo, store, &mockActivity{}, UploadLimits{MaxFileSize: 1 << 20}, validator.New(), zap.NewNop())

	hw, err := svc.Create(context.Background(), "t1", homeworkRequest(), pdfHeader("worksheet.pdf", 2048))
	require.NoError(t, err)
	require.NotNil(t, hw.FileURL)
	assert.Equal(t, "http://localhost/uploads/t1/worksheet.pdf", *hw.FileURL)
	assert.Empty(t, store.deletedPaths)
}

func TestHomeworkCreateRejectsOversizedAttachment(t *testing.T) {
	repo := &mockHomeworkRepo{}
	store := &mockObjectStore{}
	svc := NewHomeworkService(repo, store, &mockActivity{}, UploadLimits{MaxFileSize: 100}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "t1", homeworkRequest(), pdfHeader("worksheet.pdf", 101))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.savedPath)
	assert.Nil(t, repo.created)
}

func TestHomeworkCreateCleansUpOrphanOnRowFailure(t *testing.T) {
	repo := &mockHomeworkRepo{createErr: errors.New("insert failed")}
	store := &mockObjectStore{}
	svc := NewHomeworkService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), "t1", homeworkRequest(), pdfHeader("worksheet.pdf", 10))
	require.Error(t, err)
	require.Len(t, store.deletedPaths, 1)
	assert.Equal(t, "t1/worksheet.pdf", store.deletedPaths[0])
}

func TestHomeworkDeleteRemovesAttachment(t *testing.T) {
	url := "http://localhost/uploads/t1/worksheet.pdf"
	repo := &mockHomeworkRepo{homework: map[string]*models.Homework{
		"hw1": {ID: "hw1", TeacherID: "t1", Subject: "Maths", ClassName: "10", Section: "A", FileURL: &url},
	}}
	store := &mockObjectStore{savedPath: "t1/worksheet.pdf"}
	svc := NewHomeworkService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t1", "hw1")
	require.NoError(t, err)
	assert.Equal(t, []string{"hw1"}, repo.deleted)
	assert.Equal(t, []string{"t1/worksheet.pdf"}, store.deletedPaths)
}

func TestHomeworkDeleteOwnerOnly(t *testing.T) {
	repo := &mockHomeworkRepo{homework: map[string]*models.Homework{
		"hw1": {ID: "hw1", TeacherID: "t1", Subject: "Maths"},
	}}
	svc := NewHomeworkService(repo, &mockObjectStore{}, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t2", "hw1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
