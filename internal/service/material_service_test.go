package service

import (
	"context"
	"database/sql"
	"errors"
	"mime/multipart"
	"net/textproto"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockMaterialRepo struct {
	materials map[string]*models.StudyMaterial
	createErr error
	created   *models.StudyMaterial
	deleted   []string
	deleteErr error
}

func (m *mockMaterialRepo) Create(ctx context.Context, material *models.StudyMaterial) error {
	if m.createErr != nil {
		return m.createErr
	}
	material.ID = "m-new"
	m.created = material
	return nil
}

func (m *mockMaterialRepo) FindByID(ctx context.Context, id string) (*models.StudyMaterial, error) {
	material, ok := m.materials[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return material, nil
}

func (m *mockMaterialRepo) List(ctx context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, int, error) {
	return nil, 0, nil
}

func (m *mockMaterialRepo) Delete(ctx context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockObjectStore struct {
	savedPath    string
	saveErr      error
	deletedPaths []string
	deleteErr    error
}

func (m *mockObjectStore) SaveMultipart(ownerID string, header *multipart.FileHeader) (string, string, error) {
	if m.saveErr != nil {
		return "", "", m.saveErr
	}
	m.savedPath = ownerID + "/" + header.Filename
	return m.savedPath, "http://localhost/uploads/" + m.savedPath, nil
}

func (m *mockObjectStore) PathFromURL(url string) (string, bool) {
	if m.savedPath == "" {
		return "", false
	}
	return m.savedPath, true
}

func (m *mockObjectStore) Delete(path string) error {
	m.deletedPaths = append(m.deletedPaths, path)
	return m.deleteErr
}

func pdfHeader(name string, size int64) *multipart.FileHeader {
	return &multipart.FileHeader{
		Filename: name,
		Size:     size,
		Header:   textproto.MIMEHeader{"Content-Type": []string{"application/pdf"}},
	}
}

func materialRequest() models.CreateMaterialRequest {
	return models.CreateMaterialRequest{
		Title:     "Algebra Notes",
		Subject:   "Maths",
		ClassName: "10",
		Section:   "A",
	}
}

func TestMaterialUploadLinksStoredFile(t *testing.T) {
	repo := &mockMaterialRepo{}
	store := &mockObjectStore{}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{MaxFileSize: 1 << 20}, validator.New(), zap.NewNop())

	material, err := svc.Upload(context.Background(), "t1", materialRequest(), pdfHeader("notes.pdf", 1024))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost/uploads/t1/notes.pdf", material.FileURL)
	assert.Equal(t, "pdf", material.FileType)
	assert.Empty(t, store.deletedPaths)
}

func TestMaterialUploadRejectsOversizedFile(t *testing.T) {
	repo := &mockMaterialRepo{}
	store := &mockObjectStore{}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{MaxFileSize: 100}, validator.New(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "t1", materialRequest(), pdfHeader("notes.pdf", 101))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.savedPath)
}

func TestMaterialUploadRejectsDisallowedMIME(t *testing.T) {
	repo := &mockMaterialRepo{}
	store := &mockObjectStore{}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{AllowedMIMEs: []string{"image/png"}}, validator.New(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "t1", materialRequest(), pdfHeader("notes.pdf", 10))
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMaterialUploadCleansUpOrphanOnRowFailure(t *testing.T) {
	repo := &mockMaterialRepo{createErr: errors.New("insert failed")}
	store := &mockObjectStore{}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	_, err := svc.Upload(context.Background(), "t1", materialRequest(), pdfHeader("notes.pdf", 10))
	require.Error(t, err)
	require.Len(t, store.deletedPaths, 1)
	assert.Equal(t, "t1/notes.pdf", store.deletedPaths[0])
}

func TestMaterialDeleteRemovesRowThenFile(t *testing.T) {
	repo := &mockMaterialRepo{materials: map[string]*models.StudyMaterial{
		"m1": {ID: "m1", TeacherID: "t1", Title: "Notes", FileURL: "http://localhost/uploads/t1/notes.pdf"},
	}}
	store := &mockObjectStore{savedPath: "t1/notes.pdf"}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, repo.deleted)
	assert.Equal(t, []string{"t1/notes.pdf"}, store.deletedPaths)
}

func TestMaterialDeleteSurvivesFileDeleteFailure(t *testing.T) {
	repo := &mockMaterialRepo{materials: map[string]*models.StudyMaterial{
		"m1": {ID: "m1", TeacherID: "t1", Title: "Notes", FileURL: "http://localhost/uploads/t1/notes.pdf"},
	}}
	store := &mockObjectStore{savedPath: "t1/notes.pdf", deleteErr: errors.New("disk gone")}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t1", "m1")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1"}, repo.deleted)
}

func TestMaterialDeleteKeepsFileWhenRowDeleteFails(t *testing.T) {
	repo := &mockMaterialRepo{
		materials: map[string]*models.StudyMaterial{
			"m1": {ID: "m1", TeacherID: "t1", Title: "Notes", FileURL: "http://localhost/uploads/t1/notes.pdf"},
		},
		deleteErr: errors.New("db down"),
	}
	store := &mockObjectStore{savedPath: "t1/notes.pdf"}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t1", "m1")
	require.Error(t, err)
	assert.Empty(t, store.deletedPaths)
}

func TestMaterialDeleteOwnerOnly(t *testing.T) {
	repo := &mockMaterialRepo{materials: map[string]*models.StudyMaterial{
		"m1": {ID: "m1", TeacherID: "t1", Title: "Notes"},
	}}
	store := &mockObjectStore{}
	svc := NewMaterialService(repo, store, &mockActivity{}, UploadLimits{}, validator.New(), zap.NewNop())

	err := svc.Delete(context.Background(), "t2", "m1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}
