package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockSyllabusRepo struct {
	chapters map[string]*models.SyllabusChapterProgress
	progress *models.SyllabusProgress
	created  *models.SyllabusChapter
	adjusted bool
	deleted  []string
}

func (m *mockSyllabusRepo) CreateChapter(ctx context.Context, chapter *models.SyllabusChapter) error {
	chapter.ID = "ch-new"
	m.created = chapter
	return nil
}

func (m *mockSyllabusRepo) FindChapter(ctx context.Context, id string) (*models.SyllabusChapterProgress, error) {
	chapter, ok := m.chapters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return chapter, nil
}

func (m *mockSyllabusRepo) ListChapters(ctx context.Context, className, subject string) ([]models.SyllabusChapterProgress, error) {
	result := make([]models.SyllabusChapterProgress, 0, len(m.chapters))
	for _, chapter := range m.chapters {
		result = append(result, *chapter)
	}
	return result, nil
}

func (m *mockSyllabusRepo) AdjustProgress(ctx context.Context, chapterID string, topicsDelta, sessionsDelta int) (*models.SyllabusProgress, error) {
	if m.progress == nil {
		return nil, sql.ErrNoRows
	}
	m.adjusted = true
	return m.progress, nil
}

func (m *mockSyllabusRepo) DeleteChapter(ctx context.Context, id string) error {
	m.deleted = append(m.deleted, id)
	return nil
}

func TestCreateChapterStartsAtZeroProgress(t *testing.T) {
	repo := &mockSyllabusRepo{}
	activity := &mockActivity{}
	svc := NewSyllabusService(repo, activity, validator.New(), zap.NewNop())

	chapter, err := svc.CreateChapter(context.Background(), "t1", models.CreateChapterRequest{
		ClassName:         "10",
		Subject:           "Maths",
		ChapterName:       "Quadratic Equations",
		TotalTopics:       8,
		EstimatedSessions: 12,
	})
	require.NoError(t, err)
	assert.Equal(t, "ch-new", chapter.ID)
	assert.Equal(t, 0, chapter.TopicsCompleted)
	assert.Equal(t, 0, chapter.SessionsTaken)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivitySyllabus, activity.entries[0].Type)
}

func TestCreateChapterRequiresTopics(t *testing.T) {
	repo := &mockSyllabusRepo{}
	svc := NewSyllabusService(repo, &mockActivity{}, validator.New(), zap.NewNop())

	_, err := svc.CreateChapter(context.Background(), "t1", models.CreateChapterRequest{
		ClassName:   "10",
		Subject:     "Maths",
		ChapterName: "Quadratic Equations",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestAdjustProgressRejectsZeroDeltas(t *testing.T) {
	repo := &mockSyllabusRepo{progress: &models.SyllabusProgress{ChapterID: "ch1"}}
	svc := NewSyllabusService(repo, &mockActivity{}, validator.New(), zap.NewNop())

	_, err := svc.AdjustProgress(context.Background(), "t1", "ch1", models.AdjustProgressRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.adjusted)
}

func TestAdjustProgressUnknownChapter(t *testing.T) {
	repo := &mockSyllabusRepo{}
	svc := NewSyllabusService(repo, &mockActivity{}, validator.New(), zap.NewNop())

	_, err := svc.AdjustProgress(context.Background(), "t1", "ghost", models.AdjustProgressRequest{TopicsDelta: 1})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAdjustProgressReturnsCommittedCounters(t *testing.T) {
	repo := &mockSyllabusRepo{progress: &models.SyllabusProgress{ChapterID: "ch1", TopicsCompleted: 8, SessionsTaken: 3}}
	activity := &mockActivity{}
	svc := NewSyllabusService(repo, activity, validator.New(), zap.NewNop())

	progress, err := svc.AdjustProgress(context.Background(), "t1", "ch1", models.AdjustProgressRequest{TopicsDelta: 20})
	require.NoError(t, err)
	assert.Equal(t, 8, progress.TopicsCompleted)
	require.Len(t, activity.entries, 1)
}

func TestDeleteChapterUnknown(t *testing.T) {
	repo := &mockSyllabusRepo{chapters: map[string]*models.SyllabusChapterProgress{}}
	svc := NewSyllabusService(repo, &mockActivity{}, validator.New(), zap.NewNop())

	err := svc.DeleteChapter(context.Background(), "t1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestDeleteChapterRecordsActivity(t *testing.T) {
	repo := &mockSyllabusRepo{chapters: map[string]*models.SyllabusChapterProgress{
		"ch1": {SyllabusChapter: models.SyllabusChapter{ID: "ch1", ChapterName: "Trigonometry"}},
	}}
	activity := &mockActivity{}
	svc := NewSyllabusService(repo, activity, validator.New(), zap.NewNop())

	err := svc.DeleteChapter(context.Background(), "t1", "ch1")
	require.NoError(t, err)
	assert.Equal(t, []string{"ch1"}, repo.deleted)
	require.Len(t, activity.entries, 1)
	assert.Contains(t, activity.entries[0].Description, "Trigonometry")
}
