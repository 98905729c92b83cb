package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockExamRepo struct {
	exams        map[string]*models.Exam
	markRows     []models.MarkRow
	studentMarks []models.MarkRow
	created      *models.Exam
	replaced     []models.Mark
	deleted      string
}

func (m *mockExamRepo) Create(ctx context.Context, exam *models.Exam) error {
	exam.ID = "e-new"
	m.created = exam
	return nil
}

func (m *mockExamRepo) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	exam, ok := m.exams[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return exam, nil
}

func (m *mockExamRepo) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	result := make([]models.Exam, 0, len(m.exams))
	for _, exam := range m.exams {
		result = append(result, *exam)
	}
	return result, nil
}

func (m *mockExamRepo) Delete(ctx context.Context, id string) error {
	m.deleted = id
	return nil
}

func (m *mockExamRepo) ReplaceMarks(ctx context.Context, examID string, marks []models.Mark) error {
	m.replaced = marks
	return nil
}

func (m *mockExamRepo) MarksWithStudents(ctx context.Context, examID string) ([]models.MarkRow, error) {
	return m.markRows, nil
}

func (m *mockExamRepo) StudentMarks(ctx context.Context, studentID string) ([]models.MarkRow, error) {
	return m.studentMarks, nil
}

type mockActivity struct {
	entries []*models.ActivityEntry
}

func (m *mockActivity) Append(ctx context.Context, entry *models.ActivityEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func markRow(studentID, name string, roll int, marks float64) models.MarkRow {
	return models.MarkRow{
		Mark:        models.Mark{ExamID: "e1", StudentID: studentID, MarksObtained: marks},
		StudentName: name,
		RollNumber:  roll,
	}
}

func TestGradeBandTable(t *testing.T) {
	cases := []struct {
		pct    float64
		grade  string
		passed bool
	}{
		{100, "A1", true},
		{92, "A1", true},
		{90, "A1", true},
		{89.99, "A2", true},
		{80, "A2", true},
		{70, "B1", true},
		{60, "B2", true},
		{50, "C", true},
		{33, "D", true},
		{32.99, "F", false},
		{30, "F", false},
		{0, "F", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.grade, GradeBand(tc.pct), "pct %v", tc.pct)
		assert.Equal(t, tc.passed, tc.pct >= passThreshold, "pct %v", tc.pct)
	}
}

func TestPercentageRounding(t *testing.T) {
	assert.Equal(t, 66.67, Percentage(2, 3))
	assert.Equal(t, 33.33, Percentage(1, 3))
	assert.Equal(t, 100.0, Percentage(80, 80))
	assert.Equal(t, 0.0, Percentage(10, 0))
}

func TestComputeResultsRanking(t *testing.T) {
	exam := models.Exam{ID: "e1", MaxMarks: 100}
	rows := ComputeResults(exam, []models.MarkRow{
		markRow("s-bob", "Bob", 2, 30),
		markRow("s-alice", "Alice", 1, 92),
		markRow("s-carol", "Carol", 3, 33),
	})

	require.Len(t, rows, 3)
	assert.Equal(t, "Alice", rows[0].StudentName)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "A1", rows[0].Grade)
	assert.True(t, rows[0].Passed)

	assert.Equal(t, "Carol", rows[1].StudentName)
	assert.Equal(t, 2, rows[1].Rank)
	assert.Equal(t, "D", rows[1].Grade)
	assert.True(t, rows[1].Passed)

	assert.Equal(t, "Bob", rows[2].StudentName)
	assert.Equal(t, 3, rows[2].Rank)
	assert.Equal(t, "F", rows[2].Grade)
	assert.False(t, rows[2].Passed)
}

func TestComputeResultsStableTies(t *testing.T) {
	exam := models.Exam{ID: "e1", MaxMarks: 50}
	rows := ComputeResults(exam, []models.MarkRow{
		markRow("s1", "First", 1, 40),
		markRow("s2", "Second", 2, 40),
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "First", rows[0].StudentName)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, "Second", rows[1].StudentName)
	assert.Equal(t, 2, rows[1].Rank)
}

func TestComputeAverage(t *testing.T) {
	assert.Equal(t, 0.0, ComputeAverage(nil))
	avg := ComputeAverage([]models.MarkRow{
		markRow("s1", "A", 1, 92),
		markRow("s2", "B", 2, 30),
		markRow("s3", "C", 3, 33),
	})
	assert.Equal(t, 51.67, avg)
}

func TestSubmitMarksRejectsOutOfRange(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{
		"e1": {ID: "e1", TeacherID: "t1", Name: "Midterm", MaxMarks: 50},
	}}
	svc := NewExamService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	err := svc.SubmitMarks(context.Background(), "t1", "e1", models.SubmitMarksRequest{
		Entries: []models.MarkEntry{{StudentID: "s1", MarksObtained: 51}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.replaced)
}

func TestSubmitMarksRejectsDuplicateStudents(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{
		"e1": {ID: "e1", TeacherID: "t1", Name: "Midterm", MaxMarks: 50},
	}}
	svc := NewExamService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	err := svc.SubmitMarks(context.Background(), "t1", "e1", models.SubmitMarksRequest{
		Entries: []models.MarkEntry{
			{StudentID: "s1", MarksObtained: 10},
			{StudentID: "s1", MarksObtained: 20},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubmitMarksOwnerOnly(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{
		"e1": {ID: "e1", TeacherID: "t1", Name: "Midterm", MaxMarks: 50},
	}}
	svc := NewExamService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	err := svc.SubmitMarks(context.Background(), "t2", "e1", models.SubmitMarksRequest{
		Entries: []models.MarkEntry{{StudentID: "s1", MarksObtained: 10}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
}

func TestSubmitMarksReplacesSetAndRecordsActivity(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{
		"e1": {ID: "e1", TeacherID: "t1", Name: "Midterm", MaxMarks: 100},
	}}
	activity := &mockActivity{}
	svc := NewExamService(repo, activity, nil, validator.New(), zap.NewNop())

	err := svc.SubmitMarks(context.Background(), "t1", "e1", models.SubmitMarksRequest{
		Entries: []models.MarkEntry{
			{StudentID: "s1", MarksObtained: 92},
			{StudentID: "s2", MarksObtained: 30},
		},
	})
	require.NoError(t, err)
	assert.Len(t, repo.replaced, 2)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityMarks, activity.entries[0].Type)
}

func TestResultsNotFound(t *testing.T) {
	repo := &mockExamRepo{exams: map[string]*models.Exam{}}
	svc := NewExamService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Results(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestResultsEndToEnd(t *testing.T) {
	repo := &mockExamRepo{
		exams: map[string]*models.Exam{
			"e1": {ID: "e1", TeacherID: "t1", Name: "Midterm", ClassName: "10", Section: "A", MaxMarks: 100, ExamDate: time.Now()},
		},
		markRows: []models.MarkRow{
			markRow("s-alice", "Alice", 1, 92),
			markRow("s-bob", "Bob", 2, 30),
			markRow("s-carol", "Carol", 3, 33),
		},
	}
	svc := NewExamService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	results, err := svc.Results(context.Background(), "e1")
	require.NoError(t, err)
	require.Len(t, results.Rows, 3)
	assert.Equal(t, 51.67, results.Average)
	assert.Equal(t, "Alice", results.Rows[0].StudentName)
	assert.Equal(t, "Carol", results.Rows[1].StudentName)
	assert.Equal(t, "Bob", results.Rows[2].StudentName)
}

func TestExportResultsPDF(t *testing.T) {
	repo := &mockExamRepo{
		exams: map[string]*models.Exam{
			"e1": {ID: "e1", TeacherID: "t1", Name: "Midterm", ClassName: "10", Section: "A", MaxMarks: 100},
		},
		markRows: []models.MarkRow{markRow("s1", "Alice", 1, 92)},
	}
	svc := NewExamService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	payload, filename, err := svc.ExportResultsPDF(context.Background(), "e1")
	require.NoError(t, err)
	assert.Equal(t, "results-e1.pdf", filename)
	assert.NotEmpty(t, payload)
}
