package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type mockAttendanceRepo struct {
	roster   []models.AttendanceRosterRow
	saved    []models.AttendanceRecord
	history  []models.AttendanceHistoryRow
	summary  *models.AttendanceSummary
	hasSaved bool
}

func (m *mockAttendanceRepo) Roster(ctx context.Context, className, section string, date time.Time) ([]models.AttendanceRosterRow, error) {
	return m.roster, nil
}

func (m *mockAttendanceRepo) CountForDate(ctx context.Context, className, section string, date time.Time) (int, error) {
	if m.hasSaved {
		return len(m.saved), nil
	}
	return 0, nil
}

func (m *mockAttendanceRepo) ReplaceDay(ctx context.Context, className, section string, date time.Time, records []models.AttendanceRecord) error {
	m.saved = records
	m.hasSaved = true
	return nil
}

func (m *mockAttendanceRepo) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceHistoryRow, error) {
	return m.history, nil
}

func (m *mockAttendanceRepo) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	return m.summary, nil
}

func TestAttendanceSheetNotSubmitted(t *testing.T) {
	status := models.AttendancePresent
	repo := &mockAttendanceRepo{roster: []models.AttendanceRosterRow{
		{StudentID: "s1", FullName: "Alice", RollNumber: 1, Status: &status},
		{StudentID: "s2", FullName: "Bob", RollNumber: 2},
	}}
	svc := NewAttendanceService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	sheet, err := svc.Sheet(context.Background(), "10", "A", "2026-08-31")
	require.NoError(t, err)
	assert.False(t, sheet.Submitted)
	assert.Len(t, sheet.Rows, 2)
}

func TestAttendanceSheetBadDate(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Sheet(context.Background(), "10", "A", "31-08-2026")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceSubmitRejectsUnknownStatus(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), "t1", models.SubmitAttendanceRequest{
		ClassName: "10",
		Section:   "A",
		Date:      "2026-08-31",
		Entries:   []models.AttendanceEntry{{StudentID: "s1", Status: "Sleeping"}},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.saved)
}

func TestAttendanceSubmitRejectsDuplicateStudents(t *testing.T) {
	repo := &mockAttendanceRepo{}
	svc := NewAttendanceService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	_, err := svc.Submit(context.Background(), "t1", models.SubmitAttendanceRequest{
		ClassName: "10",
		Section:   "A",
		Date:      "2026-08-31",
		Entries: []models.AttendanceEntry{
			{StudentID: "s1", Status: models.AttendancePresent},
			{StudentID: "s1", Status: models.AttendanceAbsent},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAttendanceSubmitReplacesAndMarksSubmitted(t *testing.T) {
	repo := &mockAttendanceRepo{}
	activity := &mockActivity{}
	svc := NewAttendanceService(repo, activity, nil, validator.New(), zap.NewNop())

	sheet, err := svc.Submit(context.Background(), "t1", models.SubmitAttendanceRequest{
		ClassName: "10",
		Section:   "A",
		Date:      "2026-08-31",
		Entries: []models.AttendanceEntry{
			{StudentID: "s1", Status: models.AttendancePresent},
			{StudentID: "s2", Status: models.AttendanceLate},
		},
	})
	require.NoError(t, err)
	assert.True(t, sheet.Submitted)
	require.Len(t, repo.saved, 2)
	assert.Equal(t, "t1", repo.saved[0].MarkedBy)
	require.Len(t, activity.entries, 1)
	assert.Equal(t, models.ActivityAttendance, activity.entries[0].Type)

	// A retry of the same payload lands in the same state.
	sheet, err = svc.Submit(context.Background(), "t1", models.SubmitAttendanceRequest{
		ClassName: "10",
		Section:   "A",
		Date:      "2026-08-31",
		Entries: []models.AttendanceEntry{
			{StudentID: "s1", Status: models.AttendancePresent},
			{StudentID: "s2", Status: models.AttendanceLate},
		},
	})
	require.NoError(t, err)
	assert.True(t, sheet.Submitted)
	assert.Len(t, repo.saved, 2)
}

func TestAttendanceExportCSV(t *testing.T) {
	present := models.AttendancePresent
	repo := &mockAttendanceRepo{roster: []models.AttendanceRosterRow{
		{StudentID: "s1", FullName: "Alice", RollNumber: 1, Status: &present},
		{StudentID: "s2", FullName: "Bob", RollNumber: 2},
	}}
	svc := NewAttendanceService(repo, &mockActivity{}, nil, validator.New(), zap.NewNop())

	payload, filename, err := svc.ExportSheetCSV(context.Background(), "10", "A", "2026-08-31")
	require.NoError(t, err)
	assert.Equal(t, "attendance-10-A-2026-08-31.csv", filename)

	content := string(payload)
	assert.True(t, strings.HasPrefix(content, "\xEF\xBB\xBFRoll No,Student,Status"))
	assert.Contains(t, content, "Alice")
	assert.Contains(t, content, "Present")
}
