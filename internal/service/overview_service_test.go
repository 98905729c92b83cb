package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type stubHomeworkCounter struct {
	active int
}

func (s *stubHomeworkCounter) CountActive(ctx context.Context, teacherID string) (int, error) {
	return s.active, nil
}

type stubExamLister struct {
	exams []models.Exam
}

func (s *stubExamLister) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	return s.exams, nil
}

type stubNoticeLister struct {
	total      int
	lastFilter models.NoticeFilter
}

func (s *stubNoticeLister) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	s.lastFilter = filter
	return nil, s.total, nil
}

type stubActivityLister struct {
	entries []models.ActivityEntry
}

func (s *stubActivityLister) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEntry, int, error) {
	if filter.PageSize < len(s.entries) {
		return s.entries[:filter.PageSize], len(s.entries), nil
	}
	return s.entries, len(s.entries), nil
}

type stubTimetableLister struct {
	slots      []models.TimetableEntry
	lastFilter models.TimetableFilter
}

func (s *stubTimetableLister) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error) {
	s.lastFilter = filter
	return s.slots, nil
}

func TestOverviewComposesCounts(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	exams := &stubExamLister{exams: []models.Exam{
		{ID: "e1", ExamDate: day.AddDate(0, 0, 3)},
		{ID: "e2", ExamDate: day},
		{ID: "e3", ExamDate: day.AddDate(0, 0, -1)},
	}}
	activity := &stubActivityLister{entries: make([]models.ActivityEntry, 8)}
	notices := &stubNoticeLister{total: 4}
	timetable := &stubTimetableLister{slots: []models.TimetableEntry{{ID: "tt1"}, {ID: "tt2"}, {ID: "tt3"}}}
	svc := NewOverviewService(&stubHomeworkCounter{active: 2}, exams, notices, activity, timetable, nil, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return day.Add(10 * time.Hour) }

	overview, hit, err := svc.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, 3, overview.TodayPeriods)
	assert.Equal(t, 2, overview.ActiveHomework)
	assert.Equal(t, 2, overview.UpcomingExams)
	assert.Equal(t, 4, overview.PublishedNotices)
	assert.Len(t, overview.RecentActivity, 5)
	assert.True(t, notices.lastFilter.PublishedOnly)
	// 2026-08-31 is a Monday.
	assert.Equal(t, "Monday", timetable.lastFilter.Day)
}

func TestOverviewExamOnTodayCountsAsUpcoming(t *testing.T) {
	day := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	exams := &stubExamLister{exams: []models.Exam{{ID: "e1", ExamDate: day}}}
	svc := NewOverviewService(&stubHomeworkCounter{}, exams, &stubNoticeLister{}, &stubActivityLister{}, &stubTimetableLister{}, nil, time.Minute, zap.NewNop())
	svc.now = func() time.Time { return day.Add(23 * time.Hour) }

	overview, _, err := svc.Teacher(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, 1, overview.UpcomingExams)
}

func TestOverviewRequiresTeacherID(t *testing.T) {
	svc := NewOverviewService(&stubHomeworkCounter{}, &stubExamLister{}, &stubNoticeLister{}, &stubActivityLister{}, &stubTimetableLister{}, nil, time.Minute, zap.NewNop())

	_, _, err := svc.Teacher(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
