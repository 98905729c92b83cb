package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
)

type activeHomeworkCounter interface {
	CountActive(ctx context.Context, teacherID string) (int, error)
}

type examLister interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
}

type noticeLister interface {
	List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error)
}

type activityLister interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEntry, int, error)
}

type timetableLister interface {
	List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error)
}

// OverviewService composes the teacher dashboard summary. Payloads go through
// the cache; the handler surfaces the hit flag in response metadata.
type OverviewService struct {
	homework  activeHomeworkCounter
	exams     examLister
	notices   noticeLister
	activity  activityLister
	timetable timetableLister
	cache     *CacheService
	cacheTTL  time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewOverviewService constructs an OverviewService instance.
func NewOverviewService(homework activeHomeworkCounter, exams examLister, notices noticeLister, activity activityLister, timetable timetableLister, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *OverviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &OverviewService{
		homework:  homework,
		exams:     exams,
		notices:   notices,
		activity:  activity,
		timetable: timetable,
		cache:     cache,
		cacheTTL:  cacheTTL,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Teacher returns the teacher's overview and whether it came from cache.
func (s *OverviewService) Teacher(ctx context.Context, teacherID string) (*models.TeacherOverview, bool, error) {
	if teacherID == "" {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}

	cacheKey := fmt.Sprintf("overview:teacher:%s", teacherID)
	if s.cache != nil {
		var cached models.TeacherOverview
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("overview cache read failed", zap.String("key", cacheKey), zap.Error(err))
		} else if hit {
			return &cached, true, nil
		}
	}

	overview, err := s.compose(ctx, teacherID)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, overview, s.cacheTTL); err != nil {
			s.logger.Warn("overview cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return overview, false, nil
}

// Invalidate drops the cached overview for one teacher. Mutating services
// call this after writes that change the summary.
func (s *OverviewService) Invalidate(ctx context.Context, teacherID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, fmt.Sprintf("overview:teacher:%s", teacherID)); err != nil {
		s.logger.Warn("overview cache invalidate failed", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

func (s *OverviewService) compose(ctx context.Context, teacherID string) (*models.TeacherOverview, error) {
	slots, err := s.timetable.List(ctx, models.TimetableFilter{TeacherID: teacherID, Day: s.now().Weekday().String()})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}

	activeHomework, err := s.homework.CountActive(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count homework")
	}

	exams, err := s.exams.List(ctx, models.ExamFilter{TeacherID: teacherID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	today := s.now().Truncate(24 * time.Hour)
	upcoming := 0
	for _, exam := range exams {
		if !exam.ExamDate.Before(today) {
			upcoming++
		}
	}

	_, publishedNotices, err := s.notices.List(ctx, models.NoticeFilter{TeacherID: teacherID, PublishedOnly: true, Unexpired: true, Page: 1, PageSize: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count notices")
	}

	recent, _, err := s.activity.List(ctx, models.ActivityFilter{UserID: teacherID, Page: 1, PageSize: 5})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load activity")
	}

	return &models.TeacherOverview{
		TeacherID:        teacherID,
		TodayPeriods:     len(slots),
		ActiveHomework:   activeHomework,
		UpcomingExams:    upcoming,
		PublishedNotices: publishedNotices,
		RecentActivity:   recent,
		GeneratedAt:      s.now(),
	}, nil
}
