package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/export"
)

type attendanceRepository interface {
	Roster(ctx context.Context, className, section string, date time.Time) ([]models.AttendanceRosterRow, error)
	CountForDate(ctx context.Context, className, section string, date time.Time) (int, error)
	ReplaceDay(ctx context.Context, className, section string, date time.Time, records []models.AttendanceRecord) error
	StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceHistoryRow, error)
	StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error)
}

// AttendanceService manages daily attendance sheets.
type AttendanceService struct {
	repo      attendanceRepository
	activity  activityAppender
	csv       *export.CSVExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, activity activityAppender, csv *export.CSVExporter, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	return &AttendanceService{repo: repo, activity: activity, csv: csv, validator: validate, logger: logger}
}

// Sheet returns the roster for a class day with any saved statuses. Submitted
// reports whether the day already has records so the client can lock editing.
func (s *AttendanceService) Sheet(ctx context.Context, className, section, dateStr string) (*models.AttendanceSheet, error) {
	date, err := parseDateOnly(dateStr)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.Roster(ctx, className, section, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}

	count, err := s.repo.CountForDate(ctx, className, section, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission")
	}

	return &models.AttendanceSheet{
		ClassName: className,
		Section:   section,
		Date:      dateStr,
		Submitted: count > 0,
		Rows:      rows,
	}, nil
}

// Submit replaces the class day's full attendance set. Re-submitting the same
// sheet lands in the same state, so retries after a dropped response are safe.
func (s *AttendanceService) Submit(ctx context.Context, teacherID string, req models.SubmitAttendanceRequest) (*models.AttendanceSheet, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	date, err := parseDateOnly(req.Date)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Entries))
	records := make([]models.AttendanceRecord, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if !entry.Status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown attendance status %q", entry.Status))
		}
		if _, dup := seen[entry.StudentID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duplicate student in attendance payload")
		}
		seen[entry.StudentID] = struct{}{}
		records = append(records, models.AttendanceRecord{
			StudentID: entry.StudentID,
			ClassName: req.ClassName,
			Section:   req.Section,
			Date:      date,
			Status:    entry.Status,
			MarkedBy:  teacherID,
		})
	}

	if err := s.repo.ReplaceDay(ctx, req.ClassName, req.Section, date, records); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}

	s.recordActivity(ctx, teacherID, models.ActivityAttendance,
		fmt.Sprintf("Submitted attendance for %s-%s on %s", req.ClassName, req.Section, req.Date))

	return s.Sheet(ctx, req.ClassName, req.Section, req.Date)
}

// ExportSheetCSV renders the class day's sheet as CSV for download.
func (s *AttendanceService) ExportSheetCSV(ctx context.Context, className, section, dateStr string) ([]byte, string, error) {
	sheet, err := s.Sheet(ctx, className, section, dateStr)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Roll No", "Student", "Status"},
	}
	for _, row := range sheet.Rows {
		status := ""
		if row.Status != nil {
			status = string(*row.Status)
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Roll No": strconv.Itoa(row.RollNumber),
			"Student": row.FullName,
			"Status":  status,
		})
	}

	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	filename := fmt.Sprintf("attendance-%s-%s-%s.csv", className, section, dateStr)
	return payload, filename, nil
}

// StudentHistory returns a student's dated statuses within an optional range.
func (s *AttendanceService) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceHistoryRow, error) {
	rows, err := s.repo.StudentHistory(ctx, studentID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance history")
	}
	return rows, nil
}

// StudentSummary aggregates a student's attendance counts.
func (s *AttendanceService) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	summary, err := s.repo.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance summary")
	}
	return summary, nil
}

func (s *AttendanceService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}

func parseDateOnly(value string) (time.Time, error) {
	date, err := time.ParseInLocation("2006-01-02", value, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	return date, nil
}
