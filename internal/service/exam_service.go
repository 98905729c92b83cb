package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/avidev9/school-portal-api/internal/models"
	appErrors "github.com/avidev9/school-portal-api/pkg/errors"
	"github.com/avidev9/school-portal-api/pkg/export"
)

type examRepository interface {
	Create(ctx context.Context, exam *models.Exam) error
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error)
	Delete(ctx context.Context, id string) error
	ReplaceMarks(ctx context.Context, examID string, marks []models.Mark) error
	MarksWithStudents(ctx context.Context, examID string) ([]models.MarkRow, error)
	StudentMarks(ctx context.Context, studentID string) ([]models.MarkRow, error)
}

// ExamService manages exams, mark entry and result computation.
type ExamService struct {
	repo      examRepository
	activity  activityAppender
	pdf       *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService constructs an ExamService instance.
func NewExamService(repo examRepository, activity activityAppender, pdf *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExamService{repo: repo, activity: activity, pdf: pdf, validator: validate, logger: logger}
}

// Create registers an exam shell before marks entry.
func (s *ExamService) Create(ctx context.Context, teacherID string, req models.CreateExamRequest) (*models.Exam, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}

	examDate, err := parseDateOnly(req.ExamDate)
	if err != nil {
		return nil, err
	}

	exam := &models.Exam{
		TeacherID: teacherID,
		ClassName: req.ClassName,
		Section:   req.Section,
		Name:      req.Name,
		Subject:   req.Subject,
		MaxMarks:  req.MaxMarks,
		ExamDate:  examDate,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}

	s.recordActivity(ctx, teacherID, models.ActivityMarks,
		fmt.Sprintf("Created exam %q for %s-%s", exam.Name, exam.ClassName, exam.Section))
	return exam, nil
}

// List returns exams scoped by the filter.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	exams, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}
	return exams, nil
}

// Delete removes an exam and its marks. Only the owning teacher may delete.
func (s *ExamService) Delete(ctx context.Context, teacherID, examID string) error {
	exam, err := s.loadOwned(ctx, teacherID, examID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, examID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	s.recordActivity(ctx, teacherID, models.ActivityMarks, fmt.Sprintf("Deleted exam %q", exam.Name))
	return nil
}

// SubmitMarks replaces the exam's full mark set. Every score must fall within
// [0, max_marks] or the whole submission is rejected.
func (s *ExamService) SubmitMarks(ctx context.Context, teacherID, examID string, req models.SubmitMarksRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}

	exam, err := s.loadOwned(ctx, teacherID, examID)
	if err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(req.Entries))
	marks := make([]models.Mark, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.MarksObtained < 0 || entry.MarksObtained > exam.MaxMarks {
			return appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("marks for student %s must be between 0 and %g", entry.StudentID, exam.MaxMarks))
		}
		if _, dup := seen[entry.StudentID]; dup {
			return appErrors.Clone(appErrors.ErrValidation, "duplicate student in marks payload")
		}
		seen[entry.StudentID] = struct{}{}
		marks = append(marks, models.Mark{
			StudentID:     entry.StudentID,
			MarksObtained: entry.MarksObtained,
		})
	}

	if err := s.repo.ReplaceMarks(ctx, examID, marks); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save marks")
	}

	s.recordActivity(ctx, teacherID, models.ActivityMarks,
		fmt.Sprintf("Entered marks for exam %q (%d students)", exam.Name, len(marks)))
	return nil
}

// Results computes per-student percentage, grade, pass flag and rank for an
// exam, plus the class average.
func (s *ExamService) Results(ctx context.Context, examID string) (*models.ExamResults, error) {
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	markRows, err := s.repo.MarksWithStudents(ctx, examID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marks")
	}

	return &models.ExamResults{
		Exam:    *exam,
		Rows:    ComputeResults(*exam, markRows),
		Average: ComputeAverage(markRows),
	}, nil
}

// ExportResultsPDF renders an exam's computed results as a PDF report card.
func (s *ExamService) ExportResultsPDF(ctx context.Context, examID string) ([]byte, string, error) {
	results, err := s.Results(ctx, examID)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Rank", "Roll No", "Student", "Marks", "Percent", "Grade", "Result"},
	}
	for _, row := range results.Rows {
		result := "FAIL"
		if row.Passed {
			result = "PASS"
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Rank":    strconv.Itoa(row.Rank),
			"Roll No": strconv.Itoa(row.RollNumber),
			"Student": row.StudentName,
			"Marks":   strconv.FormatFloat(row.MarksObtained, 'f', -1, 64),
			"Percent": fmt.Sprintf("%.2f", row.Percentage),
			"Grade":   row.Grade,
			"Result":  result,
		})
	}

	title := fmt.Sprintf("%s Results %s-%s", results.Exam.Name, results.Exam.ClassName, results.Exam.Section)
	payload, err := s.pdf.Render(dataset, title)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	filename := fmt.Sprintf("results-%s.pdf", results.Exam.ID)
	return payload, filename, nil
}

// StudentResults returns a student's graded rows across all exams.
func (s *ExamService) StudentResults(ctx context.Context, studentID string) ([]models.ExamResultRow, error) {
	markRows, err := s.repo.StudentMarks(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load marks")
	}

	rows := make([]models.ExamResultRow, 0, len(markRows))
	for _, mr := range markRows {
		exam, err := s.repo.FindByID(ctx, mr.ExamID)
		if err != nil {
			s.logger.Warn("skipping mark with missing exam", zap.String("exam_id", mr.ExamID), zap.Error(err))
			continue
		}
		pct := Percentage(mr.MarksObtained, exam.MaxMarks)
		rows = append(rows, models.ExamResultRow{
			StudentID:     mr.StudentID,
			StudentName:   mr.StudentName,
			RollNumber:    mr.RollNumber,
			MarksObtained: mr.MarksObtained,
			Percentage:    pct,
			Grade:         GradeBand(pct),
			Passed:        pct >= passThreshold,
		})
	}
	return rows, nil
}

func (s *ExamService) loadOwned(ctx context.Context, teacherID, examID string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, examID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if exam.TeacherID != teacherID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "exam belongs to another teacher")
	}
	return exam, nil
}

func (s *ExamService) recordActivity(ctx context.Context, userID string, typ models.ActivityType, description string) {
	if s.activity == nil {
		return
	}
	entry := &models.ActivityEntry{UserID: userID, Type: typ, Description: description}
	if err := s.activity.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.Error(err))
	}
}

const passThreshold = 33.0

// Percentage computes a score's share of the maximum, rounded to two
// decimals. A non-positive maximum yields zero.
func Percentage(obtained, max float64) float64 {
	if max <= 0 {
		return 0
	}
	return math.Round(obtained/max*10000) / 100
}

// GradeBand maps a percentage to its letter grade.
func GradeBand(pct float64) string {
	switch {
	case pct >= 90:
		return "A1"
	case pct >= 80:
		return "A2"
	case pct >= 70:
		return "B1"
	case pct >= 60:
		return "B2"
	case pct >= 50:
		return "C"
	case pct >= passThreshold:
		return "D"
	default:
		return "F"
	}
}

// ComputeResults grades every mark row and assigns ranks by marks descending.
// Equal scores keep their input order, so ranking is deterministic for a
// given mark set.
func ComputeResults(exam models.Exam, markRows []models.MarkRow) []models.ExamResultRow {
	rows := make([]models.ExamResultRow, 0, len(markRows))
	for _, mr := range markRows {
		pct := Percentage(mr.MarksObtained, exam.MaxMarks)
		rows = append(rows, models.ExamResultRow{
			StudentID:     mr.StudentID,
			StudentName:   mr.StudentName,
			RollNumber:    mr.RollNumber,
			MarksObtained: mr.MarksObtained,
			Percentage:    pct,
			Grade:         GradeBand(pct),
			Passed:        pct >= passThreshold,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MarksObtained > rows[j].MarksObtained
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

// ComputeAverage returns the mean of obtained marks rounded to two decimals.
func ComputeAverage(markRows []models.MarkRow) float64 {
	if len(markRows) == 0 {
		return 0
	}
	var sum float64
	for _, mr := range markRows {
		sum += mr.MarksObtained
	}
	return math.Round(sum/float64(len(markRows))*100) / 100
}
