package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/avidev9/school-portal-api/internal/models"
)

// ExamRepository handles persistence for exams and their mark sets.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs the repository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// Create inserts an exam row.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	exam.CreatedAt = time.Now().UTC()
	query := `INSERT INTO exams (id, teacher_id, class_name, section, name, subject, max_marks, exam_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, exam.ID, exam.TeacherID, exam.ClassName, exam.Section, exam.Name, exam.Subject, exam.MaxMarks, exam.ExamDate, exam.CreatedAt); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// FindByID loads one exam.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	var exam models.Exam
	query := `SELECT id, teacher_id, class_name, section, name, subject, max_marks, exam_date, created_at
FROM exams WHERE id = $1`
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// List returns exams matching the filter, newest first.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.Exam, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.TeacherID != "" {
		where = append(where, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassName != "" {
		where = append(where, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Section != "" {
		where = append(where, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Subject != "" {
		where = append(where, fmt.Sprintf("subject = $%d", len(args)+1))
		args = append(args, filter.Subject)
	}
	query := fmt.Sprintf(`SELECT id, teacher_id, class_name, section, name, subject, max_marks, exam_date, created_at
FROM exams WHERE %s ORDER BY exam_date DESC`, strings.Join(where, " AND "))
	var exams []models.Exam
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, fmt.Errorf("list exams: %w", err)
	}
	return exams, nil
}

// Delete removes an exam and its marks.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin exam delete: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM marks WHERE exam_id = $1`, id); err != nil {
		return fmt.Errorf("delete exam marks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit exam delete: %w", err)
	}
	commit = true
	return nil
}

// ReplaceMarks swaps out the full mark set for one exam. Delete and insert
// run in one transaction so a failure between the two steps cannot leave the
// exam with a partial set.
func (r *ExamRepository) ReplaceMarks(ctx context.Context, examID string, marks []models.Mark) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin marks replace: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM marks WHERE exam_id = $1`, examID); err != nil {
		return fmt.Errorf("clear exam marks: %w", err)
	}

	insertQuery := `INSERT INTO marks (id, exam_id, student_id, marks_obtained, created_at)
VALUES ($1, $2, $3, $4, $5)`
	now := time.Now().UTC()
	for i := range marks {
		mark := &marks[i]
		if mark.ID == "" {
			mark.ID = uuid.NewString()
		}
		mark.ExamID = examID
		mark.CreatedAt = now
		if _, err := tx.ExecContext(ctx, insertQuery, mark.ID, mark.ExamID, mark.StudentID, mark.MarksObtained, mark.CreatedAt); err != nil {
			return fmt.Errorf("insert mark: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit marks replace: %w", err)
	}
	commit = true
	return nil
}

// MarksWithStudents returns the exam's marks joined with student metadata,
// ordered by marks descending then insertion order for stable ranking.
func (r *ExamRepository) MarksWithStudents(ctx context.Context, examID string) ([]models.MarkRow, error) {
	query := `SELECT m.id, m.exam_id, m.student_id, m.marks_obtained, m.created_at,
s.full_name AS student_name, s.roll_number
FROM marks m
JOIN students s ON s.id = m.student_id
WHERE m.exam_id = $1
ORDER BY m.created_at ASC, s.roll_number ASC`
	var rows []models.MarkRow
	if err := r.db.SelectContext(ctx, &rows, query, examID); err != nil {
		return nil, fmt.Errorf("exam marks: %w", err)
	}
	return rows, nil
}

// StudentMarks returns every mark row for one student with exam context.
func (r *ExamRepository) StudentMarks(ctx context.Context, studentID string) ([]models.MarkRow, error) {
	query := `SELECT m.id, m.exam_id, m.student_id, m.marks_obtained, m.created_at,
s.full_name AS student_name, s.roll_number
FROM marks m
JOIN students s ON s.id = m.student_id
WHERE m.student_id = $1
ORDER BY m.created_at DESC`
	var rows []models.MarkRow
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student marks: %w", err)
	}
	return rows, nil
}
