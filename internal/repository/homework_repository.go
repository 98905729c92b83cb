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

// HomeworkRepository handles persistence for homework assignments.
type HomeworkRepository struct {
	db *sqlx.DB
}

// NewHomeworkRepository constructs the repository.
func NewHomeworkRepository(db *sqlx.DB) *HomeworkRepository {
	return &HomeworkRepository{db: db}
}

// Create inserts a homework row.
func (r *HomeworkRepository) Create(ctx context.Context, hw *models.Homework) error {
	now := time.Now().UTC()
	if hw.ID == "" {
		hw.ID = uuid.NewString()
	}
	hw.CreatedAt = now
	hw.UpdatedAt = now
	query := `INSERT INTO homework (id, teacher_id, class_name, section, subject, description, assigned_date, due_date, file_url, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	if _, err := r.db.ExecContext(ctx, query, hw.ID, hw.TeacherID, hw.ClassName, hw.Section, hw.Subject, hw.Description, hw.AssignedDate, hw.DueDate, hw.FileURL, hw.Status, hw.CreatedAt, hw.UpdatedAt); err != nil {
		return fmt.Errorf("create homework: %w", err)
	}
	return nil
}

// FindByID loads one assignment.
func (r *HomeworkRepository) FindByID(ctx context.Context, id string) (*models.Homework, error) {
	var hw models.Homework
	query := `SELECT id, teacher_id, class_name, section, subject, description, assigned_date, due_date, file_url, status, created_at, updated_at
FROM homework WHERE id = $1`
	if err := r.db.GetContext(ctx, &hw, query, id); err != nil {
		return nil, err
	}
	return &hw, nil
}

// List returns homework matching the filter, newest assignment first.
func (r *HomeworkRepository) List(ctx context.Context, filter models.HomeworkFilter) ([]models.Homework, int, error) {
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
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, teacher_id, class_name, section, subject, description, assigned_date, due_date, file_url, status, created_at, updated_at
FROM homework WHERE %s ORDER BY assigned_date DESC LIMIT %d OFFSET %d`, whereClause, size, offset)

	var items []models.Homework
	if err := r.db.SelectContext(ctx, &items, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list homework: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM homework WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count homework: %w", err)
	}
	return items, total, nil
}

// Update persists mutable homework fields.
func (r *HomeworkRepository) Update(ctx context.Context, hw *models.Homework) error {
	hw.UpdatedAt = time.Now().UTC()
	query := `UPDATE homework SET subject = $2, description = $3, due_date = $4, file_url = $5, status = $6, updated_at = $7
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, hw.ID, hw.Subject, hw.Description, hw.DueDate, hw.FileURL, hw.Status, hw.UpdatedAt); err != nil {
		return fmt.Errorf("update homework: %w", err)
	}
	return nil
}

// Delete removes a homework row.
func (r *HomeworkRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM homework WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete homework: %w", err)
	}
	return nil
}

// CountActive reports active assignments for a teacher.
func (r *HomeworkRepository) CountActive(ctx context.Context, teacherID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM homework WHERE teacher_id = $1 AND status = 'active'`
	if err := r.db.GetContext(ctx, &count, query, teacherID); err != nil {
		return 0, fmt.Errorf("count active homework: %w", err)
	}
	return count, nil
}
