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

// StudentRepository handles persistence for students.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs the repository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filter.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.ClassName != "" {
		where = append(where, fmt.Sprintf("class_name = $%d", len(args)+1))
		args = append(args, filter.ClassName)
	}
	if filter.Section != "" {
		where = append(where, fmt.Sprintf("section = $%d", len(args)+1))
		args = append(args, filter.Section)
	}
	if filter.Active != nil {
		where = append(where, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("full_name ILIKE $%d", len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	whereClause := strings.Join(where, " AND ")

	sortBy := filter.SortBy
	allowedSort := map[string]string{
		"roll_number": "roll_number",
		"full_name":   "full_name",
		"created_at":  "created_at",
	}
	sortColumn, ok := allowedSort[sortBy]
	if !ok {
		sortColumn = "roll_number"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, user_id, full_name, roll_number, class_name, section, active, created_at, updated_at
FROM students WHERE %s ORDER BY %s %s LIMIT %d OFFSET %d`, whereClause, sortColumn, order, size, offset)

	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM students WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID loads one student.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	query := `SELECT id, user_id, full_name, roll_number, class_name, section, active, created_at, updated_at
FROM students WHERE id = $1`
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID loads the student row linked to a portal account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	query := `SELECT id, user_id, full_name, roll_number, class_name, section, active, created_at, updated_at
FROM students WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &student, query, userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// Create inserts a student row.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	now := time.Now().UTC()
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	student.CreatedAt = now
	student.UpdatedAt = now
	query := `INSERT INTO students (id, user_id, full_name, roll_number, class_name, section, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	if _, err := r.db.ExecContext(ctx, query, student.ID, student.UserID, student.FullName, student.RollNumber, student.ClassName, student.Section, student.Active, student.CreatedAt, student.UpdatedAt); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// Update persists mutable student fields.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	student.UpdatedAt = time.Now().UTC()
	query := `UPDATE students SET full_name = $2, roll_number = $3, class_name = $4, section = $5, active = $6, updated_at = $7
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, student.ID, student.FullName, student.RollNumber, student.ClassName, student.Section, student.Active, student.UpdatedAt); err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return nil
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	return nil
}
