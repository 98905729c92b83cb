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

// MaterialRepository handles persistence for study materials.
type MaterialRepository struct {
	db *sqlx.DB
}

// NewMaterialRepository constructs the repository.
func NewMaterialRepository(db *sqlx.DB) *MaterialRepository {
	return &MaterialRepository{db: db}
}

// Create inserts a material row.
func (r *MaterialRepository) Create(ctx context.Context, material *models.StudyMaterial) error {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	material.CreatedAt = time.Now().UTC()
	query := `INSERT INTO study_materials (id, teacher_id, title, subject, class_name, section, chapter, description, file_url, file_type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query, material.ID, material.TeacherID, material.Title, material.Subject, material.ClassName, material.Section, material.Chapter, material.Description, material.FileURL, material.FileType, material.CreatedAt); err != nil {
		return fmt.Errorf("create study material: %w", err)
	}
	return nil
}

// FindByID loads one material row.
func (r *MaterialRepository) FindByID(ctx context.Context, id string) (*models.StudyMaterial, error) {
	var material models.StudyMaterial
	query := `SELECT id, teacher_id, title, subject, class_name, section, chapter, description, file_url, file_type, created_at
FROM study_materials WHERE id = $1`
	if err := r.db.GetContext(ctx, &material, query, id); err != nil {
		return nil, err
	}
	return &material, nil
}

// List returns materials matching the filter, newest first.
func (r *MaterialRepository) List(ctx context.Context, filter models.MaterialFilter) ([]models.StudyMaterial, int, error) {
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

	query := fmt.Sprintf(`SELECT id, teacher_id, title, subject, class_name, section, chapter, description, file_url, file_type, created_at
FROM study_materials WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)

	var materials []models.StudyMaterial
	if err := r.db.SelectContext(ctx, &materials, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list study materials: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM study_materials WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count study materials: %w", err)
	}
	return materials, total, nil
}

// Delete removes a material row. The caller is responsible for the backing
// file object.
func (r *MaterialRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM study_materials WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete study material: %w", err)
	}
	return nil
}
