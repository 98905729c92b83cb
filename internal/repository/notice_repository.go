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

// NoticeRepository handles persistence for notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository constructs the repository.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create inserts a notice row.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	now := time.Now().UTC()
	if notice.ID == "" {
		notice.ID = uuid.NewString()
	}
	notice.CreatedAt = now
	notice.UpdatedAt = now
	query := `INSERT INTO notices (id, teacher_id, title, body, audience, priority, publish_date, expiry_date, is_published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	if _, err := r.db.ExecContext(ctx, query, notice.ID, notice.TeacherID, notice.Title, notice.Body, notice.Audience, notice.Priority, notice.PublishDate, notice.ExpiryDate, notice.IsPublished, notice.CreatedAt, notice.UpdatedAt); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// FindByID loads one notice.
func (r *NoticeRepository) FindByID(ctx context.Context, id string) (*models.Notice, error) {
	var notice models.Notice
	query := `SELECT id, teacher_id, title, body, audience, priority, publish_date, expiry_date, is_published, created_at, updated_at
FROM notices WHERE id = $1`
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		return nil, err
	}
	return &notice, nil
}

// List returns notices matching the filter, high priority and newest first.
func (r *NoticeRepository) List(ctx context.Context, filter models.NoticeFilter) ([]models.Notice, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.TeacherID != "" {
		where = append(where, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Audience != nil {
		where = append(where, fmt.Sprintf("(audience = $%d OR audience = 'all')", len(args)+1))
		args = append(args, *filter.Audience)
	}
	if filter.PublishedOnly {
		where = append(where, "is_published = TRUE")
		where = append(where, fmt.Sprintf("publish_date <= $%d", len(args)+1))
		args = append(args, time.Now().UTC())
	}
	if filter.Unexpired {
		where = append(where, fmt.Sprintf("expiry_date >= $%d", len(args)+1))
		args = append(args, time.Now().UTC().Truncate(24*time.Hour))
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

	query := fmt.Sprintf(`SELECT id, teacher_id, title, body, audience, priority, publish_date, expiry_date, is_published, created_at, updated_at
FROM notices WHERE %s
ORDER BY CASE priority WHEN 'high' THEN 0 WHEN 'normal' THEN 1 ELSE 2 END, publish_date DESC
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list notices: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notices WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count notices: %w", err)
	}
	return notices, total, nil
}

// Update persists mutable notice fields.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	notice.UpdatedAt = time.Now().UTC()
	query := `UPDATE notices SET title = $2, body = $3, audience = $4, priority = $5, expiry_date = $6, is_published = $7, updated_at = $8
WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, notice.ID, notice.Title, notice.Body, notice.Audience, notice.Priority, notice.ExpiryDate, notice.IsPublished, notice.UpdatedAt); err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return nil
}

// SetPublished flips the published flag.
func (r *NoticeRepository) SetPublished(ctx context.Context, id string, published bool) error {
	query := `UPDATE notices SET is_published = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, published, time.Now().UTC()); err != nil {
		return fmt.Errorf("set notice published: %w", err)
	}
	return nil
}

// Delete removes a notice row.
func (r *NoticeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notices WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}
