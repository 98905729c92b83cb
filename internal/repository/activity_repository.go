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

// ActivityRepository appends and lists audit entries. There is no update or
// delete path; the log is append-only.
type ActivityRepository struct {
	db *sqlx.DB
}

// NewActivityRepository constructs the repository.
func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append records one entry.
func (r *ActivityRepository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	query := `INSERT INTO activity_log (id, user_id, type, description, created_at)
VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.UserID, entry.Type, entry.Description, entry.CreatedAt); err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// List returns entries matching the filter, newest first.
func (r *ActivityRepository) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityEntry, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != "" {
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Type != nil {
		where = append(where, fmt.Sprintf("type = $%d", len(args)+1))
		args = append(args, *filter.Type)
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

	query := fmt.Sprintf(`SELECT id, user_id, type, description, created_at
FROM activity_log WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`, whereClause, size, offset)

	var entries []models.ActivityEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list activity: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM activity_log WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count activity: %w", err)
	}
	return entries, total, nil
}
