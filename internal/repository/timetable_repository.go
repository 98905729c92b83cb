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

// TimetableRepository handles persistence for weekly teaching slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// Create inserts one weekly slot.
func (r *TimetableRepository) Create(ctx context.Context, entry *models.TimetableEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now().UTC()
	query := `INSERT INTO timetable_entries (id, teacher_id, day, time_slot, class_name, section, room, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(ctx, query, entry.ID, entry.TeacherID, entry.Day, entry.TimeSlot, entry.ClassName, entry.Section, entry.Room, entry.CreatedAt); err != nil {
		return fmt.Errorf("create timetable entry: %w", err)
	}
	return nil
}

// List returns slots matching the filter in weekday then slot order.
func (r *TimetableRepository) List(ctx context.Context, filter models.TimetableFilter) ([]models.TimetableEntry, error) {
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
	if filter.Day != "" {
		where = append(where, fmt.Sprintf("day = $%d", len(args)+1))
		args = append(args, filter.Day)
	}
	query := fmt.Sprintf(`SELECT id, teacher_id, day, time_slot, class_name, section, room, created_at
FROM timetable_entries WHERE %s
ORDER BY CASE day
	WHEN 'Monday' THEN 1 WHEN 'Tuesday' THEN 2 WHEN 'Wednesday' THEN 3
	WHEN 'Thursday' THEN 4 WHEN 'Friday' THEN 5 ELSE 6 END, time_slot ASC`, strings.Join(where, " AND "))
	var entries []models.TimetableEntry
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable entries: %w", err)
	}
	return entries, nil
}

// Delete removes a slot.
func (r *TimetableRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM timetable_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete timetable entry: %w", err)
	}
	return nil
}
