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

// AttendanceRepository handles persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// Roster returns the class roster joined with any recorded statuses for the
// given date, ordered by roll number.
func (r *AttendanceRepository) Roster(ctx context.Context, className, section string, date time.Time) ([]models.AttendanceRosterRow, error) {
	query := `SELECT s.id AS student_id, s.full_name, s.roll_number, ar.status
FROM students s
LEFT JOIN attendance_records ar ON ar.student_id = s.id AND ar.date = $3
WHERE s.class_name = $1 AND s.section = $2 AND s.active = TRUE
ORDER BY s.roll_number ASC`
	var rows []models.AttendanceRosterRow
	if err := r.db.SelectContext(ctx, &rows, query, className, section, date); err != nil {
		return nil, fmt.Errorf("attendance roster: %w", err)
	}
	return rows, nil
}

// CountForDate reports how many records exist for a class day. A non-zero
// count means the sheet was already submitted.
func (r *AttendanceRepository) CountForDate(ctx context.Context, className, section string, date time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM attendance_records WHERE class_name = $1 AND section = $2 AND date = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, className, section, date); err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return count, nil
}

// ReplaceDay swaps out the full attendance set for one class+section+date.
// Delete and insert run in one transaction so a failure between the two steps
// cannot leave the day empty.
func (r *AttendanceRepository) ReplaceDay(ctx context.Context, className, section string, date time.Time, records []models.AttendanceRecord) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendance replace: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	deleteQuery := `DELETE FROM attendance_records WHERE class_name = $1 AND section = $2 AND date = $3`
	if _, err := tx.ExecContext(ctx, deleteQuery, className, section, date); err != nil {
		return fmt.Errorf("clear attendance day: %w", err)
	}

	insertQuery := `INSERT INTO attendance_records (id, student_id, class_name, section, date, status, marked_by, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	now := time.Now().UTC()
	for i := range records {
		rec := &records[i]
		if rec.ID == "" {
			rec.ID = uuid.NewString()
		}
		rec.CreatedAt = now
		if _, err := tx.ExecContext(ctx, insertQuery, rec.ID, rec.StudentID, rec.ClassName, rec.Section, rec.Date, rec.Status, rec.MarkedBy, rec.CreatedAt); err != nil {
			return fmt.Errorf("insert attendance record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendance replace: %w", err)
	}
	commit = true
	return nil
}

// StudentHistory returns a student's dated statuses, newest first.
func (r *AttendanceRepository) StudentHistory(ctx context.Context, studentID string, from, to *time.Time) ([]models.AttendanceHistoryRow, error) {
	where := []string{"student_id = $1"}
	args := []interface{}{studentID}
	if from != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *from)
	}
	if to != nil {
		where = append(where, fmt.Sprintf("date <= $%d", len(args)+1))
		args = append(args, *to)
	}
	query := fmt.Sprintf(`SELECT date, status FROM attendance_records WHERE %s ORDER BY date DESC`, strings.Join(where, " AND "))
	var rows []models.AttendanceHistoryRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("student attendance history: %w", err)
	}
	return rows, nil
}

// StudentSummary aggregates a student's status counts.
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID string) (*models.AttendanceSummary, error) {
	query := `SELECT status, COUNT(*) AS cnt FROM attendance_records WHERE student_id = $1 GROUP BY status`
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, studentID); err != nil {
		return nil, fmt.Errorf("student attendance summary: %w", err)
	}
	summary := &models.AttendanceSummary{}
	for _, row := range rows {
		switch models.AttendanceStatus(row.Status) {
		case models.AttendancePresent:
			summary.Present += row.Count
		case models.AttendanceAbsent:
			summary.Absent += row.Count
		case models.AttendanceLate:
			summary.Late += row.Count
		}
		summary.Total += row.Count
	}
	if summary.Total > 0 {
		summary.Percent = float64(summary.Present+summary.Late) / float64(summary.Total) * 100
	}
	return summary, nil
}
