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

// SyllabusRepository handles persistence for syllabus chapters and their
// progress counters.
type SyllabusRepository struct {
	db *sqlx.DB
}

// NewSyllabusRepository constructs the repository.
func NewSyllabusRepository(db *sqlx.DB) *SyllabusRepository {
	return &SyllabusRepository{db: db}
}

// CreateChapter inserts a chapter and its zeroed progress row in one
// transaction.
func (r *SyllabusRepository) CreateChapter(ctx context.Context, chapter *models.SyllabusChapter) error {
	if chapter.ID == "" {
		chapter.ID = uuid.NewString()
	}
	chapter.CreatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chapter create: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()

	chapterQuery := `INSERT INTO syllabus_chapters (id, class_name, subject, chapter_name, total_topics, estimated_sessions, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	if _, err := tx.ExecContext(ctx, chapterQuery, chapter.ID, chapter.ClassName, chapter.Subject, chapter.ChapterName, chapter.TotalTopics, chapter.EstimatedSessions, chapter.CreatedAt); err != nil {
		return fmt.Errorf("create syllabus chapter: %w", err)
	}
	progressQuery := `INSERT INTO syllabus_progress (chapter_id, topics_completed, sessions_taken, updated_at)
VALUES ($1, 0, 0, $2)`
	if _, err := tx.ExecContext(ctx, progressQuery, chapter.ID, chapter.CreatedAt); err != nil {
		return fmt.Errorf("seed syllabus progress: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chapter create: %w", err)
	}
	commit = true
	return nil
}

// FindChapter loads one chapter with its counters.
func (r *SyllabusRepository) FindChapter(ctx context.Context, id string) (*models.SyllabusChapterProgress, error) {
	var row models.SyllabusChapterProgress
	query := `SELECT c.id, c.class_name, c.subject, c.chapter_name, c.total_topics, c.estimated_sessions, c.created_at,
p.topics_completed, p.sessions_taken
FROM syllabus_chapters c
JOIN syllabus_progress p ON p.chapter_id = c.id
WHERE c.id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		return nil, err
	}
	return &row, nil
}

// ListChapters returns chapters with counters, optionally scoped to a class
// and subject, in creation order.
func (r *SyllabusRepository) ListChapters(ctx context.Context, className, subject string) ([]models.SyllabusChapterProgress, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if className != "" {
		where = append(where, fmt.Sprintf("c.class_name = $%d", len(args)+1))
		args = append(args, className)
	}
	if subject != "" {
		where = append(where, fmt.Sprintf("c.subject = $%d", len(args)+1))
		args = append(args, subject)
	}
	query := fmt.Sprintf(`SELECT c.id, c.class_name, c.subject, c.chapter_name, c.total_topics, c.estimated_sessions, c.created_at,
p.topics_completed, p.sessions_taken
FROM syllabus_chapters c
JOIN syllabus_progress p ON p.chapter_id = c.id
WHERE %s ORDER BY c.created_at ASC`, strings.Join(where, " AND "))
	var rows []models.SyllabusChapterProgress
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list syllabus chapters: %w", err)
	}
	return rows, nil
}

// AdjustProgress applies deltas to a chapter's counters with clamping done in
// the database so concurrent adjustments cannot push a counter out of range.
// It returns the committed counters.
func (r *SyllabusRepository) AdjustProgress(ctx context.Context, chapterID string, topicsDelta, sessionsDelta int) (*models.SyllabusProgress, error) {
	var progress models.SyllabusProgress
	query := `UPDATE syllabus_progress p SET
	topics_completed = LEAST(c.total_topics, GREATEST(0, p.topics_completed + $2)),
	sessions_taken = GREATEST(0, p.sessions_taken + $3),
	updated_at = $4
FROM syllabus_chapters c
WHERE p.chapter_id = $1 AND c.id = p.chapter_id
RETURNING p.chapter_id, p.topics_completed, p.sessions_taken, p.updated_at`
	if err := r.db.GetContext(ctx, &progress, query, chapterID, topicsDelta, sessionsDelta, time.Now().UTC()); err != nil {
		return nil, err
	}
	return &progress, nil
}

// DeleteChapter removes a chapter and its progress row.
func (r *SyllabusRepository) DeleteChapter(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin chapter delete: %w", err)
	}
	commit := false
	defer func() {
		if !commit {
			tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `DELETE FROM syllabus_progress WHERE chapter_id = $1`, id); err != nil {
		return fmt.Errorf("delete syllabus progress: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM syllabus_chapters WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete syllabus chapter: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit chapter delete: %w", err)
	}
	commit = true
	return nil
}
