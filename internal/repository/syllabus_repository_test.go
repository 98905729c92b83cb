package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avidev9/school-portal-api/internal/models"
)

func newSyllabusMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSyllabusRepositoryCreateChapterSeedsProgress(t *testing.T) {
	db, mock, cleanup := newSyllabusMock(t)
	defer cleanup()
	repo := NewSyllabusRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO syllabus_chapters").
		WithArgs(sqlmock.AnyArg(), "10", "Maths", "Quadratic Equations", 8, 12, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO syllabus_progress").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	chapter := &models.SyllabusChapter{
		ClassName:         "10",
		Subject:           "Maths",
		ChapterName:       "Quadratic Equations",
		TotalTopics:       8,
		EstimatedSessions: 12,
	}
	err := repo.CreateChapter(context.Background(), chapter)
	require.NoError(t, err)
	assert.NotEmpty(t, chapter.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyllabusRepositoryAdjustProgressClampsInDatabase(t *testing.T) {
	db, mock, cleanup := newSyllabusMock(t)
	defer cleanup()
	repo := NewSyllabusRepository(db)

	rows := sqlmock.NewRows([]string{"chapter_id", "topics_completed", "sessions_taken", "updated_at"}).
		AddRow("ch1", 8, 3, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("UPDATE syllabus_progress p SET")).
		WithArgs("ch1", 20, 0, sqlmock.AnyArg()).
		WillReturnRows(rows)

	progress, err := repo.AdjustProgress(context.Background(), "ch1", 20, 0)
	require.NoError(t, err)
	assert.Equal(t, 8, progress.TopicsCompleted)
	assert.Equal(t, 3, progress.SessionsTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyllabusRepositoryAdjustProgressUnknownChapter(t *testing.T) {
	db, mock, cleanup := newSyllabusMock(t)
	defer cleanup()
	repo := NewSyllabusRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE syllabus_progress p SET")).
		WithArgs("ghost", 1, 0, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.AdjustProgress(context.Background(), "ghost", 1, 0)
	require.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSyllabusRepositoryDeleteChapter(t *testing.T) {
	db, mock, cleanup := newSyllabusMock(t)
	defer cleanup()
	repo := NewSyllabusRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM syllabus_progress WHERE chapter_id = $1")).
		WithArgs("ch1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM syllabus_chapters WHERE id = $1")).
		WithArgs("ch1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.DeleteChapter(context.Background(), "ch1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
