package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/avidev9/school-portal-api/internal/models"
)

// ProfileRepository handles persistence for teacher profiles.
type ProfileRepository struct {
	db *sqlx.DB
}

// NewProfileRepository constructs the repository.
func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// FindByUserID loads the profile attached to a teacher account.
func (r *ProfileRepository) FindByUserID(ctx context.Context, userID string) (*models.TeacherProfile, error) {
	var profile models.TeacherProfile
	query := `SELECT user_id, full_name, subject, employee_id, avatar_url, phone, bio, created_at, updated_at
FROM teacher_profiles WHERE user_id = $1`
	if err := r.db.GetContext(ctx, &profile, query, userID); err != nil {
		return nil, err
	}
	return &profile, nil
}

// Upsert creates or replaces the profile row keyed by user ID. Admins use it
// to seed subject and employee ID.
func (r *ProfileRepository) Upsert(ctx context.Context, profile *models.TeacherProfile) error {
	now := time.Now().UTC()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	query := `INSERT INTO teacher_profiles (user_id, full_name, subject, employee_id, avatar_url, phone, bio, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (user_id) DO UPDATE SET
	full_name = EXCLUDED.full_name,
	subject = EXCLUDED.subject,
	employee_id = EXCLUDED.employee_id,
	updated_at = EXCLUDED.updated_at`
	if _, err := r.db.ExecContext(ctx, query, profile.UserID, profile.FullName, profile.Subject, profile.EmployeeID, profile.AvatarURL, profile.Phone, profile.Bio, profile.CreatedAt, profile.UpdatedAt); err != nil {
		return fmt.Errorf("upsert teacher profile: %w", err)
	}
	return nil
}

// UpdateSelfFields persists the fields a teacher may edit on their own
// profile. Subject and employee ID are deliberately not part of this update.
func (r *ProfileRepository) UpdateSelfFields(ctx context.Context, userID string, phone, bio *string) error {
	query := `UPDATE teacher_profiles SET phone = $2, bio = $3, updated_at = $4 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, phone, bio, time.Now().UTC()); err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}
	return nil
}

// SetAvatarURL records the public URL of a freshly uploaded avatar.
func (r *ProfileRepository) SetAvatarURL(ctx context.Context, userID, url string) error {
	query := `UPDATE teacher_profiles SET avatar_url = $2, updated_at = $3 WHERE user_id = $1`
	if _, err := r.db.ExecContext(ctx, query, userID, url, time.Now().UTC()); err != nil {
		return fmt.Errorf("set avatar url: %w", err)
	}
	return nil
}
