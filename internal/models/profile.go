package models

import "time"

// TeacherProfile holds teacher-facing profile data. Subject and employee ID
// are admin-set; self-service updates only touch phone, bio and avatar.
type TeacherProfile struct {
	UserID     string    `db:"user_id" json:"user_id"`
	FullName   string    `db:"full_name" json:"full_name"`
	Subject    string    `db:"subject" json:"subject"`
	EmployeeID string    `db:"employee_id" json:"employee_id"`
	AvatarURL  *string   `db:"avatar_url" json:"avatar_url,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Bio        *string   `db:"bio" json:"bio,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// UpdateTeacherProfileRequest carries the self-editable fields.
type UpdateTeacherProfileRequest struct {
	Phone *string `json:"phone" validate:"omitempty,max=20"`
	Bio   *string `json:"bio" validate:"omitempty,max=2000"`
}
