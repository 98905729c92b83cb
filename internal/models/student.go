package models

import "time"

// Student represents a learner registered in the institution. Class and
// section together form the composite key every class-scoped query filters by.
type Student struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"user_id,omitempty"`
	FullName   string    `db:"full_name" json:"full_name"`
	RollNumber int       `db:"roll_number" json:"roll_number"`
	ClassName  string    `db:"class_name" json:"class_name"`
	Section    string    `db:"section" json:"section"`
	Active     bool      `db:"active" json:"active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassName string
	Section   string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CreateStudentRequest is the admin payload for registering a student.
// UserID optionally links the roster entry to a portal account so the student
// can see their own record.
type CreateStudentRequest struct {
	UserID     *string `json:"user_id"`
	FullName   string  `json:"full_name" validate:"required"`
	RollNumber int     `json:"roll_number" validate:"required,min=1"`
	ClassName  string  `json:"class_name" validate:"required"`
	Section    string  `json:"section" validate:"required"`
}

// UpdateStudentRequest carries mutable student fields.
type UpdateStudentRequest struct {
	FullName   *string `json:"full_name"`
	RollNumber *int    `json:"roll_number" validate:"omitempty,min=1"`
	ClassName  *string `json:"class_name"`
	Section    *string `json:"section"`
	Active     *bool   `json:"active"`
}
