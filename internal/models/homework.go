package models

import "time"

// HomeworkStatus tracks the review lifecycle of an assignment.
type HomeworkStatus string

const (
	HomeworkActive   HomeworkStatus = "active"
	HomeworkReviewed HomeworkStatus = "reviewed"
)

// Valid returns true when the status is a supported value.
func (s HomeworkStatus) Valid() bool {
	return s == HomeworkActive || s == HomeworkReviewed
}

// Homework represents an assignment posted to a class. A due date before the
// assigned date is tolerated; the original never enforced the ordering.
type Homework struct {
	ID           string         `db:"id" json:"id"`
	TeacherID    string         `db:"teacher_id" json:"teacher_id"`
	ClassName    string         `db:"class_name" json:"class_name"`
	Section      string         `db:"section" json:"section"`
	Subject      string         `db:"subject" json:"subject"`
	Description  string         `db:"description" json:"description"`
	AssignedDate time.Time      `db:"assigned_date" json:"assigned_date"`
	DueDate      time.Time      `db:"due_date" json:"due_date"`
	FileURL      *string        `db:"file_url" json:"file_url,omitempty"`
	Status       HomeworkStatus `db:"status" json:"status"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// CreateHomeworkRequest posts a new assignment. An optional attachment
// arrives as multipart form data and is stored before the row is linked.
type CreateHomeworkRequest struct {
	ClassName    string `form:"class_name" validate:"required"`
	Section      string `form:"section" validate:"required"`
	Subject      string `form:"subject" validate:"required"`
	Description  string `form:"description" validate:"required"`
	AssignedDate string `form:"assigned_date" validate:"required,datetime=2006-01-02"`
	DueDate      string `form:"due_date" validate:"required,datetime=2006-01-02"`
}

// UpdateHomeworkRequest edits an existing assignment.
type UpdateHomeworkRequest struct {
	Subject     *string         `json:"subject"`
	Description *string         `json:"description"`
	DueDate     *string         `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
	Status      *HomeworkStatus `json:"status"`
}

// HomeworkFilter scopes homework listings.
type HomeworkFilter struct {
	TeacherID string
	ClassName string
	Section   string
	Status    *HomeworkStatus
	Page      int
	PageSize  int
}
