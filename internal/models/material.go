package models

import "time"

// StudyMaterial is a teacher upload linked to a stored file object. Deleting
// the row also deletes the backing object, best-effort.
type StudyMaterial struct {
	ID          string    `db:"id" json:"id"`
	TeacherID   string    `db:"teacher_id" json:"teacher_id"`
	Title       string    `db:"title" json:"title"`
	Subject     string    `db:"subject" json:"subject"`
	ClassName   string    `db:"class_name" json:"class_name"`
	Section     string    `db:"section" json:"section"`
	Chapter     *string   `db:"chapter" json:"chapter,omitempty"`
	Description *string   `db:"description" json:"description,omitempty"`
	FileURL     string    `db:"file_url" json:"file_url"`
	FileType    string    `db:"file_type" json:"file_type"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateMaterialRequest carries the metadata accompanying an upload. The file
// itself arrives as multipart form data.
type CreateMaterialRequest struct {
	Title       string  `form:"title" validate:"required"`
	Subject     string  `form:"subject" validate:"required"`
	ClassName   string  `form:"class_name" validate:"required"`
	Section     string  `form:"section" validate:"required"`
	Chapter     *string `form:"chapter"`
	Description *string `form:"description"`
}

// MaterialFilter scopes material listings.
type MaterialFilter struct {
	TeacherID string
	ClassName string
	Section   string
	Subject   string
	Page      int
	PageSize  int
}
