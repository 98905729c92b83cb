package models

import "time"

// TimetableEntry is one weekly teaching slot. Read-only to teachers;
// maintained by admins.
type TimetableEntry struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Day       string    `db:"day" json:"day"`
	TimeSlot  string    `db:"time_slot" json:"time_slot"`
	ClassName string    `db:"class_name" json:"class_name"`
	Section   string    `db:"section" json:"section"`
	Room      *string   `db:"room" json:"room,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateTimetableEntryRequest is the admin payload for a weekly slot.
type CreateTimetableEntryRequest struct {
	TeacherID string  `json:"teacher_id" validate:"required"`
	Day       string  `json:"day" validate:"required,oneof=Monday Tuesday Wednesday Thursday Friday Saturday"`
	TimeSlot  string  `json:"time_slot" validate:"required"`
	ClassName string  `json:"class_name" validate:"required"`
	Section   string  `json:"section" validate:"required"`
	Room      *string `json:"room"`
}

// TimetableFilter scopes timetable listings.
type TimetableFilter struct {
	TeacherID string
	ClassName string
	Section   string
	Day       string
}
