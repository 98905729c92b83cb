package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "Present"
	AttendanceAbsent  AttendanceStatus = "Absent"
	AttendanceLate    AttendanceStatus = "Late"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePresent, AttendanceAbsent, AttendanceLate:
		return true
	default:
		return false
	}
}

// AttendanceRecord is one student's status for one date. A class day's full
// set is replaced as a unit when the sheet is submitted.
type AttendanceRecord struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassName string           `db:"class_name" json:"class_name"`
	Section   string           `db:"section" json:"section"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	MarkedBy  string           `db:"marked_by" json:"marked_by"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceEntry is a single roster line in a submission payload.
type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// SubmitAttendanceRequest replaces a class day's attendance sheet.
type SubmitAttendanceRequest struct {
	ClassName string            `json:"class_name" validate:"required"`
	Section   string            `json:"section" validate:"required"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02"`
	Entries   []AttendanceEntry `json:"entries" validate:"required,min=1,dive"`
}

// AttendanceRosterRow pairs a student with any recorded status for a date.
type AttendanceRosterRow struct {
	StudentID  string            `db:"student_id" json:"student_id"`
	FullName   string            `db:"full_name" json:"full_name"`
	RollNumber int               `db:"roll_number" json:"roll_number"`
	Status     *AttendanceStatus `db:"status" json:"status,omitempty"`
}

// AttendanceSheet is the roster for one class+section+date. Submitted reports
// whether a saved sheet already exists, which locks the UI until the teacher
// explicitly re-enters edit mode.
type AttendanceSheet struct {
	ClassName string                `json:"class_name"`
	Section   string                `json:"section"`
	Date      string                `json:"date"`
	Submitted bool                  `json:"submitted"`
	Rows      []AttendanceRosterRow `json:"rows"`
}

// AttendanceSummary aggregates a student's counts.
type AttendanceSummary struct {
	Present int     `json:"present"`
	Absent  int     `json:"absent"`
	Late    int     `json:"late"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// AttendanceHistoryRow captures one dated status for a student.
type AttendanceHistoryRow struct {
	Date   time.Time        `db:"date" json:"date"`
	Status AttendanceStatus `db:"status" json:"status"`
}
