package models

import "time"

// ActivityType labels an activity-log entry.
type ActivityType string

const (
	ActivityAttendance ActivityType = "attendance"
	ActivityMarks      ActivityType = "marks"
	ActivityHomework   ActivityType = "homework"
	ActivityNotice     ActivityType = "notice"
	ActivityMaterial   ActivityType = "material"
	ActivitySyllabus   ActivityType = "syllabus"
	ActivityProfile    ActivityType = "profile"
	ActivityAuth       ActivityType = "auth"
	ActivityAdmin      ActivityType = "admin"
)

// ActivityEntry is an append-only audit line shown on the dashboard. Entries
// are never edited or deleted through the API.
type ActivityEntry struct {
	ID          string       `db:"id" json:"id"`
	UserID      string       `db:"user_id" json:"user_id"`
	Type        ActivityType `db:"type" json:"type"`
	Description string       `db:"description" json:"description"`
	CreatedAt   time.Time    `db:"created_at" json:"created_at"`
}

// ActivityFilter scopes activity listings.
type ActivityFilter struct {
	UserID   string
	Type     *ActivityType
	Page     int
	PageSize int
}
