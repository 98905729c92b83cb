package models

import "time"

// NoticeAudience defines who a notice is addressed to.
type NoticeAudience string

const (
	NoticeAudienceAll      NoticeAudience = "all"
	NoticeAudienceStudents NoticeAudience = "students"
	NoticeAudienceTeachers NoticeAudience = "teachers"
)

// Valid returns true when the audience is a supported value.
func (a NoticeAudience) Valid() bool {
	switch a {
	case NoticeAudienceAll, NoticeAudienceStudents, NoticeAudienceTeachers:
		return true
	default:
		return false
	}
}

// NoticePriority orders notices on the board.
type NoticePriority string

const (
	NoticePriorityLow    NoticePriority = "low"
	NoticePriorityNormal NoticePriority = "normal"
	NoticePriorityHigh   NoticePriority = "high"
)

// Notice represents a notice-board entry. An expired notice (expiry before
// today) is read-only regardless of its stored published flag.
type Notice struct {
	ID          string         `db:"id" json:"id"`
	TeacherID   string         `db:"teacher_id" json:"teacher_id"`
	Title       string         `db:"title" json:"title"`
	Body        string         `db:"body" json:"body"`
	Audience    NoticeAudience `db:"audience" json:"audience"`
	Priority    NoticePriority `db:"priority" json:"priority"`
	PublishDate time.Time      `db:"publish_date" json:"publish_date"`
	ExpiryDate  time.Time      `db:"expiry_date" json:"expiry_date"`
	IsPublished bool           `db:"is_published" json:"is_published"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the notice's expiry date is strictly before the
// given day.
func (n Notice) Expired(today time.Time) bool {
	y1, m1, d1 := n.ExpiryDate.Date()
	y2, m2, d2 := today.Date()
	expiry := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	day := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	return expiry.Before(day)
}

// CreateNoticeRequest posts a new notice.
type CreateNoticeRequest struct {
	Title       string         `json:"title" validate:"required"`
	Body        string         `json:"body" validate:"required"`
	Audience    NoticeAudience `json:"audience" validate:"required"`
	Priority    NoticePriority `json:"priority" validate:"omitempty,oneof=low normal high"`
	PublishDate string         `json:"publish_date" validate:"required,datetime=2006-01-02"`
	ExpiryDate  string         `json:"expiry_date" validate:"required,datetime=2006-01-02"`
	IsPublished bool           `json:"is_published"`
}

// UpdateNoticeRequest edits an existing notice.
type UpdateNoticeRequest struct {
	Title      *string         `json:"title"`
	Body       *string         `json:"body"`
	Audience   *NoticeAudience `json:"audience"`
	Priority   *NoticePriority `json:"priority" validate:"omitempty,oneof=low normal high"`
	ExpiryDate *string         `json:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
}

// NoticeFilter scopes notice listings.
type NoticeFilter struct {
	TeacherID     string
	Audience      *NoticeAudience
	PublishedOnly bool
	Unexpired     bool
	Page          int
	PageSize      int
}
