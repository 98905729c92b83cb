package models

import "time"

// TeacherOverview is the dashboard summary card set for one teacher. The
// payload is cached; GeneratedAt tells the client how stale it may be.
type TeacherOverview struct {
	TeacherID        string          `json:"teacher_id"`
	TodayPeriods     int             `json:"today_periods"`
	ActiveHomework   int             `json:"active_homework"`
	UpcomingExams    int             `json:"upcoming_exams"`
	PublishedNotices int             `json:"published_notices"`
	RecentActivity   []ActivityEntry `json:"recent_activity"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// ContactRequest is the public contact form payload relayed to the form
// delivery provider.
type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject" validate:"required"`
	Message string `json:"message" validate:"required"`
}
