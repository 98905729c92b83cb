package models

import "time"

// SyllabusChapter describes one chapter of a class subject's syllabus.
type SyllabusChapter struct {
	ID                string    `db:"id" json:"id"`
	ClassName         string    `db:"class_name" json:"class_name"`
	Subject           string    `db:"subject" json:"subject"`
	ChapterName       string    `db:"chapter_name" json:"chapter_name"`
	TotalTopics       int       `db:"total_topics" json:"total_topics"`
	EstimatedSessions int       `db:"estimated_sessions" json:"estimated_sessions"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

// SyllabusProgress tracks two independently adjustable counters per chapter.
// TopicsCompleted stays within [0, TotalTopics]; SessionsTaken stays >= 0.
type SyllabusProgress struct {
	ChapterID       string    `db:"chapter_id" json:"chapter_id"`
	TopicsCompleted int       `db:"topics_completed" json:"topics_completed"`
	SessionsTaken   int       `db:"sessions_taken" json:"sessions_taken"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// SyllabusChapterProgress joins a chapter with its progress counters.
type SyllabusChapterProgress struct {
	SyllabusChapter
	TopicsCompleted int `db:"topics_completed" json:"topics_completed"`
	SessionsTaken   int `db:"sessions_taken" json:"sessions_taken"`
}

// CreateChapterRequest registers a syllabus chapter.
type CreateChapterRequest struct {
	ClassName         string `json:"class_name" validate:"required"`
	Subject           string `json:"subject" validate:"required"`
	ChapterName       string `json:"chapter_name" validate:"required"`
	TotalTopics       int    `json:"total_topics" validate:"required,min=1"`
	EstimatedSessions int    `json:"estimated_sessions" validate:"min=0"`
}

// AdjustProgressRequest applies deltas to a chapter's counters. The committed
// counters come back clamped so clients can reconcile optimistic state.
type AdjustProgressRequest struct {
	TopicsDelta   int `json:"topics_delta"`
	SessionsDelta int `json:"sessions_delta"`
}
