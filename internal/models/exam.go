package models

import "time"

// Exam defines one assessment for a class+section.
type Exam struct {
	ID        string    `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	ClassName string    `db:"class_name" json:"class_name"`
	Section   string    `db:"section" json:"section"`
	Name      string    `db:"name" json:"name"`
	Subject   string    `db:"subject" json:"subject"`
	MaxMarks  float64   `db:"max_marks" json:"max_marks"`
	ExamDate  time.Time `db:"exam_date" json:"exam_date"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// CreateExamRequest creates an exam shell before marks entry.
type CreateExamRequest struct {
	ClassName string  `json:"class_name" validate:"required"`
	Section   string  `json:"section" validate:"required"`
	Name      string  `json:"name" validate:"required"`
	Subject   string  `json:"subject" validate:"required"`
	MaxMarks  float64 `json:"max_marks" validate:"required,gt=0"`
	ExamDate  string  `json:"exam_date" validate:"required,datetime=2006-01-02"`
}

// Mark is one student's score in one exam. The exam's full mark set is
// replaced as a unit on save.
type Mark struct {
	ID            string    `db:"id" json:"id"`
	ExamID        string    `db:"exam_id" json:"exam_id"`
	StudentID     string    `db:"student_id" json:"student_id"`
	MarksObtained float64   `db:"marks_obtained" json:"marks_obtained"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// MarkEntry is a single score line in a submission payload.
type MarkEntry struct {
	StudentID     string  `json:"student_id" validate:"required"`
	MarksObtained float64 `json:"marks_obtained" validate:"min=0"`
}

// SubmitMarksRequest replaces an exam's full mark set.
type SubmitMarksRequest struct {
	Entries []MarkEntry `json:"entries" validate:"required,min=1,dive"`
}

// ExamResultRow is a computed per-student result line.
type ExamResultRow struct {
	StudentID     string  `json:"student_id"`
	StudentName   string  `json:"student_name"`
	RollNumber    int     `json:"roll_number"`
	MarksObtained float64 `json:"marks_obtained"`
	Percentage    float64 `json:"percentage"`
	Grade         string  `json:"grade"`
	Passed        bool    `json:"passed"`
	Rank          int     `json:"rank"`
}

// ExamResults aggregates an exam's computed outcome.
type ExamResults struct {
	Exam    Exam            `json:"exam"`
	Rows    []ExamResultRow `json:"rows"`
	Average float64         `json:"average"`
}

// MarkRow joins a mark with student metadata for result computation.
type MarkRow struct {
	Mark
	StudentName string `db:"student_name" json:"student_name"`
	RollNumber  int    `db:"roll_number" json:"roll_number"`
}

// ExamFilter scopes exam listings.
type ExamFilter struct {
	TeacherID string
	ClassName string
	Section   string
	Subject   string
}
