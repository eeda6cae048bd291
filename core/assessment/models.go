package assessment

import (
	"time"

	"github.com/trezcool/chuo/core"
)

type (
	// Assessment is one graded exercise (test, assignment, exam) for a subject.
	Assessment struct {
		ID        string    `json:"id"`
		SubjectID string    `json:"subject_id"`
		TermID    string    `json:"term_id"`
		Title     string    `json:"title"`
		MaxMarks  float64   `json:"max_marks"`
		CreatedBy string    `json:"created_by"` // staff user ID
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Score is one student's marks for an assessment.
	// (AssessmentID, StudentID) is the natural key; repeat writes update Marks.
	Score struct {
		AssessmentID string    `json:"assessment_id"`
		StudentID    string    `json:"student_id"`
		Marks        float64   `json:"marks"`
		RecordedAt   time.Time `json:"recorded_at"` // UTC
	}
)

type NewAssessment struct {
	SubjectID string  `json:"subject_id" validate:"required"`
	Title     string  `json:"title" validate:"required"`
	MaxMarks  float64 `json:"max_marks" validate:"required,gt=0"`
}

func (na *NewAssessment) Validate() error {
	na.Title = core.CleanString(na.Title)
	return core.Validate.Struct(na)
}

type NewScore struct {
	StudentID string  `json:"student_id" validate:"required"`
	Marks     float64 `json:"marks" validate:"gte=0"`
}

func (ns *NewScore) Validate() error { return core.Validate.Struct(ns) }
