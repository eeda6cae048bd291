package attendance

import (
	"time"

	"github.com/trezcool/chuo/core"
)

// Mark statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLate    = "late"
)

var Statuses = []string{StatusPresent, StatusAbsent, StatusLate}

func ValidStatus(s string) bool {
	for _, st := range Statuses {
		if s == st {
			return true
		}
	}
	return false
}

type (
	// Session is one attendance-taking event for a section on a date.
	Session struct {
		ID        string    `json:"id"`
		SectionID string    `json:"section_id"`
		SubjectID string    `json:"subject_id"`
		TermID    string    `json:"term_id"`
		Date      time.Time `json:"date"`
		TakenBy   string    `json:"taken_by"` // staff user ID
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	// Mark is one student's attendance record for a session.
	// (SessionID, StudentID) is the natural key; repeat writes update Status.
	Mark struct {
		SessionID  string    `json:"session_id"`
		StudentID  string    `json:"student_id"`
		Status     string    `json:"status"`
		RecordedAt time.Time `json:"recorded_at"` // UTC
	}

	// Absentee is one student absent on a given day, with guardian contacts.
	Absentee struct {
		StudentID     string `json:"student_id"`
		Name          string `json:"name"`
		RollNumber    string `json:"roll_number"`
		GuardianEmail string `json:"guardian_email"`
		GuardianPhone string `json:"guardian_phone"`
		Sessions      int    `json:"sessions"` // number of sessions missed that day
	}
)

type NewSession struct {
	SectionID string    `json:"section_id" validate:"required"`
	SubjectID string    `json:"subject_id" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
}

func (ns *NewSession) Validate() error { return core.Validate.Struct(ns) }

type NewMark struct {
	StudentID string `json:"student_id" validate:"required"`
	Status    string `json:"status" validate:"required,oneof=present absent late"`
}

func (nm *NewMark) Validate() error {
	nm.Status = core.CleanString(nm.Status, true /* lower */)
	return core.Validate.Struct(nm)
}
