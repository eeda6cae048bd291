package leave

import (
	"time"

	"github.com/trezcool/chuo/core"
)

// Application kinds
const (
	KindSick   = "sick"
	KindCasual = "casual"
	KindOther  = "other"
)

// Application statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Application is a leave request by a student or staff member.
type Application struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Kind         string    `json:"kind"`
	FromDate     time.Time `json:"from_date"`
	ToDate       time.Time `json:"to_date"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	DecidedBy    string    `json:"decided_by,omitempty"`
	DecisionNote string    `json:"decision_note,omitempty"`
	DecidedAt    time.Time `json:"decided_at,omitempty"` // UTC
	CreatedAt    time.Time `json:"created_at"`           // UTC
}

type NewApplication struct {
	Kind     string    `json:"kind" validate:"required,oneof=sick casual other"`
	FromDate time.Time `json:"from_date" validate:"required"`
	ToDate   time.Time `json:"to_date" validate:"required,gtefield=FromDate"`
	Reason   string    `json:"reason" validate:"required"`
}

func (na *NewApplication) Validate() error {
	na.Kind = core.CleanString(na.Kind, true /* lower */)
	na.Reason = core.CleanString(na.Reason)
	return core.Validate.Struct(na)
}

type Decision struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note"`
}
