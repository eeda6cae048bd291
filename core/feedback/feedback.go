package feedback

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

var ErrNotFound = errors.New("feedback not found")

// Feedback is a student's rating of a subject.
type Feedback struct {
	ID        string    `json:"id"`
	StudentID string    `json:"student_id"`
	SubjectID string    `json:"subject_id"`
	Rating    int       `json:"rating"` // 1-5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewFeedback struct {
	SubjectID string `json:"subject_id" validate:"required"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment"`
}

func (nf *NewFeedback) Validate() error {
	nf.Comment = core.CleanString(nf.Comment)
	return core.Validate.Struct(nf)
}

type (
	Repository interface {
		CreateFeedback(ctx context.Context, fb Feedback) (Feedback, error)
		QueryFeedbackBySubject(ctx context.Context, subjectID string) ([]Feedback, error)
	}

	Service struct {
		repo   Repository
		orgSvc *org.Service
	}
)

func NewService(repo Repository, orgSvc *org.Service) *Service {
	return &Service{repo: repo, orgSvc: orgSvc}
}

func (svc *Service) Submit(ctx context.Context, student user.User, nf NewFeedback) (Feedback, error) {
	sub, err := svc.orgSvc.GetSubject(ctx, nf.SubjectID)
	if err != nil {
		return Feedback{}, err
	}
	return svc.repo.CreateFeedback(ctx, Feedback{
		ID:        uuid.NewString(),
		StudentID: student.ID,
		SubjectID: sub.ID,
		Rating:    nf.Rating,
		Comment:   nf.Comment,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) QueryBySubject(ctx context.Context, subjectID string) ([]Feedback, error) {
	return svc.repo.QueryFeedbackBySubject(ctx, subjectID)
}
