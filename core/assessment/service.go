package assessment

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

var (
	ErrNotFound     = errors.New("assessment not found")
	errMarksTooHigh = errors.New("marks exceed the assessment maximum")
)

type (
	Repository interface {
		CreateAssessment(ctx context.Context, a Assessment) (Assessment, error)
		GetAssessment(ctx context.Context, id string) (Assessment, error)
		QueryAssessmentsBySubject(ctx context.Context, subjectID string) ([]Assessment, error)
		// UpsertScore inserts or updates the score keyed by (AssessmentID, StudentID)
		// as one atomic store operation. It reports whether a new record was created.
		UpsertScore(ctx context.Context, s Score) (Score, bool, error)
		QueryScores(ctx context.Context, assessmentID string) ([]Score, error)
	}

	Service struct {
		repo    Repository
		orgSvc  *org.Service
		usrRepo user.Repository
	}
)

func NewService(repo Repository, orgSvc *org.Service, usrRepo user.Repository) *Service {
	return &Service{repo: repo, orgSvc: orgSvc, usrRepo: usrRepo}
}

func (svc *Service) Create(ctx context.Context, na NewAssessment, createdBy user.User) (Assessment, error) {
	sub, err := svc.orgSvc.GetSubject(ctx, na.SubjectID)
	if err != nil {
		return Assessment{}, err
	}
	return svc.repo.CreateAssessment(ctx, Assessment{
		ID:        uuid.NewString(),
		SubjectID: sub.ID,
		TermID:    sub.TermID,
		Title:     na.Title,
		MaxMarks:  na.MaxMarks,
		CreatedBy: createdBy.ID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Assessment, error) {
	return svc.repo.GetAssessment(ctx, id)
}

func (svc *Service) QueryBySubject(ctx context.Context, subjectID string) ([]Assessment, error) {
	return svc.repo.QueryAssessmentsBySubject(ctx, subjectID)
}

// Enter upserts one student's marks for an assessment, enforcing bounds.
func (svc *Service) Enter(ctx context.Context, assessmentID string, ns NewScore) (Score, error) {
	asmt, err := svc.repo.GetAssessment(ctx, assessmentID)
	if err != nil {
		return Score{}, err
	}
	if ns.Marks > asmt.MaxMarks {
		return Score{}, core.NewValidationError(errMarksTooHigh,
			core.FieldError{Field: "marks", Error: errMarksTooHigh.Error()})
	}
	s, _, err := svc.repo.UpsertScore(ctx, Score{
		AssessmentID: asmt.ID,
		StudentID:    ns.StudentID,
		Marks:        ns.Marks,
		RecordedAt:   time.Now().UTC(),
	})
	return s, err
}

// UpsertScore exposes the atomic upsert for the bulk ingestion pipeline.
func (svc *Service) UpsertScore(ctx context.Context, s Score) (Score, bool, error) {
	return svc.repo.UpsertScore(ctx, s)
}

func (svc *Service) Scores(ctx context.Context, assessmentID string) ([]Score, error) {
	return svc.repo.QueryScores(ctx, assessmentID)
}

// Roster returns the assessment plus a rollNumber -> student userID map of the
// students enrolled in the assessment's subject program sections.
func (svc *Service) Roster(ctx context.Context, assessmentID string) (Assessment, map[string]string, error) {
	asmt, err := svc.repo.GetAssessment(ctx, assessmentID)
	if err != nil {
		return Assessment{}, nil, err
	}

	sub, err := svc.orgSvc.GetSubject(ctx, asmt.SubjectID)
	if err != nil {
		return Assessment{}, nil, errors.Wrap(err, "loading assessment subject")
	}

	// all sections of the subject's program for the assessment's term
	secs, err := svc.orgSvc.QuerySections(ctx)
	if err != nil {
		return Assessment{}, nil, errors.Wrap(err, "querying sections")
	}
	roster := make(map[string]string)
	for _, sec := range secs {
		if sec.ProgramID != sub.ProgramID || sec.TermID != asmt.TermID {
			continue
		}
		part, err := svc.usrRepo.StudentRosterBySection(ctx, sec.ID)
		if err != nil {
			return Assessment{}, nil, errors.Wrap(err, "loading section roster")
		}
		for roll, id := range part {
			roster[roll] = id
		}
	}
	return asmt, roster, nil
}
