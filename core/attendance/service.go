package attendance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

var ErrSessionNotFound = errors.New("attendance session not found")

type (
	Repository interface {
		CreateSession(ctx context.Context, s Session) (Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		QuerySessionsBySection(ctx context.Context, sectionID string) ([]Session, error)
		// UpsertMark inserts or updates the mark keyed by (SessionID, StudentID)
		// as one atomic store operation. It reports whether a new record was created.
		UpsertMark(ctx context.Context, m Mark) (Mark, bool, error)
		QueryMarks(ctx context.Context, sessionID string) ([]Mark, error)
		// AbsenteesOn lists students marked absent in any session on the given day.
		AbsenteesOn(ctx context.Context, day time.Time) ([]Absentee, error)
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

func (svc *Service) CreateSession(ctx context.Context, ns NewSession, takenBy user.User) (Session, error) {
	sec, err := svc.orgSvc.GetSection(ctx, ns.SectionID)
	if err != nil {
		return Session{}, err
	}
	if _, err := svc.orgSvc.GetSubject(ctx, ns.SubjectID); err != nil {
		return Session{}, err
	}
	return svc.repo.CreateSession(ctx, Session{
		ID:        uuid.NewString(),
		SectionID: sec.ID,
		SubjectID: ns.SubjectID,
		TermID:    sec.TermID,
		Date:      ns.Date,
		TakenBy:   takenBy.ID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetSession(ctx context.Context, id string) (Session, error) {
	return svc.repo.GetSession(ctx, id)
}

func (svc *Service) QuerySessionsBySection(ctx context.Context, sectionID string) ([]Session, error) {
	return svc.repo.QuerySessionsBySection(ctx, sectionID)
}

// Mark upserts one student's status for a session.
func (svc *Service) Mark(ctx context.Context, sessionID string, nm NewMark) (Mark, error) {
	if _, err := svc.repo.GetSession(ctx, sessionID); err != nil {
		return Mark{}, err
	}
	m, _, err := svc.repo.UpsertMark(ctx, Mark{
		SessionID:  sessionID,
		StudentID:  nm.StudentID,
		Status:     nm.Status,
		RecordedAt: time.Now().UTC(),
	})
	return m, err
}

// UpsertMark exposes the atomic upsert for the bulk ingestion pipeline.
func (svc *Service) UpsertMark(ctx context.Context, m Mark) (Mark, bool, error) {
	return svc.repo.UpsertMark(ctx, m)
}

func (svc *Service) Marks(ctx context.Context, sessionID string) ([]Mark, error) {
	return svc.repo.QueryMarks(ctx, sessionID)
}

// Roster returns the session plus a rollNumber -> student userID map of the
// session's section enrollment.
func (svc *Service) Roster(ctx context.Context, sessionID string) (Session, map[string]string, error) {
	sess, err := svc.repo.GetSession(ctx, sessionID)
	if err != nil {
		return Session{}, nil, err
	}
	roster, err := svc.usrRepo.StudentRosterBySection(ctx, sess.SectionID)
	if err != nil {
		return Session{}, nil, errors.Wrap(err, "loading section roster")
	}
	return sess, roster, nil
}

func (svc *Service) AbsenteesOn(ctx context.Context, day time.Time) ([]Absentee, error) {
	return svc.repo.AbsenteesOn(ctx, day)
}
