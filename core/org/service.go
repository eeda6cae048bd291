package org

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("record not found")

type (
	Repository interface {
		CreateDepartment(ctx context.Context, dep Department) (Department, error)
		CreateProgram(ctx context.Context, prog Program) (Program, error)
		CreateSection(ctx context.Context, sec Section) (Section, error)
		CreateTerm(ctx context.Context, term Term) (Term, error)
		CreateSubject(ctx context.Context, sub Subject) (Subject, error)

		GetDepartment(ctx context.Context, id string) (Department, error)
		GetProgram(ctx context.Context, id string) (Program, error)
		GetSection(ctx context.Context, id string) (Section, error)
		GetTerm(ctx context.Context, id string) (Term, error)
		GetSubject(ctx context.Context, id string) (Subject, error)

		QueryDepartments(ctx context.Context) ([]Department, error)
		QueryPrograms(ctx context.Context) ([]Program, error)
		QuerySections(ctx context.Context) ([]Section, error)
		QueryTerms(ctx context.Context) ([]Term, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CreateDepartment(ctx context.Context, nd NewDepartment) (Department, error) {
	return svc.repo.CreateDepartment(ctx, Department{
		ID:        uuid.NewString(),
		Code:      nd.Code,
		Name:      nd.Name,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) CreateProgram(ctx context.Context, np NewProgram) (Program, error) {
	if _, err := svc.repo.GetDepartment(ctx, np.DepartmentID); err != nil {
		return Program{}, err
	}
	return svc.repo.CreateProgram(ctx, Program{
		ID:           uuid.NewString(),
		Code:         np.Code,
		Name:         np.Name,
		DepartmentID: np.DepartmentID,
		CreatedAt:    time.Now().UTC(),
	})
}

func (svc *Service) CreateSection(ctx context.Context, ns NewSection) (Section, error) {
	if _, err := svc.repo.GetProgram(ctx, ns.ProgramID); err != nil {
		return Section{}, err
	}
	if _, err := svc.repo.GetTerm(ctx, ns.TermID); err != nil {
		return Section{}, err
	}
	return svc.repo.CreateSection(ctx, Section{
		ID:        uuid.NewString(),
		Name:      ns.Name,
		ProgramID: ns.ProgramID,
		TermID:    ns.TermID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) CreateTerm(ctx context.Context, nt NewTerm) (Term, error) {
	return svc.repo.CreateTerm(ctx, Term{
		ID:        uuid.NewString(),
		Name:      nt.Name,
		StartDate: nt.StartDate,
		EndDate:   nt.EndDate,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) CreateSubject(ctx context.Context, ns NewSubject) (Subject, error) {
	if _, err := svc.repo.GetProgram(ctx, ns.ProgramID); err != nil {
		return Subject{}, err
	}
	if _, err := svc.repo.GetTerm(ctx, ns.TermID); err != nil {
		return Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, Subject{
		ID:        uuid.NewString(),
		Code:      ns.Code,
		Name:      ns.Name,
		ProgramID: ns.ProgramID,
		TermID:    ns.TermID,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) GetSection(ctx context.Context, id string) (Section, error) {
	return svc.repo.GetSection(ctx, id)
}

func (svc *Service) GetSubject(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, id)
}

func (svc *Service) QueryDepartments(ctx context.Context) ([]Department, error) {
	return svc.repo.QueryDepartments(ctx)
}

func (svc *Service) QueryPrograms(ctx context.Context) ([]Program, error) {
	return svc.repo.QueryPrograms(ctx)
}

func (svc *Service) QuerySections(ctx context.Context) ([]Section, error) {
	return svc.repo.QuerySections(ctx)
}

func (svc *Service) QueryTerms(ctx context.Context) ([]Term, error) {
	return svc.repo.QueryTerms(ctx)
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

// Snapshot is a read-only reference-data lookup set, prefetched once per import
// batch. Staleness within a single batch is accepted.
type Snapshot struct {
	departments map[string]Department
	programs    map[string]Program
	sections    map[string]Section
}

func (s *Snapshot) HasDepartment(id string) bool { _, ok := s.departments[id]; return ok }
func (s *Snapshot) HasProgram(id string) bool    { _, ok := s.programs[id]; return ok }
func (s *Snapshot) HasSection(id string) bool    { _, ok := s.sections[id]; return ok }

// Snapshot prefetches all reference data needed to validate import rows.
func (svc *Service) Snapshot(ctx context.Context) (*Snapshot, error) {
	deps, err := svc.repo.QueryDepartments(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	progs, err := svc.repo.QueryPrograms(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying programs")
	}
	secs, err := svc.repo.QuerySections(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}

	snap := &Snapshot{
		departments: make(map[string]Department, len(deps)),
		programs:    make(map[string]Program, len(progs)),
		sections:    make(map[string]Section, len(secs)),
	}
	for _, d := range deps {
		snap.departments[d.ID] = d
	}
	for _, p := range progs {
		snap.programs[p.ID] = p
	}
	for _, s := range secs {
		snap.sections[s.ID] = s
	}
	return snap, nil
}
