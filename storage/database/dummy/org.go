package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/chuo/core/org"
)

type orgRepository struct {
	db *DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *DB) *orgRepository {
	return &orgRepository{db: db}
}

func (repo orgRepository) CreateDepartment(ctx context.Context, dep org.Department) (org.Department, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.departments[dep.ID] = dep
	return dep, nil
}

func (repo orgRepository) CreateProgram(ctx context.Context, prog org.Program) (org.Program, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.programs[prog.ID] = prog
	return prog, nil
}

func (repo orgRepository) CreateSection(ctx context.Context, sec org.Section) (org.Section, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.sections[sec.ID] = sec
	return sec, nil
}

func (repo orgRepository) CreateTerm(ctx context.Context, term org.Term) (org.Term, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.terms[term.ID] = term
	return term, nil
}

func (repo orgRepository) CreateSubject(ctx context.Context, sub org.Subject) (org.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.subjects[sub.ID] = sub
	return sub, nil
}

func (repo orgRepository) GetDepartment(ctx context.Context, id string) (org.Department, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if dep, ok := repo.db.departments[id]; ok {
		return dep, nil
	}
	return org.Department{}, org.ErrNotFound
}

func (repo orgRepository) GetProgram(ctx context.Context, id string) (org.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if prog, ok := repo.db.programs[id]; ok {
		return prog, nil
	}
	return org.Program{}, org.ErrNotFound
}

func (repo orgRepository) GetSection(ctx context.Context, id string) (org.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if sec, ok := repo.db.sections[id]; ok {
		return sec, nil
	}
	return org.Section{}, org.ErrNotFound
}

func (repo orgRepository) GetTerm(ctx context.Context, id string) (org.Term, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if term, ok := repo.db.terms[id]; ok {
		return term, nil
	}
	return org.Term{}, org.ErrNotFound
}

func (repo orgRepository) GetSubject(ctx context.Context, id string) (org.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if sub, ok := repo.db.subjects[id]; ok {
		return sub, nil
	}
	return org.Subject{}, org.ErrNotFound
}

func (repo orgRepository) QueryDepartments(ctx context.Context) ([]org.Department, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	deps := make([]org.Department, 0, len(repo.db.departments))
	for _, dep := range repo.db.departments {
		deps = append(deps, dep)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].Code < deps[j].Code })
	return deps, nil
}

func (repo orgRepository) QueryPrograms(ctx context.Context) ([]org.Program, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	progs := make([]org.Program, 0, len(repo.db.programs))
	for _, prog := range repo.db.programs {
		progs = append(progs, prog)
	}
	sort.Slice(progs, func(i, j int) bool { return progs[i].Code < progs[j].Code })
	return progs, nil
}

func (repo orgRepository) QuerySections(ctx context.Context) ([]org.Section, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	secs := make([]org.Section, 0, len(repo.db.sections))
	for _, sec := range repo.db.sections {
		secs = append(secs, sec)
	}
	sort.Slice(secs, func(i, j int) bool { return secs[i].Name < secs[j].Name })
	return secs, nil
}

func (repo orgRepository) QueryTerms(ctx context.Context) ([]org.Term, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	terms := make([]org.Term, 0, len(repo.db.terms))
	for _, term := range repo.db.terms {
		terms = append(terms, term)
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].StartDate.Before(terms[j].StartDate) })
	return terms, nil
}

func (repo orgRepository) QuerySubjects(ctx context.Context) ([]org.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	subs := make([]org.Subject, 0, len(repo.db.subjects))
	for _, sub := range repo.db.subjects {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Code < subs[j].Code })
	return subs, nil
}
