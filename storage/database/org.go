package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/org"
)

type orgRepository struct {
	db *sqlx.DB
}

var _ org.Repository = (*orgRepository)(nil) // interface compliance check

func NewOrgRepository(db *sqlx.DB) *orgRepository {
	return &orgRepository{db: db}
}

type (
	departmentRow struct {
		ID        string    `db:"id"`
		Code      string    `db:"code"`
		Name      string    `db:"name"`
		CreatedAt time.Time `db:"created_at"`
	}

	programRow struct {
		ID           string    `db:"id"`
		Code         string    `db:"code"`
		Name         string    `db:"name"`
		DepartmentID string    `db:"department_id"`
		CreatedAt    time.Time `db:"created_at"`
	}

	sectionRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		ProgramID string    `db:"program_id"`
		TermID    string    `db:"term_id"`
		CreatedAt time.Time `db:"created_at"`
	}

	termRow struct {
		ID        string    `db:"id"`
		Name      string    `db:"name"`
		StartDate time.Time `db:"start_date"`
		EndDate   time.Time `db:"end_date"`
		CreatedAt time.Time `db:"created_at"`
	}

	subjectRow struct {
		ID        string    `db:"id"`
		Code      string    `db:"code"`
		Name      string    `db:"name"`
		ProgramID string    `db:"program_id"`
		TermID    string    `db:"term_id"`
		CreatedAt time.Time `db:"created_at"`
	}
)

// trapNoRowsErr maps psql "no rows" err to org.ErrNotFound
func (repo orgRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return org.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo orgRepository) CreateDepartment(ctx context.Context, dep org.Department) (org.Department, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO department (id, code, name, created_at) VALUES ($1, $2, $3, $4)`,
		dep.ID, dep.Code, dep.Name, dep.CreatedAt.UTC())
	if err != nil {
		return org.Department{}, errors.Wrap(err, "inserting department")
	}
	return dep, nil
}

func (repo orgRepository) CreateProgram(ctx context.Context, prog org.Program) (org.Program, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO program (id, code, name, department_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		prog.ID, prog.Code, prog.Name, prog.DepartmentID, prog.CreatedAt.UTC())
	if err != nil {
		return org.Program{}, errors.Wrap(err, "inserting program")
	}
	return prog, nil
}

func (repo orgRepository) CreateSection(ctx context.Context, sec org.Section) (org.Section, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO section (id, name, program_id, term_id, created_at) VALUES ($1, $2, $3, $4, $5)`,
		sec.ID, sec.Name, sec.ProgramID, sec.TermID, sec.CreatedAt.UTC())
	if err != nil {
		return org.Section{}, errors.Wrap(err, "inserting section")
	}
	return sec, nil
}

func (repo orgRepository) CreateTerm(ctx context.Context, term org.Term) (org.Term, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO term (id, name, start_date, end_date, created_at) VALUES ($1, $2, $3, $4, $5)`,
		term.ID, term.Name, term.StartDate, term.EndDate, term.CreatedAt.UTC())
	if err != nil {
		return org.Term{}, errors.Wrap(err, "inserting term")
	}
	return term, nil
}

func (repo orgRepository) CreateSubject(ctx context.Context, sub org.Subject) (org.Subject, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO subject (id, code, name, program_id, term_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		sub.ID, sub.Code, sub.Name, sub.ProgramID, sub.TermID, sub.CreatedAt.UTC())
	if err != nil {
		return org.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo orgRepository) GetDepartment(ctx context.Context, id string) (org.Department, error) {
	var row departmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM department WHERE id = $1`, id); err != nil {
		return org.Department{}, repo.trapNoRowsErr(err, "getting department")
	}
	return org.Department(row), nil
}

func (repo orgRepository) GetProgram(ctx context.Context, id string) (org.Program, error) {
	var row programRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM program WHERE id = $1`, id); err != nil {
		return org.Program{}, repo.trapNoRowsErr(err, "getting program")
	}
	return org.Program(row), nil
}

func (repo orgRepository) GetSection(ctx context.Context, id string) (org.Section, error) {
	var row sectionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM section WHERE id = $1`, id); err != nil {
		return org.Section{}, repo.trapNoRowsErr(err, "getting section")
	}
	return org.Section(row), nil
}

func (repo orgRepository) GetTerm(ctx context.Context, id string) (org.Term, error) {
	var row termRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM term WHERE id = $1`, id); err != nil {
		return org.Term{}, repo.trapNoRowsErr(err, "getting term")
	}
	return org.Term(row), nil
}

func (repo orgRepository) GetSubject(ctx context.Context, id string) (org.Subject, error) {
	var row subjectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM subject WHERE id = $1`, id); err != nil {
		return org.Subject{}, repo.trapNoRowsErr(err, "getting subject")
	}
	return org.Subject(row), nil
}

func (repo orgRepository) QueryDepartments(ctx context.Context) ([]org.Department, error) {
	var rows []departmentRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM department ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	deps := make([]org.Department, 0, len(rows))
	for _, row := range rows {
		deps = append(deps, org.Department(row))
	}
	return deps, nil
}

func (repo orgRepository) QueryPrograms(ctx context.Context) ([]org.Program, error) {
	var rows []programRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM program ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying programs")
	}
	progs := make([]org.Program, 0, len(rows))
	for _, row := range rows {
		progs = append(progs, org.Program(row))
	}
	return progs, nil
}

func (repo orgRepository) QuerySections(ctx context.Context) ([]org.Section, error) {
	var rows []sectionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM section ORDER BY name`); err != nil {
		return nil, errors.Wrap(err, "querying sections")
	}
	secs := make([]org.Section, 0, len(rows))
	for _, row := range rows {
		secs = append(secs, org.Section(row))
	}
	return secs, nil
}

func (repo orgRepository) QueryTerms(ctx context.Context) ([]org.Term, error) {
	var rows []termRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM term ORDER BY start_date`); err != nil {
		return nil, errors.Wrap(err, "querying terms")
	}
	terms := make([]org.Term, 0, len(rows))
	for _, row := range rows {
		terms = append(terms, org.Term(row))
	}
	return terms, nil
}

func (repo orgRepository) QuerySubjects(ctx context.Context) ([]org.Subject, error) {
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM subject ORDER BY code`); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subs := make([]org.Subject, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, org.Subject(row))
	}
	return subs, nil
}
