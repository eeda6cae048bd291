package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chuo/core/leave"
)

type leaveRepository struct {
	db *sqlx.DB
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *sqlx.DB) *leaveRepository {
	return &leaveRepository{db: db}
}

type leaveRow struct {
	ID           string      `db:"id"`
	UserID       string      `db:"user_id"`
	Kind         string      `db:"kind"`
	FromDate     time.Time   `db:"from_date"`
	ToDate       time.Time   `db:"to_date"`
	Reason       string      `db:"reason"`
	Status       string      `db:"status"`
	DecidedBy    null.String `db:"decided_by"`
	DecisionNote null.String `db:"decision_note"`
	DecidedAt    null.Time   `db:"decided_at"`
	CreatedAt    time.Time   `db:"created_at"`
}

func (repo leaveRepository) toRow(app leave.Application) leaveRow {
	return leaveRow{
		ID:           app.ID,
		UserID:       app.UserID,
		Kind:         app.Kind,
		FromDate:     app.FromDate,
		ToDate:       app.ToDate,
		Reason:       app.Reason,
		Status:       app.Status,
		DecidedBy:    null.NewString(app.DecidedBy, app.DecidedBy != ""),
		DecisionNote: null.NewString(app.DecisionNote, app.DecisionNote != ""),
		DecidedAt:    null.NewTime(app.DecidedAt.UTC(), !app.DecidedAt.IsZero()),
		CreatedAt:    app.CreatedAt.UTC(),
	}
}

func (repo leaveRepository) fromRow(row leaveRow) leave.Application {
	return leave.Application{
		ID:           row.ID,
		UserID:       row.UserID,
		Kind:         row.Kind,
		FromDate:     row.FromDate,
		ToDate:       row.ToDate,
		Reason:       row.Reason,
		Status:       row.Status,
		DecidedBy:    row.DecidedBy.String,
		DecisionNote: row.DecisionNote.String,
		DecidedAt:    row.DecidedAt.Time,
		CreatedAt:    row.CreatedAt,
	}
}

func (repo leaveRepository) fromRows(rows []leaveRow) []leave.Application {
	apps := make([]leave.Application, 0, len(rows))
	for _, row := range rows {
		apps = append(apps, repo.fromRow(row))
	}
	return apps
}

// trapNoRowsErr maps psql "no rows" err to leave.ErrNotFound
func (repo leaveRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return leave.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo leaveRepository) CreateApplication(ctx context.Context, app leave.Application) (leave.Application, error) {
	_, err := repo.db.NamedExecContext(ctx,
		`INSERT INTO leave_application (id, user_id, kind, from_date, to_date, reason, status, decided_by, decision_note, decided_at, created_at)
		 VALUES (:id, :user_id, :kind, :from_date, :to_date, :reason, :status, :decided_by, :decision_note, :decided_at, :created_at)`,
		repo.toRow(app))
	if err != nil {
		return leave.Application{}, errors.Wrap(err, "inserting leave application")
	}
	return app, nil
}

func (repo leaveRepository) GetApplication(ctx context.Context, id string) (leave.Application, error) {
	var row leaveRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM leave_application WHERE id = $1`, id); err != nil {
		return leave.Application{}, repo.trapNoRowsErr(err, "getting leave application")
	}
	return repo.fromRow(row), nil
}

func (repo leaveRepository) QueryApplicationsByUser(ctx context.Context, userID string) ([]leave.Application, error) {
	var rows []leaveRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM leave_application WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, errors.Wrap(err, "querying leave applications")
	}
	return repo.fromRows(rows), nil
}

func (repo leaveRepository) QueryPendingApplications(ctx context.Context) ([]leave.Application, error) {
	var rows []leaveRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM leave_application WHERE status = $1 ORDER BY created_at`, leave.StatusPending)
	if err != nil {
		return nil, errors.Wrap(err, "querying pending leave applications")
	}
	return repo.fromRows(rows), nil
}

func (repo leaveRepository) UpdateApplication(ctx context.Context, app leave.Application) (leave.Application, error) {
	res, err := repo.db.NamedExecContext(ctx,
		`UPDATE leave_application
		 SET status = :status, decided_by = :decided_by, decision_note = :decision_note, decided_at = :decided_at
		 WHERE id = :id`,
		repo.toRow(app))
	if err != nil {
		return leave.Application{}, errors.Wrap(err, "updating leave application")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return leave.Application{}, leave.ErrNotFound
	}
	return app, nil
}
