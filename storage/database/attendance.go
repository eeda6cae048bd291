package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/attendance"
)

type attendanceRepository struct {
	db *sqlx.DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *sqlx.DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

type (
	sessionRow struct {
		ID        string    `db:"id"`
		SectionID string    `db:"section_id"`
		SubjectID string    `db:"subject_id"`
		TermID    string    `db:"term_id"`
		Date      time.Time `db:"date"`
		TakenBy   string    `db:"taken_by"`
		CreatedAt time.Time `db:"created_at"`
	}

	markRow struct {
		SessionID  string    `db:"session_id"`
		StudentID  string    `db:"student_id"`
		Status     string    `db:"status"`
		RecordedAt time.Time `db:"recorded_at"`
	}

	absenteeRow struct {
		StudentID     string `db:"student_id"`
		Name          string `db:"name"`
		RollNumber    string `db:"roll_number"`
		GuardianEmail string `db:"guardian_email"`
		GuardianPhone string `db:"guardian_phone"`
		Sessions      int    `db:"sessions"`
	}
)

// trapNoRowsErr maps psql "no rows" err to attendance.ErrSessionNotFound
func (repo attendanceRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return attendance.ErrSessionNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo attendanceRepository) CreateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO attendance_session (id, section_id, subject_id, term_id, date, taken_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.SectionID, s.SubjectID, s.TermID, s.Date, s.TakenBy, s.CreatedAt.UTC())
	if err != nil {
		return attendance.Session{}, errors.Wrap(err, "inserting attendance session")
	}
	return s, nil
}

func (repo attendanceRepository) GetSession(ctx context.Context, id string) (attendance.Session, error) {
	var row sessionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM attendance_session WHERE id = $1`, id); err != nil {
		return attendance.Session{}, repo.trapNoRowsErr(err, "getting attendance session")
	}
	return attendance.Session(row), nil
}

func (repo attendanceRepository) QuerySessionsBySection(ctx context.Context, sectionID string) ([]attendance.Session, error) {
	var rows []sessionRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM attendance_session WHERE section_id = $1 ORDER BY date`, sectionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance sessions")
	}
	sessions := make([]attendance.Session, 0, len(rows))
	for _, row := range rows {
		sessions = append(sessions, attendance.Session(row))
	}
	return sessions, nil
}

func (repo attendanceRepository) UpsertMark(ctx context.Context, m attendance.Mark) (attendance.Mark, bool, error) {
	var created bool
	err := repo.db.GetContext(ctx, &created,
		`INSERT INTO attendance_mark (session_id, student_id, status, recorded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (session_id, student_id)
		 DO UPDATE SET status = EXCLUDED.status, recorded_at = EXCLUDED.recorded_at
		 RETURNING (xmax = 0)`,
		m.SessionID, m.StudentID, m.Status, m.RecordedAt.UTC())
	if err != nil {
		return attendance.Mark{}, false, errors.Wrap(err, "upserting attendance mark")
	}
	return m, created, nil
}

func (repo attendanceRepository) QueryMarks(ctx context.Context, sessionID string) ([]attendance.Mark, error) {
	var rows []markRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM attendance_mark WHERE session_id = $1 ORDER BY recorded_at`, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "querying attendance marks")
	}
	marks := make([]attendance.Mark, 0, len(rows))
	for _, row := range rows {
		marks = append(marks, attendance.Mark(row))
	}
	return marks, nil
}

func (repo attendanceRepository) AbsenteesOn(ctx context.Context, day time.Time) ([]attendance.Absentee, error) {
	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	var rows []absenteeRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT u.id AS student_id, COALESCE(u.name, '') AS name, sp.roll_number,
			sp.guardian_email, sp.guardian_phone, COUNT(*) AS sessions
		 FROM attendance_mark m
		 JOIN attendance_session s ON s.id = m.session_id
		 JOIN "user" u ON u.id = m.student_id
		 JOIN student_profile sp ON sp.user_id = u.id
		 WHERE m.status = $1 AND s.date >= $2 AND s.date < $3
		 GROUP BY u.id, u.name, sp.roll_number, sp.guardian_email, sp.guardian_phone
		 ORDER BY sp.roll_number`,
		attendance.StatusAbsent, from, to)
	if err != nil {
		return nil, errors.Wrap(err, "querying absentees")
	}
	absentees := make([]attendance.Absentee, 0, len(rows))
	for _, row := range rows {
		absentees = append(absentees, attendance.Absentee(row))
	}
	return absentees, nil
}
