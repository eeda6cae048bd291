package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/assessment"
)

type assessmentRepository struct {
	db *sqlx.DB
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *sqlx.DB) *assessmentRepository {
	return &assessmentRepository{db: db}
}

type (
	assessmentRow struct {
		ID        string    `db:"id"`
		SubjectID string    `db:"subject_id"`
		TermID    string    `db:"term_id"`
		Title     string    `db:"title"`
		MaxMarks  float64   `db:"max_marks"`
		CreatedBy string    `db:"created_by"`
		CreatedAt time.Time `db:"created_at"`
	}

	scoreRow struct {
		AssessmentID string    `db:"assessment_id"`
		StudentID    string    `db:"student_id"`
		Marks        float64   `db:"marks"`
		RecordedAt   time.Time `db:"recorded_at"`
	}
)

// trapNoRowsErr maps psql "no rows" err to assessment.ErrNotFound
func (repo assessmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return assessment.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo assessmentRepository) CreateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO assessment (id, subject_id, term_id, title, max_marks, created_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.SubjectID, a.TermID, a.Title, a.MaxMarks, a.CreatedBy, a.CreatedAt.UTC())
	if err != nil {
		return assessment.Assessment{}, errors.Wrap(err, "inserting assessment")
	}
	return a, nil
}

func (repo assessmentRepository) GetAssessment(ctx context.Context, id string) (assessment.Assessment, error) {
	var row assessmentRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM assessment WHERE id = $1`, id); err != nil {
		return assessment.Assessment{}, repo.trapNoRowsErr(err, "getting assessment")
	}
	return assessment.Assessment(row), nil
}

func (repo assessmentRepository) QueryAssessmentsBySubject(ctx context.Context, subjectID string) ([]assessment.Assessment, error) {
	var rows []assessmentRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM assessment WHERE subject_id = $1 ORDER BY created_at`, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying assessments")
	}
	asmts := make([]assessment.Assessment, 0, len(rows))
	for _, row := range rows {
		asmts = append(asmts, assessment.Assessment(row))
	}
	return asmts, nil
}

func (repo assessmentRepository) UpsertScore(ctx context.Context, s assessment.Score) (assessment.Score, bool, error) {
	var created bool
	err := repo.db.GetContext(ctx, &created,
		`INSERT INTO score (assessment_id, student_id, marks, recorded_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (assessment_id, student_id)
		 DO UPDATE SET marks = EXCLUDED.marks, recorded_at = EXCLUDED.recorded_at
		 RETURNING (xmax = 0)`,
		s.AssessmentID, s.StudentID, s.Marks, s.RecordedAt.UTC())
	if err != nil {
		return assessment.Score{}, false, errors.Wrap(err, "upserting score")
	}
	return s, created, nil
}

func (repo assessmentRepository) QueryScores(ctx context.Context, assessmentID string) ([]assessment.Score, error) {
	var rows []scoreRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM score WHERE assessment_id = $1 ORDER BY recorded_at`, assessmentID)
	if err != nil {
		return nil, errors.Wrap(err, "querying scores")
	}
	scores := make([]assessment.Score, 0, len(rows))
	for _, row := range rows {
		scores = append(scores, assessment.Score(row))
	}
	return scores, nil
}
