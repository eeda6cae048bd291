package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chuo/core/feedback"
)

type feedbackRepository struct {
	db *sqlx.DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *sqlx.DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

type feedbackRow struct {
	ID        string      `db:"id"`
	StudentID string      `db:"student_id"`
	SubjectID string      `db:"subject_id"`
	Rating    int         `db:"rating"`
	Comment   null.String `db:"comment"`
	CreatedAt time.Time   `db:"created_at"`
}

func (repo feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO feedback (id, student_id, subject_id, rating, comment, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		fb.ID, fb.StudentID, fb.SubjectID, fb.Rating, null.NewString(fb.Comment, fb.Comment != ""), fb.CreatedAt.UTC())
	if err != nil {
		return feedback.Feedback{}, errors.Wrap(err, "inserting feedback")
	}
	return fb, nil
}

func (repo feedbackRepository) QueryFeedbackBySubject(ctx context.Context, subjectID string) ([]feedback.Feedback, error) {
	var rows []feedbackRow
	err := repo.db.SelectContext(ctx, &rows,
		`SELECT * FROM feedback WHERE subject_id = $1 ORDER BY created_at DESC`, subjectID)
	if err != nil {
		return nil, errors.Wrap(err, "querying feedback")
	}
	fbs := make([]feedback.Feedback, 0, len(rows))
	for _, row := range rows {
		fbs = append(fbs, feedback.Feedback{
			ID:        row.ID,
			StudentID: row.StudentID,
			SubjectID: row.SubjectID,
			Rating:    row.Rating,
			Comment:   row.Comment.String,
			CreatedAt: row.CreatedAt,
		})
	}
	return fbs, nil
}
