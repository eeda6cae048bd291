package dummydb

import (
	"context"

	"github.com/trezcool/chuo/core/feedback"
)

type feedbackRepository struct {
	db *DB
}

var _ feedback.Repository = (*feedbackRepository)(nil) // interface compliance check

func NewFeedbackRepository(db *DB) *feedbackRepository {
	return &feedbackRepository{db: db}
}

func (repo feedbackRepository) CreateFeedback(ctx context.Context, fb feedback.Feedback) (feedback.Feedback, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.feedback = append(repo.db.feedback, fb)
	return fb, nil
}

func (repo feedbackRepository) QueryFeedbackBySubject(ctx context.Context, subjectID string) ([]feedback.Feedback, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var fbs []feedback.Feedback
	for _, fb := range repo.db.feedback {
		if fb.SubjectID == subjectID {
			fbs = append(fbs, fb)
		}
	}
	return fbs, nil
}
