package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/chuo/core/assessment"
)

type assessmentRepository struct {
	db *DB
}

var _ assessment.Repository = (*assessmentRepository)(nil) // interface compliance check

func NewAssessmentRepository(db *DB) *assessmentRepository {
	return &assessmentRepository{db: db}
}

func scoreKey(assessmentID, studentID string) string { return assessmentID + "/" + studentID }

func (repo assessmentRepository) CreateAssessment(ctx context.Context, a assessment.Assessment) (assessment.Assessment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.assessments[a.ID] = a
	return a, nil
}

func (repo assessmentRepository) GetAssessment(ctx context.Context, id string) (assessment.Assessment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if a, ok := repo.db.assessments[id]; ok {
		return a, nil
	}
	return assessment.Assessment{}, assessment.ErrNotFound
}

func (repo assessmentRepository) QueryAssessmentsBySubject(ctx context.Context, subjectID string) ([]assessment.Assessment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var asmts []assessment.Assessment
	for _, a := range repo.db.assessments {
		if a.SubjectID == subjectID {
			asmts = append(asmts, a)
		}
	}
	sort.Slice(asmts, func(i, j int) bool { return asmts[i].CreatedAt.Before(asmts[j].CreatedAt) })
	return asmts, nil
}

func (repo assessmentRepository) UpsertScore(ctx context.Context, s assessment.Score) (assessment.Score, bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.db.FailUpsertScore != nil {
		return assessment.Score{}, false, repo.db.FailUpsertScore
	}

	key := scoreKey(s.AssessmentID, s.StudentID)
	_, exists := repo.db.scores[key]
	repo.db.scores[key] = s
	return s, !exists, nil
}

func (repo assessmentRepository) QueryScores(ctx context.Context, assessmentID string) ([]assessment.Score, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var scores []assessment.Score
	for _, s := range repo.db.scores {
		if s.AssessmentID == assessmentID {
			scores = append(scores, s)
		}
	}
	sort.Slice(scores, func(i, j int) bool { return scores[i].StudentID < scores[j].StudentID })
	return scores, nil
}
