package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/chuo/core/leave"
)

type leaveRepository struct {
	db *DB
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *DB) *leaveRepository {
	return &leaveRepository{db: db}
}

func (repo leaveRepository) CreateApplication(ctx context.Context, app leave.Application) (leave.Application, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.leaves[app.ID] = app
	return app, nil
}

func (repo leaveRepository) GetApplication(ctx context.Context, id string) (leave.Application, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if app, ok := repo.db.leaves[id]; ok {
		return app, nil
	}
	return leave.Application{}, leave.ErrNotFound
}

func (repo leaveRepository) QueryApplicationsByUser(ctx context.Context, userID string) ([]leave.Application, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var apps []leave.Application
	for _, app := range repo.db.leaves {
		if app.UserID == userID {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.After(apps[j].CreatedAt) })
	return apps, nil
}

func (repo leaveRepository) QueryPendingApplications(ctx context.Context) ([]leave.Application, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var apps []leave.Application
	for _, app := range repo.db.leaves {
		if app.Status == leave.StatusPending {
			apps = append(apps, app)
		}
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].CreatedAt.Before(apps[j].CreatedAt) })
	return apps, nil
}

func (repo leaveRepository) UpdateApplication(ctx context.Context, app leave.Application) (leave.Application, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	if _, ok := repo.db.leaves[app.ID]; !ok {
		return leave.Application{}, leave.ErrNotFound
	}
	repo.db.leaves[app.ID] = app
	return app, nil
}
