package dummydb

import (
	"context"

	"github.com/trezcool/chuo/core/contact"
)

type contactRepository struct {
	db *DB
}

var _ contact.Repository = (*contactRepository)(nil) // interface compliance check

func NewContactRepository(db *DB) *contactRepository {
	return &contactRepository{db: db}
}

func (repo contactRepository) CreateMessage(ctx context.Context, msg contact.Message) (contact.Message, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.contacts = append(repo.db.contacts, msg)
	return msg, nil
}

func (repo contactRepository) QueryAllMessages(ctx context.Context) ([]contact.Message, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	msgs := make([]contact.Message, len(repo.db.contacts))
	copy(msgs, repo.db.contacts)
	return msgs, nil
}
