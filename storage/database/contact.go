package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/chuo/core/contact"
)

type contactRepository struct {
	db *sqlx.DB
}

var _ contact.Repository = (*contactRepository)(nil) // interface compliance check

func NewContactRepository(db *sqlx.DB) *contactRepository {
	return &contactRepository{db: db}
}

type contactRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Email     string      `db:"email"`
	Phone     null.String `db:"phone"`
	Body      string      `db:"body"`
	CreatedAt time.Time   `db:"created_at"`
}

func (repo contactRepository) CreateMessage(ctx context.Context, msg contact.Message) (contact.Message, error) {
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO contact_message (id, name, email, phone, body, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		msg.ID, msg.Name, msg.Email, null.NewString(msg.Phone, msg.Phone != ""), msg.Body, msg.CreatedAt.UTC())
	if err != nil {
		return contact.Message{}, errors.Wrap(err, "inserting contact message")
	}
	return msg, nil
}

func (repo contactRepository) QueryAllMessages(ctx context.Context) ([]contact.Message, error) {
	var rows []contactRow
	err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM contact_message ORDER BY created_at DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying contact messages")
	}
	msgs := make([]contact.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, contact.Message{
			ID:        row.ID,
			Name:      row.Name,
			Email:     row.Email,
			Phone:     row.Phone.String,
			Body:      row.Body,
			CreatedAt: row.CreatedAt,
		})
	}
	return msgs, nil
}
