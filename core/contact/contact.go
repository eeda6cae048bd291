package contact

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
)

var ErrNotFound = errors.New("message not found")

// Message is an admissions/contact enquiry from the public website.
type Message struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type NewMessage struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,phone_"`
	Body  string `json:"body" validate:"required"`
}

func (nm *NewMessage) Validate() error {
	nm.Name = core.CleanString(nm.Name)
	nm.Email = core.CleanString(nm.Email, true /* lower */)
	nm.Phone = core.CleanString(nm.Phone)
	nm.Body = core.CleanString(nm.Body)
	return core.Validate.Struct(nm)
}

type (
	Repository interface {
		CreateMessage(ctx context.Context, msg Message) (Message, error)
		QueryAllMessages(ctx context.Context) ([]Message, error)
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

func NewService(repo Repository, mailSvc core.EmailService) *Service {
	return &Service{repo: repo, mailSvc: mailSvc}
}

// Submit stores the enquiry and forwards it to the admissions inbox best-effort.
func (svc *Service) Submit(ctx context.Context, nm NewMessage) (Message, error) {
	msg, err := svc.repo.CreateMessage(ctx, Message{
		ID:        uuid.NewString(),
		Name:      nm.Name,
		Email:     nm.Email,
		Phone:     nm.Phone,
		Body:      nm.Body,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return Message{}, err
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{core.Conf.AdmissionsEmail},
		Subject: "New enquiry from " + msg.Name,
		BodyStr: msg.Body + "\n\nReply to: " + msg.Email,
	})
	return msg, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]Message, error) {
	return svc.repo.QueryAllMessages(ctx)
}
