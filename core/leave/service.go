package leave

import (
	"context"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/user"
)

var (
	ErrNotFound       = errors.New("leave application not found")
	ErrAlreadyDecided = errors.New("leave application has already been decided")
)

type (
	Repository interface {
		CreateApplication(ctx context.Context, app Application) (Application, error)
		GetApplication(ctx context.Context, id string) (Application, error)
		QueryApplicationsByUser(ctx context.Context, userID string) ([]Application, error)
		QueryPendingApplications(ctx context.Context) ([]Application, error)
		UpdateApplication(ctx context.Context, app Application) (Application, error)
	}

	Service struct {
		repo    Repository
		usrSvc  *user.Service
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, usrSvc *user.Service, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, usrSvc: usrSvc, mailSvc: mailSvc, logger: logger}
}

func (svc *Service) Apply(ctx context.Context, applicant user.User, na NewApplication) (Application, error) {
	return svc.repo.CreateApplication(ctx, Application{
		ID:        uuid.NewString(),
		UserID:    applicant.ID,
		Kind:      na.Kind,
		FromDate:  na.FromDate,
		ToDate:    na.ToDate,
		Reason:    na.Reason,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *Service) Get(ctx context.Context, id string) (Application, error) {
	return svc.repo.GetApplication(ctx, id)
}

func (svc *Service) QueryByUser(ctx context.Context, userID string) ([]Application, error) {
	return svc.repo.QueryApplicationsByUser(ctx, userID)
}

func (svc *Service) QueryPending(ctx context.Context) ([]Application, error) {
	return svc.repo.QueryPendingApplications(ctx)
}

// Decide approves or rejects a pending application and emails the applicant
// best-effort.
func (svc *Service) Decide(ctx context.Context, id string, decidedBy user.User, d Decision) (Application, error) {
	app, err := svc.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if app.Status != StatusPending {
		return Application{}, ErrAlreadyDecided
	}

	if d.Approve {
		app.Status = StatusApproved
	} else {
		app.Status = StatusRejected
	}
	app.DecidedBy = decidedBy.ID
	app.DecisionNote = core.CleanString(d.Note)
	app.DecidedAt = time.Now().UTC()

	app, err = svc.repo.UpdateApplication(ctx, app)
	if err != nil {
		return Application{}, err
	}

	svc.notifyApplicant(ctx, app)
	return app, nil
}

func (svc *Service) notifyApplicant(ctx context.Context, app Application) {
	applicant, err := svc.usrSvc.GetByID(ctx, app.UserID)
	if err != nil {
		svc.logger.Warn("leave: could not load applicant for decision notice", err)
		return
	}
	if applicant.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: applicant.Name, Address: applicant.Email}},
		Subject:      "Leave application " + app.Status,
		TemplateName: "leave-decision",
		TemplateData: struct {
			Name   string
			Status string
			Note   string
		}{applicant.Name, app.Status, app.DecisionNote},
	})
}
