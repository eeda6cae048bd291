package alert

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/attendance"
)

// Scheduler runs the daily guardian absence digest: once a day, at the
// configured hour, every student marked absent that day gets one email (and one
// SMS when a guardian phone is on file) sent to their guardian. Sends are
// best-effort: failures are logged and never retried within the run.
type Scheduler struct {
	attSvc  *attendance.Service
	mailSvc core.EmailService
	smsSvc  core.SMSService
	logger  core.Logger
	hour    int

	nowFunc func() time.Time // mockable
}

func NewScheduler(attSvc *attendance.Service, mailSvc core.EmailService, smsSvc core.SMSService, logger core.Logger) *Scheduler {
	return &Scheduler{
		attSvc:  attSvc,
		mailSvc: mailSvc,
		smsSvc:  smsSvc,
		logger:  logger,
		hour:    core.Conf.AlertHour,
		nowFunc: time.Now,
	}
}

// Run blocks until ctx is cancelled, firing once per day at the configured hour.
func (s *Scheduler) Run(ctx context.Context) {
	for {
		next := s.nextRun()
		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			if err := s.RunOnce(ctx, next); err != nil {
				s.logger.Error("absence digest run failed", err)
			}
		}
	}
}

func (s *Scheduler) nextRun() time.Time {
	now := s.nowFunc()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// RunOnce sends the digest for the given day.
func (s *Scheduler) RunOnce(ctx context.Context, day time.Time) error {
	absentees, err := s.attSvc.AbsenteesOn(ctx, day)
	if err != nil {
		return err
	}

	var sent int
	for _, a := range absentees {
		if a.GuardianEmail != "" {
			err := s.mailSvc.SendMessage(&core.EmailMessage{
				To:           []mail.Address{{Address: a.GuardianEmail}},
				Subject:      "Absence notice: " + a.Name,
				TemplateName: "absence-alert",
				TemplateData: struct {
					Name       string
					RollNumber string
					Date       string
					Sessions   int
				}{a.Name, a.RollNumber, day.Format("2006-01-02"), a.Sessions},
			})
			if err != nil {
				s.logger.Warn(fmt.Sprintf("absence digest: email to guardian of %s failed", a.RollNumber), err)
			} else {
				sent++
			}
		}
		if a.GuardianPhone != "" {
			err := s.smsSvc.Send(core.SMSMessage{
				To:   a.GuardianPhone,
				Body: fmt.Sprintf("%s: %s (%s) was absent on %s.", core.Conf.AppName, a.Name, a.RollNumber, day.Format("2006-01-02")),
			})
			if err != nil {
				s.logger.Warn(fmt.Sprintf("absence digest: SMS to guardian of %s failed", a.RollNumber), err)
			}
		}
	}

	s.logger.Info(fmt.Sprintf("absence digest: %d absentees, %d guardian emails sent", len(absentees), sent))
	return nil
}
