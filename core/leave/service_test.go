package leave_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/trezcool/chuo/core/leave"
	"github.com/trezcool/chuo/core/user"
	dummymail "github.com/trezcool/chuo/services/email/dummy"
	logsvc "github.com/trezcool/chuo/services/logger"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
	testutil "github.com/trezcool/chuo/tests"
)

func setup(t *testing.T) (*leave.Service, user.Repository, *dummymail.Service) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := dummymail.NewService()
	usrRepo := dummydb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	svc := leave.NewService(dummydb.NewLeaveRepository(db), usrSvc, mailSvc, logger)
	return svc, usrRepo, mailSvc
}

func Test_Service_Decide(t *testing.T) {
	svc, usrRepo, mailSvc := setup(t)
	ctx := context.Background()

	student := testutil.CreateUser(t, usrRepo, "Stud", "stud", "stud@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	now := time.Now().UTC()
	app, err := svc.Apply(ctx, student, leave.NewApplication{
		Kind:     leave.KindSick,
		FromDate: now,
		ToDate:   now.Add(48 * time.Hour),
		Reason:   "flu",
	})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}
	if app.Status != leave.StatusPending {
		t.Fatalf("Status = %q, want %q", app.Status, leave.StatusPending)
	}

	decided, err := svc.Decide(ctx, app.ID, admin, leave.Decision{Approve: true, Note: "get well soon"})
	if err != nil {
		t.Fatalf("Decide() failed: %v", err)
	}
	if decided.Status != leave.StatusApproved {
		t.Errorf("Status = %q, want %q", decided.Status, leave.StatusApproved)
	}
	if decided.DecidedBy != admin.ID || decided.DecidedAt.IsZero() {
		t.Errorf("decision audit = %+v", decided)
	}

	// the applicant is notified
	sent := mailSvc.Sent()
	if len(sent) != 1 {
		t.Fatalf("len(Sent()) = %d, want 1", len(sent))
	}
	if want := "Leave application " + leave.StatusApproved; sent[0].Subject != want {
		t.Errorf("Subject = %q, want %q", sent[0].Subject, want)
	}

	// only pending applications can be decided
	if _, err = svc.Decide(ctx, app.ID, admin, leave.Decision{Approve: false}); err != leave.ErrAlreadyDecided {
		t.Errorf("Decide() twice error = %v, want ErrAlreadyDecided", err)
	}
	if _, err = svc.Decide(ctx, "nope", admin, leave.Decision{Approve: true}); err != leave.ErrNotFound {
		t.Errorf("Decide() unknown id error = %v, want ErrNotFound", err)
	}
}

func Test_Service_Decide_reject(t *testing.T) {
	svc, usrRepo, _ := setup(t)
	ctx := context.Background()

	student := testutil.CreateUser(t, usrRepo, "Stud", "stud", "stud@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	now := time.Now().UTC()
	app, err := svc.Apply(ctx, student, leave.NewApplication{
		Kind:     leave.KindCasual,
		FromDate: now,
		ToDate:   now.Add(24 * time.Hour),
		Reason:   "family event",
	})
	if err != nil {
		t.Fatalf("Apply() failed: %v", err)
	}

	decided, err := svc.Decide(ctx, app.ID, admin, leave.Decision{Approve: false, Note: "exams week"})
	if err != nil {
		t.Fatalf("Decide() failed: %v", err)
	}
	if decided.Status != leave.StatusRejected {
		t.Errorf("Status = %q, want %q", decided.Status, leave.StatusRejected)
	}
	if decided.DecisionNote != "exams week" {
		t.Errorf("DecisionNote = %q", decided.DecisionNote)
	}

	pending, err := svc.QueryPending(ctx)
	if err != nil {
		t.Fatalf("QueryPending() failed: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("len(pending) = %d, want 0", len(pending))
	}
}
