package alert

import (
	"context"
	"log"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	dummymail "github.com/trezcool/chuo/services/email/dummy"
	logsvc "github.com/trezcool/chuo/services/logger"
	dummysms "github.com/trezcool/chuo/services/sms/dummy"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
	testutil "github.com/trezcool/chuo/tests"
)

func Test_Scheduler_RunOnce(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := dummymail.NewService()
	smsSvc := dummysms.NewService()

	usrRepo := dummydb.NewUserRepository(db)
	orgSvc := org.NewService(dummydb.NewOrgRepository(db))
	attSvc := attendance.NewService(dummydb.NewAttendanceRepository(db), orgSvc, usrRepo)
	fix := testutil.SeedOrg(t, orgSvc)

	// alice has both guardian contacts, bob has none, carol was present
	alice := testutil.CreateStudent(t, usrRepo, "Alice A", "alice@test.cd", "CS-001", fix.Program.ID, fix.Section.ID,
		"guardian@test.cd", "+243811111111")
	bob := testutil.CreateStudent(t, usrRepo, "Bob B", "bob@test.cd", "CS-002", fix.Program.ID, fix.Section.ID)
	carol := testutil.CreateStudent(t, usrRepo, "Carol C", "carol@test.cd", "CS-003", fix.Program.ID, fix.Section.ID)
	staff := testutil.CreateUser(t, usrRepo, "Prof", "prof", "prof@test.cd", "", []string{user.RoleStaffLecturer}, true)

	ctx := context.Background()
	day := time.Now().UTC()
	sess, err := attSvc.CreateSession(ctx, attendance.NewSession{
		SectionID: fix.Section.ID,
		SubjectID: fix.Subject.ID,
		Date:      day,
	}, staff)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}
	for studentID, status := range map[string]string{
		alice.ID: attendance.StatusAbsent,
		bob.ID:   attendance.StatusAbsent,
		carol.ID: attendance.StatusPresent,
	} {
		if _, _, err = attSvc.UpsertMark(ctx, attendance.Mark{
			SessionID:  sess.ID,
			StudentID:  studentID,
			Status:     status,
			RecordedAt: day,
		}); err != nil {
			t.Fatalf("UpsertMark() failed: %v", err)
		}
	}

	s := NewScheduler(attSvc, mailSvc, smsSvc, logger)
	if err = s.RunOnce(ctx, day); err != nil {
		t.Fatalf("RunOnce() failed: %v", err)
	}

	// only alice's guardian is reachable
	sentMail := mailSvc.Sent()
	if len(sentMail) != 1 {
		t.Fatalf("len(Sent()) = %d, want 1", len(sentMail))
	}
	if sentMail[0].To[0].Address != "guardian@test.cd" {
		t.Errorf("To = %v", sentMail[0].To)
	}
	if !strings.Contains(sentMail[0].Subject, "Alice A") {
		t.Errorf("Subject = %q", sentMail[0].Subject)
	}

	sentSMS := smsSvc.Sent()
	if len(sentSMS) != 1 {
		t.Fatalf("len(Sent()) = %d, want 1", len(sentSMS))
	}
	if sentSMS[0].To != "+243811111111" || !strings.Contains(sentSMS[0].Body, "CS-001") {
		t.Errorf("sms = %+v", sentSMS[0])
	}
}

func Test_Scheduler_nextRun(t *testing.T) {
	s := &Scheduler{hour: 18}

	s.nowFunc = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	if got := s.nextRun(); got != time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC) {
		t.Errorf("nextRun() = %v, want same-day 18:00", got)
	}

	// past the configured hour, the digest waits for tomorrow
	s.nowFunc = func() time.Time { return time.Date(2026, 3, 2, 19, 30, 0, 0, time.UTC) }
	if got := s.nextRun(); got != time.Date(2026, 3, 3, 18, 0, 0, 0, time.UTC) {
		t.Errorf("nextRun() = %v, want next-day 18:00", got)
	}
}
