package ingest

import (
	"log"
	"os"
	"strings"
	"testing"

	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	dummymail "github.com/trezcool/chuo/services/email/dummy"
	logsvc "github.com/trezcool/chuo/services/logger"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
	testutil "github.com/trezcool/chuo/tests"
)

type testEnv struct {
	db      *dummydb.DB
	mailSvc *dummymail.Service
	usrRepo user.Repository
	usrSvc  *user.Service
	orgSvc  *org.Service
	attSvc  *attendance.Service
	asmtSvc *assessment.Service
	fix     testutil.OrgFixture
}

func setup(t *testing.T) (*Service, *testEnv) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := dummymail.NewService()

	usrRepo := dummydb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	orgSvc := org.NewService(dummydb.NewOrgRepository(db))
	attSvc := attendance.NewService(dummydb.NewAttendanceRepository(db), orgSvc, usrRepo)
	asmtSvc := assessment.NewService(dummydb.NewAssessmentRepository(db), orgSvc, usrRepo)

	svc := NewService(logger, usrSvc, orgSvc, attSvc, asmtSvc, mailSvc)
	env := &testEnv{
		db:      db,
		mailSvc: mailSvc,
		usrRepo: usrRepo,
		usrSvc:  usrSvc,
		orgSvc:  orgSvc,
		attSvc:  attSvc,
		asmtSvc: asmtSvc,
		fix:     testutil.SeedOrg(t, orgSvc),
	}
	return svc, env
}

func csvSrc(lines ...string) Source {
	return Source{Data: []byte(strings.Join(lines, "\n"))}
}
