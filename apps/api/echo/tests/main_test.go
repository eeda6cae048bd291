package tests

import (
	"bytes"
	"encoding/json"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	. "github.com/trezcool/chuo/apps/api/echo"
	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/contact"
	"github.com/trezcool/chuo/core/feedback"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/leave"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	dummymail "github.com/trezcool/chuo/services/email/dummy"
	logsvc "github.com/trezcool/chuo/services/logger"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
	testutil "github.com/trezcool/chuo/tests"
)

var (
	app     Server
	db      *dummydb.DB
	mailSvc *dummymail.Service
	usrRepo user.Repository
	orgSvc  *org.Service
	attSvc  *attendance.Service

	fix     testutil.OrgFixture
	orgOnce sync.Once
)

// orgFixture lazily seeds the shared reference data.
func orgFixture(t *testing.T) testutil.OrgFixture {
	t.Helper()
	orgOnce.Do(func() { fix = testutil.SeedOrg(t, orgSvc) })
	return fix
}

func TestMain(m *testing.M) {
	var err error
	if db, err = dummydb.Open(); err != nil {
		log.Fatalf("dummydb.Open(): %v", err)
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc = dummymail.NewService()

	usrRepo = dummydb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	orgSvc = org.NewService(dummydb.NewOrgRepository(db))
	attSvc = attendance.NewService(dummydb.NewAttendanceRepository(db), orgSvc, usrRepo)
	asmtSvc := assessment.NewService(dummydb.NewAssessmentRepository(db), orgSvc, usrRepo)
	leaveSvc := leave.NewService(dummydb.NewLeaveRepository(db), usrSvc, mailSvc, logger)
	fbSvc := feedback.NewService(dummydb.NewFeedbackRepository(db), orgSvc)
	contactSvc := contact.NewService(dummydb.NewContactRepository(db), mailSvc)
	ingestSvc := ingest.NewService(logger, usrSvc, orgSvc, attSvc, asmtSvc, mailSvc)

	app = NewServer(ServerDeps{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		OrgSvc:         orgSvc,
		AttendanceSvc:  attSvc,
		AssessmentSvc:  asmtSvc,
		LeaveSvc:       leaveSvc,
		FeedbackSvc:    fbSvc,
		ContactSvc:     contactSvc,
		IngestSvc:      ingestSvc,
	})

	os.Exit(m.Run())
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newCSVUploadRequest builds a multipart upload of csv as the "file" part.
func newCSVUploadRequest(t *testing.T, path, token, csv string) (*http.Request, *httptest.ResponseRecorder) {
	t.Helper()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("file", "upload.csv")
	if err != nil {
		t.Fatalf("newCSVUploadRequest(): %v", err)
	}
	if _, err = fw.Write([]byte(csv)); err != nil {
		t.Fatalf("newCSVUploadRequest(): %v", err)
	}
	if err = w.Close(); err != nil {
		t.Fatalf("newCSVUploadRequest(): %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := GenerateToken(GetUserClaims(usr))
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) ingest.Report {
	t.Helper()
	var rep ingest.Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("decodeReport(): %v", err)
	}
	return rep
}
