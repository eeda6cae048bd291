package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/contact"
	"github.com/trezcool/chuo/core/feedback"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/leave"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

type (
	ServerDeps struct {
		Address        string
		DisableReqLogs bool

		Logger        core.Logger
		UserSvc       *user.Service
		OrgSvc        *org.Service
		AttendanceSvc *attendance.Service
		AssessmentSvc *assessment.Service
		LeaveSvc      *leave.Service
		FeedbackSvc   *feedback.Service
		ContactSvc    *contact.Service
		IngestSvc     *ingest.Service
	}

	Server interface {
		http.Handler
		Start()
		Errors() <-chan error
		ShutdownSignal() <-chan os.Signal
		SignalShutdown()
		Shutdown(context.Context) error
		Close() error
	}

	server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ Server = (*server)(nil)

func NewServer(deps ServerDeps) Server {
	s := &server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, syscall.SIGINT, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.deps.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.SignalShutdown)
	s.app.Debug = core.Conf.Debug
	s.app.HideBanner = true

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.deps.UserSvc, s.deps.IngestSvc)
	registerOrgAPI(v1, jwt, s.deps.OrgSvc)
	registerAttendanceAPI(v1, jwt, s.deps.UserSvc, s.deps.AttendanceSvc, s.deps.IngestSvc)
	registerAssessmentAPI(v1, jwt, s.deps.UserSvc, s.deps.AssessmentSvc, s.deps.IngestSvc)
	registerLeaveAPI(v1, jwt, s.deps.UserSvc, s.deps.LeaveSvc)
	registerFeedbackAPI(v1, jwt, s.deps.UserSvc, s.deps.FeedbackSvc)
	registerContactAPI(v1, jwt, s.deps.ContactSvc)
}

func (s *server) Start() {
	if err := s.app.Start(s.deps.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *server) Errors() <-chan error { return s.errors }

func (s *server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown requests a graceful shutdown of the application.
func (s *server) SignalShutdown() { s.shutdown <- syscall.SIGTERM }

func (s *server) Shutdown(ctx context.Context) error { return s.app.Shutdown(ctx) }

func (s *server) Close() error { return s.app.Close() }

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+core.Conf.AppName+" API!")
}
