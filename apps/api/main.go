package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"time"

	"github.com/jmoiron/sqlx"

	echoapi "github.com/trezcool/chuo/apps/api/echo"
	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/alert"
	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/contact"
	"github.com/trezcool/chuo/core/feedback"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/leave"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	emailsvc "github.com/trezcool/chuo/services/email"
	logsvc "github.com/trezcool/chuo/services/logger"
	smssvc "github.com/trezcool/chuo/services/sms"
	"github.com/trezcool/chuo/storage/database"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.Conf

	// set up logger
	var logger core.Logger
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	if conf.Debug {
		logger = logsvc.NewStdLogger(std)
	} else {
		rollbarLogger := logsvc.NewRollbarLogger(std, conf)
		rollbarLogger.Enable(true)
		logger = rollbarLogger
	}

	// set up DB
	db, err := setUpDB(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() {
		if err = db.Close(); err != nil {
			logger.Error("failed to close DB", err)
		}
	}()

	// set up services
	var mailSvc core.EmailService
	var smsSvc core.SMSService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
		smsSvc = smssvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
		smsSvc = smssvc.NewGatewayService(logger)
	}

	usrRepo := database.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	orgSvc := org.NewService(database.NewOrgRepository(db))
	attSvc := attendance.NewService(database.NewAttendanceRepository(db), orgSvc, usrRepo)
	asmtSvc := assessment.NewService(database.NewAssessmentRepository(db), orgSvc, usrRepo)
	leaveSvc := leave.NewService(database.NewLeaveRepository(db), usrSvc, mailSvc, logger)
	fbSvc := feedback.NewService(database.NewFeedbackRepository(db), orgSvc)
	contactSvc := contact.NewService(database.NewContactRepository(db), mailSvc)
	ingestSvc := ingest.NewService(logger, usrSvc, orgSvc, attSvc, asmtSvc, mailSvc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	// =========================================================================
	// Start Absence Digest Scheduler

	alertCtx, stopAlerts := context.WithCancel(context.Background())
	defer stopAlerts()
	go alert.NewScheduler(attSvc, mailSvc, smsSvc, logger).Run(alertCtx)

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(echoapi.ServerDeps{
		Address:       net.JoinHostPort(conf.Server.Host, conf.Server.Port),
		Logger:        logger,
		UserSvc:       usrSvc,
		OrgSvc:        orgSvc,
		AttendanceSvc: attSvc,
		AssessmentSvc: asmtSvc,
		LeaveSvc:      leaveSvc,
		FeedbackSvc:   fbSvc,
		ContactSvc:    contactSvc,
		IngestSvc:     ingestSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))
		stopAlerts()

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpDB(conf *core.Config) (*sqlx.DB, error) {
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Ping(db); err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
