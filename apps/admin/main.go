package main

import (
	"log"
	"os"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	emailsvc "github.com/trezcool/chuo/services/email"
	logsvc "github.com/trezcool/chuo/services/logger"
	"github.com/trezcool/chuo/storage/database"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer db.Close()
	errAndDie(database.Ping(db))

	// set up services
	appLogger := logsvc.NewStdLogger(logger)
	mailSvc := emailsvc.NewConsoleService()
	usrRepo := database.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, appLogger)
	orgSvc := org.NewService(database.NewOrgRepository(db))
	attSvc := attendance.NewService(database.NewAttendanceRepository(db), orgSvc, usrRepo)
	asmtSvc := assessment.NewService(database.NewAssessmentRepository(db), orgSvc, usrRepo)

	// start CLI
	cli := commandLine{
		db:        db,
		usrRepo:   usrRepo,
		ingestSvc: ingest.NewService(appLogger, usrSvc, orgSvc, attSvc, asmtSvc, mailSvc),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
