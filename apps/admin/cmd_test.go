package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/ingest"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	dummymail "github.com/trezcool/chuo/services/email/dummy"
	logsvc "github.com/trezcool/chuo/services/logger"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
	testutil "github.com/trezcool/chuo/tests"
)

var (
	usrRepo user.Repository
	orgSvc  *org.Service
)

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	mailSvc := dummymail.NewService()

	usrRepo = dummydb.NewUserRepository(db)
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	orgSvc = org.NewService(dummydb.NewOrgRepository(db))
	attSvc := attendance.NewService(dummydb.NewAttendanceRepository(db), orgSvc, usrRepo)
	asmtSvc := assessment.NewService(dummydb.NewAssessmentRepository(db), orgSvc, usrRepo)
	ingestSvc := ingest.NewService(logger, usrSvc, orgSvc, attSvc, asmtSvc, mailSvc)

	return &commandLine{
		usrRepo:   usrRepo,
		ingestSvc: ingestSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "course", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)

	usr := testutil.CreateUser(t, usrRepo, "User", "awe", "awe@test.cd", "mdr", nil, true)

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no args", args: []string{"resetpassword"}, wantErr: errHelp},
		{name: "username but no password", args: []string{"resetpassword", "-username", "lol"}, wantErr: errHelp},
		{name: "user not found", args: []string{"resetpassword", "-username", "lol"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset with username", args: []string{"resetpassword", "-username", usr.Username}, extra: extra{pwd: "lol"}},
		{name: "reset with email", args: []string{"resetpassword", "-username", usr.Email}, extra: extra{pwd: "lmao"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.pwd), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if err == nil {
				refreshedUsr, err := usrRepo.GetUser(context.Background(), user.GetFilter{ID: usr.ID})
				if err != nil {
					t.Fatalf("GetUser() failed, %v", err)
				}
				if bytes.Equal(refreshedUsr.PasswordHash, usr.PasswordHash) {
					t.Error("failed to update new password")
				}
			} else if err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("s3cr3t"), nil }

	if err := cli.run([]string{"admin", "adduser", "-username", "boss", "-email", "boss@test.cd", "-admin"}); err != nil {
		t.Fatalf("cli.run() unexpected error = %v", err)
	}

	usr, err := usrRepo.GetUser(context.Background(), user.GetFilter{UsernameOrEmail: []string{"boss"}})
	if err != nil {
		t.Fatalf("GetUser() failed: %v", err)
	}
	if !usr.IsAdmin() || !usr.Active() {
		t.Errorf("usr = %+v, want an active admin", usr)
	}
	if err = usr.CheckPassword("s3cr3t"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
}

func Test_commandLine_importUsers(t *testing.T) {
	cli := setup(t)
	fix := testutil.SeedOrg(t, orgSvc)

	path := filepath.Join(t.TempDir(), "users.csv")
	csv := fmt.Sprintf(
		"name,email,rollNumber,role,programId,sectionId,departmentId\n"+
			"New Student,newstudent@test.cd,CS-100,student,%s,%s,\n"+
			"New Staff,newstaff@test.cd,EMP-100,staff,,,%s\n",
		fix.Program.ID, fix.Section.ID, fix.Department.ID,
	)
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []cliTest{
		{name: "no file flag", args: []string{"importusers"}, wantErr: errHelp},
		{name: "missing file", args: []string{"importusers", "-file", filepath.Join(t.TempDir(), "nope.csv")}, extra: "parse"},
		{name: "import", args: []string{"importusers", "-file", path}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.extra == "parse" {
				var perr *ingest.ParseError
				if !errors.As(err, &perr) {
					t.Fatalf("cli.run() error = %v, want *ingest.ParseError", err)
				}
				return
			}
			if err != tt.wantErr {
				t.Fatalf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			for _, email := range []string{"newstudent@test.cd", "newstaff@test.cd"} {
				if _, err := usrRepo.GetUser(context.Background(), user.GetFilter{Email: email}); err != nil {
					t.Errorf("GetUser(%s) failed: %v", email, err)
				}
			}
		})
	}
}
