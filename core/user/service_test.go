package user_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/trezcool/chuo/core/user"
	dummymail "github.com/trezcool/chuo/services/email/dummy"
	logsvc "github.com/trezcool/chuo/services/logger"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
)

func Test_Service_Create(t *testing.T) {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	logger := logsvc.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))
	repo := dummydb.NewUserRepository(db)
	svc := user.NewService(repo, dummymail.NewService(), logger)

	ctx := context.Background()
	abe, err := svc.Create(ctx, user.NewUser{Name: "Abe", Username: "abeuser", Email: "abe@test.cd", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if abe.ID == "" {
		t.Fatal("Create() returned a user with an empty ID")
	}

	bea, err := svc.Create(ctx, user.NewUser{Name: "Bea", Username: "beauser", Email: "bea@test.cd", Password: "s3cr3t"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if bea.ID == "" || bea.ID == abe.ID {
		t.Fatalf("bea.ID = %q, want a fresh unique ID (abe.ID = %q)", bea.ID, abe.ID)
	}

	// the first user survives the second create
	for _, id := range []string{abe.ID, bea.ID} {
		if _, err = repo.GetUser(ctx, user.GetFilter{ID: id}); err != nil {
			t.Errorf("GetUser(%s) failed: %v", id, err)
		}
	}

	if err = abe.CheckPassword("s3cr3t"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
}
