package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Username:  uname,
		Email:     email,
		Roles:     roles,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	usr.SetActive(isActive)
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateStudent creates an active student account with its profile.
func CreateStudent(
	t *testing.T,
	repo user.Repository,
	name, email, roll, programID, sectionID string,
	guardian ...string, // email, phone
) user.User {
	t.Helper()

	now := time.Now().UTC()
	usr := user.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Roles:     []string{user.RoleStudent},
		CreatedAt: now,
		UpdatedAt: now,
	}
	usr.SetActive(true)

	sp := &user.StudentProfile{
		RollNumber: roll,
		ProgramID:  programID,
		SectionID:  sectionID,
	}
	if len(guardian) > 0 {
		sp.GuardianEmail = guardian[0]
	}
	if len(guardian) > 1 {
		sp.GuardianPhone = guardian[1]
	}

	usr, err := repo.CreateUserWithProfile(context.Background(), usr, sp, nil)
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return usr
}

// OrgFixture is a minimal reference-data tree: one of everything, all linked.
type OrgFixture struct {
	Department org.Department
	Term       org.Term
	Program    org.Program
	Section    org.Section
	Subject    org.Subject
}

func SeedOrg(t *testing.T, svc *org.Service) OrgFixture {
	t.Helper()
	ctx := context.Background()

	dep, err := svc.CreateDepartment(ctx, org.NewDepartment{Code: "cs", Name: "Computer Science"})
	if err != nil {
		t.Fatalf("SeedOrg() failed: %v", err)
	}
	now := time.Now().UTC()
	term, err := svc.CreateTerm(ctx, org.NewTerm{Name: "Term 1", StartDate: now, EndDate: now.AddDate(0, 4, 0)})
	if err != nil {
		t.Fatalf("SeedOrg() failed: %v", err)
	}
	prog, err := svc.CreateProgram(ctx, org.NewProgram{Code: "bsc-cs", Name: "BSc Computer Science", DepartmentID: dep.ID})
	if err != nil {
		t.Fatalf("SeedOrg() failed: %v", err)
	}
	sec, err := svc.CreateSection(ctx, org.NewSection{Name: "CS-A", ProgramID: prog.ID, TermID: term.ID})
	if err != nil {
		t.Fatalf("SeedOrg() failed: %v", err)
	}
	sub, err := svc.CreateSubject(ctx, org.NewSubject{Code: "cs101", Name: "Intro to Programming", ProgramID: prog.ID, TermID: term.ID})
	if err != nil {
		t.Fatalf("SeedOrg() failed: %v", err)
	}
	return OrgFixture{Department: dep, Term: term, Program: prog, Section: sec, Subject: sub}
}
