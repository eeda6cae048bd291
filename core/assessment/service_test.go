package assessment_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
	dummydb "github.com/trezcool/chuo/storage/database/dummy"
	testutil "github.com/trezcool/chuo/tests"
)

func setup(t *testing.T) (*assessment.Service, user.Repository, testutil.OrgFixture) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	usrRepo := dummydb.NewUserRepository(db)
	orgSvc := org.NewService(dummydb.NewOrgRepository(db))
	svc := assessment.NewService(dummydb.NewAssessmentRepository(db), orgSvc, usrRepo)
	return svc, usrRepo, testutil.SeedOrg(t, orgSvc)
}

func Test_Service_Enter(t *testing.T) {
	svc, usrRepo, fix := setup(t)
	ctx := context.Background()

	staff := testutil.CreateUser(t, usrRepo, "Prof", "prof", "prof@test.cd", "", []string{user.RoleStaffLecturer}, true)
	student := testutil.CreateStudent(t, usrRepo, "Alice A", "alice@test.cd", "CS-001", fix.Program.ID, fix.Section.ID)

	asmt, err := svc.Create(ctx, assessment.NewAssessment{SubjectID: fix.Subject.ID, Title: "Midterm", MaxMarks: 20}, staff)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if asmt.TermID != fix.Term.ID {
		t.Errorf("TermID = %q, want the subject's term %q", asmt.TermID, fix.Term.ID)
	}

	// marks above the assessment maximum are rejected
	_, err = svc.Enter(ctx, asmt.ID, assessment.NewScore{StudentID: student.ID, Marks: 25})
	var vErr *core.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("Enter() error = %v, want *core.ValidationError", err)
	}

	if _, err = svc.Enter(ctx, asmt.ID, assessment.NewScore{StudentID: student.ID, Marks: 15}); err != nil {
		t.Fatalf("Enter() failed: %v", err)
	}

	// a repeat entry updates the score in place
	if _, err = svc.Enter(ctx, asmt.ID, assessment.NewScore{StudentID: student.ID, Marks: 18}); err != nil {
		t.Fatalf("Enter() failed: %v", err)
	}
	scores, err := svc.Scores(ctx, asmt.ID)
	if err != nil {
		t.Fatalf("Scores() failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d, want 1", len(scores))
	}
	if scores[0].Marks != 18 {
		t.Errorf("Marks = %v, want 18", scores[0].Marks)
	}

	if _, err = svc.Enter(ctx, "nope", assessment.NewScore{StudentID: student.ID, Marks: 10}); err != assessment.ErrNotFound {
		t.Errorf("Enter() unknown assessment error = %v, want ErrNotFound", err)
	}
}
