package ingest

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/user"
	testutil "github.com/trezcool/chuo/tests"
)

func assessmentSetup(t *testing.T) (*Service, *testEnv, assessment.Assessment, user.User) {
	t.Helper()
	svc, env := setup(t)
	ctx := context.Background()

	alice := testutil.CreateStudent(t, env.usrRepo, "Alice A", "alice@test.cd", "CS-001", env.fix.Program.ID, env.fix.Section.ID)
	testutil.CreateStudent(t, env.usrRepo, "Bob B", "bob@test.cd", "CS-002", env.fix.Program.ID, env.fix.Section.ID)
	staff := testutil.CreateUser(t, env.usrRepo, "Prof", "prof", "prof@test.cd", "", []string{user.RoleStaffLecturer}, true)

	asmt, err := env.asmtSvc.Create(ctx, assessment.NewAssessment{
		SubjectID: env.fix.Subject.ID,
		Title:     "Midterm",
		MaxMarks:  20,
	}, staff)
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	return svc, env, asmt, alice
}

func Test_Service_ImportScores(t *testing.T) {
	svc, env, asmt, alice := assessmentSetup(t)
	ctx := context.Background()

	rep, err := svc.ImportScores(ctx, asmt.ID, csvSrc(
		"rollNumber,marksObtained",
		"CS-001,15.5",
		"CS-002,25",
		"CS-999,10",
		"CS-002,abc",
		",5",
	))
	if err != nil {
		t.Fatalf("ImportScores() unexpected error = %v", err)
	}

	if rep.Total() != 5 {
		t.Errorf("Total() = %d, want 5", rep.Total())
	}
	if rep.CreatedCount != 1 || rep.Created[0].NaturalKey != "CS-001" {
		t.Fatalf("Created = %+v, want [CS-001]", rep.Created)
	}
	if len(rep.Skipped) != 1 || rep.Skipped[0].NaturalKey != "CS-999" {
		t.Errorf("Skipped = %+v", rep.Skipped)
	}
	wantInvalid := []string{
		"Marks out of range: 25 (max 20)",
		`Invalid marks: "abc"`,
		reasonMissingFields,
	}
	if len(rep.Invalid) != len(wantInvalid) {
		t.Fatalf("len(Invalid) = %d, want %d: %+v", len(rep.Invalid), len(wantInvalid), rep.Invalid)
	}
	for i, want := range wantInvalid {
		if rep.Invalid[i].Reason != want {
			t.Errorf("Invalid[%d].Reason = %q, want %q", i, rep.Invalid[i].Reason, want)
		}
	}

	// a re-import with different marks updates the stored score
	rep, err = svc.ImportScores(ctx, asmt.ID, csvSrc("rollNumber,marksObtained", "CS-001,18"))
	if err != nil {
		t.Fatalf("ImportScores() re-run unexpected error = %v", err)
	}
	if rep.CreatedCount != 1 {
		t.Errorf("re-run CreatedCount = %d, want 1", rep.CreatedCount)
	}
	scores, err := env.asmtSvc.Scores(ctx, asmt.ID)
	if err != nil {
		t.Fatalf("Scores() failed: %v", err)
	}
	if len(scores) != 1 {
		t.Fatalf("len(scores) = %d, want 1 (no duplicate)", len(scores))
	}
	if scores[0].StudentID != alice.ID || scores[0].Marks != 18 {
		t.Errorf("score = %+v, want alice with 18 marks", scores[0])
	}
}

func Test_Service_ImportScores_writeFailure(t *testing.T) {
	svc, env, asmt, _ := assessmentSetup(t)

	env.db.FailUpsertScore = errors.New("deadlock detected")

	rep, err := svc.ImportScores(context.Background(), asmt.ID, csvSrc("rollNumber,marksObtained", "CS-001,10"))
	if err != nil {
		t.Fatalf("ImportScores() unexpected error = %v", err)
	}
	if rep.CreatedCount != 0 || len(rep.Errors) != 1 {
		t.Fatalf("report = %+v, want 0 created / 1 error", rep)
	}
}

func Test_Service_ImportScores_unknownAssessment(t *testing.T) {
	svc, _, _, _ := assessmentSetup(t)

	_, err := svc.ImportScores(context.Background(), "nope", csvSrc("rollNumber,marksObtained", "CS-001,10"))
	if errors.Cause(err) != assessment.ErrNotFound {
		t.Errorf("ImportScores() error = %v, want ErrNotFound", err)
	}
}
