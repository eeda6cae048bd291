package tests

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/user"
	testutil "github.com/trezcool/chuo/tests"
)

func Test_userApi_importUsers(t *testing.T) {
	fix := orgFixture(t)

	student := testutil.CreateUser(t, usrRepo, "Imp Student", "impstudent", "impstudent@test.cd", "", []string{user.RoleStudent}, true)
	admin := testutil.CreateUser(t, usrRepo, "Imp Admin", "impadmin", "impadmin@test.cd", "", []string{user.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	csv := fmt.Sprintf(
		"name,email,rollNumber,role,programId,sectionId\nNew Guy,newguy@test.cd,IMP-001,student,%s,%s\n",
		fix.Program.ID, fix.Section.ID,
	)

	t.Run("auth required", func(t *testing.T) {
		req, rec := newCSVUploadRequest(t, "/v1/users/import", "", csv)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("code = %d, want 401; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("admin required", func(t *testing.T) {
		req, rec := newCSVUploadRequest(t, "/v1/users/import", getToken(t, student), csv)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("code = %d, want 403; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/users/import", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("broken CSV fails the whole batch", func(t *testing.T) {
		req, rec := newCSVUploadRequest(t, "/v1/users/import", adminToken, "name,email\n\"unclosed,oops@test.cd\n")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("code = %d, want 400; body = %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("import", func(t *testing.T) {
		req, rec := newCSVUploadRequest(t, "/v1/users/import", adminToken, csv)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}
		rep := decodeReport(t, rec)
		if rep.CreatedCount != 1 || len(rep.Created) != 1 || rep.Created[0].NaturalKey != "newguy@test.cd" {
			t.Errorf("report = %+v", rep)
		}

		// a re-import of the same file only skips
		req, rec = newCSVUploadRequest(t, "/v1/users/import", adminToken, csv)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %d, want 200; body = %s", rec.Code, rec.Body.String())
		}
		rep = decodeReport(t, rec)
		if rep.CreatedCount != 0 || len(rep.Skipped) != 1 {
			t.Errorf("re-run report = %+v", rep)
		}
	})
}

func Test_attendanceApi_importMarks(t *testing.T) {
	fix := orgFixture(t)
	ctx := context.Background()

	testutil.CreateStudent(t, usrRepo, "Att Student", "attstudent@test.cd", "ATT-001", fix.Program.ID, fix.Section.ID)
	owner := testutil.CreateUser(t, usrRepo, "Owner", "owner", "owner@test.cd", "", []string{user.RoleStaffLecturer}, true)
	other := testutil.CreateUser(t, usrRepo, "Other", "other", "other@test.cd", "", []string{user.RoleStaffLecturer}, true)
	admin := testutil.CreateUser(t, usrRepo, "Att Admin", "attadmin", "attadmin@test.cd", "", []string{user.RoleAdmin}, true)
	student := testutil.CreateUser(t, usrRepo, "Att Kid", "attkid", "attkid@test.cd", "", []string{user.RoleStudent}, true)

	sess, err := attSvc.CreateSession(ctx, attendance.NewSession{
		SectionID: fix.Section.ID,
		SubjectID: fix.Subject.ID,
		Date:      time.Now().UTC(),
	}, owner)
	if err != nil {
		t.Fatalf("CreateSession() failed: %v", err)
	}

	path := "/v1/attendance/sessions/" + sess.ID + "/import"
	csv := "rollNumber,status\nATT-001,present\n"

	tests := []httpTest{
		{name: "auth required", wantCode: http.StatusUnauthorized},
		{name: "staff required", token: getToken(t, student), wantCode: http.StatusForbidden},
		{name: "non-owner staff denied", token: getToken(t, other), wantCode: http.StatusForbidden},
		{name: "owner allowed", token: getToken(t, owner), wantCode: http.StatusOK},
		{name: "admin allowed", token: getToken(t, admin), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newCSVUploadRequest(t, path, tt.token, csv)
			app.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("code = %d, want %d; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
			if tt.wantCode == http.StatusOK {
				rep := decodeReport(t, rec)
				if rep.CreatedCount != 1 {
					t.Errorf("report = %+v", rep)
				}
			}
		})
	}
}
