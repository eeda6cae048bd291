package ingest

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

// user import role column values
const (
	roleStudent = "student"
	roleStaff   = "staff"
	roleAdmin   = "admin"
)

// ImportUsers provisions user accounts (plus student/staff profiles) from a CSV
// with columns:
//
//	name,email,rollNumber,role,programId,sectionId,departmentId,guardianEmail,guardianPhone
//
// Email is the natural key: rows whose email already exists are skipped, not
// errored, so re-running an import is harmless. Each accepted row is written as
// one atomic user+profile unit; a welcome email with the generated credentials
// is sent best-effort per created account.
func (svc *Service) ImportUsers(ctx context.Context, src Source) (*Report, error) {
	rows, err := ReadRows(src)
	if err != nil {
		return nil, err
	}

	rep := newReport()
	if len(rows) == 0 {
		rep.addInvalid(nil, reasonNothingToImport)
		return rep, nil
	}

	// reference data is fetched once per batch
	snap, err := svc.orgSvc.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "prefetching reference data")
	}

	ng := new(notifyGroup)
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			ng.join(rep)
			return rep, err
		}
		svc.importUserRow(ctx, i, row, snap, rep, ng)
	}
	ng.join(rep)
	return rep, nil
}

func (svc *Service) importUserRow(ctx context.Context, idx int, row Row, snap *org.Snapshot, rep *Report, ng *notifyGroup) {
	var (
		name  = core.CleanString(row["name"])
		email = core.CleanString(row["email"], true /* lower */)
		roll  = core.CleanString(row["rollNumber"])
		role  = core.CleanString(row["role"], true /* lower */)
	)

	// 1. required fields
	if name == "" || email == "" || roll == "" || role == "" {
		rep.addInvalid(row, reasonMissingFields)
		return
	}
	if err := core.Validate.Var(email, "email"); err != nil {
		rep.addInvalid(row, fmt.Sprintf("Invalid email: %q", email))
		return
	}

	// 2. role enum
	switch role {
	case roleStudent, roleStaff, roleAdmin:
	default:
		rep.addInvalid(row, fmt.Sprintf("Invalid role: %q", role))
		return
	}

	// 3. conditional requirements + 4. referential existence
	var (
		sp  *user.StudentProfile
		stp *user.StaffProfile
	)
	switch role {
	case roleStudent:
		programID := core.CleanString(row["programId"])
		sectionID := core.CleanString(row["sectionId"])
		if programID == "" {
			rep.addInvalid(row, "Missing programId for student row")
			return
		}
		if sectionID == "" {
			rep.addInvalid(row, "Missing sectionId for student row")
			return
		}
		if !snap.HasProgram(programID) {
			rep.addInvalid(row, fmt.Sprintf("Unknown programId: %q", programID))
			return
		}
		if !snap.HasSection(sectionID) {
			rep.addInvalid(row, fmt.Sprintf("Unknown sectionId: %q", sectionID))
			return
		}
		sp = &user.StudentProfile{
			RollNumber:    roll,
			ProgramID:     programID,
			SectionID:     sectionID,
			GuardianEmail: core.CleanString(row["guardianEmail"], true /* lower */),
			GuardianPhone: core.CleanString(row["guardianPhone"]),
		}
	case roleStaff, roleAdmin:
		departmentID := core.CleanString(row["departmentId"])
		if departmentID == "" {
			rep.addInvalid(row, "Missing departmentId for staff row")
			return
		}
		if !snap.HasDepartment(departmentID) {
			rep.addInvalid(row, fmt.Sprintf("Unknown departmentId: %q", departmentID))
			return
		}
		stp = &user.StaffProfile{
			EmployeeNumber: roll,
			DepartmentID:   departmentID,
		}
	}

	// 5. natural-key pre-check: an existing email is a benign duplicate
	if _, err := svc.usrSvc.GetByEmail(ctx, email); err == nil {
		rep.addSkipped(email, reasonEmailExists)
		return
	} else if err != user.ErrNotFound {
		rep.addError(idx, email, err.Error())
		return
	}

	usr := user.User{
		ID:    uuid.NewString(),
		Name:  name,
		Email: email,
		Roles: importRoles(role),
	}

	// one atomic unit: user + profile, all or nothing. A secondary-key
	// collision (duplicate roll/employee number under a different email)
	// only surfaces here and is a reportable error, not a skip.
	usr, pwd, err := svc.usrSvc.Provision(ctx, usr, sp, stp)
	if err != nil {
		rep.addError(idx, email, err.Error())
		return
	}
	rep.addCreated(usr.ID, email, usr.Name)

	ng.spawn(idx, email, func() error {
		return svc.mailSvc.SendMessage(user.WelcomeMessage(usr, pwd))
	})
}

func importRoles(role string) []string {
	switch role {
	case roleStaff:
		return []string{user.RoleStaff}
	case roleAdmin:
		return []string{user.RoleAdmin}
	default:
		return []string{user.RoleStudent}
	}
}
