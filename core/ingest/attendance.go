package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/attendance"
)

// ImportAttendance records attendance for a session from a CSV with columns:
//
//	rollNumber,status
//
// (sessionID, studentID) is the natural key: each accepted row is one atomic
// upsert, so re-importing the same roll with a new status updates the existing
// mark instead of duplicating it. Roll numbers outside the session's roster are
// skipped (logged), not errored.
func (svc *Service) ImportAttendance(ctx context.Context, sessionID string, src Source) (*Report, error) {
	rows, err := ReadRows(src)
	if err != nil {
		return nil, err
	}

	rep := newReport()
	if len(rows) == 0 {
		rep.addInvalid(nil, reasonNothingToImport)
		return rep, nil
	}

	sess, roster, err := svc.attSvc.Roster(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		roll := core.CleanString(row["rollNumber"])
		status := core.CleanString(row["status"], true /* lower */)

		if roll == "" || status == "" {
			rep.addInvalid(row, reasonMissingFields)
			continue
		}
		if !attendance.ValidStatus(status) {
			rep.addInvalid(row, fmt.Sprintf("Invalid status: %q", status))
			continue
		}

		studentID, ok := roster[roll]
		if !ok {
			svc.logger.Debug(fmt.Sprintf("attendance import: roll %q not in session %s roster, skipping", roll, sess.ID))
			rep.addSkipped(roll, reasonUnknownRoll)
			continue
		}

		m, _, err := svc.attSvc.UpsertMark(ctx, attendance.Mark{
			SessionID:  sess.ID,
			StudentID:  studentID,
			Status:     status,
			RecordedAt: time.Now().UTC(),
		})
		if err != nil {
			rep.addError(i, roll, err.Error())
			continue
		}
		rep.addCreated(m.StudentID, roll, "")
	}
	return rep, nil
}
