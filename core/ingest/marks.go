package ingest

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/assessment"
)

// ImportScores records assessment marks from a CSV with columns:
//
//	rollNumber,marksObtained
//
// (assessmentID, studentID) is the natural key: each accepted row is one atomic
// upsert; a re-import with different marks updates the stored score. Roll
// numbers outside the assessment's roster are skipped, not errored.
func (svc *Service) ImportScores(ctx context.Context, assessmentID string, src Source) (*Report, error) {
	rows, err := ReadRows(src)
	if err != nil {
		return nil, err
	}

	rep := newReport()
	if len(rows) == 0 {
		rep.addInvalid(nil, reasonNothingToImport)
		return rep, nil
	}

	asmt, roster, err := svc.asmtSvc.Roster(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return rep, err
		}

		roll := core.CleanString(row["rollNumber"])
		marksStr := core.CleanString(row["marksObtained"])

		if roll == "" || marksStr == "" {
			rep.addInvalid(row, reasonMissingFields)
			continue
		}
		marks, err := strconv.ParseFloat(marksStr, 64)
		if err != nil {
			rep.addInvalid(row, fmt.Sprintf("Invalid marks: %q", marksStr))
			continue
		}
		if marks < 0 || marks > asmt.MaxMarks {
			rep.addInvalid(row, fmt.Sprintf("Marks out of range: %v (max %v)", marks, asmt.MaxMarks))
			continue
		}

		studentID, ok := roster[roll]
		if !ok {
			svc.logger.Debug(fmt.Sprintf("marks import: roll %q not in assessment %s roster, skipping", roll, asmt.ID))
			rep.addSkipped(roll, reasonUnknownRoll)
			continue
		}

		s, _, err := svc.asmtSvc.UpsertScore(ctx, assessment.Score{
			AssessmentID: asmt.ID,
			StudentID:    studentID,
			Marks:        marks,
			RecordedAt:   time.Now().UTC(),
		})
		if err != nil {
			rep.addError(i, roll, err.Error())
			continue
		}
		rep.addCreated(s.StudentID, roll, "")
	}
	return rep, nil
}
