package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/chuo/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) *attendanceRepository {
	return &attendanceRepository{db: db}
}

func markKey(sessionID, studentID string) string { return sessionID + "/" + studentID }

func (repo attendanceRepository) CreateSession(ctx context.Context, s attendance.Session) (attendance.Session, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	repo.db.sessions[s.ID] = s
	return s, nil
}

func (repo attendanceRepository) GetSession(ctx context.Context, id string) (attendance.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	if s, ok := repo.db.sessions[id]; ok {
		return s, nil
	}
	return attendance.Session{}, attendance.ErrSessionNotFound
}

func (repo attendanceRepository) QuerySessionsBySection(ctx context.Context, sectionID string) ([]attendance.Session, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var sessions []attendance.Session
	for _, s := range repo.db.sessions {
		if s.SectionID == sectionID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].Date.Before(sessions[j].Date) })
	return sessions, nil
}

func (repo attendanceRepository) UpsertMark(ctx context.Context, m attendance.Mark) (attendance.Mark, bool, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if repo.db.FailUpsertMark != nil {
		return attendance.Mark{}, false, repo.db.FailUpsertMark
	}

	key := markKey(m.SessionID, m.StudentID)
	_, exists := repo.db.marks[key]
	repo.db.marks[key] = m
	return m, !exists, nil
}

func (repo attendanceRepository) QueryMarks(ctx context.Context, sessionID string) ([]attendance.Mark, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	var marks []attendance.Mark
	for _, m := range repo.db.marks {
		if m.SessionID == sessionID {
			marks = append(marks, m)
		}
	}
	sort.Slice(marks, func(i, j int) bool { return marks[i].StudentID < marks[j].StudentID })
	return marks, nil
}

func (repo attendanceRepository) AbsenteesOn(ctx context.Context, day time.Time) ([]attendance.Absentee, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	from := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 1)

	counts := make(map[string]int) // studentID -> sessions missed
	for _, m := range repo.db.marks {
		if m.Status != attendance.StatusAbsent {
			continue
		}
		s, ok := repo.db.sessions[m.SessionID]
		if !ok || s.Date.Before(from) || !s.Date.Before(to) {
			continue
		}
		counts[m.StudentID]++
	}

	absentees := make([]attendance.Absentee, 0, len(counts))
	for studentID, n := range counts {
		a := attendance.Absentee{StudentID: studentID, Sessions: n}
		if usr, ok := repo.db.users[studentID]; ok {
			a.Name = usr.Name
		}
		if sp, ok := repo.db.studentProfiles[studentID]; ok {
			a.RollNumber = sp.RollNumber
			a.GuardianEmail = sp.GuardianEmail
			a.GuardianPhone = sp.GuardianPhone
		}
		absentees = append(absentees, a)
	}
	sort.Slice(absentees, func(i, j int) bool { return absentees[i].RollNumber < absentees[j].RollNumber })
	return absentees, nil
}
