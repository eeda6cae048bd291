package dummydb

import (
	"sync"

	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/contact"
	"github.com/trezcool/chuo/core/feedback"
	"github.com/trezcool/chuo/core/leave"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

// DB is an in-memory store backing the dummy repositories. Used in tests and
// as a postgres-free development backend.
type DB struct {
	mu sync.RWMutex

	users           map[string]*user.User           // by ID
	studentProfiles map[string]*user.StudentProfile // by user ID
	staffProfiles   map[string]*user.StaffProfile   // by user ID

	departments map[string]org.Department
	programs    map[string]org.Program
	sections    map[string]org.Section
	terms       map[string]org.Term
	subjects    map[string]org.Subject

	sessions map[string]attendance.Session
	marks    map[string]attendance.Mark // by sessionID+"/"+studentID

	assessments map[string]assessment.Assessment
	scores      map[string]assessment.Score // by assessmentID+"/"+studentID

	leaves   map[string]leave.Application
	feedback []feedback.Feedback
	contacts []contact.Message

	// fault hooks for tests
	FailProfileCreate error // returned by CreateUserWithProfile after the user write would have happened
	FailUpsertMark    error
	FailUpsertScore   error
}

func Open() (*DB, error) {
	db := &DB{
		users:           make(map[string]*user.User),
		studentProfiles: make(map[string]*user.StudentProfile),
		staffProfiles:   make(map[string]*user.StaffProfile),
		departments:     make(map[string]org.Department),
		programs:        make(map[string]org.Program),
		sections:        make(map[string]org.Section),
		terms:           make(map[string]org.Term),
		subjects:        make(map[string]org.Subject),
		sessions:        make(map[string]attendance.Session),
		marks:           make(map[string]attendance.Mark),
		assessments:     make(map[string]assessment.Assessment),
		scores:          make(map[string]assessment.Score),
		leaves:          make(map[string]leave.Application),
	}
	return db, nil
}
