package ingest

import (
	"sync"

	"github.com/trezcool/chuo/core"
	"github.com/trezcool/chuo/core/assessment"
	"github.com/trezcool/chuo/core/attendance"
	"github.com/trezcool/chuo/core/org"
	"github.com/trezcool/chuo/core/user"
)

// rejection reasons shared across import kinds
const (
	reasonMissingFields   = "Missing required fields"
	reasonNothingToImport = "nothing to import"
	reasonEmailExists     = "email already exists"
	reasonUnknownRoll     = "unknown roll number"

	emailFailedPrefix = "Email failed: "
)

// Service runs the bulk CSV ingestion pipelines: parse, validate per row,
// write each accepted row as one atomic unit, notify best-effort, and report
// created/skipped/invalid/errored rows without aborting the batch.
type Service struct {
	logger  core.Logger
	usrSvc  *user.Service
	orgSvc  *org.Service
	attSvc  *attendance.Service
	asmtSvc *assessment.Service
	mailSvc core.EmailService
}

func NewService(
	logger core.Logger,
	usrSvc *user.Service,
	orgSvc *org.Service,
	attSvc *attendance.Service,
	asmtSvc *assessment.Service,
	mailSvc core.EmailService,
) *Service {
	return &Service{
		logger:  logger,
		usrSvc:  usrSvc,
		orgSvc:  orgSvc,
		attSvc:  attSvc,
		asmtSvc: asmtSvc,
		mailSvc: mailSvc,
	}
}

// notifyGroup is a bounded task group for best-effort post-write notifications.
// One task is spawned per successfully written row; all tasks are joined before
// the batch report is finalized. A failed send never undoes the write: it is
// folded into the report's errors, tagged apart from write errors.
type notifyGroup struct {
	wg       sync.WaitGroup
	mu       sync.Mutex
	failures []notifyFailure
}

type notifyFailure struct {
	idx        int // input row index; keeps error order deterministic
	naturalKey string
	reason     string
}

func (g *notifyGroup) spawn(idx int, naturalKey string, send func() error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		if err := send(); err != nil {
			g.mu.Lock()
			g.failures = append(g.failures, notifyFailure{idx: idx, naturalKey: naturalKey, reason: emailFailedPrefix + err.Error()})
			g.mu.Unlock()
		}
	}()
}

func (g *notifyGroup) join(rep *Report) {
	g.wg.Wait()
	for _, f := range g.failures {
		rep.addError(f.idx, f.naturalKey, f.reason)
	}
	// a row-1 send failure must not trail a row-5 write error
	rep.sortErrors()
}
