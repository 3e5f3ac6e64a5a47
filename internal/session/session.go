package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/transcript-transfer/internal/agreements"
	"github.com/spigell/transcript-transfer/internal/transcript"
)

// State is the matching result as seen by the presentation layer.
type State int

const (
	Uncomputed State = iota
	ComputedEmpty
	ComputedNonEmpty
	Blocked
)

func (s State) String() string {
	switch s {
	case Uncomputed:
		return "uncomputed"
	case ComputedEmpty:
		return "computed-empty"
	case ComputedNonEmpty:
		return "computed-non-empty"
	case Blocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Result is the outcome of one evaluation. Matches is non-nil only in the
// computed states.
type Result struct {
	State   State
	Courses []transcript.ParsedCourse
	Matches []agreements.TransferAgreement
	// Err carries the table load error when State is Blocked.
	Err error
}

// Evaluate joins the summary against the table once both are available. A nil
// summary means no summary has been produced yet. A failed table blocks
// matching even when the summary is present.
func Evaluate(summary *string, table agreements.Status) Result {
	if table.State == agreements.StateFailed {
		return Result{State: Blocked, Err: table.Err}
	}

	if summary == nil || table.State != agreements.StateLoaded {
		return Result{State: Uncomputed}
	}

	courses := transcript.ParsePassedCourses(*summary)
	matches := table.Table.Match(courses)

	state := ComputedEmpty
	if len(matches) > 0 {
		state = ComputedNonEmpty
	}

	return Result{State: state, Courses: courses, Matches: matches}
}

// Session tracks the inputs of the current upload cycle. Deliveries for an
// older cycle are dropped.
type Session struct {
	mu      sync.Mutex
	cycle   uint64
	summary *string
	table   agreements.Status
	logger  *zap.Logger
}

func New(logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{table: agreements.Loading(), logger: logger}
}

// Begin starts a new cycle, clearing the previous summary, and returns its id.
func (s *Session) Begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycle++
	s.summary = nil
	s.logger.Debug("cycle started", zap.Uint64("cycle", s.cycle))
	return s.cycle
}

// Cycle returns the id of the current cycle.
func (s *Session) Cycle() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycle
}

// SetSummary records the summary for cycle. It reports false when cycle is stale.
func (s *Session) SetSummary(cycle uint64, summary string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cycle != s.cycle {
		s.logger.Info("discarding summary from a previous cycle",
			zap.Uint64("cycle", cycle),
			zap.Uint64("current_cycle", s.cycle),
		)
		return false
	}

	s.summary = &summary
	return true
}

// ClearSummary drops the current summary, returning the result to Uncomputed.
func (s *Session) ClearSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = nil
}

// SetTable records the table status. The table is shared across cycles.
func (s *Session) SetTable(status agreements.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.table = status
}

// Result evaluates the current inputs.
func (s *Session) Result() Result {
	s.mu.Lock()
	summary, table := s.summary, s.table
	s.mu.Unlock()

	return Evaluate(summary, table)
}
