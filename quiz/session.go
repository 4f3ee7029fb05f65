package quiz

import (
	"math"
	"time"

	"github.com/pkg/errors"
)

type State int

const (
	NotStarted State = iota
	InProgress
	Paused
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Paused:
		return "paused"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

var (
	ErrSessionCompleted = errors.New("quiz session is completed")
	ErrNotInProgress    = errors.New("quiz session is not in progress")
	ErrNotPaused        = errors.New("quiz session is not paused")
	ErrAlreadyStarted   = errors.New("quiz session already started")
)

// Session is a single timed run through a quiz. The countdown is a deadline
// on the session clock; Tick re-reads the clock and submits an empty answer
// once the deadline has passed. A Session is not safe for concurrent use.
type Session struct {
	gen    *Generator
	cards  []Card
	budget time.Duration
	now    func() time.Time

	questions []Question
	index     int
	state     State
	deadline  time.Time
	remaining time.Duration
	records   []AnswerRecord
}

// NewSession prepares a quiz over cards with the given per-question budget.
func NewSession(gen *Generator, cards []Card, budget time.Duration) *Session {
	if budget <= 0 {
		budget = DefaultBudgetSeconds * time.Second
	}
	s := &Session{
		gen:    gen,
		cards:  append([]Card(nil), cards...),
		budget: budget,
		now:    time.Now,
	}
	s.reset()
	return s
}

// WithClock replaces the session clock; tests drive it by hand.
func (s *Session) WithClock(now func() time.Time) *Session {
	s.now = now
	return s
}

func (s *Session) reset() {
	s.questions = s.gen.Generate(s.cards)
	s.index = 0
	s.state = NotStarted
	s.deadline = time.Time{}
	s.remaining = s.budget
	s.records = nil
}

func (s *Session) budgetSeconds() int {
	return int(s.budget / time.Second)
}

// Start begins the first question.
func (s *Session) Start() error {
	if s.state != NotStarted {
		return ErrAlreadyStarted
	}
	if len(s.questions) == 0 {
		s.state = Completed
		return nil
	}
	s.state = InProgress
	s.deadline = s.now().Add(s.budget)
	return nil
}

// Tick advances the countdown. It reports whether the current question timed out.
// Ticks outside InProgress are ignored.
func (s *Session) Tick() (bool, error) {
	switch s.state {
	case Completed:
		return false, ErrSessionCompleted
	case InProgress:
	default:
		return false, nil
	}
	if s.left() > 0 {
		return false, nil
	}
	s.submit("", 0)
	return true, nil
}

// Pause freezes the countdown.
func (s *Session) Pause() error {
	switch s.state {
	case Completed:
		return ErrSessionCompleted
	case InProgress:
	default:
		return ErrNotInProgress
	}
	s.remaining = s.left()
	s.state = Paused
	return nil
}

// Resume continues the countdown where Pause left it.
func (s *Session) Resume() error {
	switch s.state {
	case Completed:
		return ErrSessionCompleted
	case Paused:
	default:
		return ErrNotPaused
	}
	s.deadline = s.now().Add(s.remaining)
	s.state = InProgress
	return nil
}

// Answer submits an answer for the current question. An answer arriving after
// the deadline is recorded as a timeout.
func (s *Session) Answer(answer string) (AnswerRecord, error) {
	switch s.state {
	case Completed:
		return AnswerRecord{}, ErrSessionCompleted
	case InProgress:
	default:
		return AnswerRecord{}, ErrNotInProgress
	}
	secs := s.TimeLeft()
	if secs <= 0 {
		answer = ""
	}
	return s.submit(answer, secs), nil
}

// Restart discards all answers and reshuffles the quiz.
func (s *Session) Restart() {
	s.reset()
}

func (s *Session) submit(answer string, secondsRemaining int) AnswerRecord {
	rec := Record(s.questions[s.index], answer, secondsRemaining, s.budgetSeconds())
	s.records = append(s.records, rec)
	s.index++
	if s.index >= len(s.questions) {
		s.state = Completed
		s.remaining = 0
		return rec
	}
	s.deadline = s.now().Add(s.budget)
	return rec
}

func (s *Session) left() time.Duration {
	switch s.state {
	case InProgress:
		return max(0, s.deadline.Sub(s.now()))
	case Paused, NotStarted:
		return s.remaining
	default:
		return 0
	}
}

// TimeLeft is the countdown of the current question in whole seconds, rounded up.
func (s *Session) TimeLeft() int {
	return int(math.Ceil(s.left().Seconds()))
}

func (s *Session) State() State {
	return s.state
}

// Current returns the question being asked, if any.
func (s *Session) Current() (Question, bool) {
	if s.state == Completed || s.index >= len(s.questions) {
		return Question{}, false
	}
	return s.questions[s.index], true
}

// Index is the zero-based position of the current question.
func (s *Session) Index() int {
	return s.index
}

func (s *Session) Questions() []Question {
	return s.questions
}

func (s *Session) Records() []AnswerRecord {
	return append([]AnswerRecord(nil), s.records...)
}

func (s *Session) Summary() Summary {
	return Summarize(s.records)
}
