package service

import (
	"fmt"
	"time"
)

// TimerState is the persisted form of a QuizTimer.
type TimerState struct {
	StartedAt *time.Time    `json:"started_at,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// QuizTimer measures how long a quiz attempt takes. Time accumulates across
// start/stop cycles until Reset.
type QuizTimer struct {
	state TimerState
	now   func() time.Time
}

// NewQuizTimer returns a stopped timer. A nil clock uses time.Now.
func NewQuizTimer(now func() time.Time) *QuizTimer {
	if now == nil {
		now = time.Now
	}
	return &QuizTimer{now: now}
}

// RestoreQuizTimer rebuilds a timer from its persisted state.
func RestoreQuizTimer(state TimerState, now func() time.Time) *QuizTimer {
	t := NewQuizTimer(now)
	t.state = state
	return t
}

func (t *QuizTimer) Start() {
	if t.state.StartedAt != nil {
		return
	}
	started := t.now()
	t.state.StartedAt = &started
}

func (t *QuizTimer) Stop() {
	if t.state.StartedAt == nil {
		return
	}
	t.state.Elapsed += t.now().Sub(*t.state.StartedAt)
	t.state.StartedAt = nil
}

func (t *QuizTimer) Reset() {
	t.state = TimerState{}
}

func (t *QuizTimer) Running() bool {
	return t.state.StartedAt != nil
}

// Elapsed includes the current run when the timer is running.
func (t *QuizTimer) Elapsed() time.Duration {
	if t.state.StartedAt != nil {
		return t.state.Elapsed + t.now().Sub(*t.state.StartedAt)
	}
	return t.state.Elapsed
}

// Display formats the elapsed time as m:ss.
func (t *QuizTimer) Display() string {
	return FormatElapsed(t.Elapsed())
}

func (t *QuizTimer) State() TimerState {
	return t.state
}

// FormatElapsed renders d as minutes and zero-padded seconds, e.g. "12:05".
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
