package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func TestQuizTimer_AccumulatesAcrossRuns(t *testing.T) {
	clock := newFakeClock()
	timer := NewQuizTimer(clock.Now)

	assert.Equal(t, "0:00", timer.Display())

	timer.Start()
	clock.Advance(65 * time.Second)
	assert.Equal(t, "1:05", timer.Display())

	timer.Stop()
	clock.Advance(time.Hour)
	assert.Equal(t, 65*time.Second, timer.Elapsed())

	timer.Start()
	clock.Advance(10 * time.Second)
	timer.Stop()
	assert.Equal(t, "1:15", timer.Display())
}

func TestQuizTimer_StartWhileRunningKeepsStart(t *testing.T) {
	clock := newFakeClock()
	timer := NewQuizTimer(clock.Now)

	timer.Start()
	clock.Advance(30 * time.Second)
	timer.Start()
	clock.Advance(30 * time.Second)
	assert.Equal(t, time.Minute, timer.Elapsed())
}

func TestQuizTimer_Reset(t *testing.T) {
	clock := newFakeClock()
	timer := NewQuizTimer(clock.Now)

	timer.Start()
	clock.Advance(42 * time.Second)
	timer.Reset()

	assert.False(t, timer.Running())
	assert.Equal(t, time.Duration(0), timer.Elapsed())
}

func TestQuizTimer_RestoreState(t *testing.T) {
	clock := newFakeClock()
	timer := NewQuizTimer(clock.Now)
	timer.Start()
	clock.Advance(20 * time.Second)

	restored := RestoreQuizTimer(timer.State(), clock.Now)
	clock.Advance(5 * time.Second)
	restored.Stop()

	assert.Equal(t, 25*time.Second, restored.Elapsed())
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0:00"},
		{999 * time.Millisecond, "0:00"},
		{9 * time.Second, "0:09"},
		{10*time.Minute + 5*time.Second, "10:05"},
		{75 * time.Minute, "75:00"},
		{-time.Second, "0:00"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatElapsed(tt.in), tt.in.String())
	}
}
