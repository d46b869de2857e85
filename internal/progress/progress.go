// Package progress drives the simulated "Loading N%" indicator shown while the
// model works on a quiz. The provider reports no real progress, so the
// percentage creeps up on a ticker and only reaches 100 on Finish.
package progress

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

const (
	DefaultInterval  = 700 * time.Millisecond
	DefaultHideDelay = 400 * time.Millisecond

	ceiling    = 95
	maxRunning = 99
	barWidth   = 24
)

// State is one observable frame of the indicator.
type State struct {
	Percent int
	Visible bool
}

// Label renders the frame text, e.g. "Loading 42%".
func (s State) Label() string {
	return fmt.Sprintf("Loading %d%%", s.Percent)
}

// Indicator is safe for concurrent use. onChange is called with the indicator
// lock held and must not call back into it.
type Indicator struct {
	mu        sync.Mutex
	percent   float64
	visible   bool
	stop      chan struct{}
	done      chan struct{}
	hideTimer *time.Timer
	// gen counts Start and Finish calls; a hide scheduled by an earlier call is dropped.
	gen uint64

	interval  time.Duration
	hideDelay time.Duration
	step      func() float64
	onChange  func(State)
}

type Option func(*Indicator)

func WithInterval(d time.Duration) Option { return func(i *Indicator) { i.interval = d } }

func WithHideDelay(d time.Duration) Option { return func(i *Indicator) { i.hideDelay = d } }

// WithStep replaces the random 0-6 point increment applied on every tick.
func WithStep(step func() float64) Option { return func(i *Indicator) { i.step = step } }

func New(onChange func(State), opts ...Option) *Indicator {
	i := &Indicator{
		interval:  DefaultInterval,
		hideDelay: DefaultHideDelay,
		step:      func() float64 { return rand.Float64() * 6 },
		onChange:  onChange,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Start shows the indicator at 0%, cancelling any run already in progress.
func (i *Indicator) Start() {
	i.halt()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopHideTimer()
	i.gen++
	i.percent = 0
	i.visible = true
	i.stop = make(chan struct{})
	i.done = make(chan struct{})
	i.emit()

	go i.run(i.stop, i.done)
}

// Finish jumps to 100% and hides the indicator after the hide delay.
func (i *Indicator) Finish() {
	i.halt()

	i.mu.Lock()
	defer i.mu.Unlock()
	i.stopHideTimer()
	i.gen++
	i.percent = 100
	i.emit()
	gen := i.gen
	i.hideTimer = time.AfterFunc(i.hideDelay, func() { i.hide(gen) })
}

func (i *Indicator) hide(gen uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if gen != i.gen {
		return
	}
	i.hideTimer = nil
	i.visible = false
	i.emit()
}

func (i *Indicator) stopHideTimer() {
	if i.hideTimer != nil {
		i.hideTimer.Stop()
		i.hideTimer = nil
	}
}

func (i *Indicator) State() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state()
}

func (i *Indicator) run(stop, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			i.mu.Lock()
			if i.percent < ceiling {
				i.percent = min(i.percent+i.step(), maxRunning)
				i.emit()
			}
			i.mu.Unlock()
		}
	}
}

// halt stops the ticker goroutine and waits for it to exit.
func (i *Indicator) halt() {
	i.mu.Lock()
	stop, done := i.stop, i.done
	i.stop, i.done = nil, nil
	i.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
}

func (i *Indicator) state() State {
	return State{Percent: int(i.percent), Visible: i.visible}
}

func (i *Indicator) emit() {
	if i.onChange != nil {
		i.onChange(i.state())
	}
}

// Render draws the frame as a text progress bar for terminals.
func Render(s State, noColor bool) string {
	if !s.Visible {
		return ""
	}
	filled := s.Percent * barWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
	if !noColor {
		bar = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Render(bar)
	}
	return s.Label() + " " + bar
}
