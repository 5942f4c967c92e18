package auction

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bidboard/go/internal/models"
)

// TickInterval is how often active countdowns are recomputed.
const TickInterval = time.Second

// ErrInvalidTarget is returned when a countdown is asked to run towards a zero end time.
var ErrInvalidTarget = errors.New("invalid countdown target")

// Decompose splits remaining into days, hours, minutes and seconds.
// Remaining is floored to whole seconds and clamped at zero.
func Decompose(remaining time.Duration) models.CountdownState {
	total := int(remaining / time.Second)
	if total <= 0 {
		return models.CountdownState{}
	}
	return models.CountdownState{
		Days:    total / 86400,
		Hours:   total % 86400 / 3600,
		Minutes: total % 3600 / 60,
		Seconds: total % 60,
	}
}

// TickSource owns a single ticker shared by every active countdown. The ticker
// runs only while at least one countdown is subscribed.
type TickSource struct {
	clock    clockwork.Clock
	interval time.Duration

	mu     sync.Mutex
	subs   map[*Countdown]struct{}
	ticker clockwork.Ticker
	quit   chan struct{}
}

// NewTickSource creates a tick source on clock.
func NewTickSource(clock clockwork.Clock) *TickSource {
	return &TickSource{
		clock:    clock,
		interval: TickInterval,
		subs:     make(map[*Countdown]struct{}),
	}
}

// Active returns the number of countdowns currently receiving ticks.
func (s *TickSource) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

// Start runs a countdown towards end. The first state is emitted before Start
// returns; later states are emitted from the tick goroutine once per tick
// until end is reached. The state is floored, so {0,0,0,0} may be emitted
// while a fraction of a second remains; the countdown only expires once now
// is no longer before end. A zero end is rejected with ErrInvalidTarget and
// nothing is emitted.
//
// emit must not call Stop on the countdown it belongs to.
func (s *TickSource) Start(end time.Time, emit func(models.CountdownState)) (*Countdown, error) {
	if end.IsZero() {
		return nil, ErrInvalidTarget
	}

	c := &Countdown{
		source: s,
		end:    end,
		emit:   emit,
		done:   make(chan struct{}),
		last:   -1,
	}

	c.mu.Lock()
	finished := c.deliverLocked(s.clock.Now())
	c.mu.Unlock()

	if !finished {
		s.subscribe(c)
	}
	return c, nil
}

func (s *TickSource) subscribe(c *Countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.subs[c] = struct{}{}
	if s.ticker == nil {
		s.ticker = s.clock.NewTicker(s.interval)
		s.quit = make(chan struct{})
		go s.run(s.ticker, s.quit)
	}
}

func (s *TickSource) unsubscribe(c *Countdown) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subs[c]; !ok {
		return
	}
	delete(s.subs, c)
	if len(s.subs) == 0 && s.ticker != nil {
		s.ticker.Stop()
		close(s.quit)
		s.ticker = nil
		s.quit = nil
	}
}

func (s *TickSource) run(ticker clockwork.Ticker, quit <-chan struct{}) {
	for {
		select {
		case <-quit:
			return
		case <-ticker.Chan():
			s.fanOut(s.clock.Now())
		}
	}
}

func (s *TickSource) fanOut(now time.Time) {
	s.mu.Lock()
	targets := make([]*Countdown, 0, len(s.subs))
	for c := range s.subs {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	for _, c := range targets {
		c.mu.Lock()
		finished := c.deliverLocked(now)
		c.mu.Unlock()
		if finished {
			s.unsubscribe(c)
		}
	}
}

// Countdown is one running countdown. It is terminal once it reaches its end or is stopped.
type Countdown struct {
	source *TickSource
	end    time.Time
	emit   func(models.CountdownState)

	mu      sync.Mutex
	last    int // total seconds last emitted, -1 before the first emission
	expired bool
	stopped bool
	done    chan struct{}
}

// deliverLocked emits the state at now and reports whether the countdown is finished.
func (c *Countdown) deliverLocked(now time.Time) bool {
	if c.stopped {
		return true
	}

	reached := !now.Before(c.end)
	state := Decompose(c.end.Sub(now))
	total := state.TotalSeconds()
	// a clock stepping backwards must not make the countdown climb
	if c.last >= 0 && total > c.last {
		total = c.last
		state = Decompose(time.Duration(total) * time.Second)
	}
	c.last = total

	if c.emit != nil {
		c.emit(state)
	}

	if reached {
		c.expired = true
		c.stopped = true
		close(c.done)
		return true
	}
	return false
}

// End returns the instant the countdown runs towards.
func (c *Countdown) End() time.Time {
	return c.end
}

// Last returns the most recently emitted state.
func (c *Countdown) Last() models.CountdownState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.last < 0 {
		return models.CountdownState{}
	}
	return Decompose(time.Duration(c.last) * time.Second)
}

// Done is closed once the countdown reached its end or was stopped.
func (c *Countdown) Done() <-chan struct{} {
	return c.done
}

// Expired reports whether the countdown reached its end, as opposed to being stopped.
func (c *Countdown) Expired() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expired
}

// Stop cancels the countdown. No state is emitted after Stop returns.
func (c *Countdown) Stop() {
	c.mu.Lock()
	if !c.stopped {
		c.stopped = true
		close(c.done)
	}
	c.mu.Unlock()

	c.source.unsubscribe(c)
}

// View holds the countdown of one logical display. Pointing it at a new end
// time stops the previous countdown first, so a view never has two running.
type View struct {
	source *TickSource

	mu      sync.Mutex
	current *Countdown
	closed  bool
}

// NewView creates an empty view on s.
func (s *TickSource) NewView() *View {
	return &View{source: s}
}

// Watch replaces the view's countdown with one running towards end and
// returns it. The old countdown is stopped before the new one emits.
func (v *View) Watch(end time.Time, emit func(models.CountdownState)) (*Countdown, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return nil, errViewClosed
	}
	if v.current != nil {
		v.current.Stop()
		v.current = nil
	}

	c, err := v.source.Start(end, emit)
	if err != nil {
		return nil, err
	}
	v.current = c
	return c, nil
}

// Current returns the running countdown, or nil.
func (v *View) Current() *Countdown {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current
}

// Clear stops the view's countdown, if any, and leaves the view usable.
func (v *View) Clear() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.current != nil {
		v.current.Stop()
		v.current = nil
	}
}

// Close stops the view's countdown. Watch fails after Close.
func (v *View) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.closed = true
	if v.current != nil {
		v.current.Stop()
		v.current = nil
	}
}

var errViewClosed = errors.New("countdown view closed")
