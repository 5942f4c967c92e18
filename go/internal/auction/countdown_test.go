package auction

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/bidboard/go/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 2 * time.Second

// recorder collects emitted states on a buffered channel.
type recorder struct {
	ch chan models.CountdownState
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan models.CountdownState, 64)}
}

func (r *recorder) emit(s models.CountdownState) {
	r.ch <- s
}

func (r *recorder) next(t *testing.T) models.CountdownState {
	t.Helper()
	select {
	case s := <-r.ch:
		return s
	case <-time.After(waitFor):
		t.Fatal("timed out waiting for countdown state")
		return models.CountdownState{}
	}
}

func (r *recorder) none(t *testing.T) {
	t.Helper()
	select {
	case s := <-r.ch:
		t.Fatalf("unexpected countdown state %+v", s)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDecompose(t *testing.T) {
	tests := []struct {
		name      string
		remaining time.Duration
		want      models.CountdownState
	}{
		{"negative clamps to zero", -5 * time.Second, models.CountdownState{}},
		{"sub-second floors to zero", 999 * time.Millisecond, models.CountdownState{}},
		{"fraction floors", 61*time.Second + 900*time.Millisecond, models.CountdownState{Minutes: 1, Seconds: 1}},
		{"twelve hours", 12 * time.Hour, models.CountdownState{Hours: 12}},
		{
			name:      "all components",
			remaining: 2*24*time.Hour + 3*time.Hour + 4*time.Minute + 5*time.Second,
			want:      models.CountdownState{Days: 2, Hours: 3, Minutes: 4, Seconds: 5},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Decompose(tt.remaining))
		})
	}
}

func TestCountdownEmitsInitialStateSynchronously(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC))
	src := NewTickSource(clock)

	var got []models.CountdownState
	c, err := src.Start(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), func(s models.CountdownState) {
		got = append(got, s)
	})
	require.NoError(t, err)
	defer c.Stop()

	require.Len(t, got, 1)
	assert.Equal(t, models.CountdownState{Hours: 12}, got[0])
	assert.Equal(t, models.CountdownState{Hours: 12}, c.Last())
}

func TestCountdownTicksDownAndTerminates(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	src := NewTickSource(clock)
	rec := newRecorder()

	c, err := src.Start(start.Add(3*time.Second), rec.emit)
	require.NoError(t, err)
	assert.Equal(t, 3, rec.next(t).Seconds)
	assert.Equal(t, 1, src.Active())

	prev := 3
	for _, want := range []int{2, 1, 0} {
		clock.Advance(time.Second)
		s := rec.next(t)
		assert.Equal(t, want, s.TotalSeconds())
		assert.LessOrEqual(t, s.TotalSeconds(), prev)
		prev = s.TotalSeconds()
	}

	select {
	case <-c.Done():
	case <-time.After(waitFor):
		t.Fatal("countdown did not finish")
	}
	assert.True(t, c.Expired())
	require.Eventually(t, func() bool { return src.Active() == 0 }, waitFor, time.Millisecond)

	clock.Advance(5 * time.Second)
	rec.none(t)
}

func TestCountdownExpiresWhenEndIsReached(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(2500 * time.Millisecond)
	clock := clockwork.NewFakeClockAt(start)
	src := NewTickSource(clock)
	rec := newRecorder()

	c, err := src.Start(end, rec.emit)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.next(t).TotalSeconds())

	clock.Advance(time.Second)
	assert.Equal(t, 1, rec.next(t).TotalSeconds())

	// half a second left: floored to zero but the auction is still running
	clock.Advance(time.Second)
	assert.True(t, rec.next(t).IsZero())
	assert.False(t, c.Expired())
	assert.Equal(t, models.PhaseOngoing, ResolvePhase(clock.Now(), start, end, false))
	assert.Equal(t, 1, src.Active())

	clock.Advance(time.Second)
	assert.True(t, rec.next(t).IsZero())
	select {
	case <-c.Done():
	case <-time.After(waitFor):
		t.Fatal("countdown did not finish")
	}
	assert.True(t, c.Expired())
	assert.Equal(t, models.PhaseEnded, ResolvePhase(clock.Now(), start, end, false))
	require.Eventually(t, func() bool { return src.Active() == 0 }, waitFor, time.Millisecond)
}

func TestCountdownAlreadyExpired(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := NewTickSource(clockwork.NewFakeClockAt(now))
	rec := newRecorder()

	c, err := src.Start(now.Add(-time.Hour), rec.emit)
	require.NoError(t, err)

	assert.Equal(t, models.CountdownState{}, rec.next(t))
	assert.True(t, c.Expired())
	assert.Equal(t, 0, src.Active())
}

func TestCountdownInvalidTargetReportsOnce(t *testing.T) {
	src := NewTickSource(clockwork.NewFakeClock())
	rec := newRecorder()

	c, err := src.Start(time.Time{}, rec.emit)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Nil(t, c)
	assert.Equal(t, 0, src.Active())
	rec.none(t)
}

func TestCountdownStopIsFinal(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	src := NewTickSource(clock)
	rec := newRecorder()

	c, err := src.Start(now.Add(time.Hour), rec.emit)
	require.NoError(t, err)
	rec.next(t)

	c.Stop()
	c.Stop()
	assert.Equal(t, 0, src.Active())
	assert.False(t, c.Expired())

	clock.Advance(time.Second)
	rec.none(t)
}

func TestCountdownNeverClimbs(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := NewTickSource(clockwork.NewFakeClockAt(now))
	c, err := src.Start(now.Add(10*time.Second), nil)
	require.NoError(t, err)
	defer c.Stop()

	c.mu.Lock()
	c.deliverLocked(now.Add(-time.Minute))
	c.mu.Unlock()

	assert.Equal(t, 10, c.Last().TotalSeconds())
}

func TestTickSourceSharesOneTicker(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	src := NewTickSource(clock)
	short, long := newRecorder(), newRecorder()

	_, err := src.Start(now.Add(2*time.Second), short.emit)
	require.NoError(t, err)
	lc, err := src.Start(now.Add(time.Hour), long.emit)
	require.NoError(t, err)
	short.next(t)
	long.next(t)
	assert.Equal(t, 2, src.Active())

	clock.Advance(time.Second)
	assert.Equal(t, 1, short.next(t).TotalSeconds())
	assert.Equal(t, 3599, long.next(t).TotalSeconds())

	clock.Advance(time.Second)
	assert.Equal(t, 0, short.next(t).TotalSeconds())
	assert.Equal(t, 3598, long.next(t).TotalSeconds())
	require.Eventually(t, func() bool { return src.Active() == 1 }, waitFor, time.Millisecond)

	lc.Stop()
	assert.Equal(t, 0, src.Active())
}

func TestViewKeepsOneCountdown(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(now)
	src := NewTickSource(clock)
	view := src.NewView()
	first, second := newRecorder(), newRecorder()

	old, err := view.Watch(now.Add(time.Hour), first.emit)
	require.NoError(t, err)
	first.next(t)
	assert.Same(t, old, view.Current())
	assert.Equal(t, 1, src.Active())

	cur, err := view.Watch(now.Add(2*time.Hour), second.emit)
	require.NoError(t, err)
	assert.Same(t, cur, view.Current())
	assert.Equal(t, 2*3600, second.next(t).TotalSeconds())
	assert.Equal(t, 1, src.Active())
	select {
	case <-old.Done():
	default:
		t.Fatal("previous countdown still running")
	}

	clock.Advance(time.Second)
	assert.Equal(t, 2*3600-1, second.next(t).TotalSeconds())
	first.none(t)

	view.Close()
	assert.Equal(t, 0, src.Active())
	assert.Nil(t, view.Current())
	_, err = view.Watch(now.Add(time.Hour), first.emit)
	assert.Error(t, err)

	clock.Advance(time.Second)
	second.none(t)
}

func TestViewInvalidTargetLeavesNothingRunning(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	src := NewTickSource(clockwork.NewFakeClockAt(now))
	view := src.NewView()

	_, err := view.Watch(now.Add(time.Hour), nil)
	require.NoError(t, err)
	_, err = view.Watch(time.Time{}, nil)
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Equal(t, 0, src.Active())
	assert.Nil(t, view.Current())
}
