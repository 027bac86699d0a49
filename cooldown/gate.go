// Package cooldown implements a per-caller wall-clock gate. A caller
// that started a cooldown at time T may not pass the gate again until a
// threshold has elapsed; the threshold depends on the hour-of-day
// bucket in which T falls.
package cooldown

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrCooldownActive is returned by Check while a caller's cooldown has
// not yet elapsed.
var ErrCooldownActive = errors.New("cooldown: still active")

// Error carries the remaining wait for a blocked caller.
type Error struct {
	Caller    string
	Remaining time.Duration
}

func (e *Error) Error() string {
	return fmt.Sprintf("cooldown: %s must wait %s", e.Caller, e.Remaining)
}

// Unwrap makes errors.Is(err, ErrCooldownActive) work.
func (e *Error) Unwrap() error { return ErrCooldownActive }

// Gate tracks cooldown starts per caller.
type Gate struct {
	day   time.Duration // threshold for starts in hours [0,12)
	night time.Duration // threshold for starts in hours [12,24)

	mu      sync.RWMutex
	starts  map[string]time.Time
	allowed int64
	blocked int64

	now func() time.Time // injectable clock
}

// Default thresholds: one minute during day-bucket hours, two at night.
const (
	DefaultDayThreshold   = 60 * time.Second
	DefaultNightThreshold = 120 * time.Second
)

// NewGate creates a gate with the given thresholds. Non-positive
// thresholds fall back to the defaults.
func NewGate(day, night time.Duration) *Gate {
	if day <= 0 {
		day = DefaultDayThreshold
	}
	if night <= 0 {
		night = DefaultNightThreshold
	}
	return &Gate{
		day:    day,
		night:  night,
		starts: make(map[string]time.Time),
		now:    time.Now,
	}
}

// SetClock replaces the gate's clock. For tests.
func (g *Gate) SetClock(now func() time.Time) {
	g.mu.Lock()
	g.now = now
	g.mu.Unlock()
}

// threshold selects the required interval for a cooldown started at t:
// starts whose UTC hour bucket ((unix/3600) mod 24) is below 12 use the
// day threshold, the rest the night threshold.
func (g *Gate) threshold(t time.Time) time.Duration {
	bucket := (t.Unix() / 3600) % 24
	if bucket < 12 {
		return g.day
	}
	return g.night
}

// Check returns nil if the caller may pass, or an *Error wrapping
// ErrCooldownActive with the remaining wait. A caller with no recorded
// start always passes.
func (g *Gate) Check(caller string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	start, ok := g.starts[caller]
	if !ok {
		g.allowed++
		return nil
	}

	elapsed := g.now().Sub(start)
	required := g.threshold(start)
	if elapsed < required {
		g.blocked++
		return &Error{Caller: caller, Remaining: required - elapsed}
	}

	g.allowed++
	return nil
}

// Start records the caller's cooldown start at the current clock time.
func (g *Gate) Start(caller string) {
	g.mu.Lock()
	g.starts[caller] = g.now()
	g.mu.Unlock()
}

// Remaining returns the wait left for the caller, or zero if the caller
// may pass now.
func (g *Gate) Remaining(caller string) time.Duration {
	g.mu.RLock()
	defer g.mu.RUnlock()

	start, ok := g.starts[caller]
	if !ok {
		return 0
	}
	left := g.threshold(start) - g.now().Sub(start)
	if left < 0 {
		return 0
	}
	return left
}

// LastStart returns the recorded start for the caller, if any.
func (g *Gate) LastStart(caller string) (time.Time, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	t, ok := g.starts[caller]
	return t, ok
}

// Reset forgets the caller's cooldown.
func (g *Gate) Reset(caller string) {
	g.mu.Lock()
	delete(g.starts, caller)
	g.mu.Unlock()
}

// Stats reports gate counters.
type Stats struct {
	Tracked int
	Allowed int64
	Blocked int64
}

// Stats returns current gate counters.
func (g *Gate) Stats() Stats {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return Stats{
		Tracked: len(g.starts),
		Allowed: g.allowed,
		Blocked: g.blocked,
	}
}
