package framer

import "time"

// IdleStrategy controls how the duty cycle parks between iterations that
// found no work, per spec.md §5's "parks via a configurable idle
// strategy" -- the reactor never blocks indefinitely on I/O.
type IdleStrategy interface {
	// Idle is called once per duty cycle with whether that cycle did any
	// work (inbox drained, bytes read, a timer fired). Implementations
	// that sleep must return promptly so the caller can re-check for
	// shutdown.
	Idle(busy bool)
}

// Spin never sleeps: the duty cycle goroutine burns CPU rather than add
// latency. Suited to a dedicated core.
type Spin struct{}

// Idle is a no-op.
func (Spin) Idle(bool) {}

// SleepBackoff sleeps a growing duration after consecutive idle cycles,
// resetting to Min as soon as a cycle finds work.
type SleepBackoff struct {
	Min, Max time.Duration

	current time.Duration
}

// Idle sleeps the current backoff duration, then grows it geometrically
// toward Max, resetting to Min once busy.
func (s *SleepBackoff) Idle(busy bool) {
	if busy {
		s.current = 0
		return
	}
	if s.current == 0 {
		s.current = s.Min
	}
	time.Sleep(s.current)
	s.current *= 2
	if s.current > s.Max {
		s.current = s.Max
	}
}
