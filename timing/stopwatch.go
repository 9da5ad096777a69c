package timing

import (
	"time"

	"github.com/sarchlab/timekeeper/clock"
)

// A Stopwatch measures the time between a Start and a Stop.
//
// The zero value is ready to use and reads the default clock.
type Stopwatch struct {
	clock     clock.Clock
	startTime time.Time
	endTime   time.Time
	started   bool
	stopped   bool
}

// NewStopwatch creates a stopwatch that reads the default clock.
func NewStopwatch() *Stopwatch {
	return NewStopwatchWithClock(clock.Default())
}

// NewStopwatchWithClock creates a stopwatch that reads the given clock.
func NewStopwatchWithClock(c clock.Clock) *Stopwatch {
	return &Stopwatch{clock: c}
}

// Start records the start time. Calling Start again overwrites the previous
// start and discards any earlier stop.
func (s *Stopwatch) Start() {
	s.startTime = s.now()
	s.started = true
	s.stopped = false
}

// Stop records the end time.
func (s *Stopwatch) Stop() {
	s.endTime = s.now()
	s.stopped = true
}

// IsRunning tells if the stopwatch has been started but not stopped yet.
func (s *Stopwatch) IsRunning() bool {
	return s.started && !s.stopped
}

// Elapsed returns the seconds between the last Start and the following Stop.
// It panics with ErrStopwatchNotStopped if there is no such pair.
func (s *Stopwatch) Elapsed() TimeInSec {
	if !s.started || !s.stopped {
		panic(ErrStopwatchNotStopped)
	}

	return clock.Seconds(s.endTime.Sub(s.startTime))
}

func (s *Stopwatch) now() time.Time {
	if s.clock == nil {
		s.clock = clock.Default()
	}

	return s.clock.Now()
}
