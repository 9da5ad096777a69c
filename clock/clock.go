// Package clock provides the monotonic time source used by timers and events.
//
// A Clock only needs to report the current instant. Instants are compared by
// subtraction, so any value returned from RealClock carries Go's monotonic
// reading and is immune to wall-clock adjustments.
package clock

import (
	"math"
	"time"
)

// TimeInSec defines a duration in the unit of second.
type TimeInSec = float64

// A Clock tells the current time.
type Clock interface {
	Now() time.Time
}

// RealClock reads the process monotonic clock.
type RealClock struct{}

// Now returns time.Now(), which carries a monotonic reading.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Default returns the clock that events use unless told otherwise.
func Default() Clock {
	return RealClock{}
}

// Seconds converts a duration to seconds.
func Seconds(d time.Duration) TimeInSec {
	return d.Seconds()
}

// Duration converts seconds to a duration, rounding to the nearest
// nanosecond.
func Duration(s TimeInSec) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}

// Since returns the number of seconds passed between start and the current
// time of c.
func Since(c Clock, start time.Time) TimeInSec {
	return Seconds(c.Now().Sub(start))
}
