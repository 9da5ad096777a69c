package timing

import "errors"

// ErrNegativeWait is the panic value when an event is created with a negative
// or NaN wait time. Such an event would be due forever.
var ErrNegativeWait = errors.New("wait time must be a non-negative number of seconds")

// ErrUnsetCallback is the panic value when a callback event becomes due but
// has no job to run.
var ErrUnsetCallback = errors.New("callback event handled without a job")

// ErrStopwatchNotStopped is the panic value when the elapsed time of a
// stopwatch is read without a completed start/stop pair.
var ErrStopwatchNotStopped = errors.New("stopwatch has not been started and stopped")
