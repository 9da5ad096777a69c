// Package tracing records when events are handled.
package tracing

import (
	"reflect"

	"github.com/sarchlab/timekeeper/timing"
)

// A Firing is the record of one successful handling of an event.
type Firing struct {
	EventID     string
	Kind        string
	Priority    int
	HasPriority bool
	Lateness    timing.TimeInSec

	// Time is the number of seconds since the tracer was created.
	Time timing.TimeInSec
}

// A TraceWriter stores firings.
type TraceWriter interface {
	// Init prepares the storage. It must be called before Write.
	Init() error

	// Write buffers a firing. It may flush when the buffer is full.
	Write(f Firing) error

	// Flush stores all the buffered firings.
	Flush() error
}

func kindOf(evt timing.Event) string {
	t := reflect.TypeOf(evt)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	return t.Name()
}
