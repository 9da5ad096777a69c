// Package timing provides passive timed events.
//
// An event never runs by itself. The owner polls it by calling Handle, and the
// event decides, from a monotonic clock, whether it is due. A one-shot event
// is handled once and then stays handled. A repeated event restarts its timer
// from the moment it is handled, so its period drifts by its own lateness.
//
//	evt := timing.NewCallbackEvent(flush, true, 0.5)
//	for running {
//		evt.Handle()
//		doOtherWork()
//	}
//
// Events are not safe for concurrent use. Distinct events are independent.
package timing

import (
	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
)

// TimeInSec defines a duration in the unit of second.
type TimeInSec = clock.TimeInSec

// HookPosHandled triggers right after an event transitions on a successful
// Handle. The hook item is the event and the detail is its lateness, in
// seconds, at the moment of handling.
var HookPosHandled = &hooking.HookPos{Name: "Handled"}

// HookPosBeforeJob triggers before a callback event runs its job.
var HookPosBeforeJob = &hooking.HookPos{Name: "BeforeJob"}

// HookPosAfterJob triggers after a callback event's job returns. It does not
// trigger if the job panics.
var HookPosAfterJob = &hooking.HookPos{Name: "AfterJob"}

// Handleable is anything that can be polled for handling.
type Handleable interface {
	// Handle handles the object if it is due and reports whether it did.
	Handle() bool
}

// An Event is something that becomes due after a wait time.
//
// DueEvent, CallbackEvent, and PriorityCallbackEvent all implement Event, and
// Handle always dispatches to the most specific behavior.
type Event interface {
	hooking.Hookable
	Handleable

	// ID returns the unique identifier of the event.
	ID() string

	// Lateness returns the seconds passed since the event became due. It is
	// negative while the event is still waiting.
	Lateness() TimeInSec

	// IsDue tells if the wait time has passed.
	IsDue() bool

	// IsHandled tells if a one-shot event has been handled.
	IsHandled() bool

	// ShouldHandle tells if the next Handle call would succeed.
	ShouldHandle() bool

	// WaitTime returns the seconds to wait before the event is due.
	WaitTime() TimeInSec

	// IsRepeated tells if the event restarts after being handled.
	IsRepeated() bool
}
