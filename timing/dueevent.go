package timing

import (
	"time"

	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
)

// A DueEvent becomes due a fixed number of seconds after it starts.
type DueEvent struct {
	hooking.HookableBase

	id    string
	clock clock.Clock

	// owner is the outermost event that embeds this DueEvent. Hooks report
	// the owner so that observers see the event the caller holds.
	owner Event

	startTime time.Time
	waitTime  TimeInSec
	repeated  bool
	handled   bool
}

// NewDueEvent creates an event that becomes due waitTime seconds from now.
// If repeated is true, the event restarts every time it is handled. It panics
// with ErrNegativeWait if waitTime is negative.
func NewDueEvent(repeated bool, waitTime TimeInSec) *DueEvent {
	return MakeBuilder().
		WithRepeat(repeated).
		WithWaitTime(waitTime).
		Build()
}

// ID returns the ID of the event.
func (e *DueEvent) ID() string {
	return e.id
}

// StartTime returns the time when the event started to wait.
func (e *DueEvent) StartTime() time.Time {
	return e.startTime
}

// WaitTime returns the seconds to wait before the event is due.
func (e *DueEvent) WaitTime() TimeInSec {
	return e.waitTime
}

// IsRepeated tells if the event restarts after being handled.
func (e *DueEvent) IsRepeated() bool {
	return e.repeated
}

// Lateness returns the seconds passed since the event should have been
// handled. Negative values mean the event is not due yet.
func (e *DueEvent) Lateness() TimeInSec {
	return e.latenessAt(e.clock.Now())
}

// IsDue tells if the event is due.
func (e *DueEvent) IsDue() bool {
	return e.Lateness() >= 0
}

// IsHandled tells if the event has been handled. A repeated event is never
// handled.
func (e *DueEvent) IsHandled() bool {
	return e.handled
}

// ShouldHandle tells if the event is due and not handled yet.
func (e *DueEvent) ShouldHandle() bool {
	return !e.handled && e.IsDue()
}

// Handle handles the event if it should be handled and reports whether it
// did. A one-shot event becomes handled. A repeated event restarts its timer
// from now.
//
//	if evt.Handle() {
//		// do stuff
//	}
func (e *DueEvent) Handle() bool {
	if e.handled {
		return false
	}

	now := e.clock.Now()

	lateness := e.latenessAt(now)
	if lateness < 0 {
		return false
	}

	if e.repeated {
		e.startTime = now
	} else {
		e.handled = true
	}

	if e.NumHooks() > 0 {
		e.invokeHook(HookPosHandled, lateness)
	}

	return true
}

func (e *DueEvent) latenessAt(now time.Time) TimeInSec {
	return clock.Seconds(now.Sub(e.startTime)) - e.waitTime
}

func (e *DueEvent) invokeHook(pos *hooking.HookPos, detail interface{}) {
	if e.NumHooks() == 0 {
		return
	}

	e.InvokeHook(hooking.HookCtx{
		Domain: e.owner,
		Pos:    pos,
		Item:   e.owner,
		Detail: detail,
	})
}
