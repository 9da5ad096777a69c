package timing

import (
	"fmt"
	"math"

	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
	"github.com/sarchlab/timekeeper/id"
)

// A Builder can build events.
type Builder struct {
	clock    clock.Clock
	idGen    id.IDGenerator
	repeated bool
	waitTime TimeInSec
	job      Job
	priority int
	hooks    []hooking.Hook
}

// MakeBuilder returns a Builder with the default clock and ID generator that
// builds one-shot events that are due immediately.
func MakeBuilder() Builder {
	return Builder{
		clock: clock.Default(),
	}
}

// WithClock sets the clock that the events read.
func (b Builder) WithClock(c clock.Clock) Builder {
	b.clock = c
	return b
}

// WithIDGenerator sets the generator of event IDs.
func (b Builder) WithIDGenerator(g id.IDGenerator) Builder {
	b.idGen = g
	return b
}

// WithRepeat sets if the events restart after being handled.
func (b Builder) WithRepeat(repeated bool) Builder {
	b.repeated = repeated
	return b
}

// WithWaitTime sets the seconds to wait before the events are due.
func (b Builder) WithWaitTime(waitTime TimeInSec) Builder {
	b.waitTime = waitTime
	return b
}

// WithJob sets the job of callback events.
func (b Builder) WithJob(job Job) Builder {
	b.job = job
	return b
}

// WithPriority sets the priority of priority callback events.
func (b Builder) WithPriority(p int) Builder {
	b.priority = p
	return b
}

// WithHook adds a hook to every event built.
func (b Builder) WithHook(h hooking.Hook) Builder {
	hooks := make([]hooking.Hook, 0, len(b.hooks)+1)
	hooks = append(hooks, b.hooks...)
	b.hooks = append(hooks, h)

	return b
}

// Build creates a DueEvent. The event starts waiting immediately.
func (b Builder) Build() *DueEvent {
	e := &DueEvent{}
	b.initDueEvent(e, e)

	return e
}

// BuildCallbackEvent creates a CallbackEvent.
func (b Builder) BuildCallbackEvent() *CallbackEvent {
	e := &CallbackEvent{job: b.job}
	b.initDueEvent(&e.DueEvent, e)

	return e
}

// BuildPriorityCallbackEvent creates a PriorityCallbackEvent.
func (b Builder) BuildPriorityCallbackEvent() *PriorityCallbackEvent {
	e := &PriorityCallbackEvent{priority: b.priority}
	e.job = b.job
	b.initDueEvent(&e.DueEvent, e)

	return e
}

func (b Builder) initDueEvent(e *DueEvent, owner Event) {
	mustBeValidWaitTime(b.waitTime)

	c := b.clock
	if c == nil {
		c = clock.Default()
	}

	idGen := b.idGen
	if idGen == nil {
		idGen = id.Default()
	}

	e.id = idGen.Generate()
	e.clock = c
	e.owner = owner
	e.repeated = b.repeated
	e.waitTime = b.waitTime

	for _, h := range b.hooks {
		e.AcceptHook(h)
	}

	e.startTime = c.Now()
}

func mustBeValidWaitTime(waitTime TimeInSec) {
	if math.IsNaN(waitTime) || waitTime < 0 {
		panic(fmt.Errorf("%w: got %v", ErrNegativeWait, waitTime))
	}
}
