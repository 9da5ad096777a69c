package tracing

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
	"github.com/sarchlab/timekeeper/timing"
)

// FiringTracer is a hook that turns every successful handling into a Firing
// and passes it to a TraceWriter. One tracer can observe many events.
type FiringTracer struct {
	lock   sync.Mutex
	writer TraceWriter
	clock  clock.Clock
	start  time.Time
	err    error
}

// NewFiringTracer creates a tracer that writes to w. Firing times are
// measured from now, on the default clock.
func NewFiringTracer(w TraceWriter) *FiringTracer {
	return NewFiringTracerWithClock(w, clock.Default())
}

// NewFiringTracerWithClock creates a tracer that measures firing times on c.
func NewFiringTracerWithClock(w TraceWriter, c clock.Clock) *FiringTracer {
	return &FiringTracer{
		writer: w,
		clock:  c,
		start:  c.Now(),
	}
}

// Func records the firing.
func (t *FiringTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosHandled {
		return
	}

	evt, ok := ctx.Item.(timing.Event)
	if !ok {
		return
	}

	f := Firing{
		EventID: evt.ID(),
		Kind:    kindOf(evt),
		Time:    clock.Since(t.clock, t.start),
	}
	f.Lateness, _ = ctx.Detail.(timing.TimeInSec)

	if p, ok := evt.(timing.Prioritized); ok {
		f.Priority = p.Priority()
		f.HasPriority = true
	}

	t.lock.Lock()
	defer t.lock.Unlock()

	if t.err != nil {
		return
	}

	t.err = t.writer.Write(f)
}

// Err returns the first error returned by the writer. The tracer stops
// writing after an error.
func (t *FiringTracer) Err() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.err
}

// Flush flushes the writer.
func (t *FiringTracer) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if t.err != nil {
		return t.err
	}

	return t.writer.Flush()
}

// CollectTrace lets the tracer observe an event. It panics if the event is
// already traced by the same tracer.
func CollectTrace(domain timing.Event, tracer hooking.Hook) {
	for _, hook := range domain.Hooks() {
		if hook == tracer {
			panic(fmt.Sprintf(
				"event %s already has tracer %s",
				domain.ID(), reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(tracer)
}
