package tracing

import (
	"sync"

	"github.com/sarchlab/timekeeper/hooking"
	"github.com/sarchlab/timekeeper/timing"
)

// CountTracer counts how many times each event has been handled.
type CountTracer struct {
	lock   sync.Mutex
	counts map[string]uint64
	total  uint64
}

// NewCountTracer creates a new CountTracer.
func NewCountTracer() *CountTracer {
	return &CountTracer{
		counts: make(map[string]uint64),
	}
}

// Func counts the handling.
func (t *CountTracer) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosHandled {
		return
	}

	evt, ok := ctx.Item.(timing.Event)
	if !ok {
		return
	}

	t.lock.Lock()
	t.counts[evt.ID()]++
	t.total++
	t.lock.Unlock()
}

// Count returns the number of handlings of the event with the given ID.
func (t *CountTracer) Count(eventID string) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.counts[eventID]
}

// Total returns the number of handlings of all the observed events.
func (t *CountTracer) Total() uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.total
}
