package timing

import (
	"log"
	"reflect"

	"github.com/sarchlab/timekeeper/hooking"
)

// EventLogger is a hook that prints a line every time an event is handled.
type EventLogger struct {
	logger *log.Logger
}

// NewEventLogger returns a new EventLogger which will write in to the logger.
func NewEventLogger(logger *log.Logger) *EventLogger {
	h := new(EventLogger)

	h.logger = logger

	return h
}

// Func writes the event information into the logger.
func (h *EventLogger) Func(ctx hooking.HookCtx) {
	if ctx.Pos != HookPosHandled {
		return
	}

	evt, ok := ctx.Item.(Event)
	if !ok {
		return
	}

	lateness, _ := ctx.Detail.(TimeInSec)

	if p, ok := evt.(Prioritized); ok {
		h.logger.Printf("%s %s late=%.10f, priority %d",
			reflect.TypeOf(evt), evt.ID(), lateness, p.Priority())
		return
	}

	h.logger.Printf("%s %s late=%.10f", reflect.TypeOf(evt), evt.ID(), lateness)
}
