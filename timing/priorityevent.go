package timing

// Prioritized is anything with an integer priority.
type Prioritized interface {
	Priority() int
}

// Greater tells if a has priority over b. The relation is strict and not
// total: two items of equal priority are not ordered either way.
func Greater(a, b Prioritized) bool {
	return a.Priority() > b.Priority()
}

// A PriorityCallbackEvent is a CallbackEvent that can be compared with other
// events by priority. The priority has no effect on when the event is due.
type PriorityCallbackEvent struct {
	CallbackEvent

	priority int
}

// NewPriorityCallbackEvent creates a callback event with a priority. See
// NewCallbackEvent for the other arguments.
func NewPriorityCallbackEvent(
	job Job,
	priority int,
	repeated bool,
	waitTime TimeInSec,
) *PriorityCallbackEvent {
	return MakeBuilder().
		WithJob(job).
		WithPriority(priority).
		WithRepeat(repeated).
		WithWaitTime(waitTime).
		BuildPriorityCallbackEvent()
}

// Priority returns the priority of the event.
func (e *PriorityCallbackEvent) Priority() int {
	return e.priority
}

// SetPriority changes the priority of the event.
func (e *PriorityCallbackEvent) SetPriority(p int) {
	e.priority = p
}

// HasPriority tells if the event has priority over another one.
func (e *PriorityCallbackEvent) HasPriority(other Prioritized) bool {
	return Greater(e, other)
}
