package timing

// A Job is the work that a CallbackEvent runs when it is handled.
type Job func()

// A CallbackEvent is a DueEvent that runs a job every time it is handled.
type CallbackEvent struct {
	DueEvent

	job Job
}

// NewCallbackEvent creates an event that runs job when handled. See
// NewDueEvent for repeated and waitTime.
func NewCallbackEvent(job Job, repeated bool, waitTime TimeInSec) *CallbackEvent {
	return MakeBuilder().
		WithJob(job).
		WithRepeat(repeated).
		WithWaitTime(waitTime).
		BuildCallbackEvent()
}

// Job returns the job of the event.
func (e *CallbackEvent) Job() Job {
	return e.job
}

// SetJob replaces the job of the event.
func (e *CallbackEvent) SetJob(job Job) {
	e.job = job
}

// Handle handles the event like DueEvent.Handle and, if that succeeds, runs
// the job exactly once. The event transitions before the job runs, so a job
// that panics leaves the event handled (or restarted) and the panic reaches
// the caller unchanged. Handling an event that has no job panics with
// ErrUnsetCallback. The job must not call Handle on the same event.
func (e *CallbackEvent) Handle() bool {
	if !e.DueEvent.Handle() {
		return false
	}

	if e.job == nil {
		panic(ErrUnsetCallback)
	}

	e.invokeHook(HookPosBeforeJob, nil)
	e.job()
	e.invokeHook(HookPosAfterJob, nil)

	return true
}
