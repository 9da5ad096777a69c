package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/id"
	"github.com/sarchlab/timekeeper/monitoring"
	"github.com/sarchlab/timekeeper/timing"
	"github.com/sarchlab/timekeeper/tracing"
	"github.com/spf13/cobra"
)

type runOptions struct {
	numEvents   int
	waitTime    float64
	repeat      bool
	priority    int
	duration    float64
	poll        float64
	traceFormat string
	tracePath   string
	monitorPort int
	openBrowser bool
	verbose     bool
	xid         bool
}

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Create a set of events and poll them for a while.",
	Long: `Create a set of priority callback events and poll them until the ` +
		`duration is over. Event i gets the priority base+i and waits ` +
		`(i+1) times the wait time. Due events are handled in priority order.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		envFlags := map[string]string{
			"trace":        "TIMEKEEPER_TRACE",
			"trace-path":   "TIMEKEEPER_TRACE_PATH",
			"monitor-port": "TIMEKEEPER_MONITOR_PORT",
			"open-browser": "TIMEKEEPER_OPEN_BROWSER",
		}
		for flag, key := range envFlags {
			if err := applyEnv(cmd, flag, key); err != nil {
				return err
			}
		}

		if err := runOpts.validate(); err != nil {
			return err
		}

		s, err := runEvents(runOpts, clock.Default(), sleepFor)
		if err != nil {
			return err
		}

		s.render(cmd.OutOrStdout())

		return nil
	},
}

func init() {
	f := runCmd.Flags()
	f.IntVar(&runOpts.numEvents, "events", 3, "Number of events.")
	f.Float64Var(&runOpts.waitTime, "wait", 0.1,
		"Wait time of the first event, in seconds.")
	f.BoolVar(&runOpts.repeat, "repeat", true,
		"Restart the events after they are handled.")
	f.IntVar(&runOpts.priority, "priority", 0, "Priority of the first event.")
	f.Float64Var(&runOpts.duration, "duration", 1,
		"How long to poll, in seconds.")
	f.Float64Var(&runOpts.poll, "poll", 0.01,
		"Time between two polls, in seconds.")
	f.StringVar(&runOpts.traceFormat, "trace", "",
		"Trace firings into a file. One of csv and sqlite.")
	f.StringVar(&runOpts.tracePath, "trace-path", "",
		"Trace file name without extension. Empty picks a unique name.")
	f.IntVar(&runOpts.monitorPort, "monitor-port", -1,
		"Serve the event status on this port. 0 picks a random port, "+
			"negative disables the monitor.")
	f.BoolVar(&runOpts.openBrowser, "open-browser", false,
		"Open the monitor in a browser.")
	f.BoolVarP(&runOpts.verbose, "verbose", "v", false,
		"Log every firing to stderr.")
	f.BoolVar(&runOpts.xid, "xid", false,
		"Use globally unique event IDs.")

	rootCmd.AddCommand(runCmd)
}

func (o runOptions) validate() error {
	switch {
	case !isFinite(o.waitTime):
		return fmt.Errorf("--wait must be a finite number, got %v", o.waitTime)
	case !isFinite(o.duration):
		return fmt.Errorf("--duration must be a finite number, got %v", o.duration)
	case !isFinite(o.poll):
		return fmt.Errorf("--poll must be a finite number, got %v", o.poll)
	case o.numEvents <= 0:
		return fmt.Errorf("--events must be positive, got %d", o.numEvents)
	case o.waitTime < 0:
		return fmt.Errorf("--wait must not be negative, got %v", o.waitTime)
	case o.duration <= 0:
		return fmt.Errorf("--duration must be positive, got %v", o.duration)
	case o.poll <= 0:
		return fmt.Errorf("--poll must be positive, got %v", o.poll)
	}

	switch o.traceFormat {
	case "", "csv", "sqlite":
	default:
		return fmt.Errorf("unknown trace format %q", o.traceFormat)
	}

	return nil
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func sleepFor(s timing.TimeInSec) {
	time.Sleep(clock.Duration(s))
}

type eventSummary struct {
	id       string
	priority int
	waitTime timing.TimeInSec
	fires    uint64
	jobRuns  int
	handled  bool
}

type summary struct {
	events []eventSummary
	polls  int
}

// runEvents polls the events until the duration passes on c. sleep is called
// between two polls.
func runEvents(
	opts runOptions,
	c clock.Clock,
	sleep func(timing.TimeInSec),
) (*summary, error) {
	counter := tracing.NewCountTracer()
	b := timing.MakeBuilder().
		WithClock(c).
		WithRepeat(opts.repeat).
		WithHook(counter)

	if opts.xid {
		b = b.WithIDGenerator(id.NewXIDGenerator())
	}

	if opts.verbose {
		b = b.WithHook(timing.NewEventLogger(log.New(os.Stderr, "", log.LstdFlags)))
	}

	tracer, err := setUpTracer(opts, c)
	if err != nil {
		return nil, err
	}

	if tracer != nil {
		b = b.WithHook(tracer)
	}

	jobRuns := make([]int, opts.numEvents)
	events := make([]*timing.PriorityCallbackEvent, 0, opts.numEvents)
	for i := 0; i < opts.numEvents; i++ {
		e := b.
			WithWaitTime(opts.waitTime * float64(i+1)).
			WithPriority(opts.priority + i).
			WithJob(func() { jobRuns[i]++ }).
			BuildPriorityCallbackEvent()
		events = append(events, e)
	}

	monitor, err := setUpMonitor(opts, c, events)
	if err != nil {
		return nil, err
	}

	s := &summary{}
	watch := timing.NewStopwatchWithClock(c)
	watch.Start()
	deadline := timing.MakeBuilder().
		WithClock(c).
		WithWaitTime(opts.duration).
		Build()

	for !deadline.Handle() {
		pollOnce(events)
		s.polls++
		sleep(opts.poll)
	}

	watch.Stop()

	if monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		if err := monitor.Shutdown(ctx); err != nil {
			return nil, err
		}
	}

	if tracer != nil {
		if err := tracer.Flush(); err != nil {
			return nil, err
		}
	}

	for i, e := range events {
		s.events = append(s.events, eventSummary{
			id:       e.ID(),
			priority: e.Priority(),
			waitTime: e.WaitTime(),
			fires:    counter.Count(e.ID()),
			jobRuns:  jobRuns[i],
			handled:  e.IsHandled(),
		})
	}

	log.Printf("polled %d events %d times in %.3f s",
		len(events), s.polls, watch.Elapsed())

	return s, nil
}

// pollOnce handles every event that is due, highest priority first.
func pollOnce(events []*timing.PriorityCallbackEvent) {
	q := &readyQueue{}

	for _, e := range events {
		if e.ShouldHandle() {
			q.Push(e)
		}
	}

	for q.Len() > 0 {
		q.Pop().Handle()
	}
}

func setUpTracer(opts runOptions, c clock.Clock) (*tracing.FiringTracer, error) {
	var w interface {
		tracing.TraceWriter
		Path() string
	}

	switch opts.traceFormat {
	case "":
		return nil, nil
	case "csv":
		w = tracing.NewCSVTraceWriter(opts.tracePath)
	case "sqlite":
		w = tracing.NewSQLiteTraceWriter(opts.tracePath)
	}

	if err := w.Init(); err != nil {
		return nil, err
	}

	fmt.Fprintf(os.Stderr, "Tracing firings into %s\n", w.Path())

	return tracing.NewFiringTracerWithClock(w, c), nil
}

func setUpMonitor(
	opts runOptions,
	c clock.Clock,
	events []*timing.PriorityCallbackEvent,
) (*monitoring.Monitor, error) {
	if opts.monitorPort < 0 {
		return nil, nil
	}

	m := monitoring.NewMonitor().
		WithClock(c).
		WithPortNumber(opts.monitorPort)
	for _, e := range events {
		m.Register(e)
	}

	if _, err := m.StartServer(); err != nil {
		return nil, err
	}

	if opts.openBrowser {
		if err := m.OpenBrowser(); err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return m, nil
}

func (s *summary) render(out io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Event", "Priority", "Wait (s)", "Fires", "Job Runs", "Handled"})

	for _, e := range s.events {
		t.AppendRow(table.Row{
			e.id, e.priority, fmt.Sprintf("%.3f", e.waitTime),
			e.fires, e.jobRuns, e.handled,
		})
	}

	t.AppendFooter(table.Row{"Polls", s.polls})
	t.Render()
}
