// Package monitoring serves the status of timed events over HTTP.
//
// Events are not safe for concurrent use, so the server never touches them.
// A Monitor is a hook: it copies the status of an event whenever the event is
// handled, on the goroutine that handles it, and the server only reads the
// copies.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/sarchlab/timekeeper/clock"
	"github.com/sarchlab/timekeeper/hooking"
	"github.com/sarchlab/timekeeper/timing"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"
)

// EventStatus is a copy of the observable state of an event.
type EventStatus struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	WaitTime     float64   `json:"wait_time"`
	Repeated     bool      `json:"repeated"`
	Handled      bool      `json:"handled"`
	HasPriority  bool      `json:"has_priority"`
	Priority     int       `json:"priority"`
	FireCount    uint64    `json:"fire_count"`
	LastLateness float64   `json:"last_lateness"`
	LastFiredAt  time.Time `json:"last_fired_at"`
}

// Monitor keeps the status of registered events and serves them.
type Monitor struct {
	lock     sync.RWMutex
	statuses map[string]*EventStatus
	order    []string

	clock      clock.Clock
	portNumber int
	server     *http.Server
	url        string
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		statuses: make(map[string]*EventStatus),
		clock:    clock.Default(),
	}
}

// WithClock sets the clock that stamps the firing times.
func (m *Monitor) WithClock(c clock.Clock) *Monitor {
	m.clock = c
	return m
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// not allowed and fall back to a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// Register starts monitoring an event. It must be called from the goroutine
// that owns the event.
func (m *Monitor) Register(e timing.Event) {
	status := &EventStatus{}
	fillStatus(status, e)

	m.lock.Lock()
	if _, found := m.statuses[e.ID()]; found {
		m.lock.Unlock()
		panic(fmt.Sprintf("event %s is already monitored", e.ID()))
	}

	m.statuses[e.ID()] = status
	m.order = append(m.order, e.ID())
	m.lock.Unlock()

	e.AcceptHook(m)
}

// Func updates the status of a handled event.
func (m *Monitor) Func(ctx hooking.HookCtx) {
	if ctx.Pos != timing.HookPosHandled {
		return
	}

	e, ok := ctx.Item.(timing.Event)
	if !ok {
		return
	}

	lateness, _ := ctx.Detail.(timing.TimeInSec)

	m.lock.Lock()
	defer m.lock.Unlock()

	status, found := m.statuses[e.ID()]
	if !found {
		return
	}

	fillStatus(status, e)
	status.FireCount++
	status.LastLateness = lateness
	status.LastFiredAt = m.clock.Now()
}

func fillStatus(status *EventStatus, e timing.Event) {
	status.ID = e.ID()
	status.Kind = fmt.Sprintf("%T", e)
	status.WaitTime = e.WaitTime()
	status.Repeated = e.IsRepeated()
	status.Handled = e.IsHandled()

	if p, ok := e.(timing.Prioritized); ok {
		status.HasPriority = true
		status.Priority = p.Priority()
	}
}

// Statuses returns copies of the statuses in registration order.
func (m *Monitor) Statuses() []EventStatus {
	m.lock.RLock()
	defer m.lock.RUnlock()

	list := make([]EventStatus, 0, len(m.order))
	for _, id := range m.order {
		list = append(list, *m.statuses[id])
	}

	return list
}

// Status returns a copy of the status of one event.
func (m *Monitor) Status(id string) (EventStatus, bool) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	status, found := m.statuses[id]
	if !found {
		return EventStatus{}, false
	}

	return *status, true
}

// Router returns the HTTP routes of the monitor.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/events", m.listEvents)
	r.HandleFunc("/api/event/{id}", m.eventDetails)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)

	return r
}

// StartServer starts serving in the background and returns the URL of the
// server.
func (m *Monitor) StartServer() (string, error) {
	actualPort := ":" + strconv.Itoa(m.portNumber)

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("starting monitor: %w", err)
	}

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	m.server = &http.Server{
		Handler:           m.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	fmt.Fprintf(os.Stderr, "Monitoring events with %s\n", m.url)

	go func() {
		err := m.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Panic(err)
		}
	}()

	return m.url, nil
}

// OpenBrowser opens the event list of a started server in the browser.
func (m *Monitor) OpenBrowser() error {
	if m.url == "" {
		return errors.New("monitor server is not started")
	}

	return browser.OpenURL(m.url + "/api/events")
}

// Shutdown stops the server.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) listEvents(w http.ResponseWriter, r *http.Request) {
	statuses := m.Statuses()

	switch r.URL.Query().Get("sort") {
	case "":
	case "priority":
		sort.SliceStable(statuses, func(i, j int) bool {
			return statuses[i].Priority > statuses[j].Priority
		})
	case "fires":
		sort.SliceStable(statuses, func(i, j int) bool {
			return statuses[i].FireCount > statuses[j].FireCount
		})
	default:
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: invalid sort method %s. "+
			"Allowed values are `priority` and `fires`",
			r.URL.Query().Get("sort"))

		return
	}

	writeJSON(w, statuses)
}

func (m *Monitor) eventDetails(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	status, found := m.Status(id)
	if !found {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Event not found"))
		dieOnErr(err)

		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(&status)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

const maxProfileDuration = 60 * time.Second

func (m *Monitor) collectProfile(w http.ResponseWriter, r *http.Request) {
	duration := time.Second

	if s := r.URL.Query().Get("seconds"); s != "" {
		seconds, err := strconv.ParseFloat(s, 64)
		if err != nil || !(seconds > 0) ||
			seconds > maxProfileDuration.Seconds() {
			w.WriteHeader(http.StatusBadRequest)
			fmt.Fprintf(w, "Error: invalid profiling duration %q", s)

			return
		}

		duration = time.Duration(seconds * float64(time.Second))
	}

	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		fmt.Fprintf(w, "Error: %s", err)

		return
	}

	time.Sleep(duration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
