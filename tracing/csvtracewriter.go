package tracing

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter stores firings in a CSV file.
type CSVTraceWriter struct {
	path   string
	file   *os.File
	writer *csv.Writer

	firings    []Firing
	bufferSize int
}

// NewCSVTraceWriter creates a new CSVTraceWriter. The ".csv" suffix is added
// to path. An empty path picks a unique file name.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the CSV file.
func (t *CSVTraceWriter) Path() string {
	return t.path + ".csv"
}

// Init creates the CSV file. It fails if the file already exists. The
// buffered firings are flushed when the program exits through atexit.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "timekeeper_trace_" + xid.New().String()
	}

	filename := t.Path()

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}

	t.file = file
	t.writer = csv.NewWriter(file)

	err = t.writer.Write([]string{
		"EventID", "Kind", "Priority", "Lateness", "Time",
	})
	if err != nil {
		return fmt.Errorf("writing trace header: %w", err)
	}

	atexit.Register(func() {
		_ = t.Close()
	})

	return nil
}

// Write buffers a firing.
func (t *CSVTraceWriter) Write(f Firing) error {
	t.firings = append(t.firings, f)
	if len(t.firings) >= t.bufferSize {
		return t.Flush()
	}

	return nil
}

// Flush writes the buffered firings to the file.
func (t *CSVTraceWriter) Flush() error {
	if t.writer == nil {
		return nil
	}

	for _, f := range t.firings {
		priority := ""
		if f.HasPriority {
			priority = strconv.Itoa(f.Priority)
		}

		err := t.writer.Write([]string{
			f.EventID,
			f.Kind,
			priority,
			strconv.FormatFloat(f.Lateness, 'f', 10, 64),
			strconv.FormatFloat(f.Time, 'f', 10, 64),
		})
		if err != nil {
			return fmt.Errorf("writing firing %s: %w", f.EventID, err)
		}
	}

	t.firings = nil
	t.writer.Flush()

	return t.writer.Error()
}

// Close flushes and closes the file. Closing twice does nothing.
func (t *CSVTraceWriter) Close() error {
	if t.file == nil {
		return nil
	}

	err := t.Flush()
	if err != nil {
		return err
	}

	err = t.file.Close()
	t.file = nil
	t.writer = nil

	return err
}
