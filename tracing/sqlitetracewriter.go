package tracing

import (
	"database/sql"
	"fmt"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteTraceWriter stores firings in a SQLite database.
type SQLiteTraceWriter struct {
	*sql.DB
	statement *sql.Stmt

	path      string
	firings   []Firing
	batchSize int
}

// NewSQLiteTraceWriter creates a new SQLiteTraceWriter. The ".sqlite3" suffix
// is added to path. An empty path picks a unique file name.
func NewSQLiteTraceWriter(path string) *SQLiteTraceWriter {
	return &SQLiteTraceWriter{
		path:      path,
		batchSize: 10000,
	}
}

// Path returns the name of the database file.
func (t *SQLiteTraceWriter) Path() string {
	return t.path + ".sqlite3"
}

// Init creates the database. It fails if the file already exists. The
// buffered firings are flushed when the program exits through atexit.
func (t *SQLiteTraceWriter) Init() error {
	if t.path == "" {
		t.path = "timekeeper_trace_" + xid.New().String()
	}

	err := t.createDatabase()
	if err != nil {
		return err
	}

	err = t.createTable()
	if err != nil {
		return err
	}

	t.statement, err = t.Prepare(`
		INSERT INTO firing(event_id, kind, priority, lateness, time)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert statement: %w", err)
	}

	atexit.Register(func() {
		_ = t.Close()
	})

	return nil
}

func (t *SQLiteTraceWriter) createDatabase() error {
	filename := t.Path()

	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return fmt.Errorf("opening %s: %w", filename, err)
	}

	t.DB = db

	return nil
}

func (t *SQLiteTraceWriter) createTable() error {
	stmts := []string{
		`create table firing
		(
			event_id varchar(200) not null,
			kind     varchar(100) not null,
			priority integer,
			lateness float        not null,
			time     float        not null
		);`,
		`create index firing_event_id_index on firing (event_id);`,
		`create index firing_time_index on firing (time);`,
	}

	for _, stmt := range stmts {
		_, err := t.Exec(stmt)
		if err != nil {
			return fmt.Errorf("creating firing table: %w", err)
		}
	}

	return nil
}

// Write buffers a firing.
func (t *SQLiteTraceWriter) Write(f Firing) error {
	t.firings = append(t.firings, f)
	if len(t.firings) >= t.batchSize {
		return t.Flush()
	}

	return nil
}

// Flush inserts all the buffered firings in one transaction.
func (t *SQLiteTraceWriter) Flush() error {
	if len(t.firings) == 0 || t.DB == nil {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	stmt := tx.Stmt(t.statement)
	for _, f := range t.firings {
		var priority interface{}
		if f.HasPriority {
			priority = f.Priority
		}

		_, err = stmt.Exec(f.EventID, f.Kind, priority, f.Lateness, f.Time)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting firing %s: %w", f.EventID, err)
		}
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("committing firings: %w", err)
	}

	t.firings = nil

	return nil
}

// Close flushes and closes the database. Closing twice does nothing.
func (t *SQLiteTraceWriter) Close() error {
	if t.DB == nil {
		return nil
	}

	err := t.Flush()
	if err != nil {
		return err
	}

	err = t.DB.Close()
	t.DB = nil

	return err
}
