package metrics

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"waveform-streamer/src/logger"

	_ "modernc.org/sqlite"
)

const (
	journalQueueSize = 1024
	journalBatchSize = 256
)

type journalEvent struct {
	ts      time.Time
	kind    string // "timed" or "error"
	name    string
	value   float64
	message string
}

// JournalEvent is one row of the diagnostics journal.
type JournalEvent struct {
	Timestamp time.Time
	Kind      string
	Name      string
	Value     float64
	Message   string
}

// -----------------------------------------------------------------------------

// JournalSink appends timed metrics and errors to a sqlite event journal.
// Recording never blocks: when the queue is full the event is dropped.
type JournalSink struct {
	DB     *sql.DB
	Logger *logger.Logger

	events  chan journalEvent
	done    chan struct{}
	once    sync.Once
	mu      sync.Mutex
	dropped uint64
}

// NewJournalSink opens (or creates) the journal at dsn and starts its writer.
func NewJournalSink(dsn string, log *logger.Logger) (*JournalSink, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" journals on one database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		log.Warning("Failed to set WAL mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			ts INTEGER,
			kind TEXT,
			name TEXT,
			value REAL,
			message TEXT
		);
	`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create events: %w", err)
	}

	j := &JournalSink{
		DB:     db,
		Logger: log,
		events: make(chan journalEvent, journalQueueSize),
		done:   make(chan struct{}),
	}
	go j.writer()
	return j, nil
}

// -----------------------------------------------------------------------------

func (j *JournalSink) RecordTimed(name string, value float64) {
	j.enqueue(journalEvent{ts: time.Now(), kind: "timed", name: name, value: value})
}

func (j *JournalSink) RecordError(source string, err error) {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	j.enqueue(journalEvent{ts: time.Now(), kind: "error", name: source, message: msg})
}

func (j *JournalSink) enqueue(ev journalEvent) {
	defer func() {
		// Recording after Close is a no-op.
		_ = recover()
	}()
	select {
	case j.events <- ev:
	default:
		j.mu.Lock()
		j.dropped++
		j.mu.Unlock()
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (j *JournalSink) Dropped() uint64 {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.dropped
}

// -----------------------------------------------------------------------------

func (j *JournalSink) writer() {
	defer close(j.done)
	batch := make([]journalEvent, 0, journalBatchSize)
	for ev := range j.events {
		batch = append(batch, ev)
	drain:
		for len(batch) < journalBatchSize {
			select {
			case more, ok := <-j.events:
				if !ok {
					break drain
				}
				batch = append(batch, more)
			default:
				break drain
			}
		}
		if err := j.insert(batch); err != nil {
			j.Logger.Error("Failed to write %d journal events: %v", len(batch), err)
		}
		batch = batch[:0]
	}
}

func (j *JournalSink) insert(batch []journalEvent) error {
	tx, err := j.DB.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO events (ts, kind, name, value, message) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, ev := range batch {
		if _, err := stmt.Exec(ev.ts.UnixNano(), ev.kind, ev.name, ev.value, ev.message); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// -----------------------------------------------------------------------------

// Events returns the journal rows of the given kind ("" for all), oldest first.
func (j *JournalSink) Events(kind string) ([]JournalEvent, error) {
	query := "SELECT ts, kind, name, value, message FROM events"
	var args []interface{}
	if kind != "" {
		query += " WHERE kind = ?"
		args = append(args, kind)
	}
	query += " ORDER BY id"

	rows, err := j.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []JournalEvent
	for rows.Next() {
		var ts int64
		var ev JournalEvent
		if err := rows.Scan(&ts, &ev.Kind, &ev.Name, &ev.Value, &ev.Message); err != nil {
			return nil, err
		}
		ev.Timestamp = time.Unix(0, ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Flush stops accepting events, waits for the queue to drain and keeps the
// database open for queries.
func (j *JournalSink) Flush() {
	j.once.Do(func() { close(j.events) })
	<-j.done
}

// Close flushes pending events and closes the database.
func (j *JournalSink) Close() error {
	j.Flush()
	return j.DB.Close()
}
