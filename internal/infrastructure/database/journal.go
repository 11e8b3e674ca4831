package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/sensorstream/internal/infrastructure/config"
	"github.com/nerrad567/sensorstream/internal/lifecycle"
)

const (
	defaultBusyTimeout = 5
	defaultRetryCount  = 3
	defaultRetryDelay  = 2 * time.Second
	writeTimeout       = 5 * time.Second
	migrateTimeout     = 30 * time.Second
)

var (
	keyPath        = []string{"path", "p"}
	keyWALMode     = []string{"walmode", "wal"}
	keyBusyTimeout = []string{"busytimeout", "bt"}
	keyRetryCount  = []string{"retrycount", "rc"}
	keyRetryDelay  = []string{"retrydelay", "rd"}
)

// Logger interface for optional logging support.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Reading is one journalled payload.
type Reading struct {
	ID         int64
	ReceivedAt time.Time
	Sensor     string
	Payload    []byte
}

// Journal is the "sqlite" output provider: every payload is appended to the
// readings table of a local SQLite database.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Journal struct {
	log Logger

	mu         sync.RWMutex
	cfg        Config
	retries    int
	retryDelay time.Duration
	configured bool
	stop       *lifecycle.StopSignal
	db         *DB
}

// NewJournal creates an unconfigured journal provider.
func NewJournal(log Logger) *Journal {
	if log == nil {
		log = noopLogger{}
	}
	return &Journal{
		log:  log,
		stop: lifecycle.NewStopSignal(),
	}
}

// Init parses the connection string. Options (aliases in braces):
// path{path,p} (mandatory), walmode{walmode,wal}=1,
// busytimeout{busytimeout,bt}=5, retrycount{retrycount,rc}=3,
// retrydelay{retrydelay,rd}=2.
func (j *Journal) Init(connString string) error {
	conn, err := config.ParseConnString(connString)
	if err != nil {
		return ErrInvalidOption.With(err)
	}

	cfg := Config{
		Path:    conn.String(keyPath, ""),
		WALMode: conn.Bool(keyWALMode, true),
	}
	if cfg.Path == "" {
		return ErrMissingOption.Withf("path")
	}
	if cfg.BusyTimeout, err = conn.Int(keyBusyTimeout, defaultBusyTimeout); err != nil {
		return ErrInvalidOption.With(err)
	}
	retries, err := conn.Int(keyRetryCount, defaultRetryCount)
	if err != nil {
		return ErrInvalidOption.With(err)
	}
	delay, err := conn.Seconds(keyRetryDelay, defaultRetryDelay)
	if err != nil {
		return ErrInvalidOption.With(err)
	}

	j.mu.Lock()
	j.cfg = cfg
	j.retries = retries
	j.retryDelay = delay
	j.configured = true
	j.mu.Unlock()

	j.log.Info("sqlite journal configured", "path", cfg.Path, "wal", cfg.WALMode)
	return nil
}

// AttachStopSignal attaches the process-wide stop signal observed by Open.
func (j *Journal) AttachStopSignal(stop *lifecycle.StopSignal) {
	if stop == nil {
		return
	}
	j.mu.Lock()
	j.stop = stop
	j.mu.Unlock()
}

// Open opens the database and applies pending migrations. Opening an
// already open journal replaces the previous handle and closes it.
func (j *Journal) Open() error {
	j.mu.RLock()
	cfg, retries, delay := j.cfg, j.retries, j.retryDelay
	configured, stop := j.configured, j.stop
	j.mu.RUnlock()

	if !configured {
		return ErrMissingOption.Withf("provider not configured")
	}

	return stop.Retry(retries, delay, func(attempt int) error {
		db, err := Open(cfg)
		if err != nil {
			j.log.Warn("sqlite open attempt failed", "attempt", attempt+1, "error", err)
			return ErrOpenFailed.With(err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), migrateTimeout)
		defer cancel()
		if err := db.Migrate(ctx); err != nil {
			db.Close() //nolint:errcheck // Best effort cleanup on error path
			return ErrOpenFailed.With(err)
		}

		j.mu.Lock()
		prev := j.db
		j.db = db
		j.mu.Unlock()

		if prev != nil {
			if err := prev.Close(); err != nil {
				j.log.Warn("sqlite journal close of previous handle failed", "error", err)
			}
		}
		j.log.Info("sqlite journal opened", "path", cfg.Path)
		return nil
	})
}

// Close closes the database. It is idempotent.
func (j *Journal) Close() error {
	j.mu.Lock()
	db := j.db
	j.db = nil
	j.mu.Unlock()

	if db == nil {
		return nil
	}
	if err := db.Close(); err != nil {
		j.log.Warn("sqlite journal close failed", "error", err)
	}
	return nil
}

// Write appends payload to the journal. The sensor column is filled when the
// payload is a JSON object carrying a "sensor" string.
func (j *Journal) Write(payload []byte) error {
	j.mu.RLock()
	db := j.db
	j.mu.RUnlock()

	if db == nil {
		return ErrNotOpen
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	_, err := db.ExecContext(ctx,
		"INSERT INTO readings (received_at, sensor, payload) VALUES (?, ?, ?)",
		time.Now().UTC().Format(time.RFC3339Nano),
		sensorName(payload),
		payload,
	)
	if err != nil {
		return ErrWriteFailed.With(err)
	}
	return nil
}

// Recent returns up to limit readings, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Reading, error) {
	j.mu.RLock()
	db := j.db
	j.mu.RUnlock()

	if db == nil {
		return nil, ErrNotOpen
	}

	rows, err := db.QueryContext(ctx,
		"SELECT id, received_at, COALESCE(sensor, ''), payload FROM readings ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying readings: %w", err)
	}
	defer rows.Close()

	var out []Reading
	for rows.Next() {
		var r Reading
		var receivedAt string
		if err := rows.Scan(&r.ID, &receivedAt, &r.Sensor, &r.Payload); err != nil {
			return nil, fmt.Errorf("scanning reading: %w", err)
		}
		r.ReceivedAt, _ = time.Parse(time.RFC3339Nano, receivedAt) //nolint:errcheck // Format is controlled
		out = append(out, r)
	}
	return out, rows.Err()
}

// HealthCheck verifies the journal database responds.
func (j *Journal) HealthCheck(ctx context.Context) error {
	j.mu.RLock()
	db := j.db
	j.mu.RUnlock()

	if db == nil {
		return ErrNotOpen
	}
	return db.HealthCheck(ctx)
}

// sensorName extracts the "sensor" member of a JSON payload, or nil.
func sensorName(payload []byte) any {
	var doc struct {
		Sensor *string `json:"sensor"`
	}
	if err := json.Unmarshal(payload, &doc); err != nil || doc.Sensor == nil {
		return nil
	}
	return *doc.Sensor
}
