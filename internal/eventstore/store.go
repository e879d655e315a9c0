// Package eventstore keeps a write-only audit timeline of utterances and the
// decisions made for them. The daemon never reads it back at startup; it
// exists for debugging and offline inspection.
package eventstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/sotto-labs/sotto-core/internal/config"
	_ "modernc.org/sqlite"
)

// Event types recorded on the timeline.
const (
	TypeUtterance    = "utterance"
	TypeDecision     = "decision"
	TypeAnswer       = "answer"
	TypeConfirmation = "confirmation"
)

// Event represents one recorded timeline entry.
type Event struct {
	ID          int64
	UtteranceID string
	Type        string
	Payload     []byte
	CreatedAt   time.Time
}

// Store wraps a SQLite-backed audit timeline.
type Store struct {
	db    *sql.DB
	cfg   config.EventStoreConfig
	log   *slog.Logger
	clock func() time.Time
}

// Open initializes the store according to config. In ephemeral mode no
// database is opened and every write is a no-op.
func Open(ctx context.Context, cfg config.EventStoreConfig, log *slog.Logger) (*Store, error) {
	if cfg.RetentionMode == "ephemeral" {
		return &Store{cfg: cfg, log: log, clock: time.Now}, nil
	}

	dir := filepath.Dir(cfg.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cfg.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &Store{db: db, cfg: cfg, log: log, clock: time.Now}

	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, err
	}

	if cfg.VacuumOnStart {
		if err := s.vacuum(ctx); err != nil {
			log.Warn("event store vacuum failed", slog.String("error", err.Error()))
		}
	}

	if err := s.Prune(ctx); err != nil {
		log.Warn("event store prune on start failed", slog.String("error", err.Error()))
	}

	return s, nil
}

func (s *Store) initSchema(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	ddl := `
CREATE TABLE IF NOT EXISTS utterances (
    utterance_id TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    utterance_id TEXT NOT NULL,
    event_type TEXT,
    payload BLOB,
    created_at TIMESTAMP NOT NULL,
    FOREIGN KEY(utterance_id) REFERENCES utterances(utterance_id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_events_utterance_created ON events(utterance_id, created_at);
`
	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *Store) vacuum(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

// Close releases underlying resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// AppendUtterance ensures an utterance row exists.
func (s *Store) AppendUtterance(ctx context.Context, utteranceID string) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO utterances(utterance_id, created_at) VALUES(?, ?)
		 ON CONFLICT(utterance_id) DO NOTHING`,
		utteranceID, s.clock().UTC())
	return err
}

// AppendEvent writes one event into the timeline.
func (s *Store) AppendEvent(ctx context.Context, evt Event) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	if evt.CreatedAt.IsZero() {
		evt.CreatedAt = s.clock().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events(utterance_id, event_type, payload, created_at)
		 VALUES(?, ?, ?, ?)`,
		evt.UtteranceID, evt.Type, evt.Payload, evt.CreatedAt)
	return err
}

// ListUtteranceEvents retrieves up to limit events for one utterance ordered
// ascending by time. Used by tests and debugging tools only.
func (s *Store) ListUtteranceEvents(ctx context.Context, utteranceID string, limit int) ([]Event, error) {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, utterance_id, event_type, payload, created_at
		 FROM events WHERE utterance_id = ? ORDER BY created_at ASC LIMIT ?`, utteranceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var created string
		if err := rows.Scan(&e.ID, &e.UtteranceID, &e.Type, &e.Payload, &created); err != nil {
			return nil, err
		}
		if ts, err := time.Parse(time.RFC3339Nano, created); err == nil {
			e.CreatedAt = ts
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Prune applies configured retention. Called on startup.
func (s *Store) Prune(ctx context.Context) error {
	if s.cfg.RetentionMode == "ephemeral" || s.db == nil {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	if s.cfg.RetentionDays > 0 {
		cutoff := s.clock().Add(-time.Duration(s.cfg.RetentionDays) * 24 * time.Hour)
		if _, err = tx.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff.UTC()); err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM utterances WHERE created_at < ?`, cutoff.UTC()); err != nil {
			return err
		}
	}
	if s.cfg.MaxUtterances > 0 {
		_, err = tx.ExecContext(ctx, `DELETE FROM utterances WHERE utterance_id IN (
			SELECT utterance_id FROM utterances ORDER BY created_at DESC LIMIT -1 OFFSET ?
		)`, s.cfg.MaxUtterances)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

// Ensure verifies the ephemeral invariant.
func (s *Store) Ensure() error {
	if s.cfg.RetentionMode == "ephemeral" && s.db != nil {
		return errors.New("ephemeral store should not have database connection")
	}
	return nil
}
