package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/pinchpoint/internal/gesture"
)

// Event is a journaled pointer intent.
type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      string    `json:"kind"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	At        time.Time `json:"at"`
}

// EventRepository provides access to journal events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record appends intents to a session in a single transaction.
func (r *EventRepository) Record(sessionID string, intents ...gesture.Intent) error {
	if len(intents) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO events (session_id, kind, x, y, at_ms) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, in := range intents {
		if _, err := stmt.Exec(sessionID, in.Kind.String(), in.X, in.Y, in.At.UnixMilli()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession returns a session's events in the order they were recorded.
// It returns ErrNotFound if the session does not exist.
func (r *EventRepository) ListBySession(sessionID string) ([]*Event, error) {
	var exists int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := r.db.Query(
		`SELECT id, session_id, kind, x, y, at_ms FROM events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := []*Event{}
	for rows.Next() {
		e := &Event{}
		var atMs int64
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Kind, &e.X, &e.Y, &atMs); err != nil {
			return nil, err
		}
		e.At = time.UnixMilli(atMs)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}
