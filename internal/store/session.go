package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/pinchpoint/internal/gesture"
)

// End reasons recorded when a session finishes.
const (
	EndStopped       = "stopped"
	EndAbort         = "abort"
	EndCaptureFailed = "capture_failure"
)

// Session is one run of the controller and the policy it ran with.
type Session struct {
	ID        string          `json:"id"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   *time.Time      `json:"ended_at,omitempty"`
	EndReason string          `json:"end_reason,omitempty"`
	Policy    json.RawMessage `json:"policy"`
	Events    int             `json:"events"`
}

// Active reports whether the session has not been finished.
func (s *Session) Active() bool {
	return s.EndedAt == nil
}

// SessionRepository provides access to journal sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Start opens a new session recording the given policy.
func (r *SessionRepository) Start(policy gesture.Policy, at time.Time) (*Session, error) {
	data, err := json.Marshal(policy)
	if err != nil {
		return nil, fmt.Errorf("encode policy: %w", err)
	}

	sess := &Session{
		ID:        uuid.New().String(),
		StartedAt: at.UTC(),
		Policy:    data,
	}

	_, err = r.db.Exec(
		`INSERT INTO sessions (id, started_at, policy) VALUES (?, ?, ?)`,
		sess.ID, sess.StartedAt, string(data),
	)
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// Finish marks a session as ended. Finishing an already finished session
// returns ErrNotFound.
func (r *SessionRepository) Finish(id, reason string, at time.Time) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET ended_at = ?, end_reason = ? WHERE id = ? AND ended_at IS NULL`,
		at.UTC(), reason, id,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// GetByID retrieves a session by its ID with its event count.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	row := r.db.QueryRow(
		`SELECT s.id, s.started_at, s.ended_at, s.end_reason, s.policy,
		        (SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)
		 FROM sessions s WHERE s.id = ?`,
		id,
	)

	sess, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions first. A limit of zero or less returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT s.id, s.started_at, s.ended_at, s.end_reason, s.policy,
		        (SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)
		 FROM sessions s ORDER BY s.started_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// Delete removes a session and its events.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Prune deletes finished sessions that started before cutoff and returns how many were removed.
func (r *SessionRepository) Prune(cutoff time.Time) (int64, error) {
	result, err := r.db.Exec(
		`DELETE FROM sessions WHERE ended_at IS NOT NULL AND started_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (*Session, error) {
	sess := &Session{}
	var ended sql.NullTime
	var policy string

	if err := sc.Scan(&sess.ID, &sess.StartedAt, &ended, &sess.EndReason, &policy, &sess.Events); err != nil {
		return nil, err
	}

	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	sess.Policy = json.RawMessage(policy)
	return sess, nil
}
