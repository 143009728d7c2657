package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Mode is the demo a session ran.
type Mode string

const (
	ModeCursor  Mode = "cursor"
	ModeGesture Mode = "gesture"
	ModeFace    Mode = "face"
	ModeTour    Mode = "tour"
)

// Session records one run of a demo loop.
type Session struct {
	ID         string     `json:"id"`
	Mode       Mode       `json:"mode"`
	Backend    string     `json:"backend"`
	Status     string     `json:"status"`
	Frames     int        `json:"frames"`
	Moves      int        `json:"moves"`
	Clicks     int        `json:"clicks"`
	Detections int        `json:"detections"`
	StartedAt  time.Time  `json:"started_at"`
	EndedAt    *time.Time `json:"ended_at,omitempty"`
}

// Counters are the running totals a loop reports when it finishes.
type Counters struct {
	Frames     int
	Moves      int
	Clicks     int
	Detections int
}

// SessionRepository provides CRUD operations for sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session, assigning an ID and start time when unset.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.New().String()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, mode, backend, status, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, string(sess.Mode), sess.Backend, sess.Status, sess.StartedAt,
	)
	return err
}

// Finish stores the final counters and end time of a session.
func (r *SessionRepository) Finish(id string, c Counters) error {
	result, err := r.db.Exec(
		`UPDATE sessions SET frames = ?, moves = ?, clicks = ?, detections = ?, ended_at = ?
		 WHERE id = ?`,
		c.Frames, c.Moves, c.Clicks, c.Detections, time.Now(), id,
	)
	if err != nil {
		return err
	}
	return affectedOne(result)
}

const sessionColumns = `id, mode, backend, status, frames, moves, clicks, detections, started_at, ended_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (*Session, error) {
	sess := &Session{}
	var mode string
	var ended sql.NullTime

	err := row.Scan(&sess.ID, &mode, &sess.Backend, &sess.Status,
		&sess.Frames, &sess.Moves, &sess.Clicks, &sess.Detections,
		&sess.StartedAt, &ended)
	if err != nil {
		return nil, err
	}

	sess.Mode = Mode(mode)
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

// Get retrieves a session by its ID.
func (r *SessionRepository) Get(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions first. A limit <= 0 returns all of them.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT `+sessionColumns+` FROM sessions ORDER BY started_at DESC LIMIT ?`, limit,
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

// Delete removes a session and, through the foreign key, its events.
func (r *SessionRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return affectedOne(result)
}
