package store

import (
	"database/sql"
	"time"
)

// EventKind classifies an event.
type EventKind string

const (
	EventMove    EventKind = "move"
	EventClick   EventKind = "click"
	EventGesture EventKind = "gesture"
	EventFace    EventKind = "face"
)

// Event is something a session did or saw. X and Y are screen pixels for
// pointer events and frame pixels for faces. Value holds the pinch distance
// for clicks and the confidence for faces; Label holds the gesture name.
type Event struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Kind      EventKind `json:"kind"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Value     float64   `json:"value"`
	Label     string    `json:"label,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// EventRepository stores session events.
type EventRepository struct {
	db *sql.DB
}

// Events returns the event repository for this store.
func (s *Store) Events() *EventRepository {
	return &EventRepository{db: s.db}
}

// Record inserts a batch of events in a single transaction. Events with a
// zero CreatedAt are stamped with the current time.
func (r *EventRepository) Record(events []Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO events (session_id, kind, x, y, value, label, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now()
	for _, e := range events {
		at := e.CreatedAt
		if at.IsZero() {
			at = now
		}
		if _, err := stmt.Exec(e.SessionID, string(e.Kind), e.X, e.Y, e.Value, e.Label, at); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// ListBySession returns a session's events in the order they happened,
// optionally restricted to one kind.
func (r *EventRepository) ListBySession(sessionID string, kind EventKind) ([]Event, error) {
	query := `SELECT id, session_id, kind, x, y, value, label, created_at
		 FROM events WHERE session_id = ?`
	args := []any{sessionID}
	if kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(kind))
	}
	query += ` ORDER BY id`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.ID, &e.SessionID, &kind, &e.X, &e.Y, &e.Value, &e.Label, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// CountBySession returns the number of events per kind for a session.
func (r *EventRepository) CountBySession(sessionID string) (map[EventKind]int, error) {
	rows, err := r.db.Query(
		`SELECT kind, COUNT(*) FROM events WHERE session_id = ? GROUP BY kind`, sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[EventKind]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		counts[EventKind(kind)] = n
	}
	return counts, rows.Err()
}
