package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per demo run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			mode TEXT NOT NULL CHECK(mode IN ('cursor', 'gesture', 'face', 'tour')),
			backend TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			frames INTEGER NOT NULL DEFAULT 0,
			moves INTEGER NOT NULL DEFAULT 0,
			clicks INTEGER NOT NULL DEFAULT 0,
			detections INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Injected moves and clicks, recognized gestures and face sightings
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			kind TEXT NOT NULL CHECK(kind IN ('move', 'click', 'gesture', 'face')),
			x INTEGER NOT NULL DEFAULT 0,
			y INTEGER NOT NULL DEFAULT 0,
			value REAL NOT NULL DEFAULT 0,
			label TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`,

		// Settings table - effective tunables as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
