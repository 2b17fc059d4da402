package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per counted image or camera run
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			source TEXT NOT NULL CHECK(source IN ('image', 'camera')),
			label TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Frames table - one row per processed frame, including frames with no hands
		`CREATE TABLE IF NOT EXISTS frames (
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_index INTEGER NOT NULL,
			hand_count INTEGER NOT NULL DEFAULT 0,
			total_raw INTEGER NOT NULL DEFAULT 0,
			total_smoothed INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			PRIMARY KEY (session_id, frame_index)
		)`,

		// Frame counts table - one row per hand per frame
		`CREATE TABLE IF NOT EXISTS frame_counts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			frame_index INTEGER NOT NULL,
			hand_slot INTEGER NOT NULL,
			handedness TEXT NOT NULL DEFAULT '',
			states TEXT NOT NULL,
			raw_count INTEGER NOT NULL CHECK(raw_count BETWEEN 0 AND 5),
			smoothed_count INTEGER NOT NULL CHECK(smoothed_count BETWEEN 0 AND 5),
			created_at DATETIME NOT NULL,
			UNIQUE(session_id, frame_index, hand_slot)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_frame_counts_session_id ON frame_counts(session_id, frame_index)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
