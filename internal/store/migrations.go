package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Recognitions table - one row per gesture forwarded to fusion
		`CREATE TABLE IF NOT EXISTS recognitions (
			id TEXT PRIMARY KEY,
			gesture TEXT NOT NULL,
			confidence REAL NOT NULL CHECK(confidence >= 0 AND confidence <= 1),
			tracking_id INTEGER NOT NULL,
			notified INTEGER NOT NULL DEFAULT 1,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// MMI sessions table - context requests sent to the interaction manager
		`CREATE TABLE IF NOT EXISTS mmi_sessions (
			request_id TEXT PRIMARY KEY,
			context TEXT NOT NULL,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			registered_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_recognitions_created_at ON recognitions(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_recognitions_gesture ON recognitions(gesture)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
