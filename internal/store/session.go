package store

import (
	"database/sql"
	"errors"
	"time"
)

// Session records one context request sent to the interaction manager.
type Session struct {
	RequestID    string
	Context      string
	Source       string
	Target       string
	RegisteredAt time.Time
}

// SessionRepository provides access to MMI session registrations.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a session.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.RegisteredAt.IsZero() {
		sess.RegisteredAt = time.Now()
	}

	_, err := r.db.Exec(
		`INSERT INTO mmi_sessions (request_id, context, source, target, registered_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.RequestID, sess.Context, sess.Source, sess.Target, sess.RegisteredAt,
	)
	return err
}

// Latest returns the most recent registration.
func (r *SessionRepository) Latest() (*Session, error) {
	sess := &Session{}
	err := r.db.QueryRow(
		`SELECT request_id, context, source, target, registered_at
		 FROM mmi_sessions ORDER BY registered_at DESC, rowid DESC LIMIT 1`,
	).Scan(&sess.RequestID, &sess.Context, &sess.Source, &sess.Target, &sess.RegisteredAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}
