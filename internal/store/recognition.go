package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Recognition is a gesture that won arbitration, with the outcome of
// forwarding it.
type Recognition struct {
	ID         string
	Gesture    string
	Confidence float64
	TrackingID uint64
	Notified   bool
	Error      string
	CreatedAt  time.Time
}

// RecognitionRepository provides access to the recognition history.
type RecognitionRepository struct {
	db *sql.DB
}

// Recognitions returns the recognition repository for this store.
func (s *Store) Recognitions() *RecognitionRepository {
	return &RecognitionRepository{db: s.db}
}

// Create inserts a recognition. CreatedAt is set when zero.
func (r *RecognitionRepository) Create(rec *Recognition) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	notified := 0
	if rec.Notified {
		notified = 1
	}

	_, err := r.db.Exec(
		`INSERT INTO recognitions (id, gesture, confidence, tracking_id, notified, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Gesture, rec.Confidence, int64(rec.TrackingID), notified, rec.Error, rec.CreatedAt,
	)
	return err
}

// GetByID retrieves a recognition by its ID.
func (r *RecognitionRepository) GetByID(id string) (*Recognition, error) {
	row := r.db.QueryRow(
		`SELECT id, gesture, confidence, tracking_id, notified, error, created_at
		 FROM recognitions WHERE id = ?`,
		id,
	)

	rec, err := scanRecognition(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

// List returns the most recent recognitions, newest first. A limit of zero
// or less returns all of them.
func (r *RecognitionRepository) List(limit int) ([]*Recognition, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := r.db.Query(
		`SELECT id, gesture, confidence, tracking_id, notified, error, created_at
		 FROM recognitions ORDER BY created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*Recognition
	for rows.Next() {
		rec, err := scanRecognition(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return recs, nil
}

// CountByGesture returns how many times each gesture was recognized.
func (r *RecognitionRepository) CountByGesture() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT gesture, COUNT(*) FROM recognitions GROUP BY gesture`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, err
		}
		counts[name] = n
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecognition(row scanner) (*Recognition, error) {
	rec := &Recognition{}
	var trackingID int64
	var notified int

	err := row.Scan(&rec.ID, &rec.Gesture, &rec.Confidence, &trackingID, &notified, &rec.Error, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.TrackingID = uint64(trackingID)
	rec.Notified = notified != 0
	return rec, nil
}
