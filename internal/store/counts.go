package store

import (
	"database/sql"
	"time"
)

// HandRecord is the classification of one hand in one frame.
type HandRecord struct {
	Slot       int    `json:"slot"`
	Handedness string `json:"handedness"`
	// States is the thumb-to-pinky bit string, e.g. "01100".
	States   string `json:"states"`
	Raw      int    `json:"raw"`
	Smoothed int    `json:"smoothed"`
}

// FrameCount is a stored HandRecord with its frame position.
type FrameCount struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"session_id"`
	FrameIndex int       `json:"frame_index"`
	CreatedAt  time.Time `json:"created_at"`
	HandRecord
}

// FrameTotal sums every hand of one frame.
type FrameTotal struct {
	FrameIndex int `json:"frame_index"`
	Raw        int `json:"raw"`
	Smoothed   int `json:"smoothed"`
}

// CountRepository stores per-frame finger counts.
type CountRepository struct {
	db *sql.DB
}

// Counts returns the count repository for this store.
func (s *Store) Counts() *CountRepository {
	return &CountRepository{db: s.db}
}

// Record stores a frame and all of its hands in one transaction. A frame
// with no hands is stored with zero totals.
func (r *CountRepository) Record(sessionID string, frameIndex int, hands []HandRecord) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()

	var raw, smoothed int
	for _, h := range hands {
		raw += h.Raw
		smoothed += h.Smoothed
	}
	if _, err := tx.Exec(
		`INSERT INTO frames (session_id, frame_index, hand_count, total_raw, total_smoothed, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		sessionID, frameIndex, len(hands), raw, smoothed, now,
	); err != nil {
		return err
	}

	if len(hands) == 0 {
		return tx.Commit()
	}

	stmt, err := tx.Prepare(
		`INSERT INTO frame_counts (session_id, frame_index, hand_slot, handedness, states, raw_count, smoothed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, h := range hands {
		if _, err := stmt.Exec(sessionID, frameIndex, h.Slot, h.Handedness, h.States, h.Raw, h.Smoothed, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetBySession retrieves every stored hand of a session in frame order.
func (r *CountRepository) GetBySession(sessionID string) ([]*FrameCount, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, frame_index, hand_slot, handedness, states, raw_count, smoothed_count, created_at
		FROM frame_counts WHERE session_id = ? ORDER BY frame_index, hand_slot`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []*FrameCount
	for rows.Next() {
		c := &FrameCount{}
		if err := rows.Scan(&c.ID, &c.SessionID, &c.FrameIndex, &c.Slot, &c.Handedness,
			&c.States, &c.Raw, &c.Smoothed, &c.CreatedAt); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

// Totals returns the per-frame sums of a session in frame order. Frames with
// no hands are included with zero totals.
func (r *CountRepository) Totals(sessionID string) ([]FrameTotal, error) {
	rows, err := r.db.Query(
		`SELECT frame_index, total_raw, total_smoothed
		FROM frames WHERE session_id = ? ORDER BY frame_index`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var totals []FrameTotal
	for rows.Next() {
		var t FrameTotal
		if err := rows.Scan(&t.FrameIndex, &t.Raw, &t.Smoothed); err != nil {
			return nil, err
		}
		totals = append(totals, t)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return totals, nil
}
