package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Snapshot is an approved, immutable copy of a deck.
type Snapshot struct {
	DeckID     string    `json:"deckId"`
	Version    int       `json:"version"`
	Checksum   string    `json:"checksum"`
	ApprovedAt time.Time `json:"approvedAt"`
	// Data is the deck JSON; ListSnapshots leaves it empty.
	Data []byte `json:"-"`
}

// InsertSnapshot stores data as the next version for deckID and returns
// that version number.
func (db *DB) InsertSnapshot(deckID, checksum string, data []byte, at time.Time) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var version int
	if err := tx.QueryRow(`SELECT COALESCE(MAX(version), 0) + 1 FROM snapshots WHERE deck_id = ?`, deckID).Scan(&version); err != nil {
		return 0, fmt.Errorf("index: next snapshot version: %w", err)
	}
	if _, err := tx.Exec(`
		INSERT INTO snapshots (deck_id, version, checksum, data, approved_at) VALUES (?, ?, ?, ?, ?)
	`, deckID, version, checksum, string(data), at); err != nil {
		return 0, fmt.Errorf("index: insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("index: commit snapshot: %w", err)
	}
	return version, nil
}

// LatestSnapshot returns the highest version for deckID, or ErrNoRow.
func (db *DB) LatestSnapshot(deckID string) (*Snapshot, error) {
	s := Snapshot{DeckID: deckID}
	var data string
	err := db.conn.QueryRow(`
		SELECT version, checksum, data, approved_at FROM snapshots
		WHERE deck_id = ? ORDER BY version DESC LIMIT 1
	`, deckID).Scan(&s.Version, &s.Checksum, &data, &s.ApprovedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRow
	}
	if err != nil {
		return nil, fmt.Errorf("index: latest snapshot: %w", err)
	}
	s.Data = []byte(data)
	return &s, nil
}

// ListSnapshots returns every snapshot of deckID, oldest first, without data.
func (db *DB) ListSnapshots(deckID string) ([]Snapshot, error) {
	rows, err := db.conn.Query(`
		SELECT version, checksum, approved_at FROM snapshots WHERE deck_id = ? ORDER BY version
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("index: list snapshots: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		s := Snapshot{DeckID: deckID}
		if err := rows.Scan(&s.Version, &s.Checksum, &s.ApprovedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
