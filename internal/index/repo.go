package index

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DeckRow represents a row in the decks table.
type DeckRow struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Theme      string    `json:"theme"`
	SlideCount int       `json:"slideCount"`
	Checksum   string    `json:"checksum"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// DiagramRef is one slide-to-diagram reference. Resolved is false when the
// deck has no diagram with that id.
type DiagramRef struct {
	SlideID   string `json:"slideId"`
	DiagramID string `json:"diagramId"`
	Resolved  bool   `json:"resolved"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// ErrNoRow is returned by single-row lookups that find nothing.
var ErrNoRow = errors.New("index: no row")

// UpsertDeck inserts or replaces a deck row, its FTS entry and its diagram
// references within a transaction.
func (db *DB) UpsertDeck(d DeckRow, body string, refs []DiagramRef) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	_, err = tx.Exec(`
		INSERT INTO decks (id, title, theme, slide_count, checksum, body, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			theme       = excluded.theme,
			slide_count = excluded.slide_count,
			checksum    = excluded.checksum,
			body        = excluded.body,
			updated_at  = excluded.updated_at
	`, d.ID, d.Title, d.Theme, d.SlideCount, d.Checksum, body, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("index: upsert deck: %w", err)
	}

	if err := ftsUpsert(tx, d.ID, d.Title, body); err != nil {
		return err
	}

	_, _ = tx.Exec(`DELETE FROM diagram_refs WHERE deck_id = ?`, d.ID)
	if len(refs) > 0 {
		stmt, err := tx.Prepare(`INSERT OR IGNORE INTO diagram_refs (deck_id, slide_id, diagram_id, resolved) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("index: prepare ref insert: %w", err)
		}
		defer stmt.Close()
		for _, r := range refs {
			if _, err := stmt.Exec(d.ID, r.SlideID, r.DiagramID, r.Resolved); err != nil {
				return fmt.Errorf("index: insert ref: %w", err)
			}
		}
	}

	return tx.Commit()
}

// DeleteDeck removes a deck, its FTS entry, references and snapshots.
func (db *DB) DeleteDeck(id string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	ftsDelete(tx, id)
	_, _ = tx.Exec(`DELETE FROM diagram_refs WHERE deck_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM snapshots WHERE deck_id = ?`, id)
	_, _ = tx.Exec(`DELETE FROM decks WHERE id = ?`, id)

	return tx.Commit()
}

// GetChecksum returns the stored checksum for a deck, or empty string if not found.
func (db *DB) GetChecksum(id string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM decks WHERE id = ?`, id).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// GetDeck returns one catalogue row or ErrNoRow.
func (db *DB) GetDeck(id string) (*DeckRow, error) {
	var d DeckRow
	err := db.conn.QueryRow(`
		SELECT id, title, theme, slide_count, checksum, updated_at FROM decks WHERE id = ?
	`, id).Scan(&d.ID, &d.Title, &d.Theme, &d.SlideCount, &d.Checksum, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoRow
	}
	if err != nil {
		return nil, fmt.Errorf("index: get deck: %w", err)
	}
	return &d, nil
}

var listOrder = map[string]string{
	"":        "updated_at DESC",
	"updated": "updated_at DESC",
	"title":   "title COLLATE NOCASE ASC",
	"id":      "id ASC",
}

// ListDecks returns a page of catalogue rows and the total row count.
// sort is one of "updated" (default), "title" or "id".
func (db *DB) ListDecks(limit, offset int, sort string) ([]DeckRow, int, error) {
	order, ok := listOrder[sort]
	if !ok {
		return nil, 0, fmt.Errorf("index: unknown sort %q", sort)
	}
	if limit <= 0 {
		limit = 50
	}

	var total int
	if err := db.conn.QueryRow(`SELECT count(*) FROM decks`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("index: count decks: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT id, title, theme, slide_count, checksum, updated_at
		FROM decks ORDER BY `+order+` LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("index: list decks: %w", err)
	}
	defer rows.Close()

	var out []DeckRow
	for rows.Next() {
		var d DeckRow
		if err := rows.Scan(&d.ID, &d.Title, &d.Theme, &d.SlideCount, &d.Checksum, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, d)
	}
	return out, total, rows.Err()
}

// AllChecksums returns the checksum of every indexed deck keyed by id.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT id, checksum FROM decks`)
	if err != nil {
		return nil, fmt.Errorf("index: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var id, cs string
		if err := rows.Scan(&id, &cs); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

// DiagramUsage returns the ids of the slides in deckID that reference diagramID.
func (db *DB) DiagramUsage(deckID, diagramID string) ([]string, error) {
	rows, err := db.conn.Query(`
		SELECT slide_id FROM diagram_refs WHERE deck_id = ? AND diagram_id = ?
	`, deckID, diagramID)
	if err != nil {
		return nil, fmt.Errorf("index: diagram usage: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// DanglingRefs returns references in deckID whose diagram does not exist.
func (db *DB) DanglingRefs(deckID string) ([]DiagramRef, error) {
	rows, err := db.conn.Query(`
		SELECT slide_id, diagram_id FROM diagram_refs WHERE deck_id = ? AND resolved = 0
	`, deckID)
	if err != nil {
		return nil, fmt.Errorf("index: dangling refs: %w", err)
	}
	defer rows.Close()

	var out []DiagramRef
	for rows.Next() {
		r := DiagramRef{}
		if err := rows.Scan(&r.SlideID, &r.DiagramID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
