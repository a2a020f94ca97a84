//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS decks_fts USING fts5(
			id UNINDEXED,
			title,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsUpsert(tx *sql.Tx, id, title, body string) error {
	ftsDelete(tx, id)
	if _, err := tx.Exec(`INSERT INTO decks_fts (id, title, body) VALUES (?, ?, ?)`, id, title, body); err != nil {
		return fmt.Errorf("index: upsert fts: %w", err)
	}
	return nil
}

func ftsDelete(tx *sql.Tx, id string) {
	_, _ = tx.Exec(`DELETE FROM decks_fts WHERE id = ?`, id)
}

// matchExpr quotes every term so user input never reaches the FTS5 query
// syntax. Terms are ANDed.
func matchExpr(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

func searchStatement(query string, limit int) (string, []any) {
	return `
		SELECT id, title, snippet(decks_fts, 2, '<b>', '</b>', '...', 64)
		FROM decks_fts
		WHERE decks_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, []any{matchExpr(query), limit}
}
