//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"strings"
)

// Without FTS5 the decks.body column is scanned with LIKE.
func initFTS(*sql.DB) error { return nil }

func ftsUpsert(*sql.Tx, string, string, string) error { return nil }

func ftsDelete(*sql.Tx, string) {}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern turns free text into a substring pattern; wildcards in the
// query match literally.
func likePattern(query string) string {
	return "%" + likeEscaper.Replace(query) + "%"
}

// Title hits rank above body hits, then newest first.
func searchStatement(query string, limit int) (string, []any) {
	p := likePattern(query)
	return `
		SELECT id, title, substr(body, 1, 200)
		FROM decks
		WHERE title LIKE ? ESCAPE '\' OR body LIKE ? ESCAPE '\'
		ORDER BY (title LIKE ? ESCAPE '\') DESC, updated_at DESC
		LIMIT ?
	`, []any{p, p, p, limit}
}
