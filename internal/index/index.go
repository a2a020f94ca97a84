package index

import (
	"context"
	"time"
)

// DeckIndex defines the catalogue operations the service depends on.
type DeckIndex interface {
	UpsertDeck(d DeckRow, body string, refs []DiagramRef) error
	DeleteDeck(id string) error
	GetChecksum(id string) (string, error)
	GetDeck(id string) (*DeckRow, error)
	ListDecks(limit, offset int, sort string) ([]DeckRow, int, error)
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
	DiagramUsage(deckID, diagramID string) ([]string, error)
	DanglingRefs(deckID string) ([]DiagramRef, error)
	AllChecksums() (map[string]string, error)
	InsertSnapshot(deckID, checksum string, data []byte, at time.Time) (int, error)
	LatestSnapshot(deckID string) (*Snapshot, error)
	ListSnapshots(deckID string) ([]Snapshot, error)
	Close() error
}

// Verify *DB satisfies DeckIndex at compile time.
var _ DeckIndex = (*DB)(nil)
