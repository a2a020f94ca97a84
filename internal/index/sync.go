package index

import (
	"log/slog"

	"github.com/starford/slidesmith/internal/sse"
	"github.com/starford/slidesmith/internal/storage"
)

// SyncStats counts what a reconciliation pass changed.
type SyncStats struct {
	Indexed int
	Removed int
	Failed  int
}

// Sync brings the catalogue in line with the deck files on disk. Files
// that cannot be read or decoded are logged and skipped.
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	stats, err := reconcile(db, store, logger, nil)
	if err != nil {
		return err
	}
	logger.Info("sync: done",
		slog.Int("indexed", stats.Indexed),
		slog.Int("removed", stats.Removed),
		slog.Int("failed", stats.Failed))
	return nil
}

// reconcile indexes files whose checksum differs from the catalogue and
// drops rows without a file, reporting each change to cb.
func reconcile(db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) (SyncStats, error) {
	var stats SyncStats

	known, err := db.AllChecksums()
	if err != nil {
		return stats, err
	}
	metas, err := store.List("")
	if err != nil {
		return stats, err
	}

	onDisk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		id, ok := DeckID(m.Path)
		if !ok {
			continue
		}
		onDisk[id] = struct{}{}

		prev, seen := known[id]
		if prev == m.Checksum {
			continue
		}
		data, err := store.Read(m.Path)
		if err == nil {
			err = indexFile(db, m.Path, data)
		}
		if err != nil {
			stats.Failed++
			logger.Warn("sync: skipped deck", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		stats.Indexed++
		notify(cb, changeKind(seen), id)
	}

	for id := range known {
		if _, ok := onDisk[id]; ok {
			continue
		}
		if err := db.DeleteDeck(id); err != nil {
			stats.Failed++
			logger.Warn("sync: delete failed", slog.String("deck", id), slog.String("error", err.Error()))
			continue
		}
		stats.Removed++
		notify(cb, sse.KindDeleted, id)
	}
	return stats, nil
}

func changeKind(existed bool) string {
	if existed {
		return sse.KindUpdated
	}
	return sse.KindCreated
}

func notify(cb EventCallback, kind, id string) {
	if cb != nil {
		cb(kind, id)
	}
}
