package index

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/slidesmith/internal/checksum"
	"github.com/starford/slidesmith/internal/sse"
	"github.com/starford/slidesmith/internal/storage"
)

// settleDelay batches bursts of events (editors often write a file several
// times, or write a temp file and rename it over the original).
const settleDelay = 200 * time.Millisecond

// EventCallback is called after a watcher-driven catalogue change with one
// of the sse.Kind* values.
type EventCallback func(kind string, deckID string)

type deckWatcher struct {
	db     *DB
	store  storage.Provider
	logger *slog.Logger
	cb     EventCallback

	dirty     map[string]struct{}
	reconcile bool
}

// Watch keeps the catalogue in step with deck files edited outside the
// service until ctx is cancelled. Changed deck ids are collected until the
// directory has been quiet for settleDelay, then each one is re-read. A
// rename anywhere forces a full reconciliation, since fsnotify only
// reports the old name.
func Watch(ctx context.Context, db *DB, store storage.Provider, root string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(root); err != nil {
		return err
	}
	logger.Info("watcher: started", slog.String("root", root))

	dw := &deckWatcher{db: db, store: store, logger: logger, cb: cb, dirty: make(map[string]struct{})}
	timer := time.NewTimer(settleDelay)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			logger.Info("watcher: stopped")
			return nil

		case <-timer.C:
			dw.flush()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if dw.observe(root, ev) {
				timer.Reset(settleDelay)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// observe records ev and reports whether it concerns a deck file.
func (dw *deckWatcher) observe(root string, ev fsnotify.Event) bool {
	rel, err := filepath.Rel(root, ev.Name)
	if err != nil || strings.HasPrefix(filepath.Base(rel), ".") {
		return false
	}
	id, ok := DeckID(rel)
	if !ok {
		return false
	}
	if ev.Op&fsnotify.Rename != 0 {
		dw.reconcile = true
	}
	dw.dirty[id] = struct{}{}
	return true
}

func (dw *deckWatcher) flush() {
	defer clear(dw.dirty)
	if dw.reconcile {
		dw.reconcile = false
		if _, err := reconcile(dw.db, dw.store, dw.logger, dw.cb); err != nil {
			dw.logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
		}
		return
	}
	for id := range dw.dirty {
		dw.refresh(id)
	}
}

// refresh re-reads one deck file. Writes made through the service are
// already indexed and match the stored checksum, so they are skipped.
func (dw *deckWatcher) refresh(id string) {
	prev, _ := dw.db.GetChecksum(id)
	p := DeckPath(id)

	data, err := dw.store.Read(p)
	if errors.Is(err, fs.ErrNotExist) {
		if prev == "" {
			return
		}
		if err := dw.db.DeleteDeck(id); err != nil {
			dw.logger.Warn("watcher: delete failed", slog.String("deck", id), slog.String("error", err.Error()))
			return
		}
		dw.logger.Debug("watcher: removed", slog.String("deck", id))
		notify(dw.cb, sse.KindDeleted, id)
		return
	}
	if err != nil {
		dw.logger.Warn("watcher: read failed", slog.String("path", p), slog.String("error", err.Error()))
		return
	}
	if prev == checksum.Sum(data) {
		return
	}
	if err := indexFile(dw.db, p, data); err != nil {
		dw.logger.Warn("watcher: index failed", slog.String("path", p), slog.String("error", err.Error()))
		return
	}
	kind := changeKind(prev != "")
	dw.logger.Debug("watcher: indexed", slog.String("deck", id), slog.String("op", kind))
	notify(dw.cb, kind, id)
}
