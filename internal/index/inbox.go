package index

import (
	"context"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/slidesmith/internal/storage"
)

// inboxDelay lets a file finish being written before it is imported.
const inboxDelay = 300 * time.Millisecond

// InboxImporter imports a dropped text file into the deck with the given id.
type InboxImporter interface {
	ImportInbox(ctx context.Context, deckID, text string) error
}

// Inbox imports slide text files dropped into a directory and moves each
// imported file into a processed subdirectory.
type Inbox struct {
	store     storage.Provider
	root      string
	processed string
	ext       string
	importer  InboxImporter
	logger    *slog.Logger
}

// NewInbox creates an Inbox over store (rooted at root). Files with ext are
// imported; processed names the subdirectory they are moved to.
func NewInbox(store storage.Provider, root, processed, ext string, importer InboxImporter, logger *slog.Logger) *Inbox {
	return &Inbox{store: store, root: root, processed: processed, ext: ext, importer: importer, logger: logger}
}

// Drain imports every file currently waiting in the inbox.
func (in *Inbox) Drain(ctx context.Context) {
	metas, err := in.store.List("")
	if err != nil {
		in.logger.Warn("inbox: list failed", slog.String("error", err.Error()))
		return
	}
	for _, m := range metas {
		in.process(ctx, m.Path)
	}
}

// Watch drains the inbox, then imports new files as they appear until ctx
// is cancelled.
func (in *Inbox) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(in.root); err != nil {
		return err
	}
	in.logger.Info("inbox: started", slog.String("root", in.root))
	in.Drain(ctx)

	pending := make(map[string]struct{})
	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			in.logger.Info("inbox: stopped")
			return nil

		case <-timerCh:
			for p := range pending {
				in.process(ctx, p)
			}
			clear(pending)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			rel, relErr := filepath.Rel(in.root, ev.Name)
			if relErr != nil || !in.accepts(rel) {
				continue
			}
			pending[filepath.ToSlash(rel)] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(inboxDelay)
				timerCh = timer.C
			} else {
				timer.Reset(inboxDelay)
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			in.logger.Error("inbox: error", slog.String("error", watchErr.Error()))
		}
	}
}

func (in *Inbox) accepts(rel string) bool {
	rel = filepath.ToSlash(rel)
	base := path.Base(rel)
	return path.Dir(rel) == "." && !strings.HasPrefix(base, ".") && strings.HasSuffix(base, in.ext)
}

func (in *Inbox) process(ctx context.Context, rel string) {
	if !in.accepts(rel) {
		return
	}
	data, err := in.store.Read(rel)
	if err != nil {
		// Already moved by an earlier pass.
		return
	}
	id := strings.TrimSuffix(path.Base(rel), in.ext)
	if err := in.importer.ImportInbox(ctx, id, string(data)); err != nil {
		in.logger.Warn("inbox: import failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	if err := in.store.Move(rel, path.Join(in.processed, path.Base(rel))); err != nil {
		in.logger.Warn("inbox: move failed", slog.String("path", rel), slog.String("error", err.Error()))
		return
	}
	in.logger.Info("inbox: imported", slog.String("path", rel), slog.String("deck", id))
}
