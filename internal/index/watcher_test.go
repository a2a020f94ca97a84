package index

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/slidesmith/internal/storage"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) record(kind, id string) {
	r.mu.Lock()
	r.events = append(r.events, kind+":"+id)
	r.mu.Unlock()
}

func (r *recorder) has(e string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Contains(r.events, e)
}

func watcherTestEnv(t *testing.T) (string, *storage.FS, *DB) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, store, testDB(t)
}

// eventually polls fn until it returns true or timeout elapses.
func eventually(t *testing.T, timeout time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Error(msg)
}

func startWatch(t *testing.T, dir string, store storage.Provider, db *DB, cb EventCallback) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go Watch(ctx, db, store, dir, quietLogger(), cb)
	time.Sleep(100 * time.Millisecond)
}

func TestDeckWatcher_RefreshKinds(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	rec := &recorder{}
	dw := &deckWatcher{db: db, store: store, logger: quietLogger(), cb: rec.record, dirty: map[string]struct{}{}}

	_ = os.WriteFile(filepath.Join(dir, "acme.json"), []byte(deckJSON), 0o644)
	dw.refresh("acme")
	dw.refresh("acme") // unchanged bytes
	_ = os.WriteFile(filepath.Join(dir, "acme.json"), []byte(`{"slides":[{"id":"x","type":"generic","title":"New","body":[]}]}`), 0o644)
	dw.refresh("acme")
	_ = os.Remove(filepath.Join(dir, "acme.json"))
	dw.refresh("acme")
	dw.refresh("never-existed")

	want := []string{"created:acme", "updated:acme", "deleted:acme"}
	if !slices.Equal(rec.events, want) {
		t.Errorf("events = %v, want %v", rec.events, want)
	}
}

func TestDeckWatcher_Observe(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	dw := &deckWatcher{db: db, store: store, logger: quietLogger(), dirty: map[string]struct{}{}}

	cases := []struct {
		name string
		op   fsnotify.Op
		want bool
	}{
		{"deck.json", fsnotify.Write, true},
		{".deck.json.tmp", fsnotify.Create, false},
		{"notes.txt", fsnotify.Create, false},
		{filepath.Join("assets", "a.json"), fsnotify.Create, false},
	}
	for _, c := range cases {
		if got := dw.observe(dir, fsnotify.Event{Name: filepath.Join(dir, c.name), Op: c.op}); got != c.want {
			t.Errorf("observe(%s) = %v", c.name, got)
		}
	}
	if dw.reconcile {
		t.Error("no rename seen yet")
	}
	dw.observe(dir, fsnotify.Event{Name: filepath.Join(dir, "old.json"), Op: fsnotify.Rename})
	if !dw.reconcile || len(dw.dirty) != 2 {
		t.Errorf("reconcile = %v, dirty = %v", dw.reconcile, dw.dirty)
	}

	dw.flush()
	if dw.reconcile || len(dw.dirty) != 0 {
		t.Error("flush should reset state")
	}
}

func TestWatcher_NewFileIndexed(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	rec := &recorder{}
	startWatch(t, dir, store, db, rec.record)

	_ = os.WriteFile(filepath.Join(dir, "new.json"), []byte(deckJSON), 0o644)

	eventually(t, 5*time.Second, func() bool {
		cs, _ := db.GetChecksum("new")
		return cs != ""
	}, "new deck not indexed by watcher")
	eventually(t, 2*time.Second, func() bool { return rec.has("created:new") }, "expected created:new")
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	startWatch(t, dir, store, db, nil)

	_ = os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644)
	_ = os.WriteFile(filepath.Join(dir, "real.json"), []byte(deckJSON), 0o644)

	eventually(t, 5*time.Second, func() bool {
		cs, _ := db.GetChecksum("real")
		return cs != ""
	}, "deck not indexed")

	sums, _ := db.AllChecksums()
	if len(sums) != 1 {
		t.Errorf("only the deck should be indexed: %v", sums)
	}
}

func TestWatcher_DeleteRemovesFromIndex(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "del.json"), []byte(deckJSON), 0o644)
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	startWatch(t, dir, store, db, rec.record)

	_ = os.Remove(filepath.Join(dir, "del.json"))

	eventually(t, 5*time.Second, func() bool { return rec.has("deleted:del") }, "expected deleted:del")
	if cs, _ := db.GetChecksum("del"); cs != "" {
		t.Error("deleted deck still in index")
	}
}

func TestWatcher_RenameReconciles(t *testing.T) {
	dir, store, db := watcherTestEnv(t)
	_ = os.WriteFile(filepath.Join(dir, "old.json"), []byte(deckJSON), 0o644)
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatal(err)
	}
	startWatch(t, dir, store, db, nil)

	_ = os.Rename(filepath.Join(dir, "old.json"), filepath.Join(dir, "renamed.json"))

	eventually(t, 5*time.Second, func() bool {
		oldCS, _ := db.GetChecksum("old")
		newCS, _ := db.GetChecksum("renamed")
		return oldCS == "" && newCS != ""
	}, "old deck should be removed and renamed deck indexed")
}
