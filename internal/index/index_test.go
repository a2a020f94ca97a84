package index

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/starford/slidesmith/internal/storage"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "slidesmith-test.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

const deckJSON = `{
  "deckStyleId": "pure-minimal",
  "slides": [
    {"id": "s1", "type": "roi", "title": "Year One", "body": ["Revenue grows 20%"], "keyData": ["Net ROI: 340%"],
     "visuals": [{"kind": "diagram", "diagramId": "d1", "placement": "left"},
                 {"kind": "diagram", "diagramId": "ghost", "placement": "right"}]},
    {"id": "s2", "type": "generic", "title": "Close", "body": ["Thanks"],
     "visuals": [{"kind": "diagram", "diagramId": "d1", "placement": "center"}]}
  ],
  "diagrams": [{"id": "d1", "type": "flywheel", "spec": {}}]
}`

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	for _, table := range []string{"decks", "diagram_refs", "snapshots"} {
		var count int
		if err := db.conn.QueryRow(`SELECT count(*) FROM ` + table).Scan(&count); err != nil {
			t.Fatalf("%s table missing: %v", table, err)
		}
	}
}

func TestUpsertAndGetChecksum(t *testing.T) {
	db := testDB(t)
	row := DeckRow{ID: "q3", Title: "Q3 Review", Theme: "pure-minimal", SlideCount: 4, Checksum: "abc123", UpdatedAt: time.Now()}
	if err := db.UpsertDeck(row, "Q3 Review\nRevenue up", nil); err != nil {
		t.Fatalf("UpsertDeck: %v", err)
	}
	cs, err := db.GetChecksum("q3")
	if err != nil {
		t.Fatalf("GetChecksum: %v", err)
	}
	if cs != "abc123" {
		t.Errorf("checksum = %q, want %q", cs, "abc123")
	}
	got, err := db.GetDeck("q3")
	if err != nil {
		t.Fatalf("GetDeck: %v", err)
	}
	if got.Title != "Q3 Review" || got.SlideCount != 4 || got.Theme != "pure-minimal" {
		t.Errorf("row = %+v", got)
	}
	if _, err := db.GetDeck("missing"); !errors.Is(err, ErrNoRow) {
		t.Errorf("missing deck err = %v", err)
	}
}

func TestNewDocument(t *testing.T) {
	db := testDB(t)
	if err := indexFile(db, "acme.json", []byte(deckJSON)); err != nil {
		t.Fatalf("indexFile: %v", err)
	}

	row, err := db.GetDeck("acme")
	if err != nil {
		t.Fatalf("GetDeck: %v", err)
	}
	if row.Title != "Year One" || row.SlideCount != 2 || row.Theme != "pure-minimal" {
		t.Errorf("row = %+v", row)
	}

	usage, err := db.DiagramUsage("acme", "d1")
	if err != nil {
		t.Fatalf("DiagramUsage: %v", err)
	}
	if len(usage) != 2 {
		t.Errorf("usage = %v", usage)
	}

	dangling, err := db.DanglingRefs("acme")
	if err != nil {
		t.Fatalf("DanglingRefs: %v", err)
	}
	if len(dangling) != 1 || dangling[0].DiagramID != "ghost" || dangling[0].SlideID != "s1" {
		t.Errorf("dangling = %+v", dangling)
	}
}

func TestDeleteDeck(t *testing.T) {
	db := testDB(t)
	_ = indexFile(db, "gone.json", []byte(deckJSON))
	_, _ = db.InsertSnapshot("gone", "x", []byte("{}"), time.Now())

	if err := db.DeleteDeck("gone"); err != nil {
		t.Fatalf("DeleteDeck: %v", err)
	}
	if cs, _ := db.GetChecksum("gone"); cs != "" {
		t.Error("deck row should be gone")
	}
	if usage, _ := db.DiagramUsage("gone", "d1"); len(usage) != 0 {
		t.Errorf("refs should be gone: %v", usage)
	}
	if _, err := db.LatestSnapshot("gone"); !errors.Is(err, ErrNoRow) {
		t.Errorf("snapshots should be gone: %v", err)
	}
}

func TestListDecks(t *testing.T) {
	db := testDB(t)
	base := time.Now()
	for i, title := range []string{"Charlie", "alpha", "Bravo"} {
		_ = db.UpsertDeck(DeckRow{ID: string(rune('a' + i)), Title: title, UpdatedAt: base.Add(time.Duration(i) * time.Minute)}, "", nil)
	}

	rows, total, err := db.ListDecks(2, 0, "title")
	if err != nil {
		t.Fatalf("ListDecks: %v", err)
	}
	if total != 3 || len(rows) != 2 || rows[0].Title != "alpha" || rows[1].Title != "Bravo" {
		t.Errorf("rows = %+v total = %d", rows, total)
	}

	rows, _, _ = db.ListDecks(10, 0, "")
	if len(rows) != 3 || rows[0].Title != "Bravo" {
		t.Errorf("default order should be newest first: %+v", rows)
	}

	if _, _, err := db.ListDecks(10, 0, "size"); err == nil {
		t.Error("unknown sort accepted")
	}
}

func TestSearch(t *testing.T) {
	db := testDB(t)
	_ = indexFile(db, "acme.json", []byte(deckJSON))

	results, err := db.Search(context.Background(), "Revenue", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "acme" || results[0].Title != "Year One" {
		t.Errorf("results = %+v", results)
	}

	results, err = db.Search(context.Background(), "   ", 10)
	if err != nil || results == nil || len(results) != 0 {
		t.Errorf("blank query: %+v, %v", results, err)
	}
}

func TestSnapshots(t *testing.T) {
	db := testDB(t)
	at := time.Now()
	v1, err := db.InsertSnapshot("acme", "c1", []byte(`{"v":1}`), at)
	if err != nil {
		t.Fatalf("InsertSnapshot: %v", err)
	}
	v2, _ := db.InsertSnapshot("acme", "c2", []byte(`{"v":2}`), at.Add(time.Second))
	other, _ := db.InsertSnapshot("other", "o1", []byte(`{}`), at)
	if v1 != 1 || v2 != 2 || other != 1 {
		t.Errorf("versions = %d %d %d", v1, v2, other)
	}

	latest, err := db.LatestSnapshot("acme")
	if err != nil {
		t.Fatalf("LatestSnapshot: %v", err)
	}
	if latest.Version != 2 || latest.Checksum != "c2" || string(latest.Data) != `{"v":2}` {
		t.Errorf("latest = %+v", latest)
	}

	list, err := db.ListSnapshots("acme")
	if err != nil {
		t.Fatalf("ListSnapshots: %v", err)
	}
	if len(list) != 2 || list[0].Version != 1 || list[1].Data != nil {
		t.Errorf("list = %+v", list)
	}
}

func TestDeckID(t *testing.T) {
	cases := map[string]struct {
		id string
		ok bool
	}{
		"acme.json":        {"acme", true},
		"assets/logo.json": {"", false},
		"notes.txt":        {"", false},
		".json":            {"", false},
	}
	for in, want := range cases {
		id, ok := DeckID(in)
		if id != want.id || ok != want.ok {
			t.Errorf("DeckID(%q) = %q, %v", in, id, ok)
		}
	}
	if DeckPath("acme") != "acme.json" {
		t.Error("DeckPath mismatch")
	}
}

func TestSync(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir, storage.WithExclude("assets"))
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)

	_ = store.Write("acme.json", []byte(deckJSON))
	_ = store.Write("broken.json", []byte("{not json"))
	_ = db.UpsertDeck(DeckRow{ID: "stale", Checksum: "s", UpdatedAt: time.Now()}, "", nil)

	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("acme"); cs == "" {
		t.Error("acme not indexed")
	}
	if cs, _ := db.GetChecksum("broken"); cs != "" {
		t.Error("undecodable deck should be skipped")
	}
	if cs, _ := db.GetChecksum("stale"); cs != "" {
		t.Error("stale row not removed")
	}

	_ = os.Remove(filepath.Join(dir, "acme.json"))
	if err := Sync(db, store, quietLogger()); err != nil {
		t.Fatalf("second Sync: %v", err)
	}
	if cs, _ := db.GetChecksum("acme"); cs != "" {
		t.Error("removed deck still indexed")
	}
}

func TestReconcile_Stats(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	db := testDB(t)
	_ = store.Write("acme.json", []byte(deckJSON))
	_ = store.Write("broken.json", []byte("{"))
	_ = db.UpsertDeck(DeckRow{ID: "stale", Checksum: "s", UpdatedAt: time.Now()}, "", nil)

	var kinds []string
	stats, err := reconcile(db, store, quietLogger(), func(kind, id string) { kinds = append(kinds, kind+":"+id) })
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if stats != (SyncStats{Indexed: 1, Removed: 1, Failed: 1}) {
		t.Errorf("stats = %+v", stats)
	}
	if len(kinds) != 2 || kinds[0] != "created:acme" || kinds[1] != "deleted:stale" {
		t.Errorf("kinds = %v", kinds)
	}

	stats, _ = reconcile(db, store, quietLogger(), nil)
	if stats.Indexed != 0 || stats.Removed != 0 {
		t.Errorf("second pass should be a no-op: %+v", stats)
	}
}
