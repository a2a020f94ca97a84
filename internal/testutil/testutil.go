// Package testutil holds fixtures shared by the service, API and MCP tests.
package testutil

import (
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/starford/slidesmith/internal/index"
	"github.com/starford/slidesmith/internal/storage"
)

// AssetsDir is the store subdirectory test environments keep assets in.
const AssetsDir = "assets"

// SampleText is a two-slide deck whose second slide carries one layout
// directive in its body.
const SampleText = "=== SLIDE ===\nSlide Type: roi\nTitle: Year One\nBody Content:\nRevenue grows 20%\nKey Data Highlights:\nNet ROI: 340%\n" +
	"=== SLIDE ===\nTitle: Plan\nBody Content:\nUse a two-column layout\nExpand to new markets"

// PixelPNG is a base64 1x1 transparent PNG.
const PixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// PixelDataURI is PixelPNG as a data URI.
const PixelDataURI = "data:image/png;base64," + PixelPNG

// TestDB opens a catalogue in the test's temp dir, closed on cleanup.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(filepath.Join(t.TempDir(), "slidesmith.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestStore returns a temp deck store that leaves AssetsDir out of listings.
func TestStore(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir, storage.WithExclude(AssetsDir))
	if err != nil {
		t.Fatal(err)
	}
	return dir, store
}

// QuietLogger discards everything.
func QuietLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
