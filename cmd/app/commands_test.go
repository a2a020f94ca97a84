package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/slidesmith/internal/importer"
	"github.com/starford/slidesmith/internal/theme"
)

const sampleText = "=== SLIDE ===\nSlide Type: roi\nTitle: Year One\nBody Content:\nRevenue grows 20%\nKey Data Highlights:\nNet ROI: 340%\n" +
	"=== SLIDE ===\nTitle: Plan\nBody Content:\nUse a two-column layout\nExpand to new markets"

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	var buf bytes.Buffer
	if err := importFile(&buf, writeTemp(t, "deck.txt", sampleText), nil); err != nil {
		t.Fatalf("importFile: %v", err)
	}
	var res importer.Result
	if err := json.Unmarshal(buf.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(res.Deck.Slides) != 2 || res.Deck.Slides[0].Title != "Year One" {
		t.Errorf("deck = %+v", res.Deck)
	}
	if res.Warnings == nil {
		t.Error("warnings should encode as an array")
	}
}

func TestLintFile(t *testing.T) {
	var buf bytes.Buffer
	n, err := lintFile(&buf, writeTemp(t, "deck.txt", sampleText))
	if err != nil {
		t.Fatalf("lintFile: %v", err)
	}
	if n != 1 || !strings.HasPrefix(buf.String(), "slide 2 body[0]:") {
		t.Errorf("n = %d, out = %q", n, buf.String())
	}

	buf.Reset()
	n, _ = lintFile(&buf, writeTemp(t, "clean.txt", "=== SLIDE ===\nTitle: Clean\nBody Content:\nJust facts"))
	if n != 0 || buf.Len() != 0 {
		t.Errorf("clean deck: n = %d, out = %q", n, buf.String())
	}
}

func TestExportFile(t *testing.T) {
	var imported bytes.Buffer
	if err := importFile(&imported, writeTemp(t, "deck.txt", sampleText), nil); err != nil {
		t.Fatal(err)
	}
	var res importer.Result
	_ = json.Unmarshal(imported.Bytes(), &res)
	deckJSON, _ := json.Marshal(res.Deck)
	path := writeTemp(t, "deck.json", string(deckJSON))

	var buf bytes.Buffer
	if err := exportFile(&buf, path, ""); err != nil {
		t.Fatalf("export text: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "=== DECK METADATA ===") || !strings.Contains(buf.String(), "Title: Plan") {
		t.Errorf("text export = %q", buf.String())
	}

	buf.Reset()
	if err := exportFile(&buf, path, formatYAML); err != nil {
		t.Fatalf("export yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "title: Year One") {
		t.Errorf("yaml export = %q", buf.String())
	}

	if err := exportFile(&buf, path, "pdf"); err == nil {
		t.Error("unknown format should fail")
	}
}

func TestMissingFile(t *testing.T) {
	if err := importFile(&bytes.Buffer{}, "", nil); !errors.Is(err, errNoFile) {
		t.Errorf("err = %v", err)
	}
	if _, err := lintFile(&bytes.Buffer{}, filepath.Join(t.TempDir(), "nope.txt")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v", err)
	}
}

func TestImportThemes(t *testing.T) {
	themes, err := importThemes(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("missing config: %v", err)
	}
	if themes.DefaultID() != theme.MonoGradientV1 {
		t.Errorf("default = %q", themes.DefaultID())
	}

	// Server-only sections are not validated here.
	path := writeTemp(t, "config.yaml", "auth:\n  mode: token\nimport:\n  default_theme: pure-minimal\n")
	themes, err = importThemes(path)
	if err != nil {
		t.Fatalf("importThemes: %v", err)
	}
	if themes.DefaultID() != theme.PureMinimal {
		t.Errorf("default = %q", themes.DefaultID())
	}

	path = writeTemp(t, "bad.yaml", "import:\n  default_theme: neon\n")
	if _, err := importThemes(path); err == nil {
		t.Error("unknown theme should fail")
	}
}
