package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/starford/slidesmith/internal/exporter"
	"github.com/starford/slidesmith/internal/importer"
	"github.com/starford/slidesmith/internal/models"
	"github.com/starford/slidesmith/internal/parser"
	"github.com/starford/slidesmith/internal/styling"
	"github.com/starford/slidesmith/internal/theme"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

var errNoFile = errors.New("missing file argument")

func readArg(path string) ([]byte, error) {
	if path == "" {
		return nil, errNoFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// importFile prints the imported deck and its warnings as JSON. A nil
// catalogue uses the built-in themes.
func importFile(w io.Writer, path string, themes *theme.Catalogue) error {
	data, err := readArg(path)
	if err != nil {
		return err
	}
	var opts []importer.Option
	if themes != nil {
		opts = append(opts, importer.WithThemes(themes))
	}
	res := importer.New(opts...).Import(string(data), nil)
	if res.Warnings == nil {
		res.Warnings = []importer.Warning{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// lintFile prints one line per styling violation and returns their count.
func lintFile(w io.Writer, path string) (int, error) {
	data, err := readArg(path)
	if err != nil {
		return 0, err
	}
	violations := styling.DetectViolations(parser.ParseSlides(string(data)))
	for _, v := range violations {
		where := string(v.Field)
		if v.LineIndex != nil {
			where = fmt.Sprintf("%s[%d]", v.Field, *v.LineIndex)
		}
		fmt.Fprintf(w, "slide %d %s: %q (%s)\n", v.SlideNumber, where, v.MatchedText, v.Rule)
	}
	return len(violations), nil
}

// exportFile renders a deck JSON file as slide text or YAML.
func exportFile(w io.Writer, path, format string) error {
	data, err := readArg(path)
	if err != nil {
		return err
	}
	var deck models.StructuredSlideDeck
	if err := json.Unmarshal(data, &deck); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	if err := deck.Validate(); err != nil {
		return fmt.Errorf("invalid deck %s: %w", path, err)
	}

	switch format {
	case "", formatText:
		_, err = io.WriteString(w, exporter.ExportDocument(&deck))
	case formatYAML:
		var out []byte
		if out, err = exporter.ExportYAML(&deck); err == nil {
			_, err = w.Write(out)
		}
	default:
		err = fmt.Errorf("unknown format %q (want text or yaml)", format)
	}
	return err
}
