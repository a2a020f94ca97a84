package exporter

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/starford/slidesmith/internal/models"
)

// ExportYAML renders the deck as YAML with the same field names and order as
// its JSON form.
func ExportYAML(deck *models.StructuredSlideDeck) ([]byte, error) {
	data, err := json.Marshal(deck)
	if err != nil {
		return nil, fmt.Errorf("exporter: marshal deck: %w", err)
	}
	// JSON is YAML; decoding into a node keeps key order.
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("exporter: decode deck: %w", err)
	}
	blockStyle(&doc)
	out, err := yaml.Marshal(&doc)
	if err != nil {
		return nil, fmt.Errorf("exporter: encode yaml: %w", err)
	}
	return out, nil
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}
