// Package testdata provides recorded hand landmark fixtures for tests.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/ayusman/fingercount/internal/detector"
)

//go:embed hands/*.json
var handsFS embed.FS

// LoadHand loads a landmark fixture by name, without the .json extension.
func LoadHand(name string) (detector.HandLandmarks, error) {
	var hand detector.HandLandmarks

	data, err := handsFS.ReadFile("hands/" + name + ".json")
	if err != nil {
		return hand, fmt.Errorf("load hand %s: %w", name, err)
	}

	if err := json.Unmarshal(data, &hand); err != nil {
		return hand, fmt.Errorf("decode hand %s: %w", name, err)
	}

	return hand, nil
}

// HandNames lists the available fixtures.
func HandNames() ([]string, error) {
	entries, err := fs.ReadDir(handsFS, "hands")
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	return names, nil
}
