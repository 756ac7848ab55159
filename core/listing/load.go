package listing

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// File is the on-disk form of an extracted listing: the snapshot sections
// plus the raw section lines the extractor preserved (CATEGORY and friends).
type File struct {
	Title        map[string]string   `yaml:"title"`
	Specifics    map[string]string   `yaml:"specifics"`
	Metadata     map[string]string   `yaml:"metadata"`
	TableShared  map[string]string   `yaml:"table_shared"`
	TableEntries []map[string]string `yaml:"table_entries"`
	Sections     map[string][]string `yaml:"sections"`
}

// Load reads an extracted listing snapshot from a YAML (or JSON) file.
// The file holds already-extracted views; no extraction happens here.
func Load(path string) (Snapshot, map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, nil, fmt.Errorf("failed to read snapshot %s: %w", path, err)
	}

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return Snapshot{}, nil, fmt.Errorf("failed to parse snapshot %s: %w", path, err)
	}

	snap := Snapshot{
		Title:        f.Title,
		Specifics:    f.Specifics,
		Metadata:     f.Metadata,
		TableShared:  f.TableShared,
		TableEntries: f.TableEntries,
	}
	return snap, f.Sections, nil
}
