package retrieval

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// SplitSeed splits a seed file holding a YAML list of examples into one
// <id>.yaml file per example under outDir. Entries without an id are skipped.
// Returns the written paths in seed order.
func SplitSeed(seedPath, outDir string) ([]string, error) {
	data, err := os.ReadFile(seedPath)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var entries []yaml.Node
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var written []string
	for i := range entries {
		entry := &entries[i]

		var head struct {
			ID string `yaml:"id"`
		}
		if err := entry.Decode(&head); err != nil {
			return nil, fmt.Errorf("seed entry %d: %w", i, err)
		}
		if head.ID == "" {
			continue
		}

		// Re-encoding the node keeps the original key order.
		out, err := yaml.Marshal(entry)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", head.ID, err)
		}

		path := filepath.Join(outDir, head.ID+".yaml")
		if err := os.WriteFile(path, out, 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}
