package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/twinlift/twinlift/internal/model"
)

// WriteGraphExport writes the node/edge artifact for the downstream
// graph-database import step. Returns the artifact path.
func WriteGraphExport(outputDir, baseName string, export *model.GraphExport, backup bool) (string, error) {
	payload, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal graph export: %w", err)
	}

	path := filepath.Join(outputDir, baseName+".graph.json")
	if err := writeArtifact(path, payload, backup); err != nil {
		return "", err
	}
	return path, nil
}

// writeArtifact writes a file, optionally preserving the previous
// version as .bak.
func writeArtifact(path string, payload []byte, backup bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if backup {
		if _, err := os.Stat(path); err == nil {
			if err := os.Rename(path, path+".bak"); err != nil {
				return fmt.Errorf("failed to back up %s: %w", path, err)
			}
		}
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
