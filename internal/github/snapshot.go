package github

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
)

const snapshotFile = "project_data.json"

// Snapshot is the persisted form of a raw project fetch. Keeping the raw DTOs
// (not the mapped domain model) lets a reload replay the full ingestion path.
type Snapshot struct {
	FetchedAt time.Time        `json:"fetchedAt"`
	Owner     string           `json:"owner"`
	Project   int              `json:"project"`
	Items     []ProjectItemDTO `json:"items"`
}

// SaveSnapshot writes the fetched items to the cache directory.
func SaveSnapshot(cacheDir string, cfg Config, items []ProjectItemDTO) error {
	snap := Snapshot{
		FetchedAt: time.Now(),
		Owner:     cfg.Owner,
		Project:   cfg.ProjectNumber,
		Items:     items,
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	path := filepath.Join(cacheDir, snapshotFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	log.Info().Str("path", path).Int("items", len(items)).Msg("Saved project snapshot")
	return nil
}

// LoadSnapshot reads a previously saved fetch from the cache directory.
// A missing file is reported as an error so callers can distinguish
// "no offline data" from a corrupt snapshot.
func LoadSnapshot(cacheDir string) (*Snapshot, error) {
	path := filepath.Join(cacheDir, snapshotFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}

	log.Info().Str("path", path).Int("items", len(snap.Items)).Time("fetchedAt", snap.FetchedAt).Msg("Loaded project snapshot")
	return &snap, nil
}
