// Package storage persists project snapshots as YAML or JSON files and checks
// injected snapshots against an embedded JSON Schema.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/gantt/internal/core"
	"github.com/valter-silva-au/gantt/pkg/models"
	"gopkg.in/yaml.v3"
)

// Format identifies a snapshot file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the encoding from a file extension. Anything that is not
// .json is treated as YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type fileSnapshotStore struct {
	path   string
	format Format
}

// NewSnapshotStore creates a SnapshotStore backed by the file at path.
func NewSnapshotStore(path string) core.SnapshotStore {
	return &fileSnapshotStore{path: path, format: FormatFor(path)}
}

func (s *fileSnapshotStore) Path() string {
	return s.path
}

// Load reads the snapshot. A missing file yields the empty default snapshot.
func (s *fileSnapshotStore) Load() (models.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return models.EmptySnapshot(), nil
		}
		return models.Snapshot{}, fmt.Errorf("loading snapshot: %w", err)
	}
	snap, err := Decode(data, s.format)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("loading snapshot %s: %w", s.path, err)
	}
	return snap, nil
}

// Save writes the snapshot atomically under an advisory lock.
func (s *fileSnapshotStore) Save(snap models.Snapshot) error {
	data, err := Encode(snap, s.format)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("saving snapshot: creating directory: %w", err)
		}
	}

	unlock, err := lockFile(s.path)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	defer func() { _ = unlock() }()

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("saving snapshot: writing file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("saving snapshot: replacing file: %w", err)
	}
	return nil
}

// Decode parses a snapshot document, validates it against the snapshot
// schema and fills defaults.
func Decode(data []byte, format Format) (models.Snapshot, error) {
	var snap models.Snapshot
	switch format {
	case FormatJSON:
		if err := ValidateJSON(data); err != nil {
			return models.Snapshot{}, err
		}
		if err := json.Unmarshal(data, &snap); err != nil {
			return models.Snapshot{}, core.NewValidationError("", fmt.Sprintf("Snapshot could not be decoded: %v", err))
		}
	default:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return models.Snapshot{}, core.NewValidationError("", fmt.Sprintf("Snapshot could not be decoded: %v", err))
		}
		// YAML has no schema of its own; check the decoded form instead.
		encoded, err := json.Marshal(snap)
		if err != nil {
			return models.Snapshot{}, fmt.Errorf("re-encoding snapshot: %w", err)
		}
		if err := ValidateJSON(encoded); err != nil {
			return models.Snapshot{}, err
		}
	}
	return snap.WithDefaults(), nil
}

// Encode renders a snapshot in the given format.
func Encode(snap models.Snapshot, format Format) ([]byte, error) {
	snap = snap.WithDefaults()
	if format == FormatJSON {
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding JSON: %w", err)
		}
		return append(data, '\n'), nil
	}
	data, err := yaml.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encoding YAML: %w", err)
	}
	return data, nil
}
