package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbichler/pulse/internal/models"
)

// Publisher writes status snapshots to a single well-known path. The file
// is the sole hand-off artifact to the presentation layer, which only ever
// reads it.
type Publisher struct {
	path string
}

// NewPublisher creates a Publisher targeting path.
func NewPublisher(path string) *Publisher {
	return &Publisher{path: path}
}

// Path returns the publish target.
func (p *Publisher) Path() string {
	return p.path
}

// Publish serializes the snapshot and atomically replaces the target file.
// A failed publish leaves any previously published snapshot intact: the
// payload goes to a temp file first and only a successful write is renamed
// into place.
func (p *Publisher) Publish(snap *models.StatusSnapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create snapshot directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".live-status-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads a previously published snapshot from path.
func Load(path string) (*models.StatusSnapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap models.StatusSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
