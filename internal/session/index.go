package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mbichler/pulse/internal/models"
)

// DefaultSlot is the index key of the single tracked main session.
const DefaultSlot = "agent:main:main"

// indexFile is the well-known session index file inside the session directory.
const indexFile = "sessions.json"

// Index resolves the current session from the agent runtime's session
// metadata directory. The index is a small JSON object mapping slot keys
// to session records; it is owned by the runtime and read-only here.
type Index struct {
	dir  string
	slot string
}

// NewIndex creates an Index over dir. An empty slot falls back to DefaultSlot.
func NewIndex(dir, slot string) *Index {
	if slot == "" {
		slot = DefaultSlot
	}
	return &Index{dir: dir, slot: slot}
}

// Current returns the session under the configured slot. A missing index
// file or missing slot returns (nil, nil): the agent is offline, which is
// an expected steady state, not an error.
func (ix *Index) Current() (*models.Session, error) {
	slots, err := ix.load()
	if err != nil {
		return nil, err
	}
	return slots[ix.slot], nil
}

// SubAgents counts sessions registered under slots other than the main one.
func (ix *Index) SubAgents() (int, error) {
	slots, err := ix.load()
	if err != nil {
		return 0, err
	}
	n := 0
	for key := range slots {
		if key != ix.slot {
			n++
		}
	}
	return n, nil
}

func (ix *Index) load() (map[string]*models.Session, error) {
	data, err := os.ReadFile(filepath.Join(ix.dir, indexFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read session index: %w", err)
	}

	var slots map[string]*models.Session
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, fmt.Errorf("decode session index: %w", err)
	}
	return slots, nil
}
