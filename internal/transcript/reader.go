package transcript

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mbichler/pulse/internal/models"
)

// DefaultWindow is how many trailing log lines a read considers. The
// transcript grows without bound; only the tail matters for live status.
const DefaultWindow = 50

// Reader reads session transcript logs from a directory of one JSONL file
// per session id.
type Reader struct {
	dir string
}

// NewReader creates a Reader over the given session directory.
func NewReader(dir string) *Reader {
	return &Reader{dir: dir}
}

// ReadWindow returns the decodable entries from the last maxLines non-empty
// lines of the session's transcript, in file order. A missing transcript
// yields an empty window, not an error. A line that fails to decode is
// dropped and the read continues; one corrupt line never aborts the window.
func (r *Reader) ReadWindow(sessionID string, maxLines int) ([]models.TranscriptEntry, error) {
	if maxLines <= 0 {
		maxLines = DefaultWindow
	}

	path := filepath.Join(r.dir, sessionID+".jsonl")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	lines := splitLines(string(data))
	if len(lines) > maxLines {
		lines = lines[len(lines)-maxLines:]
	}

	entries := make([]models.TranscriptEntry, 0, len(lines))
	for _, line := range lines {
		var entry models.TranscriptEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// splitLines splits raw transcript content into trimmed, non-empty lines.
func splitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}
