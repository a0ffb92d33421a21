// Package archive compresses finished session transcripts with zstd so
// the live session directory stays small without losing history.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Archive compresses the transcript at srcPath into
// archiveDir/{session-id}.jsonl.zst and returns the archive path.
func Archive(srcPath, archiveDir string) (string, error) {
	sessionID := sessionIDFromPath(srcPath)
	if sessionID == "" {
		return "", fmt.Errorf("cannot extract session ID from %s", srcPath)
	}

	destPath := Path(sessionID, archiveDir)

	if err := os.MkdirAll(archiveDir, 0o755); err != nil {
		return "", fmt.Errorf("create archive dir: %w", err)
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("open transcript: %w", err)
	}
	defer src.Close()

	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create archive: %w", err)
	}
	defer dest.Close()

	encoder, err := zstd.NewWriter(dest)
	if err != nil {
		return "", fmt.Errorf("create zstd encoder: %w", err)
	}

	if _, err := io.Copy(encoder, src); err != nil {
		encoder.Close()
		return "", fmt.Errorf("compress: %w", err)
	}

	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("finalize compression: %w", err)
	}

	return destPath, nil
}

// Restore decompresses an archived transcript back into sessionDir as a
// plain .jsonl file and returns the restored path.
func Restore(archivePath, sessionDir string) (string, error) {
	sessionID := sessionIDFromPath(archivePath)
	if sessionID == "" {
		return "", fmt.Errorf("cannot extract session ID from %s", archivePath)
	}

	src, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("open archive: %w", err)
	}
	defer src.Close()

	decoder, err := zstd.NewReader(src)
	if err != nil {
		return "", fmt.Errorf("create zstd decoder: %w", err)
	}
	defer decoder.Close()

	if err := os.MkdirAll(sessionDir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}

	destPath := filepath.Join(sessionDir, sessionID+".jsonl")
	dest, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create transcript: %w", err)
	}

	if _, err := io.Copy(dest, decoder); err != nil {
		dest.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("decompress: %w", err)
	}

	if err := dest.Close(); err != nil {
		os.Remove(destPath)
		return "", fmt.Errorf("close transcript: %w", err)
	}

	return destPath, nil
}

// IsArchived reports whether an archive exists for the given session ID.
func IsArchived(sessionID, archiveDir string) bool {
	_, err := os.Stat(Path(sessionID, archiveDir))
	return err == nil
}

// Path returns the deterministic archive path for a session ID.
func Path(sessionID, archiveDir string) string {
	return filepath.Join(archiveDir, sessionID+".jsonl.zst")
}

func sessionIDFromPath(path string) string {
	base := filepath.Base(path)
	if strings.HasSuffix(base, ".jsonl.zst") {
		return strings.TrimSuffix(base, ".jsonl.zst")
	}
	if strings.HasSuffix(base, ".jsonl") {
		return strings.TrimSuffix(base, ".jsonl")
	}
	return ""
}
