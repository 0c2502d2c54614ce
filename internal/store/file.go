package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// readBlob loads and decodes one JSON backing file into out.
//
// A missing file is not an error: the store starts empty. A file that
// exists but does not decode is logged and treated the same way — lossy
// recovery keeps the app usable over corrupt or legacy data. Only a real
// read failure is surfaced. The bool result reports whether out was
// populated.
func readBlob(log *logrus.Entry, path string, out any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		log.WithFields(logrus.Fields{
			"file":  filepath.Base(path),
			"error": err.Error(),
		}).Warn("backing file is corrupt, starting empty")
		return false, nil
	}
	return true, nil
}

// writeBlob encodes v and atomically replaces the backing file, writing a
// temp file first so a crash mid-write never leaves a truncated blob.
func writeBlob(path string, v any) error {
	content, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", filepath.Base(path), err)
	}
	return nil
}

// pathField shortens a backing-file path for log fields.
func pathField(path string) string {
	return filepath.Base(path)
}

// removeBlob deletes the backing file. A missing file is a no-op.
func removeBlob(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", filepath.Base(path), err)
	}
	return nil
}
