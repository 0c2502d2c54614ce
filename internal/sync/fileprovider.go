package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hydrolog/hydrolog/internal/model"
)

// FileProvider is the default concrete provider: an append-only JSON
// Lines log on local disk standing in for a platform health store. Each
// pushed entry becomes one line with a fresh external id.
type FileProvider struct {
	id   string
	path string
	mu   sync.Mutex
}

// NewFileProvider creates a provider writing to path.
func NewFileProvider(id, path string) *FileProvider {
	return &FileProvider{id: id, path: path}
}

// ID returns the provider instance id.
func (p *FileProvider) ID() string { return p.id }

// DisplayName returns a human-readable name.
func (p *FileProvider) DisplayName() string {
	return fmt.Sprintf("file log (%s)", filepath.Base(p.path))
}

type fileRecord struct {
	ExternalID        string    `json:"externalID"`
	EntryID           string    `json:"entryID"`
	AmountMilliliters int       `json:"amountMilliliters"`
	ConsumedAt        time.Time `json:"consumedAt"`
	PushedAt          time.Time `json:"pushedAt"`
}

// Push appends the entry to the log and returns the new external id.
func (p *FileProvider) Push(ctx context.Context, entry model.Entry) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(p.path), 0700); err != nil {
		return "", fmt.Errorf("failed to create sync log directory: %w", err)
	}

	rec := fileRecord{
		ExternalID:        uuid.NewString(),
		EntryID:           entry.ID,
		AmountMilliliters: entry.AmountMilliliters,
		ConsumedAt:        entry.ConsumedAt,
		PushedAt:          time.Now().UTC(),
	}
	line, err := json.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("failed to encode sync record: %w", err)
	}

	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open sync log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return "", fmt.Errorf("failed to append sync record: %w", err)
	}
	return rec.ExternalID, nil
}

// CheckHealth reports healthy when the log's directory is writable.
func (p *FileProvider) CheckHealth(ctx context.Context) HealthState {
	dir := filepath.Dir(p.path)
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return HealthStateDegraded
	}
	return HealthStateHealthy
}
