package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hydrolog/hydrolog/internal/model"
	"github.com/hydrolog/hydrolog/internal/store"
)

// Service pushes not-yet-synced entries to the primary provider and
// records what was pushed. Sync state lives in its own entity store; the
// entry store is only read.
type Service struct {
	entries  *store.EntityStore[model.Entry]
	records  *store.EntityStore[model.SyncRecord]
	registry *Registry
	now      func() time.Time
	log      *logrus.Entry
}

// NewService constructs a sync service. now may be nil to use the wall
// clock.
func NewService(entries *store.EntityStore[model.Entry], records *store.EntityStore[model.SyncRecord], registry *Registry, now func() time.Time, log *logrus.Logger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		entries:  entries,
		records:  records,
		registry: registry,
		now:      now,
		log:      log.WithField("component", "sync"),
	}
}

// Report summarizes one SyncAll run. Failures are per entry; one failing
// entry does not stop the rest.
type Report struct {
	Provider string
	Pushed   int
	Failures map[string]error // entry id -> push error
}

// Pending returns the entries that have no sync record with the primary
// provider yet, in store order.
func (s *Service) Pending(ctx context.Context) ([]model.Entry, error) {
	provider := s.registry.Primary()
	if provider == nil {
		return nil, fmt.Errorf("no sync provider registered")
	}
	return s.pending(ctx, provider)
}

func (s *Service) pending(ctx context.Context, provider Provider) ([]model.Entry, error) {
	entries, err := s.entries.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	records, err := s.records.FetchAll(ctx)
	if err != nil {
		return nil, err
	}

	synced := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ProviderIdentifier == provider.ID() {
			synced[r.EntryID] = true
		}
	}

	var out []model.Entry
	for _, e := range entries {
		if !synced[e.ID] {
			out = append(out, e)
		}
	}
	return out, nil
}

// SyncAll pushes every pending entry to the primary provider. A provider
// failure on one entry is recorded in the report and the remaining
// entries still sync. The returned error covers setup problems only.
func (s *Service) SyncAll(ctx context.Context) (Report, error) {
	provider := s.registry.Primary()
	if provider == nil {
		return Report{}, fmt.Errorf("no sync provider registered")
	}

	pending, err := s.pending(ctx, provider)
	if err != nil {
		return Report{}, err
	}

	report := Report{Provider: provider.ID(), Failures: make(map[string]error)}
	for _, entry := range pending {
		externalID, err := provider.Push(ctx, entry)
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"entry":    entry.ID,
				"provider": provider.ID(),
			}).WithError(err).Warn("push failed")
			report.Failures[entry.ID] = err
			continue
		}

		rec := model.SyncRecord{
			ID:                 uuid.NewString(),
			EntryID:            entry.ID,
			ProviderIdentifier: provider.ID(),
			ExternalIdentifier: externalID,
			SyncedAt:           s.now().UTC(),
		}
		if err := s.records.Upsert(ctx, rec); err != nil {
			// The push happened; losing the record means the entry
			// re-syncs next run, which the append log tolerates.
			report.Failures[entry.ID] = err
			continue
		}
		report.Pushed++
	}
	return report, nil
}

// Forget removes every sync record for an entry, across providers.
// Called after the entry itself is deleted.
func (s *Service) Forget(ctx context.Context, entryID string) error {
	records, err := s.records.FetchAll(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.EntryID != entryID {
			continue
		}
		if err := s.records.Delete(ctx, r.ID); err != nil {
			return err
		}
	}
	return nil
}
