package store

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/hydrolog/hydrolog/internal/kv"
	"github.com/hydrolog/hydrolog/internal/model"
)

// Backing file and preference key names. Each file is touched only by its
// own store.
const (
	entriesFile     = "entries.json"
	goalFile        = "goal.json"
	syncRecordsFile = "sync_records.json"
	preferencesFile = "preferences.json"

	keyUnit    = "unit"
	keySipSize = "sip_size"
	keyFilters = "history_filters"
)

// Stores bundles every store of the application. Construct one per data
// directory; the stores inside share nothing but the preference backend.
type Stores struct {
	Entries     *EntityStore[model.Entry]
	Goal        *SingletonStore[model.Goal]
	SyncRecords *EntityStore[model.SyncRecord]

	Unit    *PreferenceStore[model.Unit]
	SipSize *PreferenceStore[int]
	Filters *PreferenceStore[model.FilterPreferences]
}

// Open wires the full store set over dataDir. Nothing is read from disk
// until first use; opening a directory that does not exist yet is fine.
func Open(dataDir string, log *logrus.Logger) *Stores {
	prefs := kv.NewFileStore(filepath.Join(dataDir, preferencesFile))
	return OpenWith(dataDir, prefs, log)
}

// OpenWith is Open with an injected preference backend, for tests.
func OpenWith(dataDir string, prefs kv.Store, log *logrus.Logger) *Stores {
	return &Stores{
		Entries: NewEntityStore(
			filepath.Join(dataDir, entriesFile),
			entryNewestFirst,
			log,
		),
		Goal: NewSingletonStore[model.Goal](filepath.Join(dataDir, goalFile), log),
		SyncRecords: NewEntityStore(
			filepath.Join(dataDir, syncRecordsFile),
			syncRecordOldestFirst,
			log,
		),
		Unit:    NewPreferenceStore(prefs, keyUnit, model.DefaultUnit, log),
		SipSize: NewPreferenceStore(prefs, keySipSize, model.DefaultSipMilliliters, log),
		Filters: NewPreferenceStore(prefs, keyFilters, model.DefaultFilterPreferences(), log),
	}
}

// entryNewestFirst is the canonical entry order: most recent drink first,
// id as tie-break so the order is total.
func entryNewestFirst(a, b model.Entry) bool {
	if !a.ConsumedAt.Equal(b.ConsumedAt) {
		return a.ConsumedAt.After(b.ConsumedAt)
	}
	return a.ID < b.ID
}

// syncRecordOldestFirst keeps sync records in sync order.
func syncRecordOldestFirst(a, b model.SyncRecord) bool {
	if !a.SyncedAt.Equal(b.SyncedAt) {
		return a.SyncedAt.Before(b.SyncedAt)
	}
	return a.ID < b.ID
}
