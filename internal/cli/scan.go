package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hydrolog/hydrolog/internal/model"
)

// scanDataDir runs the read-only consistency checks over the raw backing
// files. It deliberately bypasses the stores: the point is to report what
// is on disk, including data the stores' lossy recovery would hide.
func scanDataDir(dir string) []string {
	var issues []string

	entries, entryIssues := scanEntries(filepath.Join(dir, "entries.json"))
	issues = append(issues, entryIssues...)
	issues = append(issues, scanGoal(filepath.Join(dir, "goal.json"))...)
	issues = append(issues, scanSyncRecords(filepath.Join(dir, "sync_records.json"), entries)...)
	return issues
}

func scanEntries(path string) (map[string]bool, []string) {
	ids := make(map[string]bool)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return ids, nil
	}
	if err != nil {
		return ids, []string{fmt.Sprintf("entries.json: unreadable: %v", err)}
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return ids, []string{fmt.Sprintf("entries.json: corrupt: %v", err)}
	}

	var issues []string
	for _, e := range entries {
		if e.ID == "" {
			issues = append(issues, "entries.json: entry with empty id")
			continue
		}
		if ids[e.ID] {
			issues = append(issues, fmt.Sprintf("entries.json: duplicate id %s", e.ID))
		}
		ids[e.ID] = true
		if e.AmountMilliliters <= 0 {
			issues = append(issues, fmt.Sprintf("entries.json: entry %s has non-positive amount %d", e.ID, e.AmountMilliliters))
		}
		if !e.Source.Valid() {
			issues = append(issues, fmt.Sprintf("entries.json: entry %s has unknown source %q", e.ID, e.Source))
		}
		if e.ConsumedAt.IsZero() {
			issues = append(issues, fmt.Sprintf("entries.json: entry %s has zero timestamp", e.ID))
		}
	}
	return ids, issues
}

func scanGoal(path string) []string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // absent file means no goal, by design
	}
	if err != nil {
		return []string{fmt.Sprintf("goal.json: unreadable: %v", err)}
	}

	var goal model.Goal
	if err := json.Unmarshal(data, &goal); err != nil {
		return []string{fmt.Sprintf("goal.json: corrupt: %v", err)}
	}

	var issues []string
	if goal.DailyTargetMilliliters <= 0 {
		issues = append(issues, fmt.Sprintf("goal.json: non-positive target %d", goal.DailyTargetMilliliters))
	}
	if goal.ID == "" {
		issues = append(issues, "goal.json: empty id")
	}
	return issues
}

func scanSyncRecords(path string, entryIDs map[string]bool) []string {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return []string{fmt.Sprintf("sync_records.json: unreadable: %v", err)}
	}

	var records []model.SyncRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return []string{fmt.Sprintf("sync_records.json: corrupt: %v", err)}
	}

	var issues []string
	seen := make(map[string]bool)
	for _, r := range records {
		if seen[r.ID] {
			issues = append(issues, fmt.Sprintf("sync_records.json: duplicate id %s", r.ID))
		}
		seen[r.ID] = true
		if !entryIDs[r.EntryID] {
			issues = append(issues, fmt.Sprintf("sync_records.json: record %s references missing entry %s", r.ID, r.EntryID))
		}
	}
	return issues
}
