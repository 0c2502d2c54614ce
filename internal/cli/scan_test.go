package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFixture(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func hasIssue(issues []string, substr string) bool {
	for _, issue := range issues {
		if strings.Contains(issue, substr) {
			return true
		}
	}
	return false
}

func TestScanDataDir_CleanState(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "entries.json", `[
  {"id": "a", "amountMilliliters": 250, "consumedAt": "2025-06-10T09:00:00Z", "source": "quick_add"}
]`)
	writeFixture(t, dir, "goal.json", `{"id": "g", "dailyTargetMilliliters": 2000, "updatedAt": "2025-06-01T08:00:00Z"}`)
	writeFixture(t, dir, "sync_records.json", `[
  {"id": "r1", "entryID": "a", "providerIdentifier": "healthfile", "externalIdentifier": "x", "syncedAt": "2025-06-10T10:00:00Z"}
]`)

	if issues := scanDataDir(dir); len(issues) != 0 {
		t.Fatalf("expected clean scan, got %v", issues)
	}
}

func TestScanDataDir_EmptyDirIsClean(t *testing.T) {
	if issues := scanDataDir(t.TempDir()); len(issues) != 0 {
		t.Fatalf("expected clean scan over absent files, got %v", issues)
	}
}

func TestScanDataDir_EntryProblems(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "entries.json", `[
  {"id": "", "amountMilliliters": 250, "consumedAt": "2025-06-10T09:00:00Z", "source": "quick_add"},
  {"id": "dup", "amountMilliliters": 250, "consumedAt": "2025-06-10T09:00:00Z", "source": "quick_add"},
  {"id": "dup", "amountMilliliters": -5, "consumedAt": "2025-06-10T09:30:00Z", "source": "quick_add"},
  {"id": "bad", "amountMilliliters": 100, "consumedAt": "0001-01-01T00:00:00Z", "source": "teleport"}
]`)

	issues := scanDataDir(dir)
	for _, want := range []string{"empty id", "duplicate id dup", "non-positive amount -5", "unknown source", "zero timestamp"} {
		if !hasIssue(issues, want) {
			t.Errorf("expected issue containing %q, got %v", want, issues)
		}
	}
}

func TestScanDataDir_CorruptFiles(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "entries.json", "{broken")
	writeFixture(t, dir, "goal.json", "{broken")
	writeFixture(t, dir, "sync_records.json", "{broken")

	issues := scanDataDir(dir)
	for _, want := range []string{"entries.json: corrupt", "goal.json: corrupt", "sync_records.json: corrupt"} {
		if !hasIssue(issues, want) {
			t.Errorf("expected issue containing %q, got %v", want, issues)
		}
	}
}

func TestScanDataDir_GoalAndSyncProblems(t *testing.T) {
	dir := t.TempDir()
	writeFixture(t, dir, "entries.json", `[
  {"id": "a", "amountMilliliters": 250, "consumedAt": "2025-06-10T09:00:00Z", "source": "quick_add"}
]`)
	writeFixture(t, dir, "goal.json", `{"id": "", "dailyTargetMilliliters": 0, "updatedAt": "2025-06-01T08:00:00Z"}`)
	writeFixture(t, dir, "sync_records.json", `[
  {"id": "r1", "entryID": "a", "providerIdentifier": "healthfile", "externalIdentifier": "x", "syncedAt": "2025-06-10T10:00:00Z"},
  {"id": "r1", "entryID": "gone", "providerIdentifier": "healthfile", "externalIdentifier": "y", "syncedAt": "2025-06-10T10:01:00Z"}
]`)

	issues := scanDataDir(dir)
	for _, want := range []string{"non-positive target", "empty id", "duplicate id r1", "references missing entry gone"} {
		if !hasIssue(issues, want) {
			t.Errorf("expected issue containing %q, got %v", want, issues)
		}
	}
}
