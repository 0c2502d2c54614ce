package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/hydrolog/hydrolog/internal/aggregate"
	"github.com/hydrolog/hydrolog/internal/config"
	"github.com/hydrolog/hydrolog/internal/model"
	"github.com/hydrolog/hydrolog/internal/remind"
	"github.com/hydrolog/hydrolog/internal/store"
	hsync "github.com/hydrolog/hydrolog/internal/sync"
)

const syncLogFile = "healthsync.jsonl"

// engine wires config, logger, stores and services for one invocation.
type engine struct {
	cfg    config.Config
	log    *logrus.Logger
	stores *store.Stores
	syncer *hsync.Service
	loc    *time.Location
	now    func() time.Time
}

// newEngine builds the engine: environment config first, then global
// flag overrides.
func newEngine() (*engine, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := config.NewLogger(cfg)
	stores := store.Open(cfg.DataDir, log)

	registry := hsync.NewRegistry()
	provider := hsync.NewFileProvider("healthfile", filepath.Join(cfg.DataDir, syncLogFile))
	if err := registry.Register(provider); err != nil {
		return nil, err
	}

	return &engine{
		cfg:    cfg,
		log:    log,
		stores: stores,
		syncer: hsync.NewService(stores.Entries, stores.SyncRecords, registry, nil, log),
		loc:    time.Local,
		now:    time.Now,
	}, nil
}

// --- Entry commands ---

// RunLog logs a drink. An empty amount means one sip of the configured
// sip size, recorded as a quick add.
func RunLog(amount, at string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	source := model.SourceQuickAdd
	ml := e.stores.SipSize.Fetch()
	if amount != "" {
		source = model.SourceCustomAmount
		ml, err = parseAmount(amount)
		if err != nil {
			return err
		}
	}
	if ml <= 0 {
		return fmt.Errorf("amount must be positive, got %d", ml)
	}

	consumedAt, err := parseTime(at, e.now(), e.loc)
	if err != nil {
		return err
	}

	entry := model.Entry{
		ID:                uuid.NewString(),
		AmountMilliliters: ml,
		ConsumedAt:        consumedAt,
		Source:            source,
	}
	if err := e.stores.Entries.Upsert(context.Background(), entry); err != nil {
		return fmt.Errorf("unable to save entry: %w", err)
	}

	unit := e.stores.Unit.Fetch()
	fmt.Printf("Logged %s at %s (%s)\n", formatAmount(ml, unit), consumedAt.Format("15:04"), entry.ID)
	return nil
}

// RunEdit replaces an entry by id. Unspecified fields keep their old
// values; the source always becomes "edited".
func RunEdit(id, amount, at string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	entries, err := e.stores.Entries.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("unable to load entries: %w", err)
	}
	var current *model.Entry
	for i := range entries {
		if entries[i].ID == id {
			current = &entries[i]
			break
		}
	}
	if current == nil {
		return fmt.Errorf("no entry with id %s", id)
	}

	updated := *current
	updated.Source = model.SourceEdited
	if amount != "" {
		ml, err := parseAmount(amount)
		if err != nil {
			return err
		}
		updated.AmountMilliliters = ml
	}
	if at != "" {
		t, err := parseTime(at, e.now(), e.loc)
		if err != nil {
			return err
		}
		updated.ConsumedAt = t
	}

	if err := e.stores.Entries.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("unable to save entry: %w", err)
	}
	fmt.Printf("Updated %s\n", id)
	return nil
}

// RunRm deletes an entry and forgets its sync records.
func RunRm(id string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	if err := e.stores.Entries.Delete(ctx, id); err != nil {
		return fmt.Errorf("unable to delete entry: %w", err)
	}
	if err := e.syncer.Forget(ctx, id); err != nil {
		return fmt.Errorf("unable to clean up sync records: %w", err)
	}
	fmt.Printf("Deleted %s\n", id)
	return nil
}

// --- Views ---

// RunToday renders today's summary with fine-grained buckets.
func RunToday() error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	entries, err := e.stores.Entries.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("unable to load entries: %w", err)
	}
	summary, goal, err := e.summarizeToday(ctx, entries)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(os.Stdout, summary)
	}
	e.renderDay(summary, true)

	if goal != nil {
		progress := aggregate.GoalProgress(summary.TotalMilliliters, goal.DailyTargetMilliliters)
		e.renderProgress(progress)
	}
	return nil
}

// RunHistory renders per-day summaries under the stored filters.
func RunHistory(rangeOverride string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	entries, goal, err := e.fetchEntriesAndGoal(ctx)
	if err != nil {
		return err
	}

	prefs := e.stores.Filters.Fetch()
	if rangeOverride != "" {
		rng, err := parseRange(rangeOverride)
		if err != nil {
			return err
		}
		prefs.Range = rng
	}

	filtered := aggregate.Filter(entries, prefs, e.now(), e.loc)
	summaries := aggregate.DaySummaries(filtered, goal, aggregate.HistoryLadder, e.loc)

	if jsonOut {
		return printJSON(os.Stdout, summaries)
	}
	if len(summaries) == 0 {
		fmt.Println("No entries in range.")
		return nil
	}

	unit := e.stores.Unit.Fetch()
	for _, s := range summaries {
		marker := " "
		if s.GoalMet {
			marker = "*"
		}
		fmt.Printf("%s %s  %8s  %2d entries  avg %s/h\n",
			marker,
			s.Day.Format("2006-01-02"),
			formatAmount(s.TotalMilliliters, unit),
			s.EntryCount,
			formatAmount(s.AveragePerHour, unit))
	}
	fmt.Printf("\n%d day(s), * = goal met\n", len(summaries))
	return nil
}

// RunStats renders the overview dashboard.
func RunStats() error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	entries, goal, err := e.fetchEntriesAndGoal(ctx)
	if err != nil {
		return err
	}
	pending, err := e.syncer.Pending(ctx)
	if err != nil {
		return err
	}

	overview := aggregate.ComputeOverview(entries, goal, len(pending), e.now(), e.loc)
	if jsonOut {
		return printJSON(os.Stdout, overview)
	}

	unit := e.stores.Unit.Fetch()
	fmt.Println("=== hydrolog overview ===")
	fmt.Printf("Today:        %s", formatAmount(overview.Today.TotalMilliliters, unit))
	if overview.GoalSet {
		fmt.Printf(" / %s (%.0f%%)", formatAmount(overview.Progress.TargetMilliliters, unit), overview.Progress.Fraction*100)
	}
	fmt.Println()
	fmt.Printf("Streak:       %d day(s), best %d\n", overview.Streaks.Current, overview.Streaks.Best)
	fmt.Printf("7-day avg:    %s/day\n", formatAmount(overview.WeekDailyAvg, unit))
	fmt.Printf("30-day avg:   %s/day\n", formatAmount(overview.MonthDailyAvg, unit))
	fmt.Printf("Tracked days: %d (%d with goal met)\n", overview.TrackedDays, overview.GoalMetDays)
	fmt.Printf("All time:     %s\n", formatAmount(overview.AllTimeTotal, unit))
	fmt.Printf("Sync backlog: %d entr(y/ies)\n", overview.PendingSync)
	return nil
}

// RunWatch re-renders today's summary on every published snapshot.
func RunWatch(ctx context.Context) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	snapshots, cancel, err := e.stores.Entries.Observe(ctx)
	if err != nil {
		return fmt.Errorf("unable to load entries: %w", err)
	}
	defer cancel()

	fmt.Println("Watching (Ctrl-C to stop)...")
	for {
		select {
		case <-ctx.Done():
			return nil
		case entries, ok := <-snapshots:
			if !ok {
				return nil
			}
			summary, _, err := e.summarizeToday(ctx, entries)
			if err != nil {
				return err
			}
			fmt.Printf("[%s] ", e.now().Format("15:04:05"))
			e.renderDay(summary, false)
		}
	}
}

// --- Goal commands ---

// RunGoalSet sets the daily goal.
func RunGoalSet(amount string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	ml, err := parseAmount(amount)
	if err != nil {
		return err
	}
	if ml < model.DefaultDailyTargetMinimum {
		return fmt.Errorf("goal must be positive, got %d", ml)
	}

	goal := model.Goal{
		ID:                     uuid.NewString(),
		DailyTargetMilliliters: ml,
		UpdatedAt:              e.now().UTC(),
	}
	if err := e.stores.Goal.Set(context.Background(), goal); err != nil {
		return fmt.Errorf("unable to save goal: %w", err)
	}
	fmt.Printf("Daily goal set to %s\n", formatAmount(ml, e.stores.Unit.Fetch()))
	return nil
}

// RunGoalShow prints the goal and today's progress against it.
func RunGoalShow() error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	goal, err := e.stores.Goal.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("unable to load goal: %w", err)
	}
	if !goal.Present {
		fmt.Println("No daily goal set.")
		return nil
	}

	entries, err := e.stores.Entries.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("unable to load entries: %w", err)
	}
	consumed := 0
	for _, entry := range entriesOfDay(entries, e.now(), e.loc) {
		consumed += entry.AmountMilliliters
	}

	progress := aggregate.GoalProgress(consumed, goal.Value.DailyTargetMilliliters)
	if jsonOut {
		return printJSON(os.Stdout, progress)
	}
	e.renderProgress(progress)
	return nil
}

// RunGoalClear removes the goal. Clearing an unset goal is fine.
func RunGoalClear() error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	if err := e.stores.Goal.Clear(context.Background()); err != nil {
		return fmt.Errorf("unable to clear goal: %w", err)
	}
	fmt.Println("Daily goal cleared.")
	return nil
}

// --- Preference commands ---

// RunPrefsShow prints all current preferences.
func RunPrefsShow() error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	prefs := struct {
		Unit    model.Unit              `json:"unit"`
		SipSize int                     `json:"sipSizeMilliliters"`
		Filters model.FilterPreferences `json:"filters"`
	}{e.stores.Unit.Fetch(), e.stores.SipSize.Fetch(), e.stores.Filters.Fetch()}

	if jsonOut {
		return printJSON(os.Stdout, prefs)
	}
	fmt.Printf("Unit:     %s\n", prefs.Unit)
	fmt.Printf("Sip size: %d ml\n", prefs.SipSize)
	fmt.Printf("Filters:  quick-add=%t custom=%t edited=%t range=%s\n",
		prefs.Filters.IncludeQuickAdd, prefs.Filters.IncludeCustomAmount,
		prefs.Filters.IncludeEdited, prefs.Filters.Range)
	return nil
}

// RunPrefsUnit sets the display unit.
func RunPrefsUnit(unit string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	switch model.Unit(unit) {
	case model.UnitMilliliters, model.UnitFluidOunces:
	default:
		return fmt.Errorf("unknown unit %q (want ml or fl_oz)", unit)
	}
	if err := e.stores.Unit.Set(model.Unit(unit)); err != nil {
		return fmt.Errorf("unable to save preference: %w", err)
	}
	fmt.Printf("Display unit set to %s\n", unit)
	return nil
}

// RunPrefsSip sets the quick-add sip size.
func RunPrefsSip(amount string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	ml, err := parseAmount(amount)
	if err != nil {
		return err
	}
	if ml <= 0 {
		return fmt.Errorf("sip size must be positive, got %d", ml)
	}
	if err := e.stores.SipSize.Set(ml); err != nil {
		return fmt.Errorf("unable to save preference: %w", err)
	}
	fmt.Printf("Sip size set to %d ml\n", ml)
	return nil
}

// RunPrefsFilters overwrites the history filters wholesale.
func RunPrefsFilters(quickAdd, custom, edited bool, rng string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	r, err := parseRange(rng)
	if err != nil {
		return err
	}
	prefs := model.FilterPreferences{
		IncludeQuickAdd:     quickAdd,
		IncludeCustomAmount: custom,
		IncludeEdited:       edited,
		Range:               r,
	}
	if err := e.stores.Filters.Set(prefs); err != nil {
		return fmt.Errorf("unable to save preference: %w", err)
	}
	fmt.Println("History filters updated.")
	return nil
}

// RunPrefsReset restores every preference to its default.
func RunPrefsReset() error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	if err := e.stores.Unit.Reset(); err != nil {
		return fmt.Errorf("unable to reset preference: %w", err)
	}
	if err := e.stores.SipSize.Reset(); err != nil {
		return fmt.Errorf("unable to reset preference: %w", err)
	}
	if err := e.stores.Filters.Reset(); err != nil {
		return fmt.Errorf("unable to reset preference: %w", err)
	}
	fmt.Println("Preferences reset to defaults.")
	return nil
}

// --- Export / scan ---

// exportPayload is the machine-readable dump of all persisted state.
type exportPayload struct {
	ExportedAt  time.Time               `json:"exportedAt"`
	Entries     []model.Entry           `json:"entries"`
	Goal        *model.Goal             `json:"goal,omitempty"`
	SyncRecords []model.SyncRecord      `json:"syncRecords"`
	Unit        model.Unit              `json:"unit"`
	SipSize     int                     `json:"sipSizeMilliliters"`
	Filters     model.FilterPreferences `json:"filters"`
}

// RunExport writes a point-in-time JSON export.
func RunExport(outputPath string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx := context.Background()

	entries, goal, err := e.fetchEntriesAndGoal(ctx)
	if err != nil {
		return err
	}
	records, err := e.stores.SyncRecords.FetchAll(ctx)
	if err != nil {
		return fmt.Errorf("unable to load sync records: %w", err)
	}

	payload := exportPayload{
		ExportedAt:  e.now().UTC(),
		Entries:     entries,
		Goal:        goal,
		SyncRecords: records,
		Unit:        e.stores.Unit.Fetch(),
		SipSize:     e.stores.SipSize.Fetch(),
		Filters:     e.stores.Filters.Fetch(),
	}

	if outputPath == "" {
		return printJSON(os.Stdout, payload)
	}
	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export: %w", err)
	}
	if err := os.WriteFile(outputPath, content, 0644); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	fmt.Printf("Exported to %s\n", outputPath)
	return nil
}

// RunScan checks the data directory for inconsistencies, report-only.
func RunScan() error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	issues := scanDataDir(e.cfg.DataDir)
	if len(issues) == 0 {
		fmt.Println("OK: no issues found.")
		return nil
	}
	for _, issue := range issues {
		fmt.Printf("ISSUE: %s\n", issue)
	}
	fmt.Printf("\n%d issue(s) found. Nothing was modified.\n", len(issues))
	return nil
}

// --- Sync commands ---

// RunSync pushes pending entries to the primary provider.
func RunSync(ctx context.Context) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	report, err := e.syncer.SyncAll(ctx)
	if err != nil {
		return fmt.Errorf("unable to sync: %w", err)
	}

	fmt.Printf("Pushed %d entr(y/ies) to %s\n", report.Pushed, report.Provider)
	for id, pushErr := range report.Failures {
		fmt.Printf("FAILED %s: %v\n", id, pushErr)
	}
	if len(report.Failures) > 0 {
		return fmt.Errorf("%d entr(y/ies) failed to sync", len(report.Failures))
	}
	return nil
}

// RunSyncPending lists entries that have not been pushed yet.
func RunSyncPending(ctx context.Context) error {
	e, err := newEngine()
	if err != nil {
		return err
	}

	pending, err := e.syncer.Pending(ctx)
	if err != nil {
		return fmt.Errorf("unable to list pending entries: %w", err)
	}
	if jsonOut {
		return printJSON(os.Stdout, pending)
	}
	if len(pending) == 0 {
		fmt.Println("Nothing to sync.")
		return nil
	}

	unit := e.stores.Unit.Fetch()
	for _, entry := range pending {
		fmt.Printf("%s  %s  %s\n", entry.ID, entry.ConsumedAt.Format(time.RFC3339), formatAmount(entry.AmountMilliliters, unit))
	}
	fmt.Printf("\n%d entr(y/ies) pending\n", len(pending))
	return nil
}

// RunRemind runs the reminder loop until interrupted.
func RunRemind(ctx context.Context, scheduleOverride string) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	unit := e.stores.Unit.Fetch()
	notifier := remind.NotifierFunc(func(p model.Progress) error {
		fmt.Printf("Reminder: %s to go (%.0f%% of today's goal)\n",
			formatAmount(p.RemainingMilliliters, unit), p.Fraction*100)
		return nil
	})

	scheduler := remind.NewScheduler(e.stores.Entries, e.stores.Goal, notifier, e.loc, e.now, e.log)
	schedule := e.cfg.ReminderSchedule
	if scheduleOverride != "" {
		schedule = scheduleOverride
	}
	if err := scheduler.Start(schedule); err != nil {
		return err
	}
	defer scheduler.Stop()

	fmt.Printf("Reminders on schedule %q (Ctrl-C to stop)\n", schedule)
	<-ctx.Done()
	return nil
}

// --- Helpers ---

func (e *engine) fetchEntriesAndGoal(ctx context.Context) ([]model.Entry, *model.Goal, error) {
	entries, err := e.stores.Entries.FetchAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load entries: %w", err)
	}
	goal, err := e.stores.Goal.Fetch(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load goal: %w", err)
	}
	var goalPtr *model.Goal
	if goal.Present {
		g := goal.Value
		goalPtr = &g
	}
	return entries, goalPtr, nil
}

// summarizeToday projects entries onto today's summary. The goal is
// re-fetched on every call, so a goal set or cleared between renders is
// reflected in the next one.
func (e *engine) summarizeToday(ctx context.Context, entries []model.Entry) (model.DaySummary, *model.Goal, error) {
	goal, err := e.stores.Goal.Fetch(ctx)
	if err != nil {
		return model.DaySummary{}, nil, fmt.Errorf("unable to load goal: %w", err)
	}
	var goalPtr *model.Goal
	if goal.Present {
		g := goal.Value
		goalPtr = &g
	}

	now := e.now()
	summary := aggregate.SummarizeDay(dayOf(now, e.loc), entriesOfDay(entries, now, e.loc), goalPtr, aggregate.TodayLadder)
	return summary, goalPtr, nil
}

func (e *engine) renderDay(s model.DaySummary, withBuckets bool) {
	unit := e.stores.Unit.Fetch()
	if s.EntryCount == 0 {
		fmt.Println("Nothing logged today.")
		return
	}

	fmt.Printf("%s: %s over %d entries (%s - %s)\n",
		s.Day.Format("2006-01-02"),
		formatAmount(s.TotalMilliliters, unit),
		s.EntryCount,
		s.FirstAt.In(e.loc).Format("15:04"),
		s.LastAt.In(e.loc).Format("15:04"))

	if !withBuckets {
		return
	}
	for _, b := range s.Buckets {
		peak := ""
		if s.PeakBucket != nil && b.Index == s.PeakBucket.Index {
			peak = "  <- peak"
		}
		fmt.Printf("  %s  %8s%s\n", b.StartsAt.In(e.loc).Format("15:04"), formatAmount(b.AmountMilliliters, unit), peak)
	}
}

func (e *engine) renderProgress(p model.Progress) {
	unit := e.stores.Unit.Fetch()
	fmt.Printf("Goal: %s / %s (%.0f%%), %s remaining\n",
		formatAmount(p.ConsumedMilliliters, unit),
		formatAmount(p.TargetMilliliters, unit),
		p.Fraction*100,
		formatAmount(p.RemainingMilliliters, unit))
}

func parseAmount(s string) (int, error) {
	ml, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: want whole milliliters", s)
	}
	if ml <= 0 {
		return 0, fmt.Errorf("amount must be positive, got %d", ml)
	}
	return ml, nil
}

// parseTime accepts RFC 3339 or a bare clock time on today's date.
// Empty means now.
func parseTime(s string, now time.Time, loc *time.Location) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if clock, err := time.Parse("15:04", s); err == nil {
		y, m, d := now.In(loc).Date()
		return time.Date(y, m, d, clock.Hour(), clock.Minute(), 0, 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("invalid time %q: want RFC 3339 or 15:04", s)
}

func parseRange(s string) (model.DateRange, error) {
	switch model.DateRange(s) {
	case model.RangeWeek, model.RangeMonth, model.RangeQuarter, model.RangeAll:
		return model.DateRange(s), nil
	}
	return "", fmt.Errorf("invalid range %q (want 7d, 30d, 90d or all)", s)
}

func dayOf(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func entriesOfDay(entries []model.Entry, t time.Time, loc *time.Location) []model.Entry {
	day := dayOf(t, loc)
	next := day.AddDate(0, 0, 1)
	var out []model.Entry
	for _, e := range entries {
		if !e.ConsumedAt.Before(day) && e.ConsumedAt.Before(next) {
			out = append(out, e)
		}
	}
	return out
}

const millilitersPerFluidOunce = 29.5735

func formatAmount(ml int, unit model.Unit) string {
	if unit == model.UnitFluidOunces {
		return fmt.Sprintf("%.1f fl oz", float64(ml)/millilitersPerFluidOunce)
	}
	return fmt.Sprintf("%d ml", ml)
}

func printJSON(w *os.File, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
