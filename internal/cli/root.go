// Package cli implements the hydrolog command-line interface.
// Commands are thin: they parse arguments, then call the engine, which
// owns the stores and renders aggregation output.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataDir  string
	jsonOut  bool
	logLevel string
)

// rootCmd is the base command for hydrolog.
var rootCmd = &cobra.Command{
	Use:   "hydrolog",
	Short: "Local-first hydration tracker",
	Long: `hydrolog is a local-first hydration tracker.

It keeps your drink log, daily goal and preferences in plain JSON files,
derives day summaries, intake histograms and streaks on demand, and can
push entries to an external health store.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Use alternate data directory")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Machine-readable JSON output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level")

	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(todayCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(goalCmd)
	rootCmd.AddCommand(prefsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(remindCmd)
}

var logCmd = &cobra.Command{
	Use:   "log [amount-ml]",
	Short: "Log a drink",
	Long: `Log a drink in milliliters.

Without an amount, logs one sip of the configured sip size as a quick
add. With an amount, logs a custom entry.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		at, _ := cmd.Flags().GetString("at")
		amount := ""
		if len(args) > 0 {
			amount = args[0]
		}
		return RunLog(amount, at)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Replace a logged entry",
	Long: `Replace a logged entry by id.

Edits are full replacements: the entry keeps its id, takes the new
amount and/or time, and its source becomes "edited".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, _ := cmd.Flags().GetString("amount")
		at, _ := cmd.Flags().GetString("at")
		return RunEdit(args[0], amount, at)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete a logged entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRm(args[0])
	},
}

var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's intake, buckets and goal progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunToday()
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show per-day summaries",
	Long: `Show per-day intake summaries.

The stored history filters apply (source toggles, date range); --range
overrides the stored range for this invocation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rng, _ := cmd.Flags().GetString("range")
		return RunHistory(rng)
	},
}

func init() {
	logCmd.Flags().String("at", "", "Consumption time (RFC 3339 or 15:04), default now")
	editCmd.Flags().String("amount", "", "New amount in milliliters")
	editCmd.Flags().String("at", "", "New consumption time (RFC 3339 or 15:04)")
	historyCmd.Flags().String("range", "", "Date range: 7d, 30d, 90d or all")
}

// Goal commands
var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Daily goal commands",
}

var goalSetCmd = &cobra.Command{
	Use:   "set <amount-ml>",
	Short: "Set the daily goal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunGoalSet(args[0])
	},
}

var goalShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the daily goal and today's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunGoalShow()
	},
}

var goalClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the daily goal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunGoalClear()
	},
}

// Preference commands
var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Preference commands",
}

var prefsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current preferences",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPrefsShow()
	},
}

var prefsUnitCmd = &cobra.Command{
	Use:   "unit <ml|fl_oz>",
	Short: "Set the display unit",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPrefsUnit(args[0])
	},
}

var prefsSipCmd = &cobra.Command{
	Use:   "sip <amount-ml>",
	Short: "Set the quick-add sip size",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPrefsSip(args[0])
	},
}

var prefsFiltersCmd = &cobra.Command{
	Use:   "filters",
	Short: "Set the history filters",
	RunE: func(cmd *cobra.Command, args []string) error {
		quickAdd, _ := cmd.Flags().GetBool("quick-add")
		custom, _ := cmd.Flags().GetBool("custom")
		edited, _ := cmd.Flags().GetBool("edited")
		rng, _ := cmd.Flags().GetString("range")
		return RunPrefsFilters(quickAdd, custom, edited, rng)
	},
}

var prefsResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset all preferences to defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunPrefsReset()
	},
}

func init() {
	goalCmd.AddCommand(goalSetCmd)
	goalCmd.AddCommand(goalShowCmd)
	goalCmd.AddCommand(goalClearCmd)

	prefsCmd.AddCommand(prefsShowCmd)
	prefsCmd.AddCommand(prefsUnitCmd)
	prefsCmd.AddCommand(prefsSipCmd)
	prefsCmd.AddCommand(prefsFiltersCmd)
	prefsCmd.AddCommand(prefsResetCmd)

	prefsFiltersCmd.Flags().Bool("quick-add", true, "Include quick-add entries")
	prefsFiltersCmd.Flags().Bool("custom", true, "Include custom-amount entries")
	prefsFiltersCmd.Flags().Bool("edited", true, "Include edited entries")
	prefsFiltersCmd.Flags().String("range", "all", "Date range: 7d, 30d, 90d or all")
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the full overview dashboard",
	Long: `Show a read-only overview of the tracker state.

Today's total and progress, streaks, 7/30-day averages, tracked days,
goal-met days and the sync backlog. No side effects.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunStats()
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch today's summary live",
	Long: `Subscribe to the entry store and re-render today's summary on
every change until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunWatch(cmd.Context())
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all data as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		outputPath, _ := cmd.Flags().GetString("output")
		return RunExport(outputPath)
	},
}

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the data directory for inconsistencies",
	Long: `Run a read-only consistency scan of the data directory.

Reports unreadable or corrupt files, non-positive amounts, duplicate
ids and sync records pointing at missing entries. Report-only, no
auto-fix.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunScan()
	},
}

// Sync commands
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push entries to the external health store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSync(cmd.Context())
	},
}

var syncPendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List entries not yet pushed",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSyncPending(cmd.Context())
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the reminder scheduler in the foreground",
	Long: `Run the cron-driven reminder loop until interrupted.

On each tick, prints a reminder when today's goal is not yet met.
The schedule comes from HYDROLOG_REMINDER_SCHEDULE unless --schedule
is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		schedule, _ := cmd.Flags().GetString("schedule")
		return RunRemind(cmd.Context(), schedule)
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: stdout)")
	syncCmd.AddCommand(syncPendingCmd)
	remindCmd.Flags().String("schedule", "", "Cron schedule override")
}
