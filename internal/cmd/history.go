package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harrison/shipshape/internal/history"
	"github.com/harrison/shipshape/internal/report"
)

// NewHistoryCommand creates the history command group.
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded scans and applies",
		Long: `History manages the local run database. Every scan and apply is
recorded there (unless --no-history was given), so past runs can be
listed, inspected and re-rendered without rescanning the tree.`,
	}

	cmd.AddCommand(newHistoryListCommand())
	cmd.AddCommand(newHistoryShowCommand())
	cmd.AddCommand(newHistoryStatsCommand())
	cmd.AddCommand(newHistoryClearCommand())

	return cmd
}

func newHistoryListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded scans, newest first",
		Args:  cobra.NoArgs,
		RunE:  runHistoryList,
	}
	cmd.Flags().Int("limit", 20, "Maximum number of scans to list (0 = all)")
	return cmd
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	entries, err := store.ListScans(cmd.Context(), limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No scans recorded yet. Run 'shipshape scan <root>' first.")
		return nil
	}

	fmt.Fprintf(out, "%-9s %-19s %9s %8s %7s  %s\n", "ID", "SCANNED", "FILES", "ISSUES", "GROUPS", "ROOT")
	for _, e := range entries {
		root := e.Root
		if e.Incomplete {
			root += " (incomplete)"
		}
		fmt.Fprintf(out, "%-9s %-19s %9d %8d %7d  %s\n",
			shortID(e.ID),
			e.StartedAt.Local().Format("2006-01-02 15:04:05"),
			e.TotalFiles,
			e.CriticalCount+e.WarningCount,
			e.DuplicateGroups,
			root)
	}
	return nil
}

func newHistoryShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one recorded scan and its applies",
		Long: `Show renders the stored summary for one scan. The ID may be
abbreviated to any unique prefix, as printed by 'history list'.`,
		Args: cobra.ExactArgs(1),
		RunE: runHistoryShow,
	}
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	summary, err := store.GetScan(ctx, args[0])
	if err != nil {
		return err
	}

	if exec, err := store.LatestApplyForScan(ctx, summary.ScanID); err == nil {
		summary.Execution = report.NewExecutionSummary(exec)
	} else if !errors.Is(err, history.ErrNotFound) {
		return err
	}

	out := cmd.OutOrStdout()
	if err := report.RenderText(out, summary, colorEnabled(cmd)); err != nil {
		return err
	}

	applies, err := store.AppliesForScan(ctx, summary.ScanID)
	if err != nil {
		return err
	}
	if len(applies) > 1 {
		fmt.Fprintf(out, "\nAll applies for this scan:\n")
		for _, a := range applies {
			fmt.Fprintf(out, "  %s  %-4s  %d/%d ok, %d failed, %d skipped  (%s)\n",
				a.StartedAt.Local().Format("2006-01-02 15:04:05"),
				a.Mode, a.Succeeded, a.Total, a.Failed, a.Skipped, a.Duration)
		}
	}
	return nil
}

func newHistoryStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the whole history",
		Args:  cobra.NoArgs,
		RunE:  runHistoryStats,
	}
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	stats, err := store.AggregateStats(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Scans recorded:     %d\n", stats.Scans)
	fmt.Fprintf(out, "Applies recorded:   %d\n", stats.Applies)
	fmt.Fprintf(out, "Files scanned:      %d\n", stats.FilesScanned)
	fmt.Fprintf(out, "Data scanned:       %s\n", report.FormatBytes(stats.BytesScanned))
	fmt.Fprintf(out, "Reclaimable found:  %s\n", report.FormatBytes(stats.ReclaimableFound))
	fmt.Fprintf(out, "Actions succeeded:  %d\n", stats.ActionsSucceeded)
	fmt.Fprintf(out, "Actions failed:     %d\n", stats.ActionsFailed)
	return nil
}

func newHistoryClearCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete all recorded scans and applies",
		Args:  cobra.NoArgs,
		RunE:  runHistoryClear,
	}
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
	return cmd
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	store, err := openHistory(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		if !confirmAction(cmd, "This permanently deletes all recorded runs. Continue?") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := store.Clear(cmd.Context()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
	return nil
}

// confirmAction prompts for a yes/no answer on the command's input.
// Anything but an explicit yes declines.
func confirmAction(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(cmd.InOrStdin())
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// shortID abbreviates a scan ID for table display.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
